package scene

import (
	"math"

	"github.com/fieldfolio/fieldfolio/survey"
)

// minSpanDeg pads degenerate bounds (a single point) out to roughly a
// fifty metre window so there is something to draw around it.
const minSpanDeg = 0.0005

// viewport maps geographic coordinates onto a pixel canvas. Plate
// carree with the longitude axis compressed by cos(mid latitude), so
// shapes keep their proportions at the survey's latitude.
type viewport struct {
	bounds survey.Bounds
	cosLat float64
	scale  float64 // pixels per degree of latitude
	offX   float64
	offY   float64
}

func newViewport(b survey.Bounds, widthPx, heightPx, marginPx float64) viewport {
	if b.Empty() {
		b = survey.Bounds{MinLon: -1, MinLat: -1, MaxLon: 1, MaxLat: 1}
	}
	lonSpan, latSpan := b.Span()
	if lonSpan < minSpanDeg {
		c := b.Center()
		b.MinLon, b.MaxLon = c.Lon-minSpanDeg/2, c.Lon+minSpanDeg/2
		lonSpan = minSpanDeg
	}
	if latSpan < minSpanDeg {
		c := b.Center()
		b.MinLat, b.MaxLat = c.Lat-minSpanDeg/2, c.Lat+minSpanDeg/2
		latSpan = minSpanDeg
	}
	cosLat := math.Cos(b.Center().Lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	innerW := widthPx - 2*marginPx
	innerH := heightPx - 2*marginPx
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}
	scale := math.Min(innerW/(lonSpan*cosLat), innerH/latSpan)
	contentW := lonSpan * cosLat * scale
	contentH := latSpan * scale
	return viewport{
		bounds: b,
		cosLat: cosLat,
		scale:  scale,
		offX:   (widthPx - contentW) / 2,
		offY:   (heightPx - contentH) / 2,
	}
}

// xy projects a coordinate. North is up.
func (v viewport) xy(c survey.Coord) (float64, float64) {
	x := v.offX + (c.Lon-v.bounds.MinLon)*v.cosLat*v.scale
	y := v.offY + (v.bounds.MaxLat-c.Lat)*v.scale
	return x, y
}
