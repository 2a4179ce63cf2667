package scene

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/fieldfolio/fieldfolio/survey"
)

// MiniMap draws the small locator tile for one feature. It always
// returns an image: when the geometry is unusable or drawing panics,
// the tile reads "Map unavailable" so the page still composes.
func MiniMap(f *survey.Feature, style survey.CategoryStyle, widthPx, heightPx int) (img image.Image) {
	defer func() {
		if recover() != nil {
			img = placeholder(widthPx, heightPx, "Map unavailable")
		}
	}()

	b := f.Geometry.Bounds()
	if b.Empty() {
		return placeholder(widthPx, heightPx, "Map unavailable")
	}

	dc := gg.NewContext(widthPx, heightPx)
	dc.ClearWithColor(gg.White)
	drawGrid(dc, widthPx, heightPx)

	vp := newViewport(b, float64(widthPx), float64(heightPx), 14)
	drawGeometry(dc, vp, f.Geometry, style)
	drawBorder(dc, widthPx, heightPx)
	return dc.Image()
}

// placeholder is the tile used when a mini-map cannot be drawn.
func placeholder(widthPx, heightPx int, msg string) image.Image {
	dc := gg.NewContext(widthPx, heightPx)
	dc.SetHexColor("#eceeed")
	dc.DrawRectangle(0, 0, float64(widthPx), float64(heightPx))
	dc.Fill()
	drawBorder(dc, widthPx, heightPx)
	if src := labelSource(); src != nil {
		dc.SetFont(src.Face(12))
		dc.SetRGBA(0.45, 0.48, 0.5, 1)
		dc.DrawStringAnchored(msg, float64(widthPx)/2, float64(heightPx)/2, 0.5, 0.5)
	}
	return dc.Image()
}

func drawBorder(dc *gg.Context, widthPx, heightPx int) {
	dc.SetHexColor("#c4cac8")
	dc.SetLineWidth(1)
	dc.DrawRectangle(0.5, 0.5, float64(widthPx)-1, float64(heightPx)-1)
	dc.Stroke()
}
