package render

import (
	"context"
	"image"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"

	"github.com/fieldfolio/fieldfolio/layout"
)

// RasterizedPage is a captured page bitmap plus the physical size it
// must occupy in the assembled document.
type RasterizedPage struct {
	Image     image.Image
	WidthMM   float64
	HeightMM  float64
	PaddingMM float64
	Scale     float64
}

// MiniMapPixelSize reports the pixel dimensions a mini-map should be
// rendered at so it lands crisp in its slot at the given scale.
func MiniMapPixelSize(scale float64) (w, h int) {
	if scale <= 0 {
		scale = 1
	}
	w = int(MiniMapWidthMM*layout.PxPerMM*scale + 0.5)
	h = int(MiniMapHeightMM*layout.PxPerMM*scale + 0.5)
	return w, h
}

// Capture lays the page out, draws it onto a vector canvas and
// rasterizes the result at scale times the base resolution. Photo and
// logo sources that fail to fetch degrade to placeholders; a canceled
// context is the only error path.
func (c *Compositor) Capture(ctx context.Context, p *layout.Page, att Attachments, scale float64) (*RasterizedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 1
	}
	lay := c.layoutPage(p)

	cv := canvas.New(p.WidthMM, p.HeightMM)
	dc := canvas.NewContext(cv)
	dc.SetCoordSystem(canvas.CartesianIV)

	dc.SetFillColor(canvas.White)
	dc.SetStrokeColor(transparent)
	dc.DrawPath(0, 0, canvas.Rectangle(p.WidthMM, p.HeightMM))

	for _, rc := range lay.rects {
		dc.SetFillColor(rc.fill)
		if rc.strokeW > 0 {
			dc.SetStrokeColor(rc.stroke)
			dc.SetStrokeWidth(rc.strokeW)
		} else {
			dc.SetStrokeColor(transparent)
		}
		dc.DrawPath(rc.x, rc.y, canvas.Rectangle(rc.w, rc.h))
	}
	for _, ln := range lay.lines {
		dc.SetFillColor(transparent)
		dc.SetStrokeColor(ln.col)
		dc.SetStrokeWidth(ln.w)
		path := &canvas.Path{}
		path.MoveTo(0, 0)
		path.LineTo(ln.x2-ln.x1, ln.y2-ln.y1)
		dc.DrawPath(ln.x1, ln.y1, path)
	}
	for _, ci := range lay.circles {
		dc.SetFillColor(ci.fill)
		dc.SetStrokeColor(ci.stroke)
		dc.SetStrokeWidth(ci.strokeW)
		dc.DrawPath(ci.cx-ci.r, ci.cy-ci.r, canvas.Circle(ci.r))
	}
	for _, slot := range lay.slots {
		c.drawSlot(ctx, dc, slot, att, scale)
	}
	for _, t := range lay.texts {
		dc.DrawText(t.x, t.baseline, t.line)
	}

	img := rasterizer.Draw(cv, canvas.DPMM(layout.PxPerMM*scale), canvas.DefaultColorSpace)
	return &RasterizedPage{
		Image:     img,
		WidthMM:   p.WidthMM,
		HeightMM:  p.HeightMM,
		PaddingMM: p.PaddingMM,
		Scale:     scale,
	}, nil
}

// drawSlot resolves a reserved image box. Mini-maps and the overview
// come from the attachments; photos and logos go through the fetcher.
func (c *Compositor) drawSlot(ctx context.Context, dc *canvas.Context, slot imageSlot, att Attachments, scale float64) {
	var img image.Image
	switch slot.kind {
	case slotMiniMap:
		img = att.MiniMaps[slot.feature]
		if img == nil {
			c.drawUnavailable(dc, slot, "Map unavailable")
			return
		}
	case slotOverview:
		img = att.Overview
		if img == nil {
			c.drawUnavailable(dc, slot, "Map unavailable")
			return
		}
	default:
		fetched, err := c.fetch.Fetch(ctx, slot.src)
		if err != nil {
			if slot.kind == slotPhoto {
				c.log.Warn("photo unavailable", "feature", slot.owner, "src", slot.src, "error", err)
				c.drawUnavailable(dc, slot, "Image unavailable")
			} else {
				c.log.Warn("logo unavailable", "src", slot.src, "error", err)
			}
			return
		}
		img = shrinkToSlot(fetched, slot, scale)
	}
	drawContained(dc, slot, img)
}

// shrinkToSlot downscales a photo that is far larger than its slot
// can show at the capture scale, keeping the rasterizer's sampling
// work bounded. Camera originals are routinely 10x oversized.
func shrinkToSlot(img image.Image, slot imageSlot, scale float64) image.Image {
	bounds := img.Bounds()
	maxW := slot.w * layout.PxPerMM * scale * 2
	maxH := slot.h * layout.PxPerMM * scale * 2
	if float64(bounds.Dx()) <= maxW && float64(bounds.Dy()) <= maxH {
		return img
	}
	s := math.Min(maxW/float64(bounds.Dx()), maxH/float64(bounds.Dy()))
	w := int(float64(bounds.Dx())*s + 0.5)
	h := int(float64(bounds.Dy())*s + 0.5)
	if w < 1 || h < 1 {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// drawContained fits the image inside the slot box preserving aspect
// ratio, centred on both axes.
func drawContained(dc *canvas.Context, slot imageSlot, img image.Image) {
	bounds := img.Bounds()
	iw := float64(bounds.Dx())
	ih := float64(bounds.Dy())
	if iw <= 0 || ih <= 0 {
		return
	}
	dw := slot.w
	dh := dw * ih / iw
	if dh > slot.h {
		dh = slot.h
		dw = dh * iw / ih
	}
	x := slot.x + (slot.w-dw)/2
	y := slot.y + (slot.h-dh)/2
	dc.DrawImage(x, y, img, canvas.DPMM(iw/dw))
}

func (c *Compositor) drawUnavailable(dc *canvas.Context, slot imageSlot, msg string) {
	dc.SetFillColor(boxFill)
	dc.SetStrokeColor(boxStroke)
	dc.SetStrokeWidth(ruleWidthMM)
	dc.DrawPath(slot.x, slot.y, canvas.Rectangle(slot.w, slot.h))
	face := c.fonts.Face(captionSizePt, mutedColor, canvas.FontRegular)
	dc.DrawText(slot.x+slot.w/2, slot.y+slot.h/2+1, canvas.NewTextLine(face, msg, canvas.Center))
}
