package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/fieldfolio/fieldfolio/fonts"
	"github.com/fieldfolio/fieldfolio/layout"
)

var footerSource = sync.OnceValue(func() *text.FontSource {
	data, err := fonts.Load(fonts.Regular)
	if err != nil {
		return nil
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return nil
	}
	return src
})

// ApplyFooters stamps the running title and "Page i of N" onto every
// page after the cover, drawing into the bottom margin of the already
// rasterized bitmaps. The cover keeps its clean edge.
func ApplyFooters(pages []*RasterizedPage, runningTitle string) {
	src := footerSource()
	total := len(pages)
	for i, p := range pages {
		if i == 0 {
			continue
		}
		px := layout.PxPerMM * p.Scale
		dc := gg.NewContextForImage(p.Image)

		ruleY := (p.HeightMM - p.PaddingMM*1.05) * px
		dc.SetHexColor("#d9dedc")
		dc.SetLineWidth(p.Scale)
		dc.DrawLine(p.PaddingMM*px, ruleY, (p.WidthMM-p.PaddingMM)*px, ruleY)
		dc.Stroke()

		if src == nil {
			p.Image = dc.Image()
			continue
		}
		dc.SetFont(src.Face(footerSizePt * layout.PtToMm * px))
		dc.SetRGBA(0.42, 0.45, 0.48, 1)
		baseline := (p.HeightMM - p.PaddingMM*0.45) * px
		dc.DrawString(runningTitle, p.PaddingMM*px, baseline)
		label := fmt.Sprintf("Page %d of %d", i+1, total)
		w, _ := dc.MeasureString(label)
		dc.DrawString(label, (p.WidthMM-p.PaddingMM)*px-w, baseline)
		p.Image = dc.Image()
	}
}
