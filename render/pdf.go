package render

import (
	"bytes"
	"errors"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/fieldfolio/fieldfolio/survey"
)

// AssemblePDF binds the captured pages into a single document, each
// bitmap placed at its physical page size, and stamps the document
// information from the report metadata.
func AssemblePDF(pages []*RasterizedPage, meta *survey.Metadata) ([]byte, error) {
	if len(pages) == 0 {
		return nil, errors.New("assemble pdf: no pages")
	}
	var buf bytes.Buffer
	writer := pdf.New(&buf, pages[0].WidthMM, pages[0].HeightMM, nil)
	if meta != nil {
		writer.SetInfo(meta.Title, "Site survey report", meta.ProjectID, meta.ClientName, "fieldfolio")
	}
	for i, p := range pages {
		if i > 0 {
			writer.NewPage(p.WidthMM, p.HeightMM)
		}
		cv := canvas.New(p.WidthMM, p.HeightMM)
		dc := canvas.NewContext(cv)
		dc.SetCoordSystem(canvas.CartesianIV)
		dpmm := float64(p.Image.Bounds().Dx()) / p.WidthMM
		dc.DrawImage(0, 0, p.Image, canvas.DPMM(dpmm))
		cv.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
