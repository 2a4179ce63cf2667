package layout

import (
	"encoding/json"
	"os"
)

type pageDump struct {
	Index           int         `json:"index"`
	Kind            string      `json:"kind"`
	Header          string      `json:"header,omitempty"`
	Continued       bool        `json:"continued,omitempty"`
	WidthMM         float64     `json:"widthMM"`
	HeightMM        float64     `json:"heightMM"`
	ContentHeightPx float64     `json:"contentHeightPx,omitempty"`
	MaxContentPx    float64     `json:"maxContentPx"`
	Blocks          []blockDump `json:"blocks,omitempty"`
}

type blockDump struct {
	Kind    string `json:"kind"`
	Feature string `json:"feature,omitempty"`
}

// WriteDebugJSON writes a page-by-page summary of a layout result,
// for checking what landed where without opening the PDF.
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	dump := make([]pageDump, 0, len(res.Pages))
	for i, p := range res.Pages {
		d := pageDump{
			Index:           i,
			Kind:            p.Kind.String(),
			Header:          p.Header,
			Continued:       p.Continued,
			WidthMM:         p.WidthMM,
			HeightMM:        p.HeightMM,
			ContentHeightPx: p.ContentHeightPx,
			MaxContentPx:    p.MaxContentHeight(),
		}
		for _, b := range p.Blocks {
			d.Blocks = append(d.Blocks, blockDump{
				Kind:    b.Kind.String(),
				Feature: b.FeatureName(),
			})
		}
		dump = append(dump, d)
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
