// Package layout builds the page sequence of a report: it groups
// feature blocks by category, packs them onto pages against a
// measured height budget, and records the result for rendering.
package layout

import (
	"encoding/json"

	"github.com/fieldfolio/fieldfolio/block"
)

// Page dimensions in millimetres. Detail pages are portrait A4,
// overview pages landscape tabloid.
const (
	DetailWidthMM    = 210.0
	DetailHeightMM   = 297.0
	OverviewWidthMM  = 431.8
	OverviewHeightMM = 279.4

	DefaultPaddingMM = 12.0
)

// PageKind separates flowed detail pages from full-bleed overview
// pages.
type PageKind int

const (
	PageDetail PageKind = iota
	PageOverview
)

func (k PageKind) String() string {
	if k == PageOverview {
		return "overview"
	}
	return "detail"
}

func (k PageKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Page is one sheet of the report. Detail pages carry blocks; an
// overview page is filled by a captured map image at render time.
type Page struct {
	Kind      PageKind       `json:"kind"`
	WidthMM   float64        `json:"widthMM"`
	HeightMM  float64        `json:"heightMM"`
	PaddingMM float64        `json:"paddingMM"`
	Header    string         `json:"header,omitempty"`
	Continued bool           `json:"continued,omitempty"`
	Blocks    []*block.Block `json:"-"`

	// ContentHeightPx is the measured height of the placed content,
	// recorded by the paginator for inspection.
	ContentHeightPx float64 `json:"contentHeightPx,omitempty"`
}

// NewDetailPage returns a portrait content page. The header names the
// category; continued marks every category page after the first.
func NewDetailPage(header string, continued bool, blocks []*block.Block) *Page {
	return &Page{
		Kind:      PageDetail,
		WidthMM:   DetailWidthMM,
		HeightMM:  DetailHeightMM,
		PaddingMM: DefaultPaddingMM,
		Header:    header,
		Continued: continued,
		Blocks:    blocks,
	}
}

// NewOverviewPage returns a landscape page for a site map capture.
func NewOverviewPage(header string) *Page {
	return &Page{
		Kind:      PageOverview,
		WidthMM:   OverviewWidthMM,
		HeightMM:  OverviewHeightMM,
		PaddingMM: DefaultPaddingMM,
		Header:    header,
	}
}

// MaxContentHeight is the block budget of a page in pixels. The
// padding term covers the top margin plus the looser bottom margin.
func (p *Page) MaxContentHeight() float64 {
	return (p.HeightMM - 2.5*p.PaddingMM) * PxPerMM
}
