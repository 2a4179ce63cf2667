package layout

import (
	"fmt"

	"github.com/fieldfolio/fieldfolio/block"
	"github.com/fieldfolio/fieldfolio/survey"
)

// Measurer reports the rendered content height of a candidate page in
// pixels, header and footer chrome included. The renderer implements
// this against the real fonts so pagination and output agree.
type Measurer interface {
	PageContentHeight(p *Page) (float64, error)
}

// Group is one category's blocks in report order.
type Group struct {
	Category string
	Blocks   []*block.Block
}

// BuildGroups sorts features into category groups and builds their
// detail blocks. Categories and the features inside them are ordered
// alphabetically; features that fail to build become error blocks in
// the same position.
func BuildGroups(features []survey.Feature, builder *block.Builder) []Group {
	byCat := make(map[string][]survey.Feature)
	for i := range features {
		label := survey.CategoryKey(features[i].Properties.Category)
		byCat[label] = append(byCat[label], features[i])
	}
	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	survey.SortCategories(cats)

	groups := make([]Group, 0, len(cats))
	for _, cat := range cats {
		members := byCat[cat]
		survey.SortFeatures(members)
		blocks := make([]*block.Block, 0, len(members))
		for i := range members {
			blocks = append(blocks, builder.FeatureDetail(&members[i]))
		}
		groups = append(groups, Group{Category: cat, Blocks: blocks})
	}
	return groups
}

// Options tunes pagination.
type Options struct {
	// PaddingMM overrides the page padding when positive.
	PaddingMM float64
}

// Result is the paginated report body.
type Result struct {
	Pages []*Page `json:"pages"`
}

// Paginate packs each group's blocks onto detail pages. A block is
// appended to the current page, the candidate is measured whole, and
// on overflow the page is closed without it and the block restarts
// the next page. A block too tall for an empty page still gets a page
// of its own. Each block is measured at most twice, so the measure
// count stays linear in the block count.
func Paginate(groups []Group, m Measurer, opts Options) (*Result, error) {
	res := &Result{}
	for _, g := range groups {
		first := true
		var cur []*block.Block
		var lastH float64

		newPage := func(blocks []*block.Block) *Page {
			p := NewDetailPage(g.Category, !first, blocks)
			if opts.PaddingMM > 0 {
				p.PaddingMM = opts.PaddingMM
			}
			return p
		}
		finalize := func() {
			p := newPage(cur)
			p.ContentHeightPx = lastH
			res.Pages = append(res.Pages, p)
			first = false
			cur = nil
			lastH = 0
		}

		for _, blk := range g.Blocks {
			cur = append(cur, blk)
			cand := newPage(cur)
			h, err := m.PageContentHeight(cand)
			if err != nil {
				return nil, fmt.Errorf("measure %s: %w", g.Category, err)
			}
			if h <= cand.MaxContentHeight() {
				lastH = h
				continue
			}
			if len(cur) == 1 {
				// Too tall even alone; it keeps the page and may
				// clip rather than vanish.
				lastH = h
				finalize()
				continue
			}
			overflow := blk
			cur = cur[:len(cur)-1]
			finalize()

			// The restarted page carries continuation chrome, so the
			// block is measured once more against it.
			cur = []*block.Block{overflow}
			cand = newPage(cur)
			h, err = m.PageContentHeight(cand)
			if err != nil {
				return nil, fmt.Errorf("measure %s: %w", g.Category, err)
			}
			lastH = h
			if h > cand.MaxContentHeight() {
				finalize()
			}
		}
		if len(cur) > 0 {
			finalize()
		}
	}
	return res, nil
}
