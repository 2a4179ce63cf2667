package layout_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/fieldfolio/fieldfolio/block"
	"github.com/fieldfolio/fieldfolio/layout"
	"github.com/fieldfolio/fieldfolio/survey"
)

// stubMeasurer prices a candidate page as fixed chrome plus a height
// per block, with extra chrome on continuation pages.
type stubMeasurer struct {
	chrome         float64
	continuedExtra float64
	defaultHeight  float64
	heights        map[*block.Block]float64
	calls          int
	err            error
}

func (m *stubMeasurer) PageContentHeight(p *layout.Page) (float64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	h := m.chrome
	if p.Continued {
		h += m.continuedExtra
	}
	for _, b := range p.Blocks {
		if bh, ok := m.heights[b]; ok {
			h += bh
		} else {
			h += m.defaultHeight
		}
	}
	return h, nil
}

func detailBlock(name string) *block.Block {
	return &block.Block{
		Kind:    block.KindFeatureDetail,
		Feature: &block.FeatureData{Name: name},
	}
}

func makeBlocks(n int) []*block.Block {
	out := make([]*block.Block, n)
	for i := range out {
		out[i] = detailBlock(fmt.Sprintf("Feature %02d", i))
	}
	return out
}

func paginate(t *testing.T, groups []layout.Group, m layout.Measurer) *layout.Result {
	t.Helper()
	res, err := layout.Paginate(groups, m, layout.Options{})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	return res
}

// The default page budget is (297 - 2.5*12) mm of content at 96dpi,
// a little over 1009px. The stub heights below are chosen so two
// blocks fit a page and three do not.
func TestPaginatePacksAgainstBudget(t *testing.T) {
	blocks := makeBlocks(3)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	res := paginate(t, []layout.Group{{Category: "Drainage", Blocks: blocks}}, m)

	if len(res.Pages) != 2 {
		t.Fatalf("pages: got=%d want=2", len(res.Pages))
	}
	if got := len(res.Pages[0].Blocks); got != 2 {
		t.Fatalf("page 0 blocks: got=%d want=2", got)
	}
	if got := len(res.Pages[1].Blocks); got != 1 {
		t.Fatalf("page 1 blocks: got=%d want=1", got)
	}
	if res.Pages[0].Continued {
		t.Fatal("first category page must not be continued")
	}
	if !res.Pages[1].Continued {
		t.Fatal("second category page must be continued")
	}
	if res.Pages[0].Header != "Drainage" || res.Pages[1].Header != "Drainage" {
		t.Fatalf("headers: got=%q,%q", res.Pages[0].Header, res.Pages[1].Header)
	}
	if got := res.Pages[0].ContentHeightPx; got != 900 {
		t.Fatalf("page 0 measured height: got=%g want=900", got)
	}
	for _, p := range res.Pages {
		if p.ContentHeightPx > p.MaxContentHeight() {
			t.Fatalf("page over budget: %g > %g", p.ContentHeightPx, p.MaxContentHeight())
		}
	}
}

func TestPaginateOversizedBlockKeepsItsPage(t *testing.T) {
	blocks := makeBlocks(3)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	m.heights = map[*block.Block]float64{blocks[1]: 1200}
	res := paginate(t, []layout.Group{{Category: "Drainage", Blocks: blocks}}, m)

	if len(res.Pages) != 3 {
		t.Fatalf("pages: got=%d want=3", len(res.Pages))
	}
	for i, p := range res.Pages {
		if got := len(p.Blocks); got != 1 {
			t.Fatalf("page %d blocks: got=%d want=1", i, got)
		}
	}
	over := res.Pages[1]
	if over.Blocks[0] != blocks[1] {
		t.Fatal("oversized block landed on the wrong page")
	}
	// The oversized page is allowed to exceed the budget; it must
	// still be present rather than dropped.
	if over.ContentHeightPx <= over.MaxContentHeight() {
		t.Fatalf("expected page over budget, got %g <= %g", over.ContentHeightPx, over.MaxContentHeight())
	}
}

func TestPaginateCategoryBoundaries(t *testing.T) {
	a := makeBlocks(3)
	b := makeBlocks(2)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	res := paginate(t, []layout.Group{
		{Category: "Access", Blocks: a},
		{Category: "Drainage", Blocks: b},
	}, m)

	if len(res.Pages) != 3 {
		t.Fatalf("pages: got=%d want=3", len(res.Pages))
	}
	// A category never shares a page with the previous one.
	if res.Pages[2].Header != "Drainage" || res.Pages[2].Continued {
		t.Fatalf("category restart: header=%q continued=%v", res.Pages[2].Header, res.Pages[2].Continued)
	}
	if len(res.Pages[2].Blocks) != 2 {
		t.Fatalf("drainage page blocks: got=%d want=2", len(res.Pages[2].Blocks))
	}
}

func TestPaginatePlacesEveryBlockOnce(t *testing.T) {
	blocks := makeBlocks(10)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	m.heights = map[*block.Block]float64{
		blocks[2]: 1500,
		blocks[7]: 700,
	}
	res := paginate(t, []layout.Group{{Category: "Mixed", Blocks: blocks}}, m)

	var placed []*block.Block
	for _, p := range res.Pages {
		if len(p.Blocks) == 0 {
			t.Fatal("empty page emitted")
		}
		placed = append(placed, p.Blocks...)
	}
	if len(placed) != len(blocks) {
		t.Fatalf("placed blocks: got=%d want=%d", len(placed), len(blocks))
	}
	for i := range blocks {
		if placed[i] != blocks[i] {
			t.Fatalf("block %d out of order", i)
		}
	}
}

func TestPaginateMeasureCountLinear(t *testing.T) {
	blocks := makeBlocks(40)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	paginate(t, []layout.Group{{Category: "Large", Blocks: blocks}}, m)
	if m.calls > 2*len(blocks) {
		t.Fatalf("measure calls: got=%d budget=%d", m.calls, 2*len(blocks))
	}
}

func TestPaginateRemeasuresAgainstContinuationChrome(t *testing.T) {
	// 780px fits a fresh page (200+780) but not a continuation page
	// (200+50+780 over the ~1009px budget).
	blocks := makeBlocks(2)
	m := &stubMeasurer{chrome: 200, continuedExtra: 50, defaultHeight: 780}
	res := paginate(t, []layout.Group{{Category: "Tight", Blocks: blocks}}, m)

	if len(res.Pages) != 2 {
		t.Fatalf("pages: got=%d want=2", len(res.Pages))
	}
	second := res.Pages[1]
	if got := second.ContentHeightPx; got != 1030 {
		t.Fatalf("continuation candidate height: got=%g want=1030", got)
	}
	if second.ContentHeightPx <= second.MaxContentHeight() {
		t.Fatal("restarted block should have overflowed the continuation page")
	}
}

func TestPaginateMeasureError(t *testing.T) {
	m := &stubMeasurer{err: fmt.Errorf("fonts unavailable")}
	_, err := layout.Paginate([]layout.Group{{Category: "X", Blocks: makeBlocks(1)}}, m, layout.Options{})
	if err == nil {
		t.Fatal("expected measurement error to propagate")
	}
}

func TestPaginatePaddingOption(t *testing.T) {
	blocks := makeBlocks(1)
	m := &stubMeasurer{chrome: 200, defaultHeight: 350}
	res, err := layout.Paginate([]layout.Group{{Category: "X", Blocks: blocks}}, m, layout.Options{PaddingMM: 20})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if got := res.Pages[0].PaddingMM; got != 20 {
		t.Fatalf("padding: got=%g want=20", got)
	}
}

func TestBuildGroups(t *testing.T) {
	features := []survey.Feature{
		{Properties: survey.Properties{Name: "Swale 2", Category: "Drainage"}},
		{Properties: survey.Properties{Name: "gate 1", Category: "Access"}},
		{Properties: survey.Properties{Name: "Culvert 3", Category: "Drainage"}},
		{Properties: survey.Properties{Name: "Aaa [object Object]", Category: "Access"}},
	}
	builder := block.NewBuilder(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	groups := layout.BuildGroups(features, builder)

	if len(groups) != 2 {
		t.Fatalf("groups: got=%d want=2", len(groups))
	}
	if groups[0].Category != "Access" || groups[1].Category != "Drainage" {
		t.Fatalf("category order: got=%q,%q", groups[0].Category, groups[1].Category)
	}

	access := groups[0].Blocks
	if len(access) != 2 {
		t.Fatalf("access blocks: got=%d", len(access))
	}
	// The unrenderable feature stays in position as an error block.
	if access[0].Kind != block.KindError {
		t.Fatalf("access[0]: got=%v want error block", access[0].Kind)
	}
	if access[1].Kind != block.KindFeatureDetail || access[1].Feature.Name != "gate 1" {
		t.Fatalf("access[1]: got=%+v", access[1])
	}

	drainage := groups[1].Blocks
	if drainage[0].FeatureName() != "Culvert 3" || drainage[1].FeatureName() != "Swale 2" {
		t.Fatalf("drainage order: got=%q,%q", drainage[0].FeatureName(), drainage[1].FeatureName())
	}
}
