package block

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fieldfolio/fieldfolio/survey"
)

func testBuilder() *Builder {
	styles := &survey.StyleMap{Categories: map[string]survey.CategoryStyle{
		"Drainage": {FillColor: "#1e66f5", Color: "#0b3d91"},
	}}
	return NewBuilder(styles, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func pointFeature(name, category string) *survey.Feature {
	return &survey.Feature{
		Geometry: survey.Geometry{
			Type:  survey.GeometryPoint,
			Point: survey.Coord{Lon: 150.1, Lat: -34.2},
		},
		Properties: survey.Properties{Name: name, Category: category},
	}
}

func TestFeatureDetail(t *testing.T) {
	f := pointFeature("Culvert 3", "Drainage")
	f.Properties.Description = "Concrete culvert with **significant** wear."
	f.Properties.Observations = []survey.Observation{{
		Type:           "Blockage",
		Severity:       survey.SeverityHigh,
		Recommendation: "Clear debris before winter.",
		Images:         []survey.ImageRef{{Src: "c3.jpg", Caption: "Inlet"}},
	}}

	b := testBuilder().FeatureDetail(f)
	if b.Kind != KindFeatureDetail {
		t.Fatalf("kind: got=%v", b.Kind)
	}
	d := b.Feature
	if d.Name != "Culvert 3" || d.Category != "Drainage" {
		t.Fatalf("identity: got=%q/%q", d.Name, d.Category)
	}
	if d.Severity != survey.SeverityHigh {
		t.Fatalf("severity: got=%v", d.Severity)
	}
	if d.Style.FillColor != "#1e66f5" {
		t.Fatalf("style: got=%+v", d.Style)
	}
	if len(d.Facts) != 2 {
		t.Fatalf("facts for a point: got=%d", len(d.Facts))
	}
	if got := d.Description.Plain(); got != "Concrete culvert with significant wear." {
		t.Fatalf("description: got=%q", got)
	}
	if len(d.Observations) != 1 {
		t.Fatalf("observations: got=%d", len(d.Observations))
	}
	o := d.Observations[0]
	if o.Type != "Blockage" || o.Severity != survey.SeverityHigh {
		t.Fatalf("observation: got=%+v", o)
	}
	if len(o.Images) != 1 || o.Images[0].Caption != "Inlet" {
		t.Fatalf("images: got=%+v", o.Images)
	}
	if d.Feature != f {
		t.Fatal("detail must keep the source feature for the mini-map")
	}
	if b.FeatureName() != "Culvert 3" {
		t.Fatalf("FeatureName: got=%q", b.FeatureName())
	}
}

func TestFeatureDetailDirtyName(t *testing.T) {
	f := pointFeature("[object Object]", "Drainage")
	b := testBuilder().FeatureDetail(f)
	if b.Kind != KindError {
		t.Fatalf("kind: got=%v want error", b.Kind)
	}
	if b.Error.FeatureName != "Unnamed feature" {
		t.Fatalf("fallback name: got=%q", b.Error.FeatureName)
	}
	if !strings.Contains(b.Error.Reason, "name") {
		t.Fatalf("reason: got=%q", b.Error.Reason)
	}
}

func TestFeatureDetailDirtyCategory(t *testing.T) {
	f := pointFeature("Culvert 3", "[object Object]")
	b := testBuilder().FeatureDetail(f)
	if b.Kind != KindError {
		t.Fatalf("kind: got=%v want error", b.Kind)
	}
	// The clean name survives into the error block.
	if b.Error.FeatureName != "Culvert 3" {
		t.Fatalf("name: got=%q", b.Error.FeatureName)
	}
}

func TestFeatureDetailDropsDirtyOptionals(t *testing.T) {
	f := pointFeature("Culvert 3", "Drainage")
	f.Properties.Description = "notes [object Object] here"
	f.Properties.Observations = []survey.Observation{{
		Type:           "[object HTMLDivElement]",
		Severity:       survey.SeverityLow,
		Recommendation: "[object Object]",
		Images: []survey.ImageRef{
			{Src: "ok.jpg", Caption: "[object Object]"},
			{Src: "", Caption: "orphan"},
		},
	}}

	b := testBuilder().FeatureDetail(f)
	if b.Kind != KindFeatureDetail {
		t.Fatalf("dirty optionals must not degrade the feature, got=%v", b.Kind)
	}
	d := b.Feature
	if d.Description != nil {
		t.Fatalf("description should be dropped, got=%+v", d.Description)
	}
	o := d.Observations[0]
	if o.Type != "Observation" {
		t.Fatalf("type fallback: got=%q", o.Type)
	}
	if o.Recommendation != nil {
		t.Fatalf("recommendation should be dropped, got=%+v", o.Recommendation)
	}
	if len(o.Images) != 1 {
		t.Fatalf("sourceless image should be dropped: got=%d", len(o.Images))
	}
	if o.Images[0].Caption != "" {
		t.Fatalf("dirty caption should be dropped, got=%q", o.Images[0].Caption)
	}
}

func TestLegend(t *testing.T) {
	features := []survey.Feature{
		*pointFeature("A", "Vegetation"),
		*pointFeature("B", "Drainage"),
		*pointFeature("C", "Drainage"),
		*pointFeature("D", ""),
	}
	b := testBuilder().Legend(features)
	if b.Kind != KindLegend {
		t.Fatalf("kind: got=%v", b.Kind)
	}
	rows := b.Legend.Rows
	if len(rows) != 3 {
		t.Fatalf("rows: got=%d want=3", len(rows))
	}
	if rows[0].Category != "Drainage" || rows[0].Count != 2 {
		t.Fatalf("row 0: got=%+v", rows[0])
	}
	if rows[0].Style.FillColor != "#1e66f5" {
		t.Fatalf("row 0 style: got=%+v", rows[0].Style)
	}
	if rows[1].Category != "Uncategorised" || rows[1].Count != 1 {
		t.Fatalf("row 1: got=%+v", rows[1])
	}
	if rows[2].Category != "Vegetation" {
		t.Fatalf("row 2: got=%+v", rows[2])
	}
}

func TestLegendAndDetailShareStyleKey(t *testing.T) {
	// Sanitization rewrites the raw category; legend swatch and
	// feature style must still resolve to the same entry.
	f := pointFeature("Culvert 3", "  Drainage  ")
	builder := testBuilder()

	detail := builder.FeatureDetail(f)
	if detail.Kind != KindFeatureDetail {
		t.Fatalf("kind: got=%v", detail.Kind)
	}
	legend := builder.Legend([]survey.Feature{*f})
	rows := legend.Legend.Rows
	if len(rows) != 1 || rows[0].Category != "Drainage" {
		t.Fatalf("legend rows: got=%+v", rows)
	}
	if detail.Feature.Style.FillColor != "#1e66f5" {
		t.Fatalf("detail style: got=%+v", detail.Feature.Style)
	}
	if rows[0].Style != detail.Feature.Style {
		t.Fatalf("legend swatch %+v differs from feature style %+v", rows[0].Style, detail.Feature.Style)
	}
}

func TestTitleAndTeam(t *testing.T) {
	meta := &survey.Metadata{
		Title:        "Creek Survey",
		Description:  "Walkover of the *lower* creek.",
		Contributors: []survey.Contributor{{Name: "R. Ellis", Role: "Lead"}},
	}
	builder := testBuilder()

	title := builder.Title(meta)
	if title.Kind != KindTitle || title.Title.Meta != meta {
		t.Fatalf("title block: got=%+v", title)
	}
	if got := title.Title.Description.Plain(); got != "Walkover of the lower creek." {
		t.Fatalf("title description: got=%q", got)
	}

	team := builder.Team(meta)
	if team.Kind != KindTeam || len(team.Team.Members) != 1 {
		t.Fatalf("team block: got=%+v", team)
	}
	if team.FeatureName() != "" {
		t.Fatalf("non-feature block must have empty FeatureName")
	}
}
