package block

import (
	"fmt"
	"log/slog"

	"github.com/fieldfolio/fieldfolio/geo"
	"github.com/fieldfolio/fieldfolio/sanitize"
	"github.com/fieldfolio/fieldfolio/survey"
)

// Builder assembles blocks from survey input, sanitising captured
// text on the way in. A feature whose name or category cannot be
// rendered degrades to an error block; dirty optional fields are
// dropped with a log line and the feature keeps its page.
type Builder struct {
	styles *survey.StyleMap
	log    *slog.Logger
}

func NewBuilder(styles *survey.StyleMap, log *slog.Logger) *Builder {
	if styles == nil {
		styles = &survey.StyleMap{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{styles: styles, log: log}
}

// Title builds the cover block. The description keeps its markdown
// styling; when it cannot be sanitised the cover renders without one.
func (b *Builder) Title(meta *survey.Metadata) *Block {
	desc, err := sanitize.Clean(meta.Description)
	if err != nil {
		b.log.Warn("dropping report description", "err", err)
		desc = ""
	}
	return &Block{Kind: KindTitle, Title: &TitleData{
		Meta:        meta,
		Description: parseRich(desc),
	}}
}

// Team builds the contributor block.
func (b *Builder) Team(meta *survey.Metadata) *Block {
	return &Block{Kind: KindTeam, Team: &TeamData{Members: meta.Contributors}}
}

// Legend builds one row per category with its swatch style and
// feature count, in report order.
func (b *Builder) Legend(features []survey.Feature) *Block {
	counts := make(map[string]int)
	var cats []string
	for i := range features {
		label := survey.CategoryKey(features[i].Properties.Category)
		if counts[label] == 0 {
			cats = append(cats, label)
		}
		counts[label]++
	}
	survey.SortCategories(cats)
	rows := make([]LegendRow, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, LegendRow{
			Category: cat,
			Style:    b.styles.ForCategory(cat),
			Count:    counts[cat],
		})
	}
	return &Block{Kind: KindLegend, Legend: &LegendData{Rows: rows}}
}

// FeatureDetail builds the detail block for one feature.
func (b *Builder) FeatureDetail(f *survey.Feature) *Block {
	name, err := sanitize.Clean(f.Properties.Name)
	if err == nil && name == "" {
		err = fmt.Errorf("name is empty")
	}
	if err != nil {
		return b.errorBlock(f, "name", err)
	}
	category, err := sanitize.Clean(f.Properties.Category)
	if err == nil && category == "" {
		err = fmt.Errorf("category is empty")
	}
	if err != nil {
		return b.errorBlock(f, "category", err)
	}

	data := &FeatureData{
		Name:     name,
		Category: category,
		Severity: f.MaxSeverity(),
		Style:    b.styles.ForFeature(f),
		Facts:    geo.Facts(f),
		Feature:  f,
	}
	if desc, err := sanitize.Clean(f.Properties.Description); err != nil {
		b.log.Warn("dropping feature description", "feature", name, "err", err)
	} else {
		data.Description = parseRich(desc)
	}
	for i := range f.Properties.Observations {
		data.Observations = append(data.Observations, b.observation(name, &f.Properties.Observations[i]))
	}
	return &Block{Kind: KindFeatureDetail, Feature: data}
}

func (b *Builder) observation(feature string, o *survey.Observation) ObservationData {
	out := ObservationData{Severity: o.Severity}

	typ, err := sanitize.Clean(o.Type)
	if err != nil || typ == "" {
		if err != nil {
			b.log.Warn("dropping observation type", "feature", feature, "err", err)
		}
		typ = "Observation"
	}
	out.Type = typ

	if rec, err := sanitize.Clean(o.Recommendation); err != nil {
		b.log.Warn("dropping recommendation", "feature", feature, "err", err)
	} else {
		out.Recommendation = parseRich(rec)
	}

	for _, img := range o.Images {
		if img.Src == "" {
			b.log.Warn("dropping image without source", "feature", feature)
			continue
		}
		caption, err := sanitize.Clean(img.Caption)
		if err != nil {
			b.log.Warn("dropping image caption", "feature", feature, "err", err)
			caption = ""
		}
		out.Images = append(out.Images, survey.ImageRef{Src: img.Src, Caption: caption})
	}
	return out
}

func (b *Builder) errorBlock(f *survey.Feature, field string, err error) *Block {
	b.log.Warn("feature degraded to error block", "field", field, "err", err)
	name, cerr := sanitize.Clean(f.Properties.Name)
	if cerr != nil || name == "" {
		name = "Unnamed feature"
	}
	return &Block{Kind: KindError, Error: &ErrorData{
		FeatureName: name,
		Reason:      fmt.Sprintf("The %s of this feature could not be rendered (%v).", field, err),
	}}
}
