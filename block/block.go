// Package block turns survey input into the atomic content blocks the
// paginator places. A block is placed whole on exactly one page and is
// never split.
package block

import (
	"github.com/fieldfolio/fieldfolio/geo"
	"github.com/fieldfolio/fieldfolio/survey"
)

// Kind discriminates the block payload.
type Kind int

const (
	KindTitle Kind = iota
	KindTeam
	KindLegend
	KindFeatureDetail
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindTeam:
		return "team"
	case KindLegend:
		return "legend"
	case KindFeatureDetail:
		return "feature-detail"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Block is one unit of page content. The payload pointer matching
// Kind is set, the rest are nil.
type Block struct {
	Kind    Kind
	Title   *TitleData
	Team    *TeamData
	Legend  *LegendData
	Feature *FeatureData
	Error   *ErrorData
}

// FeatureName returns the feature a block describes, or "" for block
// kinds that are not tied to one. Used in logs.
func (b *Block) FeatureName() string {
	switch b.Kind {
	case KindFeatureDetail:
		return b.Feature.Name
	case KindError:
		return b.Error.FeatureName
	}
	return ""
}

// TitleData backs the cover page.
type TitleData struct {
	Meta        *survey.Metadata
	Description RichText
}

// TeamData backs the contributor page.
type TeamData struct {
	Members []survey.Contributor
}

// LegendRow is one category line in the legend.
type LegendRow struct {
	Category string
	Style    survey.CategoryStyle
	Count    int
}

// LegendData backs the legend page.
type LegendData struct {
	Rows []LegendRow
}

// ObservationData is one finding inside a feature detail.
type ObservationData struct {
	Type           string
	Severity       survey.Severity
	Recommendation RichText
	Images         []survey.ImageRef
}

// FeatureData backs a feature detail. Feature keeps the geometry for
// the page's mini-map.
type FeatureData struct {
	Name         string
	Category     string
	Severity     survey.Severity
	Style        survey.CategoryStyle
	Facts        []geo.Fact
	Description  RichText
	Observations []ObservationData
	Feature      *survey.Feature
}

// ErrorData stands in for a feature whose required fields could not
// be rendered. It keeps the feature visible in the report instead of
// silently dropping it.
type ErrorData struct {
	FeatureName string
	Reason      string
}
