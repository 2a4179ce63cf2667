package survey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldfolio/fieldfolio/sanitize"
)

// CategoryStyle mirrors the marker styling used on the capture map so
// legend swatches and mini-maps match what the surveyor saw.
type CategoryStyle struct {
	FillColor   string  `yaml:"fillColor" json:"fillColor"`
	Color       string  `yaml:"color" json:"color"`
	Weight      float64 `yaml:"weight" json:"weight"`
	Opacity     float64 `yaml:"opacity" json:"opacity"`
	FillOpacity float64 `yaml:"fillOpacity" json:"fillOpacity"`
	Size        float64 `yaml:"size" json:"size"`
}

// DefaultStyle matches the capture map's unstyled marker defaults.
func DefaultStyle() CategoryStyle {
	return CategoryStyle{
		FillColor:   "#3388ff",
		Color:       "#3388ff",
		Weight:      3,
		Opacity:     1,
		FillOpacity: 0.2,
		Size:        8,
	}
}

// merge fills the zero fields of s from d.
func (s CategoryStyle) merge(d CategoryStyle) CategoryStyle {
	if s.FillColor == "" {
		s.FillColor = d.FillColor
	}
	if s.Color == "" {
		s.Color = d.Color
	}
	if s.Weight == 0 {
		s.Weight = d.Weight
	}
	if s.Opacity == 0 {
		s.Opacity = d.Opacity
	}
	if s.FillOpacity == 0 {
		s.FillOpacity = d.FillOpacity
	}
	if s.Size == 0 {
		s.Size = d.Size
	}
	return s
}

// StyleMap resolves a category name to its drawing style.
type StyleMap struct {
	Categories map[string]CategoryStyle `yaml:"categories"`
	Default    CategoryStyle            `yaml:"default"`
}

// ForCategory returns the style for a category with unset fields
// backfilled from the map's default, then the built-in default.
func (m *StyleMap) ForCategory(category string) CategoryStyle {
	base := m.Default.merge(DefaultStyle())
	if m.Categories == nil {
		return base
	}
	s, ok := m.Categories[category]
	if !ok {
		return base
	}
	return s.merge(base)
}

// FallbackCategory groups features whose category is empty or cannot
// be rendered.
const FallbackCategory = "Uncategorised"

// CategoryKey returns the printable category a feature is grouped,
// styled and counted under. Empty or dirty values fall back to
// FallbackCategory.
func CategoryKey(raw string) string {
	clean, err := sanitize.Clean(raw)
	if err != nil || clean == "" {
		return FallbackCategory
	}
	return clean
}

// ForFeature is ForCategory keyed by the feature's sanitized category,
// so the map, the mini-maps and the legend swatch all resolve the
// same style.
func (m *StyleMap) ForFeature(f *Feature) CategoryStyle {
	return m.ForCategory(CategoryKey(f.Properties.Category))
}

// LoadStyles reads a category style table from a YAML file.
func LoadStyles(path string) (*StyleMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read styles: %w", err)
	}
	var m StyleMap
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse styles %s: %w", path, err)
	}
	return &m, nil
}
