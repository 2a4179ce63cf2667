// Package render composes report pages into vector canvases, measures
// them for the paginator, and rasterizes them for assembly into the
// final PDF.
package render

import (
	"fmt"
	"image/color"

	"github.com/tdewolff/canvas"

	"github.com/fieldfolio/fieldfolio/block"
	"github.com/fieldfolio/fieldfolio/fonts"
)

// FontSet is the single family every page is set in, loaded once and
// shared between measurement and drawing so the two always agree.
type FontSet struct {
	family *canvas.FontFamily
}

// LoadFontSet loads the built-in faces into one canvas family.
func LoadFontSet() (*FontSet, error) {
	family := canvas.NewFontFamily("fieldfolio")
	for _, load := range []struct {
		name  string
		style canvas.FontStyle
	}{
		{fonts.Regular, canvas.FontRegular},
		{fonts.Bold, canvas.FontBold},
		{fonts.Italic, canvas.FontItalic},
	} {
		data, err := fonts.Load(load.name)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", load.name, err)
		}
		if err := family.LoadFont(data, 0, load.style); err != nil {
			return nil, fmt.Errorf("parse font %s: %w", load.name, err)
		}
	}
	return &FontSet{family: family}, nil
}

// Face returns a sized, coloured face. Size is in points.
func (s *FontSet) Face(sizePt float64, col color.Color, style canvas.FontStyle) *canvas.FontFace {
	return s.family.Face(sizePt, col, style, canvas.FontNormal)
}

// spanStyle maps rich text span flags onto canvas font styles. A bold
// italic span resolves to the closest loaded face.
func spanStyle(sp block.Span) canvas.FontStyle {
	style := canvas.FontRegular
	if sp.Bold {
		style = canvas.FontBold
	}
	if sp.Italic {
		style |= canvas.FontItalic
	}
	return style
}
