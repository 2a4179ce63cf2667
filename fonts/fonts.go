// Package fonts serves the typefaces compiled into the binary, so a
// report renders identically on any machine without font installs.
package fonts

import (
	"fmt"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Style names accepted by Load.
const (
	Regular = "regular"
	Bold    = "bold"
	Italic  = "italic"
)

// Load returns the TTF bytes for a built-in style.
func Load(style string) ([]byte, error) {
	switch style {
	case Regular:
		return goregular.TTF, nil
	case Bold:
		return gobold.TTF, nil
	case Italic:
		return goitalic.TTF, nil
	}
	return nil, fmt.Errorf("unknown font style %q", style)
}
