// Package sanitize normalises free-form text captured in the field
// before it reaches a page. Capture apps paste rich content into the
// description fields, so everything is run through an HTML parser and
// reduced to plain text.
package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrArtifact marks text that is a serialisation accident rather than
// something a surveyor wrote, such as "[object Object]".
var ErrArtifact = errors.New("serialisation artifact")

var artifactPattern = regexp.MustCompile(`\[object\s+[A-Za-z]+\]`)

// Clean strips markup and normalises whitespace. Text that consists
// of or contains a serialisation artifact is rejected with a wrapped
// ErrArtifact so callers can drop the field instead of printing it.
func Clean(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if m := artifactPattern.FindString(s); m != "" {
		return "", fmt.Errorf("%w: %q", ErrArtifact, m)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return "", fmt.Errorf("parse text: %w", err)
	}
	return collapse(doc.Text()), nil
}

// collapse squeezes runs of spaces and tabs inside each line and
// limits vertical gaps to one blank line.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
