package report

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fieldfolio/fieldfolio/survey"
)

// Filename derives the output file name from the report title and
// date, e.g. "creek-crossings-2026-03-14.pdf".
func Filename(meta *survey.Metadata) string {
	s := slug(meta.Title)
	if s == "" {
		s = "report"
	}
	return fmt.Sprintf("%s-%s.pdf", s, meta.Date().Format("2006-01-02"))
}

// slug lowercases the title and folds every run of non-alphanumeric
// characters into a single hyphen.
func slug(title string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if b.Len() > 0 && !hyphen {
			b.WriteByte('-')
			hyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
