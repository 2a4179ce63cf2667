package render

import (
	"math"
	"strings"
	"unicode"

	"github.com/tdewolff/canvas"

	"github.com/fieldfolio/fieldfolio/block"
)

// textFrag is a run of text set in a single face. A wrapped line is a
// sequence of fragments drawn left to right on a shared baseline.
type textFrag struct {
	text  string
	face  *canvas.FontFace
	width float64
}

type textLine struct {
	frags []textFrag
	width float64
}

func (l textLine) text() string {
	var b strings.Builder
	for _, fr := range l.frags {
		b.WriteString(fr.text)
	}
	return b.String()
}

// wrapSpans breaks styled spans into lines no wider than limit mm.
// Breaks happen at whitespace runs; a single token wider than the
// limit is split mid-token so it can never push past the margin.
func wrapSpans(spans []block.Span, faceFor func(block.Span) *canvas.FontFace, limit float64) []textLine {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	var lines []textLine
	var cur textLine

	emit := func() {
		if len(cur.frags) == 0 {
			return
		}
		lines = append(lines, cur)
		cur = textLine{}
	}
	push := func(txt string, face *canvas.FontFace, w float64) {
		if n := len(cur.frags); n > 0 && cur.frags[n-1].face == face {
			cur.frags[n-1].text += txt
			cur.frags[n-1].width += w
		} else {
			cur.frags = append(cur.frags, textFrag{text: txt, face: face, width: w})
		}
		cur.width += w
	}

	for _, sp := range spans {
		face := faceFor(sp)
		for _, token := range tokenizeContent(sp.Text) {
			if token == "\n" {
				emit()
				continue
			}
			w := face.TextWidth(token)
			if cur.width > 0 && cur.width+w > limit {
				emit()
				if strings.TrimSpace(token) == "" {
					continue
				}
			}
			if w <= limit {
				push(token, face, w)
				continue
			}
			for _, chunk := range splitTokenByWidth(token, limit, face) {
				cw := face.TextWidth(chunk)
				if cur.width > 0 && cur.width+cw > limit {
					emit()
				}
				push(chunk, face, cw)
			}
		}
	}
	emit()
	return lines
}

// tokenizeContent splits text into alternating word and whitespace
// tokens. Newlines come back as their own "\n" token so callers can
// force a break.
func tokenizeContent(s string) []string {
	var tokens []string
	var b strings.Builder
	var inSpace bool
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			inSpace = false
			continue
		}
		space := unicode.IsSpace(r)
		if space != inSpace {
			flush()
			inSpace = space
		}
		b.WriteRune(r)
	}
	flush()
	return tokens
}

// splitTokenByWidth chops an oversized token into chunks that each fit
// within limit, measuring rune by rune.
func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	var chunks []string
	var b strings.Builder
	for _, r := range token {
		b.WriteRune(r)
		if face.TextWidth(b.String()) > limit && b.Len() > len(string(r)) {
			s := b.String()
			cut := len(s) - len(string(r))
			chunks = append(chunks, s[:cut])
			b.Reset()
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// truncateToWidth shortens s with an ellipsis so it fits within limit.
func truncateToWidth(s string, limit float64, face *canvas.FontFace) string {
	if face.TextWidth(s) <= limit {
		return s
	}
	const ellipsis = "…"
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := strings.TrimRight(string(runes), " ") + ellipsis
		if face.TextWidth(candidate) <= limit {
			return candidate
		}
	}
	return ellipsis
}
