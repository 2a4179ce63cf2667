package block

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Span is a run of text with uniform styling.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// Paragraph is one wrapped unit of rich text. Bullet paragraphs are
// rendered with a list marker and a hanging indent.
type Paragraph struct {
	Bullet bool
	Spans  []Span
}

// RichText is the styled form of a markdown field, reduced to the
// subset the renderer draws: paragraphs, bullets, bold and italic.
type RichText []Paragraph

// Plain flattens the rich text back to unstyled lines.
func (r RichText) Plain() string {
	var sb strings.Builder
	for i, p := range r {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, s := range p.Spans {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

var markdown = goldmark.New()

// parseRich converts a markdown string to RichText. Unsupported
// constructs keep their text content and lose their styling.
func parseRich(src string) RichText {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	raw := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(raw))
	var out RichText
	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		out = appendBlock(out, child, raw, false)
	}
	return out
}

func appendBlock(out RichText, n ast.Node, src []byte, bullet bool) RichText {
	switch t := n.(type) {
	case *ast.List:
		for item := t.FirstChild(); item != nil; item = item.NextSibling() {
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				out = appendBlock(out, child, src, true)
			}
		}
		return out
	case *ast.Heading:
		var spans []Span
		collectSpans(t, src, true, false, &spans)
		return appendParagraph(out, spans, bullet)
	default:
		var spans []Span
		collectSpans(n, src, false, false, &spans)
		return appendParagraph(out, spans, bullet)
	}
}

func appendParagraph(out RichText, spans []Span, bullet bool) RichText {
	if len(spans) == 0 {
		return out
	}
	return append(out, Paragraph{Bullet: bullet, Spans: spans})
}

func collectSpans(n ast.Node, src []byte, bold, italic bool, out *[]Span) {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch t := child.(type) {
		case *ast.Text:
			txt := string(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				txt += " "
			}
			appendSpan(out, txt, bold, italic)
		case *ast.String:
			appendSpan(out, string(t.Value), bold, italic)
		case *ast.Emphasis:
			b, i := bold, italic
			if t.Level >= 2 {
				b = true
			} else {
				i = true
			}
			collectSpans(t, src, b, i, out)
		case *ast.AutoLink:
			appendSpan(out, string(t.URL(src)), bold, italic)
		default:
			collectSpans(child, src, bold, italic, out)
		}
	}
}

// appendSpan merges runs that share a style so wrapping sees whole
// words rather than fragments.
func appendSpan(out *[]Span, txt string, bold, italic bool) {
	if txt == "" {
		return
	}
	if n := len(*out); n > 0 {
		last := &(*out)[n-1]
		if last.Bold == bold && last.Italic == italic {
			last.Text += txt
			return
		}
	}
	*out = append(*out, Span{Text: txt, Bold: bold, Italic: italic})
}
