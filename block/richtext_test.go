package block

import "testing"

func TestParseRichParagraphs(t *testing.T) {
	rt := parseRich("First paragraph.\n\nSecond paragraph.")
	if len(rt) != 2 {
		t.Fatalf("paragraphs: got=%d want=2", len(rt))
	}
	if rt[0].Bullet || rt[1].Bullet {
		t.Fatal("plain paragraphs must not be bullets")
	}
	if got := rt.Plain(); got != "First paragraph.\nSecond paragraph." {
		t.Fatalf("plain: got=%q", got)
	}
}

func TestParseRichStyles(t *testing.T) {
	rt := parseRich("plain **bold** and *italic*")
	if len(rt) != 1 {
		t.Fatalf("paragraphs: got=%d want=1", len(rt))
	}
	spans := rt[0].Spans
	if len(spans) != 4 {
		t.Fatalf("spans: got=%d want=4 (%+v)", len(spans), spans)
	}
	if spans[0].Text != "plain " || spans[0].Bold || spans[0].Italic {
		t.Fatalf("span 0: got=%+v", spans[0])
	}
	if spans[1].Text != "bold" || !spans[1].Bold || spans[1].Italic {
		t.Fatalf("span 1: got=%+v", spans[1])
	}
	if spans[3].Text != "italic" || spans[3].Bold || !spans[3].Italic {
		t.Fatalf("span 3: got=%+v", spans[3])
	}
}

func TestParseRichNestedEmphasis(t *testing.T) {
	rt := parseRich("***both***")
	if len(rt) != 1 || len(rt[0].Spans) != 1 {
		t.Fatalf("got=%+v", rt)
	}
	s := rt[0].Spans[0]
	if s.Text != "both" || !s.Bold || !s.Italic {
		t.Fatalf("nested emphasis: got=%+v", s)
	}
}

func TestParseRichBullets(t *testing.T) {
	rt := parseRich("- first point\n- second point")
	if len(rt) != 2 {
		t.Fatalf("bullets: got=%d want=2", len(rt))
	}
	for i, p := range rt {
		if !p.Bullet {
			t.Fatalf("paragraph %d should be a bullet", i)
		}
	}
	if rt[0].Spans[0].Text != "first point" {
		t.Fatalf("bullet text: got=%q", rt[0].Spans[0].Text)
	}
}

func TestParseRichHeading(t *testing.T) {
	rt := parseRich("# Site overview")
	if len(rt) != 1 || len(rt[0].Spans) != 1 {
		t.Fatalf("got=%+v", rt)
	}
	if !rt[0].Spans[0].Bold {
		t.Fatal("heading text should render bold")
	}
}

func TestParseRichSoftBreak(t *testing.T) {
	rt := parseRich("line one\nline two")
	if len(rt) != 1 {
		t.Fatalf("soft break must stay one paragraph, got=%d", len(rt))
	}
	if got := rt[0].Spans[0].Text; got != "line one line two" {
		t.Fatalf("soft break: got=%q", got)
	}
}

func TestParseRichEmpty(t *testing.T) {
	if rt := parseRich("   "); rt != nil {
		t.Fatalf("blank input: got=%+v", rt)
	}
}
