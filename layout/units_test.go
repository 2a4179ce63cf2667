package layout

import (
	"math"
	"testing"
)

func TestPtMmRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, pt := range samples {
		mm := pt * PtToMm
		back := mm * MmToPt
		if diff := math.Abs(back - pt); diff > 1e-9 {
			t.Fatalf("pt round trip drift: in=%gpt mm=%g back=%g diff=%g", pt, mm, back, diff)
		}
	}
	for _, mm := range samples {
		pt := mm * MmToPt
		back := pt * PtToMm
		if diff := math.Abs(back - mm); diff > 1e-9 {
			t.Fatalf("mm round trip drift: in=%gmm pt=%g back=%g diff=%g", mm, pt, back, diff)
		}
	}
}

func TestLengthToConversions(t *testing.T) {
	in := Length{Value: 1, Unit: UnitIN}
	if got := in.ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("1in to mm: got=%g want=25.4", got)
	}
	cm := Length{Value: 2.54, Unit: UnitCM}
	if got := cm.ToMM(); math.Abs(got-25.4) > 1e-9 {
		t.Fatalf("2.54cm to mm: got=%g want=25.4", got)
	}
	pt := Length{Value: 12, Unit: UnitPT}
	if got := pt.ToMM(); math.Abs(got-12*PtToMm) > 1e-9 {
		t.Fatalf("12pt to mm: got=%g want=%g", got, 12*PtToMm)
	}
	mm := Length{Value: 10, Unit: UnitMM}
	if got := mm.ToPT(); math.Abs(got-10*MmToPt) > 1e-9 {
		t.Fatalf("10mm to pt: got=%g want=%g", got, 10*MmToPt)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		wantMM float64
	}{
		{"12mm", 12},
		{"1.5cm", 15},
		{"1in", 25.4},
		{"72pt", 72 * PtToMm},
		{"12", 12},
		{"  18 mm ", 18},
	}
	for _, tc := range cases {
		l, err := ParseLength(tc.in)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", tc.in, err)
		}
		if got := l.ToMM(); math.Abs(got-tc.wantMM) > 1e-9 {
			t.Fatalf("ParseLength(%q): got=%gmm want=%gmm", tc.in, got, tc.wantMM)
		}
	}
	for _, bad := range []string{"", "abc", "12zz", "-4mm"} {
		if _, err := ParseLength(bad); err == nil {
			t.Fatalf("ParseLength(%q): expected error", bad)
		}
	}
}

func TestMaxContentHeight(t *testing.T) {
	p := NewDetailPage("Drainage", false, nil)
	want := (DetailHeightMM - 2.5*DefaultPaddingMM) * PxPerMM
	if got := p.MaxContentHeight(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("budget: got=%g want=%g", got, want)
	}
	p.PaddingMM = 20
	want = (DetailHeightMM - 50) * PxPerMM
	if got := p.MaxContentHeight(); math.Abs(got-want) > 1e-9 {
		t.Fatalf("budget with padding: got=%g want=%g", got, want)
	}
}
