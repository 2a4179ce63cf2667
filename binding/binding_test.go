package binding

import (
	"encoding/json"
	"testing"
)

func decodeData(t *testing.T, src string) any {
	t.Helper()
	var data any
	if err := json.Unmarshal([]byte(src), &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	return data
}

func TestInterpolate(t *testing.T) {
	data := decodeData(t, `{
		"client": {"name": "Northside Water", "id": 42},
		"sites": [{"code": "NW-01"}, {"code": "NW-02"}]
	}`)

	cases := []struct {
		in   string
		want string
	}{
		{"Report for ${client.name}", "Report for Northside Water"},
		{"Job ${client.id}", "Job 42"},
		{"Site ${sites[1].code}", "Site NW-02"},
		{"${client.name} / ${sites[0].code}", "Northside Water / NW-01"},
		{"no placeholders", "no placeholders"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Interpolate(tc.in, data); got != tc.want {
			t.Fatalf("Interpolate(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestInterpolateMissingPath(t *testing.T) {
	data := decodeData(t, `{"client": {"name": "Northside Water"}}`)
	// Without a fallback the placeholder stays put.
	if got := Interpolate("${client.phone}", data); got != "${client.phone}" {
		t.Fatalf("missing path: got=%q", got)
	}
	if got := Interpolate("${sites[3].code}", data); got != "${sites[3].code}" {
		t.Fatalf("missing index: got=%q", got)
	}
}

func TestInterpolateFallback(t *testing.T) {
	data := decodeData(t, `{"client": {"name": "Northside Water"}}`)
	if got := Interpolate("${client.phone|not recorded}", data); got != "not recorded" {
		t.Fatalf("fallback: got=%q", got)
	}
	// A fallback is ignored when the path resolves.
	if got := Interpolate("${client.name|unknown}", data); got != "Northside Water" {
		t.Fatalf("resolved with fallback: got=%q", got)
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${anything}", nil); got != "${anything}" {
		t.Fatalf("nil data: got=%q", got)
	}
}
