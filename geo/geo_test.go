package geo

import (
	"testing"

	"github.com/fieldfolio/fieldfolio/survey"
)

func approx(t *testing.T, got, want, tol float64) {
	t.Helper()
	d := got - want
	if d < 0 {
		d = -d
	}
	if d > tol {
		t.Fatalf("got=%g want=%g (tol %g)", got, want, tol)
	}
}

func TestDistance(t *testing.T) {
	// 0.1 degrees of longitude on the equator.
	a := survey.Coord{Lon: 0, Lat: 0}
	b := survey.Coord{Lon: 0.1, Lat: 0}
	approx(t, Distance(a, b), 11119.5, 0.5)

	if got := Distance(a, a); got != 0 {
		t.Fatalf("zero distance: got=%g", got)
	}
	if d1, d2 := Distance(a, b), Distance(b, a); d1 != d2 {
		t.Fatalf("distance not symmetric: %g vs %g", d1, d2)
	}
}

func TestFactsPoint(t *testing.T) {
	f := survey.Feature{Geometry: survey.Geometry{
		Type:  survey.GeometryPoint,
		Point: survey.Coord{Lon: 150.644, Lat: -34.397},
	}}
	facts := Facts(&f)
	if len(facts) != 2 {
		t.Fatalf("facts: got=%d want=2", len(facts))
	}
	if facts[0].Label != "Latitude" || facts[0].Value != "-34.39700°" {
		t.Fatalf("latitude: got=%+v", facts[0])
	}
	if facts[1].Label != "Longitude" || facts[1].Value != "150.64400°" {
		t.Fatalf("longitude: got=%+v", facts[1])
	}
}

func TestFactsLine(t *testing.T) {
	f := survey.Feature{Geometry: survey.Geometry{
		Type: survey.GeometryLineString,
		Line: []survey.Coord{{Lon: 0, Lat: 0}, {Lon: 0.1, Lat: 0}},
	}}
	facts := Facts(&f)
	if len(facts) != 2 {
		t.Fatalf("facts: got=%d want=2", len(facts))
	}
	if facts[0].Label != "Length" || facts[0].Value != "11.12 km" {
		t.Fatalf("length: got=%+v", facts[0])
	}
	if facts[1].Label != "Vertices" || facts[1].Value != "2" {
		t.Fatalf("vertices: got=%+v", facts[1])
	}
}

// squareRing builds a closed ring of the given side in degrees with a
// corner on the equator at the prime meridian.
func squareRing(side float64) [][]survey.Coord {
	return [][]survey.Coord{{
		{Lon: 0, Lat: 0},
		{Lon: side, Lat: 0},
		{Lon: side, Lat: side},
		{Lon: 0, Lat: side},
		{Lon: 0, Lat: 0},
	}}
}

func TestFactsPolygon(t *testing.T) {
	f := survey.Feature{Geometry: survey.Geometry{
		Type:  survey.GeometryPolygon,
		Rings: squareRing(0.0005),
	}}
	facts := Facts(&f)
	if len(facts) != 3 {
		t.Fatalf("facts: got=%d want=3", len(facts))
	}
	if facts[0].Label != "Area" || facts[0].Value != "3091.1 m²" {
		t.Fatalf("area: got=%+v", facts[0])
	}
	if facts[1].Label != "Perimeter" || facts[1].Value != "222.4 m" {
		t.Fatalf("perimeter: got=%+v", facts[1])
	}
	// The closing vertex does not count.
	if facts[2].Label != "Vertices" || facts[2].Value != "4" {
		t.Fatalf("vertices: got=%+v", facts[2])
	}
}

func TestFactsPolygonUnits(t *testing.T) {
	ha := survey.Feature{Geometry: survey.Geometry{
		Type:  survey.GeometryPolygon,
		Rings: squareRing(0.001),
	}}
	if got := Facts(&ha)[0].Value; got != "1.24 ha" {
		t.Fatalf("hectares: got=%q", got)
	}
	km := survey.Feature{Geometry: survey.Geometry{
		Type:  survey.GeometryPolygon,
		Rings: squareRing(0.1),
	}}
	if got := Facts(&km)[0].Value; got != "123.64 km²" {
		t.Fatalf("square km: got=%q", got)
	}
}

func TestFactsEmptyPolygon(t *testing.T) {
	f := survey.Feature{Geometry: survey.Geometry{Type: survey.GeometryPolygon}}
	if facts := Facts(&f); facts != nil {
		t.Fatalf("empty polygon: got=%+v", facts)
	}
}
