// Package survey holds the input data model: the feature collection
// produced by a field survey, the per-category style table, and the
// report metadata document.
package survey

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Coord is a lon/lat pair in degrees (GeoJSON axis order).
type Coord struct {
	Lon float64
	Lat float64
}

func (c *Coord) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("coordinate needs lon and lat, got %d values", len(raw))
	}
	c.Lon, c.Lat = raw[0], raw[1]
	return nil
}

func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

// GeometryType discriminates the supported GeoJSON geometries.
type GeometryType string

const (
	GeometryPoint      GeometryType = "Point"
	GeometryLineString GeometryType = "LineString"
	GeometryPolygon    GeometryType = "Polygon"
)

// Geometry is one of Point, LineString or Polygon. Exactly one of the
// coordinate fields is populated, matching Type.
type Geometry struct {
	Type  GeometryType
	Point Coord
	Line  []Coord
	Rings [][]Coord
}

func (g *Geometry) UnmarshalJSON(data []byte) error {
	var head struct {
		Type        GeometryType    `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	g.Type = head.Type
	switch head.Type {
	case GeometryPoint:
		return json.Unmarshal(head.Coordinates, &g.Point)
	case GeometryLineString:
		return json.Unmarshal(head.Coordinates, &g.Line)
	case GeometryPolygon:
		return json.Unmarshal(head.Coordinates, &g.Rings)
	default:
		return fmt.Errorf("unsupported geometry type %q", head.Type)
	}
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	out := struct {
		Type        GeometryType `json:"type"`
		Coordinates any          `json:"coordinates"`
	}{Type: g.Type}
	switch g.Type {
	case GeometryPoint:
		out.Coordinates = g.Point
	case GeometryLineString:
		out.Coordinates = g.Line
	case GeometryPolygon:
		out.Coordinates = g.Rings
	}
	return json.Marshal(out)
}

// Coords returns every vertex of the geometry in drawing order. For
// polygons the outer ring comes first.
func (g Geometry) Coords() []Coord {
	switch g.Type {
	case GeometryPoint:
		return []Coord{g.Point}
	case GeometryLineString:
		return g.Line
	case GeometryPolygon:
		var all []Coord
		for _, ring := range g.Rings {
			all = append(all, ring...)
		}
		return all
	}
	return nil
}

// Bounds is a lon/lat axis-aligned bounding box.
type Bounds struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

// EmptyBounds returns a box that any Extend call will snap to.
func EmptyBounds() Bounds {
	return Bounds{
		MinLon: math.Inf(1), MinLat: math.Inf(1),
		MaxLon: math.Inf(-1), MaxLat: math.Inf(-1),
	}
}

func (b Bounds) Empty() bool {
	return b.MinLon > b.MaxLon || b.MinLat > b.MaxLat
}

func (b Bounds) Extend(c Coord) Bounds {
	if c.Lon < b.MinLon {
		b.MinLon = c.Lon
	}
	if c.Lon > b.MaxLon {
		b.MaxLon = c.Lon
	}
	if c.Lat < b.MinLat {
		b.MinLat = c.Lat
	}
	if c.Lat > b.MaxLat {
		b.MaxLat = c.Lat
	}
	return b
}

func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	if b.Empty() {
		return o
	}
	b = b.Extend(Coord{Lon: o.MinLon, Lat: o.MinLat})
	return b.Extend(Coord{Lon: o.MaxLon, Lat: o.MaxLat})
}

func (b Bounds) Center() Coord {
	return Coord{Lon: (b.MinLon + b.MaxLon) / 2, Lat: (b.MinLat + b.MaxLat) / 2}
}

// Span returns the width and height of the box in degrees.
func (b Bounds) Span() (lon, lat float64) {
	return b.MaxLon - b.MinLon, b.MaxLat - b.MinLat
}

// Bounds computes the bounding box of the geometry's vertices.
func (g Geometry) Bounds() Bounds {
	b := EmptyBounds()
	for _, c := range g.Coords() {
		b = b.Extend(c)
	}
	return b
}

// ImageRef is a photo attached to an observation.
type ImageRef struct {
	Src     string `json:"src"`
	Caption string `json:"caption,omitempty"`
}

// Observation is a single finding recorded against a feature.
type Observation struct {
	Type           string     `json:"observationType"`
	Severity       Severity   `json:"severity"`
	Recommendation string     `json:"recommendation,omitempty"`
	Images         []ImageRef `json:"images,omitempty"`
}

// Properties carries the survey attributes of a feature. Name and
// Description keep their capitalised keys from the capture tooling.
type Properties struct {
	Name         string        `json:"Name"`
	Category     string        `json:"category"`
	Description  string        `json:"Description,omitempty"`
	Observations []Observation `json:"observations,omitempty"`
}

// Feature is one surveyed asset or finding with its geometry.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// MaxSeverity returns the highest observation severity, or
// SeverityUnknown when the feature has no rated observations.
func (f *Feature) MaxSeverity() Severity {
	max := SeverityUnknown
	for _, o := range f.Properties.Observations {
		if o.Severity > max {
			max = o.Severity
		}
	}
	return max
}

// Imagery points at optional raster layers captured alongside the
// survey. Paths are resolved relative to the collection file.
type Imagery struct {
	Orthophoto string `json:"orthophoto,omitempty"`
	Elevation  string `json:"elevation,omitempty"`
}

// Collection is a GeoJSON FeatureCollection plus the imagery foreign
// member used by the overview pages.
type Collection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Imagery  Imagery   `json:"imagery,omitempty"`
}

// Bounds returns the union of all feature bounds.
func (c *Collection) Bounds() Bounds {
	b := EmptyBounds()
	for i := range c.Features {
		b = b.Union(c.Features[i].Geometry.Bounds())
	}
	return b
}

// Categories returns the distinct category names in first-seen order.
func (c *Collection) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range c.Features {
		cat := c.Features[i].Properties.Category
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}

// LoadCollection reads a feature collection from a GeoJSON file.
func LoadCollection(path string) (*Collection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	var c Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", path, err)
	}
	if c.Type != "" && c.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse collection %s: unexpected type %q", path, c.Type)
	}
	return &c, nil
}
