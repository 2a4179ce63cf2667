// Package geo derives the printable measurements shown in a feature's
// fact table from its geometry.
package geo

import (
	"fmt"
	"math"

	"github.com/fieldfolio/fieldfolio/survey"
)

// Mean Earth radius in metres.
const earthRadius = 6371008.8

// Fact is one label/value row in a feature's detail table.
type Fact struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Facts computes the measurement rows for a feature. Points report
// their position, lines their length, polygons area and perimeter.
func Facts(f *survey.Feature) []Fact {
	g := f.Geometry
	switch g.Type {
	case survey.GeometryPoint:
		return []Fact{
			{Label: "Latitude", Value: formatDegrees(g.Point.Lat)},
			{Label: "Longitude", Value: formatDegrees(g.Point.Lon)},
		}
	case survey.GeometryLineString:
		return []Fact{
			{Label: "Length", Value: formatLength(pathLength(g.Line))},
			{Label: "Vertices", Value: fmt.Sprintf("%d", len(g.Line))},
		}
	case survey.GeometryPolygon:
		if len(g.Rings) == 0 {
			return nil
		}
		outer := g.Rings[0]
		area := ringArea(outer)
		for _, hole := range g.Rings[1:] {
			area -= ringArea(hole)
		}
		if area < 0 {
			area = 0
		}
		return []Fact{
			{Label: "Area", Value: formatArea(area)},
			{Label: "Perimeter", Value: formatLength(ringPerimeter(outer))},
			{Label: "Vertices", Value: fmt.Sprintf("%d", ringVertexCount(outer))},
		}
	}
	return nil
}

// Distance returns the great-circle distance between two coordinates
// in metres, by the haversine formula.
func Distance(a, b survey.Coord) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

func pathLength(coords []survey.Coord) float64 {
	var total float64
	for i := 1; i < len(coords); i++ {
		total += Distance(coords[i-1], coords[i])
	}
	return total
}

// ringPerimeter closes the ring if the input does not repeat the
// first vertex.
func ringPerimeter(ring []survey.Coord) float64 {
	if len(ring) < 2 {
		return 0
	}
	total := pathLength(ring)
	if ring[0] != ring[len(ring)-1] {
		total += Distance(ring[len(ring)-1], ring[0])
	}
	return total
}

// ringVertexCount ignores a closing vertex that repeats the first.
func ringVertexCount(ring []survey.Coord) int {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	return n
}

// ringArea computes the spherical excess area of a ring in square
// metres, sign-free.
func ringArea(ring []survey.Coord) float64 {
	n := ringVertexCount(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		sum += (radians(b.Lon) - radians(a.Lon)) *
			(2 + math.Sin(radians(a.Lat)) + math.Sin(radians(b.Lat)))
	}
	return math.Abs(sum * earthRadius * earthRadius / 2)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func formatDegrees(deg float64) string {
	return fmt.Sprintf("%.5f°", deg)
}

func formatLength(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.1f m", m)
	}
	return fmt.Sprintf("%.2f km", m/1000)
}

func formatArea(m2 float64) string {
	switch {
	case m2 < 10000:
		return fmt.Sprintf("%.1f m²", m2)
	case m2 < 1e6:
		return fmt.Sprintf("%.2f ha", m2/10000)
	default:
		return fmt.Sprintf("%.2f km²", m2/1e6)
	}
}
