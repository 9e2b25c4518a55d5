// Package borders turns GeoJSON country polygons into closed line loops on
// the globe.
package borders

import (
	"fmt"
	"strings"

	"github.com/biter777/countries"
	"github.com/golang/geo/r3"
	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

// Loop is one closed polygon ring. The last point repeats the first.
type Loop struct {
	Country string
	Points  []r3.Vector
}

// Parse decodes a GeoJSON FeatureCollection.
func Parse(data []byte) (*geojson.FeatureCollection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse borders: %w", err)
	}
	return fc, nil
}

// ProjectFeatureCollection emits loops for every Polygon and MultiPolygon
// feature in fc at radius+altitude. Other geometry types are ignored.
func ProjectFeatureCollection(fc *geojson.FeatureCollection, radius, altitude float64) []Loop {
	var loops []Loop
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		name := CountryName(f)
		var projected []Loop
		if f.Geometry.IsPolygon() {
			projected = ProjectPolygon(f.Geometry.Polygon, radius, altitude)
		} else if f.Geometry.IsMultiPolygon() {
			projected = ProjectMultiPolygon(f.Geometry.MultiPolygon, radius, altitude)
		}
		for i := range projected {
			projected[i].Country = name
		}
		loops = append(loops, projected...)
	}
	return loops
}

// ProjectPolygon maps each [lng, lat] ring of a polygon onto the sphere.
// Rings with fewer than three points are dropped.
func ProjectPolygon(rings [][][]float64, radius, altitude float64) []Loop {
	loops := make([]Loop, 0, len(rings))
	for _, ring := range rings {
		if pts, ok := projectRing(ring, radius+altitude); ok {
			loops = append(loops, Loop{Points: pts})
		}
	}
	return loops
}

func ProjectMultiPolygon(polygons [][][][]float64, radius, altitude float64) []Loop {
	var loops []Loop
	for _, poly := range polygons {
		loops = append(loops, ProjectPolygon(poly, radius, altitude)...)
	}
	return loops
}

func projectRing(ring [][]float64, r float64) ([]r3.Vector, bool) {
	pts := make([]r3.Vector, 0, len(ring)+1)
	for _, c := range ring {
		if len(c) < 2 {
			continue
		}
		pts = append(pts, geo.ToSurfacePosition(c[1], c[0], r))
	}
	if len(pts) < 3 {
		return nil, false
	}
	if pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return pts, true
}

var codeKeys = []string{"iso_a2", "ISO_A2", "iso_a3", "ISO_A3"}

// CountryName resolves a display name for a border feature, preferring the
// ISO code properties and falling back to the feature's own name.
func CountryName(f *geojson.Feature) string {
	for _, key := range codeKeys {
		code := f.PropertyMustString(key, "")
		if code == "" || code == "-99" {
			continue
		}
		if name := countries.ByName(code).String(); name != "Unknown" {
			return shortName(name)
		}
	}
	for _, key := range []string{"name", "NAME", "admin", "ADMIN"} {
		if name := f.PropertyMustString(key, ""); name != "" {
			return name
		}
	}
	return ""
}

func shortName(name string) string {
	if idx := strings.Index(name, " ("); idx != -1 {
		name = name[:idx]
	}
	switch {
	case strings.Contains(name, "Hong Kong"):
		return "Hong Kong"
	case strings.Contains(name, "Macao"):
		return "Macao"
	case strings.Contains(name, "Taiwan"):
		return "Taiwan"
	}
	return name
}
