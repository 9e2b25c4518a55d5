package sources

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

// Dataset is a standalone arc/point file, kept apart from the settings so
// the same look can be reused for different data.
type Dataset struct {
	Arcs   []config.Arc   `json:"arcs"`
	Points []config.Point `json:"points"`
}

// LoadDataset reads a Dataset from a local path or URL.
func LoadDataset(source string, useCache bool) (*Dataset, error) {
	data, err := readAll(source, useCache, "[DATASET]")
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", source, err)
	}
	log.Printf("[DATASET] Loaded %d arcs and %d points from %s", len(ds.Arcs), len(ds.Points), source)
	return &ds, nil
}

// Apply replaces the arcs and points in s with the dataset's. When the
// dataset has arcs but no points, the arc endpoints become the points.
func (d *Dataset) Apply(s *config.Setting) {
	if len(d.Arcs) > 0 {
		s.FlyLineAttr.FlyLineData = d.Arcs
	}
	switch {
	case len(d.Points) > 0:
		s.PointCloudAttr.PointsData = d.Points
	case len(d.Arcs) > 0:
		s.PointCloudAttr.PointsData = PointsFromArcs(d.Arcs)
	}
}

// PointsFromArcs returns one point per distinct arc endpoint, in first-seen
// order, carrying the color of the first arc that touches it.
func PointsFromArcs(arcs []config.Arc) []config.Point {
	seen := make(map[string]struct{}, len(arcs)*2)
	var points []config.Point
	add := func(lat, lng float64, color string) {
		key := geo.PointKey(lat, lng)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		points = append(points, config.Point{Lat: lat, Lng: lng, Color: color, Size: 1})
	}
	for _, a := range arcs {
		add(a.StartLat, a.StartLng, a.Color)
		add(a.EndLat, a.EndLng, a.Color)
	}
	return points
}
