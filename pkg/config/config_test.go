package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sudorandom/globe-lines/pkg/curve"
)

func TestDefaults(t *testing.T) {
	s := Default()
	if s.EarthAttr.Radius != 100 {
		t.Errorf("radius = %v; want 100", s.EarthAttr.Radius)
	}
	fl := s.FlyLineAttr
	if fl.FlyingLineLength != 0.2 || fl.FlowSpeed != 4 || fl.GrowthDuration != 0.5 || fl.ParticleSize != 0.5 {
		t.Errorf("flyLineAttr defaults = %+v", fl)
	}
	if fl.CurveType != curve.GreatCircleFamily {
		t.Errorf("curveType = %q; want greatCircle", fl.CurveType)
	}
	if s.CountriesAttr.PolygonColor != "#7df9ff" || s.CountriesAttr.PolygonOpacity != 0.1 {
		t.Errorf("countriesAttr defaults = %+v", s.CountriesAttr)
	}
	if s.WaveAttr.WaveCount != 6 {
		t.Errorf("waveCount = %d; want 6", s.WaveAttr.WaveCount)
	}
	if !s.CameraAttr.AutoRotate {
		t.Error("autoRotate default is off")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"earthAttr": { "radius": 50 },
		"flyLineAttr": {
			"curveType": "bezier",
			"flowSpeed": 8,
			"flyLineData": [
				{ "startLat": 40.7, "startLng": -74.0, "endLat": 51.5, "endLng": -0.1, "color": "#ff0000", "arcAlt": 0.3 },
				{ "startLat": 1, "startLng": 2, "endLat": 3, "endLng": 4 }
			]
		},
		"pointCloudAttr": {
			"pointsData": [
				{ "lat": 10, "lng": 20, "color": "#58fff3", "size": 1.5, "name": "A", "region": "R" }
			]
		},
		"markerAttr": { "markers": [ { "name": "Paris", "lat": 48.85, "lng": 2.35 } ] },
		"cameraAttr": { "distance": 200 }
	}`
	path := filepath.Join(dir, "globe.json")
	if err := os.WriteFile(path, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.EarthAttr.Radius != 50 {
		t.Errorf("radius = %v; want 50", s.EarthAttr.Radius)
	}
	if s.FlyLineAttr.CurveType != curve.BezierFamily || s.FlyLineAttr.FlowSpeed != 8 {
		t.Errorf("flyLineAttr = %+v", s.FlyLineAttr)
	}
	if s.FlyLineAttr.GrowthDuration != 0.5 {
		t.Errorf("unset growthDuration = %v; want default 0.5", s.FlyLineAttr.GrowthDuration)
	}
	arcs := s.FlyLineAttr.FlyLineData
	if len(arcs) != 2 {
		t.Fatalf("got %d arcs; want 2", len(arcs))
	}
	if arcs[0].Start().Lat != 40.7 || arcs[0].End().Lng != -0.1 || arcs[0].Color != "#ff0000" {
		t.Errorf("arc[0] = %+v", arcs[0])
	}
	if arcs[0].Altitude() != 0.3 || arcs[1].Altitude() != DefaultArcAlt {
		t.Errorf("arc altitudes = %v, %v", arcs[0].Altitude(), arcs[1].Altitude())
	}
	if arcs[1].Peak() != DefaultHeightFactor {
		t.Errorf("arc peak = %v; want %v", arcs[1].Peak(), DefaultHeightFactor)
	}
	if pts := s.PointCloudAttr.PointsData; len(pts) != 1 || pts[0].Size != 1.5 || pts[0].Region != "R" {
		t.Errorf("pointsData = %+v", pts)
	}
	if m := s.MarkerAttr.Markers; len(m) != 1 || m[0].Name != "Paris" {
		t.Errorf("markers = %+v", m)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Setting)
		want   error
	}{
		{"zero radius", func(s *Setting) { s.EarthAttr.Radius = 0 }, ErrInvalidRadius},
		{"nan radius", func(s *Setting) { s.EarthAttr.Radius = math.NaN() }, ErrInvalidRadius},
		{"coarse earth", func(s *Setting) { s.EarthAttr.Segments = 2 }, ErrInvalidEarth},
		{"negative particle", func(s *Setting) { s.FlyLineAttr.ParticleSize = -0.5 }, ErrInvalidFlyLine},
		{"zero particle", func(s *Setting) { s.FlyLineAttr.ParticleSize = 0 }, ErrInvalidFlyLine},
		{"zero line length", func(s *Setting) { s.FlyLineAttr.FlyingLineLength = 0 }, ErrInvalidFlyLine},
		{"negative speed", func(s *Setting) { s.FlyLineAttr.FlowSpeed = -1 }, ErrInvalidFlyLine},
		{"zero growth", func(s *Setting) { s.FlyLineAttr.GrowthDuration = 0 }, ErrInvalidFlyLine},
		{"no segments", func(s *Setting) { s.FlyLineAttr.Segments = 0 }, ErrInvalidFlyLine},
		{"unknown curve", func(s *Setting) { s.FlyLineAttr.CurveType = "spline" }, ErrInvalidCurveType},
		{"negative point size", func(s *Setting) { s.PointCloudAttr.PointSize = -1 }, ErrInvalidPoint},
		{"opacity above one", func(s *Setting) { s.CountriesAttr.PolygonOpacity = 2 }, ErrInvalidCountries},
		{"zero wave duration", func(s *Setting) { s.WaveAttr.WaveDuration = 0 }, ErrInvalidWave},
		{"camera inside globe", func(s *Setting) { s.CameraAttr.Distance = 50 }, ErrInvalidCamera},
		{"flat fov", func(s *Setting) { s.CameraAttr.Fov = 180 }, ErrInvalidCamera},
	}

	for _, tt := range tests {
		s := Default()
		tt.mutate(s)
		if err := s.Validate(); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v; want %v", tt.name, err, tt.want)
		}
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}
