package sources

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sudorandom/globe-lines/pkg/config"
)

const testBorders = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"iso_a2":"FR"},"geometry":{"type":"Polygon","coordinates":[[[2,46],[3,46],[3,47],[2,46]]]}}
]}`

const testDataset = `{
  "arcs": [
    {"startLat": 48.85, "startLng": 2.35, "endLat": 40.71, "endLng": -74.0, "color": "#ff0000"},
    {"startLat": 48.85, "startLng": 2.35, "endLat": 35.68, "endLng": 139.69}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadCountriesLocal(t *testing.T) {
	fc, err := LoadCountries(writeFile(t, "world.geojson", testBorders), false)
	if err != nil {
		t.Fatalf("LoadCountries: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("got %d features; want 1", len(fc.Features))
	}
}

func TestLoadCountriesRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testBorders))
	}))
	defer srv.Close()

	fc, err := LoadCountries(srv.URL+"/world.geojson", false)
	if err != nil {
		t.Fatalf("LoadCountries: %v", err)
	}
	if len(fc.Features) != 1 {
		t.Errorf("got %d features; want 1", len(fc.Features))
	}
}

func TestLoadCountriesErrors(t *testing.T) {
	if _, err := LoadCountries(filepath.Join(t.TempDir(), "missing.geojson"), false); err == nil {
		t.Error("missing file accepted")
	}
	if _, err := LoadCountries(writeFile(t, "bad.geojson", "not json"), false); err == nil {
		t.Error("bad GeoJSON accepted")
	}
}

func TestLoadDatasetApply(t *testing.T) {
	ds, err := LoadDataset(writeFile(t, "arcs.json", testDataset), false)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(ds.Arcs) != 2 {
		t.Fatalf("got %d arcs; want 2", len(ds.Arcs))
	}

	s := config.Default()
	ds.Apply(s)
	if len(s.FlyLineAttr.FlyLineData) != 2 {
		t.Errorf("fly lines = %d; want 2", len(s.FlyLineAttr.FlyLineData))
	}
	// Paris is shared by both arcs.
	pts := s.PointCloudAttr.PointsData
	if len(pts) != 3 {
		t.Fatalf("points = %d; want 3", len(pts))
	}
	if pts[0].Lat != 48.85 || pts[0].Color != "#ff0000" {
		t.Errorf("first point = %+v; want Paris in red", pts[0])
	}
	if pts[2].Lng != 139.69 {
		t.Errorf("third point = %+v; want Tokyo", pts[2])
	}
}

func TestLoadDatasetBadJSON(t *testing.T) {
	if _, err := LoadDataset(writeFile(t, "bad.json", "{"), false); err == nil {
		t.Error("bad JSON accepted")
	}
}

func TestApplyKeepsExplicitPoints(t *testing.T) {
	s := config.Default()
	ds := &Dataset{
		Arcs:   []config.Arc{{StartLat: 1, StartLng: 2, EndLat: 3, EndLng: 4}},
		Points: []config.Point{{Lat: 9, Lng: 9}},
	}
	ds.Apply(s)
	if len(s.PointCloudAttr.PointsData) != 1 || s.PointCloudAttr.PointsData[0].Lat != 9 {
		t.Errorf("points = %+v; want the explicit point", s.PointCloudAttr.PointsData)
	}
}
