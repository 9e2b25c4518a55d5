package globe

import (
	"log"

	geojson "github.com/paulmach/go.geojson"
	"github.com/sudorandom/globe-lines/pkg/borders"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

// CountryGroup draws every border ring as a closed line loop.
type CountryGroup struct {
	scene.Group

	Loops  []borders.Loop
	Entity *scene.Entity[struct{ Opacity float32 }]
}

func newCountryGroup(s *config.Setting, fc *geojson.FeatureCollection, reg *scene.Registry) *CountryGroup {
	attr := s.CountriesAttr
	col, err := scene.ParseColor(attr.PolygonColor)
	if err != nil {
		log.Printf("[BORDERS] %v, using white", err)
		col = defaultLineColor
	}
	col.A = uint8(attr.PolygonOpacity*255 + 0.5)

	loops := borders.ProjectFeatureCollection(fc, s.EarthAttr.Radius, attr.Altitude)
	buffers := make([]*scene.VertexBuffer, 0, len(loops))
	for _, l := range loops {
		b := &scene.VertexBuffer{}
		for i, p := range l.Points {
			b.AppendVertex(p, float32(i)/float32(len(l.Points)-1), 0)
		}
		scene.FillColor(b, col)
		buffers = append(buffers, b)
	}

	g := &CountryGroup{Group: scene.Group{Name: "countries"}, Loops: loops}
	g.Entity = scene.NewEntity("countries", scene.Merge(buffers...), struct{ Opacity float32 }{float32(attr.PolygonOpacity)})
	reg.Track(g.Entity)
	log.Printf("[BORDERS] Projected %d rings from %d features", len(loops), len(fc.Features))
	return g
}
