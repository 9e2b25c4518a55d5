package globe

import (
	"fmt"

	"github.com/sudorandom/globe-lines/pkg/camera"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/marker"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

// MarkerGroup holds the labelled markers and one connector entity each.
type MarkerGroup struct {
	scene.Group

	Projector  *marker.Projector
	Connectors []*scene.Entity[struct{ Visible bool }]
}

func newMarkerGroup(s *config.Setting, reg *scene.Registry) (*MarkerGroup, error) {
	p, err := marker.NewProjector(s.EarthAttr.Radius, s.MarkerAttr.LabelOffset)
	if err != nil {
		return nil, fmt.Errorf("markers: %w", err)
	}
	g := &MarkerGroup{Group: scene.Group{Name: "marker"}, Projector: p}
	for _, m := range s.MarkerAttr.Markers {
		mk := p.Add(m.Name, m.Lat, m.Lng)
		b := &scene.VertexBuffer{}
		for _, v := range mk.Connector {
			b.AppendVertex(v, 0, 0)
		}
		e := scene.NewEntity("connector", b, struct{ Visible bool }{})
		reg.Track(e)
		g.Connectors = append(g.Connectors, e)
	}
	return g, nil
}

// update runs after the camera moved. The connector geometry is rewritten
// in place every frame.
func (g *MarkerGroup) update(pose camera.Pose) {
	g.Projector.Update(pose)
	for i, m := range g.Projector.Markers() {
		e := g.Connectors[i]
		e.Program.Uniforms.Visible = m.ConnectorVisible
		for j, v := range m.Connector {
			e.Buffer.SetVertex(j, v)
		}
	}
}
