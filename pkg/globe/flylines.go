package globe

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/curve"
	"github.com/sudorandom/globe-lines/pkg/flow"
	"github.com/sudorandom/globe-lines/pkg/geo"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

const particleSegments = 8

var defaultLineColor = color.RGBA{255, 255, 255, 255}

// FlyLine is one accepted arc with its curve and the vertex range it
// occupies in the merged line buffer.
type FlyLine struct {
	Arc   config.Arc
	Curve curve.Curve
	Color color.RGBA
	Range scene.Range
}

// FlyLineGroup draws every configured arc from one merged buffer and moves
// one particle per arc along it.
type FlyLineGroup struct {
	scene.Group

	Lines     []FlyLine
	Line      *scene.Entity[flow.Uniforms]
	Particles *scene.Entity[flow.ParticleUniforms]

	animator     *flow.Animator
	showParticle bool
	curves       []curve.Curve
	heads        []r3.Vector
	particleBase []r3.Vector
}

func buildArc(arc config.Arc, family curve.Family, radius float64) (curve.Curve, color.RGBA, error) {
	c := defaultLineColor
	if arc.Color != "" {
		parsed, err := scene.ParseColor(arc.Color)
		if err != nil {
			return nil, c, err
		}
		c = parsed
	}
	start := arc.Start().Position(radius)
	end := arc.End().Position(radius)
	cv, err := curve.NewArc(family, start, end, radius, arc.Peak(), arc.Altitude())
	if err != nil {
		return nil, c, fmt.Errorf("arc %s: %w", arcLabel(arc), err)
	}
	return cv, c, nil
}

func arcLabel(arc config.Arc) string {
	if arc.Name != "" {
		return arc.Name
	}
	return fmt.Sprintf("%s -> %s",
		geo.PointKey(arc.StartLat, arc.StartLng), geo.PointKey(arc.EndLat, arc.EndLng))
}

// lineBuffer samples c into segments+1 vertices. U runs 0..1 along the arc.
func lineBuffer(c curve.Curve, segments int, col color.RGBA, opacity float64) *scene.VertexBuffer {
	b := &scene.VertexBuffer{}
	for i, p := range c.Sample(segments) {
		u := float32(i) / float32(segments)
		b.AppendVertex(p, u, u)
	}
	col.A = uint8(opacity*255 + 0.5)
	scene.FillColor(b, col)
	return b
}

func newFlyLineGroup(s *config.Setting, reg *scene.Registry) (*FlyLineGroup, error) {
	attr := s.FlyLineAttr
	animator, err := flow.NewAnimator(attr.GrowthDuration, attr.FlyingLineLength, attr.FlowSpeed)
	if err != nil {
		return nil, fmt.Errorf("fly lines: %w", err)
	}

	g := &FlyLineGroup{
		Group:        scene.Group{Name: "flyLine"},
		animator:     animator,
		showParticle: attr.ShowFlyingParticle,
	}

	radius := s.EarthAttr.Radius
	lines := make([]*scene.VertexBuffer, 0, len(attr.FlyLineData))
	particles := make([]*scene.VertexBuffer, 0, len(attr.FlyLineData))
	for _, arc := range attr.FlyLineData {
		c, col, err := buildArc(arc, attr.CurveType, radius)
		if err != nil {
			log.Printf("[FLYLINE] Skipping %s: %v", arcLabel(arc), err)
			continue
		}
		g.Lines = append(g.Lines, FlyLine{Arc: arc, Curve: c, Color: col})
		g.curves = append(g.curves, c)
		lines = append(lines, lineBuffer(c, attr.Segments, col, attr.FlyLineOpacity))

		p := scene.Sphere(attr.ParticleSize, particleSegments, particleSegments)
		scene.FillColor(p, col)
		particles = append(particles, p)
	}

	merged := scene.Merge(lines...)
	for i := range g.Lines {
		g.Lines[i].Range = merged.Ranges[i]
	}
	g.Line = scene.NewEntity("flyLine", merged, animator.Uniforms())
	reg.Track(g.Line)

	pmerged := scene.Merge(particles...)
	g.particleBase = make([]r3.Vector, pmerged.Len())
	for i := range g.particleBase {
		g.particleBase[i] = pmerged.Vertex(i)
	}
	g.Particles = scene.NewEntity("flyParticle", pmerged, animator.Particle())
	reg.Track(g.Particles)

	log.Printf("[FLYLINE] Built %d of %d arcs (%d vertices)", len(g.Lines), len(attr.FlyLineData), merged.Len())
	return g, nil
}

func (g *FlyLineGroup) update(dt time.Duration) {
	g.animator.Update(dt)
	g.Line.Program.Uniforms = g.animator.Uniforms()

	p := g.animator.Particle()
	if !g.showParticle {
		p.Visible = false
	}
	g.Particles.Program.Uniforms = p
	if !p.Visible {
		return
	}

	g.heads = g.animator.HeadPositions(g.curves, g.heads)
	buf := g.Particles.Buffer
	for i, r := range buf.Ranges {
		head := g.heads[i]
		for v := r.Start; v < r.Start+r.Count; v++ {
			buf.SetVertex(v, g.particleBase[v].Mul(float64(p.Scale)).Add(head))
		}
	}
}

// Animator exposes the shared flow clock for CPU-side shading.
func (g *FlyLineGroup) Animator() *flow.Animator { return g.animator }

// Heads returns the current particle position on each line. It is empty
// while the particle is hidden.
func (g *FlyLineGroup) Heads() []r3.Vector {
	if !g.Particles.Program.Uniforms.Visible {
		return nil
	}
	return g.heads
}
