package globe

import (
	"image/color"
	"log"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/config"
	"github.com/sudorandom/globe-lines/pkg/geo"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

const (
	pointLift     = 0.5
	waveLift      = 0.001
	pointSegments = 8
	waveSegments  = 48
)

// Location is one deduplicated point with its resolved placement.
type Location struct {
	Point  config.Point
	Center r3.Vector
	Color  color.RGBA
	Range  scene.Range
}

// PointGroup draws a small sphere for every unique location.
type PointGroup struct {
	scene.Group

	Locations []Location
	Entity    *scene.Entity[struct{}]
}

func pointColor(p config.Point, fallback string) color.RGBA {
	for _, s := range []string{p.Color, fallback} {
		if s == "" {
			continue
		}
		c, err := scene.ParseColor(s)
		if err == nil {
			return c
		}
		log.Printf("[POINTS] Bad color for %s: %v", geo.PointKey(p.Lat, p.Lng), err)
	}
	return color.RGBA{255, 255, 255, 255}
}

func newPointGroup(s *config.Setting, reg *scene.Registry) *PointGroup {
	attr := s.PointCloudAttr
	unique := scene.DedupePoints(attr.PointsData)

	g := &PointGroup{Group: scene.Group{Name: "points"}}
	buffers := make([]*scene.VertexBuffer, 0, len(unique))
	for _, p := range unique {
		center := geo.ToSurfacePosition(p.Lat, p.Lng, s.EarthAttr.Radius+pointLift)
		col := pointColor(p, attr.PointColor)

		size := attr.PointSize
		if p.Size > 0 {
			size *= p.Size
		}
		b := scene.Sphere(size, pointSegments, pointSegments)
		scene.Translate(b, center)
		scene.FillColor(b, col)
		buffers = append(buffers, b)
		g.Locations = append(g.Locations, Location{Point: p, Center: center, Color: col})
	}

	merged := scene.Merge(buffers...)
	for i := range g.Locations {
		g.Locations[i].Range = merged.Ranges[i]
	}
	g.Entity = scene.NewEntity("points", merged, struct{}{})
	reg.Track(g.Entity)

	if dropped := len(attr.PointsData) - len(unique); dropped > 0 {
		log.Printf("[POINTS] Dropped %d duplicate locations", dropped)
	}
	return g
}

// WaveUniforms drive the expanding ring program.
type WaveUniforms struct {
	UTime         float32
	WaveCount     float32
	WaveThickness float32
}

// WaveGroup draws a flat disc facing outward under every point. Rings
// expand across the disc over time.
type WaveGroup struct {
	scene.Group

	Entity *scene.Entity[WaveUniforms]
	Radius float64

	elapsed  float64
	duration float64
}

func newWaveGroup(s *config.Setting, points []Location, reg *scene.Registry) *WaveGroup {
	attr := s.WaveAttr
	g := &WaveGroup{
		Group:    scene.Group{Name: "wave"},
		Radius:   attr.MaxRings * attr.WavePointScale,
		duration: attr.WaveDuration,
	}

	buffers := make([]*scene.VertexBuffer, 0, len(points))
	for _, p := range points {
		center := geo.ToSurfacePosition(p.Point.Lat, p.Point.Lng, s.EarthAttr.Radius+waveLift)
		b := scene.Ring(g.Radius, waveSegments, center)
		scene.Translate(b, center)
		scene.FillColor(b, p.Color)
		buffers = append(buffers, b)
	}
	g.Entity = scene.NewEntity("wave", scene.Merge(buffers...), WaveUniforms{
		WaveCount:     float32(attr.WaveCount),
		WaveThickness: float32(attr.WaveThickness),
	})
	reg.Track(g.Entity)
	return g
}

func (g *WaveGroup) update(dt time.Duration) {
	if dt > 0 {
		g.elapsed += dt.Seconds() * g.duration * 60 / 1000
	}
	g.Entity.Program.Uniforms.UTime = float32(g.elapsed)
}

// Wave is one expanding ring: Phase runs 0..1 from the centre outward.
type Wave struct {
	Phase   float64
	Radius  float64
	Opacity float64
}

// Waves evaluates the rings currently visible on each disc.
func (g *WaveGroup) Waves(dst []Wave) []Wave {
	u := g.Entity.Program.Uniforms
	n := int(u.WaveCount)
	dst = dst[:0]
	for i := 0; i < n; i++ {
		phase := float64(u.UTime) + float64(i)/float64(n)
		phase -= math.Floor(phase)
		dst = append(dst, Wave{
			Phase:   phase,
			Radius:  phase * g.Radius,
			Opacity: 1 - phase,
		})
	}
	return dst
}
