package viewer

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/sudorandom/globe-lines/pkg/flow"
	"github.com/sudorandom/globe-lines/pkg/marker"
	"github.com/sudorandom/globe-lines/pkg/scene"
)

const (
	haloRings     = 8
	minDotRadius  = 1.5
	lineWidth     = 1.5
	markerFontPx  = 14.0
	indicatorSize = 4.0
)

type star struct {
	X, Y  float32
	Size  float32
	Alpha float32
}

func newStarfield(n, width, height int, seed int64) []star {
	r := rand.New(rand.NewSource(seed))
	stars := make([]star, n)
	for i := range stars {
		stars[i] = star{
			X:     r.Float32() * float32(width),
			Y:     r.Float32() * float32(height),
			Size:  1 + float32(r.Intn(2)),
			Alpha: 0.2 + 0.6*r.Float32(),
		}
	}
	return stars
}

// fade returns c with opacity a, premultiplied the way ebiten expects.
func fade(c color.RGBA, a float64) color.RGBA {
	a = math.Max(0, math.Min(1, a))
	return color.RGBA{
		R: uint8(float64(c.R)*a + 0.5),
		G: uint8(float64(c.G)*a + 0.5),
		B: uint8(float64(c.B)*a + 0.5),
		A: uint8(255*a + 0.5),
	}
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}

// bufferPath projects the vertices of one range of b.
func (v view) bufferPath(b *scene.VertexBuffer, r scene.Range, dst []screenPoint) []screenPoint {
	dst = dst[:0]
	for i := r.Start; i < r.Start+r.Count; i++ {
		dst = append(dst, v.point(b.Vertex(i)))
	}
	return dst
}

// strokePath draws each segment whose ends are both visible. alpha gives
// the opacity of segment i.
func strokePath(dst *ebiten.Image, pts []screenPoint, c color.RGBA, alpha func(i int) float64) {
	for i := 0; i+1 < len(pts); i++ {
		p, q := pts[i], pts[i+1]
		if !p.Visible || !q.Visible {
			continue
		}
		a := alpha(i)
		if a <= 0 {
			continue
		}
		vector.StrokeLine(dst, p.X, p.Y, q.X, q.Y, lineWidth, fade(c, a), true)
	}
}

func constAlpha(a float64) func(int) float64 {
	return func(int) float64 { return a }
}

func (v *Viewer) drawStars(screen *ebiten.Image) {
	for _, s := range v.stars {
		vector.DrawFilledRect(screen, s.X, s.Y, s.Size, s.Size, fade(ColorLabel, float64(s.Alpha)), false)
	}
}

func (v *Viewer) drawEarth(screen *ebiten.Image, vw view) {
	earth := v.globe.Earth()
	u := earth.Entity.Program.Uniforms
	cx, cy, r, ok := vw.disc(earth.Radius)
	if !ok {
		return
	}
	if u.ShowAtmosphere {
		if _, _, outer, ok := vw.disc(earth.Radius * (1 + float64(u.AtmosphereAltitude))); ok && outer > r {
			step := (outer - r) / haloRings
			for i := 0; i < haloRings; i++ {
				a := 0.5 * (1 - float64(i)/haloRings)
				vector.StrokeCircle(screen, cx, cy, r+step*float32(i), step+1, fade(u.Atmosphere, a), true)
			}
		}
	}
	vector.DrawFilledCircle(screen, cx, cy, r, opaque(u.Color), true)
}

func (v *Viewer) drawCountries(screen *ebiten.Image, vw view) {
	g := v.globe.Countries()
	if g == nil || g.Entity.Buffer == nil {
		return
	}
	buf := g.Entity.Buffer
	alpha := constAlpha(float64(g.Entity.Program.Uniforms.Opacity))
	for _, r := range buf.Ranges {
		v.scratch = vw.bufferPath(buf, r, v.scratch)
		strokePath(screen, v.scratch, opaque(buf.Color(r.Start)), alpha)
	}
}

// drawArc shades one fly line the way its program would: the per-vertex
// base opacity comes from the buffer, the flow window from a.
func (v *Viewer) drawArc(screen *ebiten.Image, vw view, buf *scene.VertexBuffer, r scene.Range, a *flow.Animator) {
	if r.Count < 2 {
		return
	}
	v.scratch = vw.bufferPath(buf, r, v.scratch)
	c := buf.Color(r.Start)
	base := float64(c.A) / 255
	strokePath(screen, v.scratch, opaque(c), func(i int) float64 {
		return a.LineAlpha(float64(buf.U(r.Start+i)), base)
	})
}

func (v *Viewer) drawFlyLines(screen *ebiten.Image, vw view) {
	g := v.globe.FlyLines()
	if g.Line.Buffer == nil {
		return
	}
	for _, l := range g.Lines {
		v.drawArc(screen, vw, g.Line.Buffer, l.Range, g.Animator())
	}
}

func (v *Viewer) drawLiveArcs(screen *ebiten.Image, vw view) {
	size := v.globe.Setting().FlyLineAttr.ParticleSize
	for _, la := range v.globe.LiveArcs() {
		if la.Entity.Buffer == nil {
			continue
		}
		v.drawArc(screen, vw, la.Entity.Buffer, la.Range, la.Animator)
		if p := la.Animator.Particle(); p.Visible {
			v.drawParticle(screen, vw, la.Curve.Point(la.Animator.Head()), size*float64(p.Scale), p.Opacity, la.Color)
		}
	}
}

func (v *Viewer) drawParticles(screen *ebiten.Image, vw view) {
	g := v.globe.FlyLines()
	p := g.Particles.Program.Uniforms
	size := v.globe.Setting().FlyLineAttr.ParticleSize * float64(p.Scale)
	for i, head := range g.Heads() {
		v.drawParticle(screen, vw, head, size, p.Opacity, g.Lines[i].Color)
	}
}

func (v *Viewer) drawParticle(screen *ebiten.Image, vw view, head r3.Vector, size float64, opacity float32, c color.RGBA) {
	sp := vw.point(head)
	if !sp.Visible || opacity <= 0 {
		return
	}
	r := max(vw.pixels(size, sp.Depth), minDotRadius)
	vector.DrawFilledCircle(screen, sp.X, sp.Y, r, fade(opaque(c), float64(opacity)), true)
}

func (v *Viewer) drawPoints(screen *ebiten.Image, vw view) {
	attr := v.globe.Setting().PointCloudAttr
	for _, l := range v.globe.Points().Locations {
		sp := vw.point(l.Center)
		if !sp.Visible {
			continue
		}
		size := attr.PointSize
		if l.Point.Size > 0 {
			size *= l.Point.Size
		}
		r := max(vw.pixels(size, sp.Depth), minDotRadius)
		vector.DrawFilledCircle(screen, sp.X, sp.Y, r, opaque(l.Color), true)
	}
}

// ringCenter is the mean of a closed ring's vertices, skipping the repeated
// closing vertex.
func ringCenter(b *scene.VertexBuffer, r scene.Range) r3.Vector {
	n := r.Count - 1
	if n <= 0 {
		return r3.Vector{}
	}
	var sum r3.Vector
	for i := r.Start; i < r.Start+n; i++ {
		sum = sum.Add(b.Vertex(i))
	}
	return sum.Mul(1 / float64(n))
}

func (v *Viewer) drawWaves(screen *ebiten.Image, vw view) {
	g := v.globe.Waves()
	buf := g.Entity.Buffer
	if buf == nil {
		return
	}
	v.waveScratch = g.Waves(v.waveScratch)
	locs := v.globe.Points().Locations
	ring := make([]r3.Vector, 0, 64)
	for i, r := range buf.Ranges {
		if i >= len(locs) {
			break
		}
		center := ringCenter(buf, r)
		if !vw.point(center).Visible {
			continue
		}
		for _, w := range v.waveScratch {
			ring = ring[:0]
			for j := r.Start; j < r.Start+r.Count; j++ {
				ring = append(ring, center.Add(buf.Vertex(j).Sub(center).Mul(w.Phase)))
			}
			v.scratch = vw.path(ring, v.scratch)
			strokePath(screen, v.scratch, opaque(locs[i].Color), constAlpha(0.8*w.Opacity))
		}
	}
}

func (v *Viewer) drawMarkers(screen *ebiten.Image, vw view) {
	g := v.globe.Markers()
	var face *text.GoTextFace
	if v.fontSource != nil {
		face = &text.GoTextFace{Source: v.fontSource, Size: markerFontPx}
	}
	for i, m := range g.Projector.Markers() {
		base, tip := m.Pillar()
		v.scratch = vw.path([]r3.Vector{base, tip}, v.scratch)
		strokePath(screen, v.scratch, ColorAccent, constAlpha(0.9))

		if conn := g.Connectors[i]; conn.Program.Uniforms.Visible && conn.Buffer != nil {
			v.scratch = vw.bufferPath(conn.Buffer, scene.Range{Count: conn.Buffer.Len()}, v.scratch)
			strokePath(screen, v.scratch, ColorLabel, constAlpha(0.5))
		}

		label := vw.point(m.Label)
		if label.Depth <= 0 || (m.Zone == marker.Attached && !label.Visible) {
			continue
		}
		if m.DetachedIndicator {
			vector.StrokeCircle(screen, label.X, label.Y, indicatorSize, 1, ColorDetached, true)
		}
		if face == nil || m.Name == "" {
			continue
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(label.X)+indicatorSize+4, float64(label.Y)-markerFontPx/2)
		op.ColorScale.Scale(1, 1, 1, 0.9)
		text.Draw(screen, m.Name, face, op)
	}
}
