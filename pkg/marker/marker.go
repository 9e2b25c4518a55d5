// Package marker keeps labels glued to surface points as the camera moves.
//
// Each tick a marker's surface position is projected onto the plane through
// the globe centre facing the camera. Markers on the near hemisphere keep
// their label on the surface. As a marker rotates past the limb the label
// moves to the projected anchor and a connector grows from the centre of
// the globe to it, so labels never disappear behind the sphere.
package marker

import (
	"errors"
	"math"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/camera"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

const (
	// Angle is the half width of the limb band in alignment (cosine) units.
	Angle = 0.15

	ConnectorSegments = 20

	// DefaultOffsetRatio is the anchor offset above the sphere as a
	// fraction of the radius.
	DefaultOffsetRatio = 0.275

	// PillarRatio is the height of the light pillar as a fraction of the
	// radius.
	PillarRatio = 0.3
)

var ErrInvalidRadius = errors.New("marker: radius must be positive")

type Zone int

const (
	Attached Zone = iota
	Limb
	Detached
)

func (z Zone) String() string {
	switch z {
	case Attached:
		return "attached"
	case Limb:
		return "limb"
	case Detached:
		return "detached"
	}
	return "unknown"
}

// ZoneFor classifies an alignment value. Zones are ordered: a larger
// alignment never yields a later zone.
func ZoneFor(alignment float64) Zone {
	switch {
	case alignment >= Angle:
		return Attached
	case alignment > -Angle:
		return Limb
	default:
		return Detached
	}
}

type Marker struct {
	Name    string
	Surface r3.Vector

	// Recomputed by Projector.Update.
	Anchor            r3.Vector
	Label             r3.Vector
	Alignment         float64
	Zone              Zone
	ConnectorVisible  bool
	ConnectorLength   float64
	Connector         []r3.Vector
	DetachedIndicator bool
}

// Pillar returns the base and tip of the marker's light pillar.
func (m *Marker) Pillar() (base, tip r3.Vector) {
	n := m.Surface.Normalize()
	return m.Surface, m.Surface.Add(n.Mul(m.Surface.Norm() * PillarRatio))
}

type Projector struct {
	radius  float64
	offset  float64
	markers []*Marker
}

// NewProjector returns a projector for a globe of the given radius. A zero
// offset selects DefaultOffsetRatio*radius.
func NewProjector(radius, offset float64) (*Projector, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, ErrInvalidRadius
	}
	if offset <= 0 {
		offset = DefaultOffsetRatio * radius
	}
	return &Projector{radius: radius, offset: offset}, nil
}

// Add places a marker on the surface at lat/lng degrees.
func (p *Projector) Add(name string, lat, lng float64) *Marker {
	s := geo.ToSurfacePosition(lat, lng, p.radius)
	m := &Marker{
		Name:      name,
		Surface:   s,
		Anchor:    s,
		Label:     s,
		Connector: make([]r3.Vector, ConnectorSegments+1),
	}
	p.markers = append(p.markers, m)
	return m
}

func (p *Projector) Markers() []*Marker { return p.markers }

// FullLength is the connector length when a marker is fully detached.
func (p *Projector) FullLength() float64 { return p.radius + p.offset }

func (p *Projector) Update(pose camera.Pose) {
	n := pose.Forward.Normalize()
	if n.Norm2() == 0 {
		return
	}
	cam := pose.Position.Normalize()
	for _, m := range p.markers {
		p.project(m, n, cam)
	}
}

func (p *Projector) project(m *Marker, n, cam r3.Vector) {
	full := p.FullLength()

	projected := m.Surface.Sub(n.Mul(m.Surface.Dot(n)))
	dir := projected.Normalize()
	if projected.Norm2() < 1e-18*p.radius*p.radius {
		dir = n.Ortho()
	}
	m.Anchor = dir.Mul(full)

	m.Alignment = cam.Dot(m.Surface.Normalize())
	m.Zone = ZoneFor(m.Alignment)

	a := math.Max(-Angle, math.Min(Angle, m.Alignment))
	m.ConnectorLength = full * (Angle - a) / (2 * Angle)

	switch m.Zone {
	case Attached:
		m.Label = m.Surface
		m.ConnectorVisible = false
		m.DetachedIndicator = false
	case Limb:
		m.Label = m.Anchor
		m.ConnectorVisible = true
		m.DetachedIndicator = false
	case Detached:
		m.Label = m.Anchor
		m.ConnectorVisible = true
		m.DetachedIndicator = true
	}

	end := dir.Mul(m.ConnectorLength)
	if len(m.Connector) != ConnectorSegments+1 {
		m.Connector = make([]r3.Vector, ConnectorSegments+1)
	}
	for i := range m.Connector {
		m.Connector[i] = end.Mul(float64(i) / ConnectorSegments)
	}
}
