package curve

import (
	"github.com/golang/geo/r3"
)

// BulgeK is the ratio between the first and second height control
// excursions. Smaller values make the arc leave the surface more gently.
const BulgeK = 0.2

// GreatCircle follows the shortest path between two surface points,
// lifted off the sphere by HeightFactor.
type GreatCircle struct {
	from, to    r3.Vector
	planeNormal r3.Vector
	span        float64
	radius      float64
	peak        float64
}

// NewGreatCircle builds the arc from one surface point to another. A zero
// endpoint is rejected with ErrDegenerateArc.
func NewGreatCircle(from, to r3.Vector, radius, peak float64) (*GreatCircle, error) {
	if !(radius > 0) {
		return nil, ErrInvalidRadius
	}
	if from.Norm2() == 0 || to.Norm2() == 0 {
		return nil, ErrDegenerateArc
	}
	f, t := from.Normalize(), to.Normalize()
	return &GreatCircle{
		from:        f,
		to:          t,
		planeNormal: planeNormal(f, t),
		span:        f.Angle(t).Radians(),
		radius:      radius,
		peak:        peak,
	}, nil
}

// Span is the angle between the endpoints in radians.
func (g *GreatCircle) Span() float64 { return g.span }

func (g *GreatCircle) PlaneNormal() r3.Vector { return g.planeNormal }

func (g *GreatCircle) Point(t float64) r3.Vector {
	base := rotate(g.from, g.planeNormal, t*g.span)
	return base.Mul(HeightFactor(t, g.peak) * g.radius)
}

func (g *GreatCircle) Sample(n int) []r3.Vector { return sample(g, n) }

// HeightFactor is the radius multiplier along the arc. It is a cubic
// Bernstein blend of the control excursions (0, BulgeK, 1, 0) normalised so
// that h(0) = h(1) = 1 and h(0.5) = peak.
func HeightFactor(t, peak float64) float64 {
	w := bulge(t) / bulge(0.5)
	return (1 - w) + w*peak
}

func bulge(t float64) float64 {
	s := 1 - t
	return 3*s*s*t*BulgeK + 3*s*t*t
}
