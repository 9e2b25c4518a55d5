// Package curve builds the parametric arcs that connect two points on the
// globe: a great-circle arc with a smooth height bulge and a Bezier
// alternative whose degree depends on how far apart the endpoints are.
package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

var (
	ErrDegenerateArc = errors.New("arc endpoint has zero length")
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	ErrUnknownFamily = errors.New("unknown curve family")
)

// Curve is a parametric curve over t in [0, 1].
type Curve interface {
	Point(t float64) r3.Vector
	Sample(n int) []r3.Vector
}

// Family selects which construction NewArc uses.
type Family string

const (
	GreatCircleFamily Family = "greatCircle"
	BezierFamily      Family = "bezier"
)

// NewArc builds a curve between two positions on a sphere of the given
// radius. peak is the great-circle bulge multiplier and arcAlt the Bezier
// apex altitude as a fraction of the radius.
func NewArc(family Family, start, end r3.Vector, radius, peak, arcAlt float64) (Curve, error) {
	switch family {
	case GreatCircleFamily, "":
		return NewGreatCircle(start, end, radius, peak)
	case BezierFamily:
		return NewBezierArc(start, end, radius, arcAlt)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
}

func sample(c Curve, n int) []r3.Vector {
	if n < 1 {
		n = 1
	}
	points := make([]r3.Vector, n+1)
	for i := 0; i <= n; i++ {
		points[i] = c.Point(float64(i) / float64(n))
	}
	return points
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// planeNormal returns normalize(a x b), or a stable vector orthogonal to a
// when a and b are parallel or antiparallel.
func planeNormal(a, b r3.Vector) r3.Vector {
	n := a.Cross(b)
	if n.Norm2() < 1e-24 {
		return a.Ortho()
	}
	return n.Normalize()
}

// rotate turns v about the unit axis k by angle radians.
func rotate(v, k r3.Vector, angle float64) r3.Vector {
	c, s := math.Cos(angle), math.Sin(angle)
	return v.Mul(c).Add(k.Cross(v).Mul(s)).Add(k.Mul(k.Dot(v) * (1 - c)))
}
