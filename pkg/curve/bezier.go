package curve

import (
	"math"

	"github.com/golang/geo/r3"
)

// AngleThreshold is the endpoint separation above which NewBezierArc
// switches from a quadratic to a cubic curve.
const AngleThreshold = math.Pi / 3

// QuadraticBezier is used for endpoints at most AngleThreshold apart.
type QuadraticBezier struct {
	P0, P1, P2 r3.Vector
}

func (q QuadraticBezier) Point(t float64) r3.Vector {
	s := 1 - t
	return q.P0.Mul(s * s).Add(q.P1.Mul(2 * s * t)).Add(q.P2.Mul(t * t))
}

func (q QuadraticBezier) Sample(n int) []r3.Vector { return sample(q, n) }

// CubicBezier gives long, near-antipodal arcs enough curvature.
type CubicBezier struct {
	P0, P1, P2, P3 r3.Vector
}

func (c CubicBezier) Point(t float64) r3.Vector {
	s := 1 - t
	return c.P0.Mul(s * s * s).
		Add(c.P1.Mul(3 * s * s * t)).
		Add(c.P2.Mul(3 * s * t * t)).
		Add(c.P3.Mul(t * t * t))
}

func (c CubicBezier) Sample(n int) []r3.Vector { return sample(c, n) }

// NewBezierArc lifts a Bezier curve between two points on a sphere so that
// its midpoint sits at radius*(1+arcAlt). Endpoints further apart than
// AngleThreshold get a cubic curve, closer ones a quadratic.
func NewBezierArc(start, end r3.Vector, radius, arcAlt float64) (Curve, error) {
	if !(radius > 0) {
		return nil, ErrInvalidRadius
	}
	if start.Norm2() == 0 || end.Norm2() == 0 {
		return nil, ErrDegenerateArc
	}

	apex := radius * (1 + arcAlt)
	sum := start.Add(end)
	chordMid := sum.Norm()
	var up r3.Vector
	if chordMid < 1e-9*radius {
		up = start.Normalize().Ortho()
	} else {
		up = sum.Mul(1 / chordMid)
	}

	if start.Angle(end).Radians() <= AngleThreshold {
		// B(0.5) = (P0+P2)/4 + P1/2
		return QuadraticBezier{
			P0: start,
			P1: up.Mul(2*apex - chordMid/2),
			P2: end,
		}, nil
	}

	// B(0.5) = (P0+P3)/8 + 3/8 (P1+P2); the control directions mirror
	// each other about up, so only their up components add.
	mid := up.Mul(apex)
	d1 := start.Add(mid).Mul(0.5).Normalize()
	d2 := mid.Add(end).Mul(0.5).Normalize()
	lift := d1.Dot(up) + d2.Dot(up)
	length := apex
	if lift > 1e-9 {
		length = (apex - chordMid/8) / (3 * lift / 8)
	}
	return CubicBezier{
		P0: start,
		P1: d1.Mul(length),
		P2: d2.Mul(length),
		P3: end,
	}, nil
}
