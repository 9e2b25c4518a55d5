package viewer

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/camera"
)

// occlusionSlack shrinks the occluding sphere so points lying exactly on
// the surface are not hidden by rounding.
const occlusionSlack = 0.995

type screenPoint struct {
	X, Y    float32
	Depth   float64
	Visible bool
}

// view projects world positions for one frame.
type view struct {
	lens   camera.Lens
	pose   camera.Pose
	radius float64
}

func (v view) point(p r3.Vector) screenPoint {
	x, y, depth, ok := v.lens.Project(v.pose, p)
	if !ok {
		return screenPoint{}
	}
	return screenPoint{
		X:       float32(x),
		Y:       float32(y),
		Depth:   depth,
		Visible: !v.pose.Occluded(p, v.radius*occlusionSlack),
	}
}

// path projects pts into dst, reusing its backing array.
func (v view) path(pts []r3.Vector, dst []screenPoint) []screenPoint {
	dst = dst[:0]
	for _, p := range pts {
		dst = append(dst, v.point(p))
	}
	return dst
}

// focal is the distance in pixels from the eye to the image plane.
func (v view) focal() float64 {
	return float64(v.lens.Height) / 2 / math.Tan(v.lens.FovY/2)
}

// pixels is the on-screen size of a world length seen at depth.
func (v view) pixels(length, depth float64) float32 {
	if depth <= 0 {
		return 0
	}
	return float32(length * v.focal() / depth)
}

// disc returns the screen circle covered by a sphere of radius r at the
// origin. ok is false when the camera is inside the sphere.
func (v view) disc(r float64) (cx, cy, radius float32, ok bool) {
	d := v.pose.Position.Norm()
	if d <= r {
		return 0, 0, 0, false
	}
	center := v.point(r3.Vector{})
	if center.Depth <= 0 {
		return 0, 0, 0, false
	}
	alpha := math.Asin(r / d)
	return center.X, center.Y, float32(math.Tan(alpha) * v.focal()), true
}
