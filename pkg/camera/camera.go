// Package camera provides the camera pose consumed each frame and a simple
// orbit controller that produces it.
package camera

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
)

var worldUp = r3.Vector{Y: 1}

// Pose is the camera state for one frame. Forward is a unit vector.
type Pose struct {
	Position r3.Vector
	Forward  r3.Vector
}

// LookAt builds a pose at position looking toward target.
func LookAt(position, target r3.Vector) Pose {
	f := target.Sub(position).Normalize()
	if f.Norm2() == 0 {
		f = r3.Vector{Z: -1}
	}
	return Pose{Position: position, Forward: f}
}

// Basis returns the right and up vectors of the view.
func (p Pose) Basis() (right, up r3.Vector) {
	right = p.Forward.Cross(worldUp)
	if right.Norm2() < 1e-12 {
		right = p.Forward.Ortho()
	}
	right = right.Normalize()
	up = right.Cross(p.Forward).Normalize()
	return right, up
}

// Lens is a symmetric perspective projection.
type Lens struct {
	FovY          float64 // radians
	Width, Height int
	Near          float64
}

// Project maps v to screen pixels. ok is false for points behind the near
// plane.
func (l Lens) Project(p Pose, v r3.Vector) (x, y, depth float64, ok bool) {
	right, up := p.Basis()
	rel := v.Sub(p.Position)
	depth = rel.Dot(p.Forward)
	near := l.Near
	if near <= 0 {
		near = 0.1
	}
	if depth < near {
		return 0, 0, depth, false
	}
	f := 1 / math.Tan(l.FovY/2)
	aspect := float64(l.Width) / float64(l.Height)
	ndcX := rel.Dot(right) * f / (depth * aspect)
	ndcY := rel.Dot(up) * f / depth
	x = (ndcX + 1) / 2 * float64(l.Width)
	y = (1 - ndcY) / 2 * float64(l.Height)
	return x, y, depth, true
}

// Occluded reports whether the segment from the camera to v passes through
// the sphere of the given radius centred on the origin before reaching v.
func (p Pose) Occluded(v r3.Vector, radius float64) bool {
	d := v.Sub(p.Position)
	a := d.Dot(d)
	if a == 0 {
		return false
	}
	b := 2 * p.Position.Dot(d)
	c := p.Position.Dot(p.Position) - radius*radius
	disc := b*b - 4*a*c
	if disc <= 0 {
		return false
	}
	s := (-b - math.Sqrt(disc)) / (2 * a)
	return s > 1e-9 && s < 1-1e-6
}

const (
	minPolar = 0.01
	maxPolar = math.Pi - 0.01
)

// Orbit circles the origin. Azimuth is measured around +Y from +Z and Polar
// down from +Y.
type Orbit struct {
	Distance        float64
	MinDistance     float64
	MaxDistance     float64
	Azimuth         float64
	Polar           float64
	AutoRotate      bool
	AutoRotateSpeed float64
}

func NewOrbit(distance float64) *Orbit {
	return &Orbit{
		Distance:        distance,
		MinDistance:     distance * 0.3,
		MaxDistance:     distance * 3,
		Polar:           math.Pi / 2,
		AutoRotateSpeed: 2,
	}
}

// Update advances auto rotation. A speed of 2 completes one orbit in 30s
// at any frame rate.
func (o *Orbit) Update(dt time.Duration) {
	if !o.AutoRotate || dt <= 0 {
		return
	}
	o.Rotate(2*math.Pi/60*o.AutoRotateSpeed*dt.Seconds(), 0)
}

func (o *Orbit) Rotate(dAzimuth, dPolar float64) {
	o.Azimuth = math.Mod(o.Azimuth+dAzimuth, 2*math.Pi)
	o.Polar = math.Max(minPolar, math.Min(maxPolar, o.Polar+dPolar))
}

// Zoom scales the distance by factor within [MinDistance, MaxDistance].
func (o *Orbit) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	d := o.Distance * factor
	if o.MinDistance > 0 {
		d = math.Max(d, o.MinDistance)
	}
	if o.MaxDistance > 0 {
		d = math.Min(d, o.MaxDistance)
	}
	o.Distance = d
}

// Focus turns the camera to look down on a latitude/longitude in degrees.
func (o *Orbit) Focus(lat, lng float64) {
	// surface longitude lng sits at azimuth lng+90 from +Z
	o.Azimuth = math.Mod((lng+90)*math.Pi/180, 2*math.Pi)
	polar := (90 - lat) * math.Pi / 180
	o.Polar = math.Max(minPolar, math.Min(maxPolar, polar))
}

func (o *Orbit) Pose() Pose {
	sinP := math.Sin(o.Polar)
	pos := r3.Vector{
		X: o.Distance * sinP * math.Sin(o.Azimuth),
		Y: o.Distance * math.Cos(o.Polar),
		Z: o.Distance * sinP * math.Cos(o.Azimuth),
	}
	return LookAt(pos, r3.Vector{})
}
