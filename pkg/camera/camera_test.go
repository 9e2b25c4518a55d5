package camera

import (
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

func TestOrbitPoseLooksAtOrigin(t *testing.T) {
	o := NewOrbit(500)
	o.Rotate(0.7, -0.3)
	p := o.Pose()
	if math.Abs(p.Position.Norm()-500) > 1e-9 {
		t.Errorf("distance = %f; want 500", p.Position.Norm())
	}
	want := p.Position.Mul(-1).Normalize()
	if p.Forward.Sub(want).Norm() > 1e-9 {
		t.Errorf("Forward = %v; want %v", p.Forward, want)
	}
}

func TestOrbitFocus(t *testing.T) {
	tests := []struct{ lat, lng float64 }{
		{0, 0},
		{45, 90},
		{-30, -120},
		{51.5, -0.13},
	}
	for _, tt := range tests {
		o := NewOrbit(300)
		o.Focus(tt.lat, tt.lng)
		got := o.Pose().Position.Normalize()
		want := geo.ToSurfacePosition(tt.lat, tt.lng, 1)
		if got.Sub(want).Norm() > 1e-9 {
			t.Errorf("Focus(%v, %v) camera at %v; want %v", tt.lat, tt.lng, got, want)
		}
	}
}

func TestOrbitPolarClamp(t *testing.T) {
	o := NewOrbit(100)
	o.Rotate(0, 10)
	if o.Polar > maxPolar {
		t.Errorf("Polar = %f exceeds %f", o.Polar, maxPolar)
	}
	o.Rotate(0, -20)
	if o.Polar < minPolar {
		t.Errorf("Polar = %f below %f", o.Polar, minPolar)
	}
	p := o.Pose()
	right, up := p.Basis()
	for _, v := range []r3.Vector{right, up} {
		if math.IsNaN(v.X) || math.Abs(v.Norm()-1) > 1e-9 {
			t.Fatalf("basis vector %v is not a unit vector near the pole", v)
		}
	}
}

func TestOrbitAutoRotate(t *testing.T) {
	o := NewOrbit(100)
	o.Update(time.Second)
	if o.Azimuth != 0 {
		t.Errorf("azimuth moved with auto rotate off: %f", o.Azimuth)
	}

	o.AutoRotate = true
	o.Update(15 * time.Second)
	if math.Abs(o.Azimuth-math.Pi) > 1e-9 {
		t.Errorf("azimuth after half an orbit = %f; want pi", o.Azimuth)
	}
}

func TestOrbitZoom(t *testing.T) {
	o := NewOrbit(100)
	o.Zoom(0.01)
	if o.Distance != o.MinDistance {
		t.Errorf("Distance = %f; want clamp to %f", o.Distance, o.MinDistance)
	}
	o.Zoom(1000)
	if o.Distance != o.MaxDistance {
		t.Errorf("Distance = %f; want clamp to %f", o.Distance, o.MaxDistance)
	}
}

func TestLensProject(t *testing.T) {
	p := LookAt(r3.Vector{Z: 10}, r3.Vector{})
	l := Lens{FovY: math.Pi / 2, Width: 200, Height: 100}

	x, y, depth, ok := l.Project(p, r3.Vector{})
	if !ok || math.Abs(x-100) > 1e-9 || math.Abs(y-50) > 1e-9 || math.Abs(depth-10) > 1e-9 {
		t.Errorf("origin projected to (%f, %f, %f, %v)", x, y, depth, ok)
	}

	// at depth 10 with a 90 degree lens the top edge is y=10
	_, y, _, _ = l.Project(p, r3.Vector{Y: 10})
	if math.Abs(y) > 1e-9 {
		t.Errorf("top edge projected to y=%f; want 0", y)
	}
	x, _, _, _ = l.Project(p, r3.Vector{X: 20})
	if math.Abs(x-200) > 1e-9 {
		t.Errorf("right edge projected to x=%f; want 200", x)
	}

	if _, _, _, ok := l.Project(p, r3.Vector{Z: 20}); ok {
		t.Error("point behind the camera reported as visible")
	}
}

func TestOccluded(t *testing.T) {
	p := LookAt(r3.Vector{Z: 300}, r3.Vector{})
	if p.Occluded(r3.Vector{Z: 100}, 100) {
		t.Error("near side surface point reported occluded")
	}
	if !p.Occluded(r3.Vector{Z: -100}, 100) {
		t.Error("far side surface point reported visible")
	}
	if p.Occluded(r3.Vector{X: 150, Z: -10}, 100) {
		t.Error("point beside the limb reported occluded")
	}
}
