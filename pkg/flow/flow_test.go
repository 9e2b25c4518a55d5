package flow

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/curve"
	"github.com/sudorandom/globe-lines/pkg/geo"
)

func TestNewAnimatorRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name                  string
		growth, length, speed float64
		want                  error
	}{
		{"zero growth", 0, 0.2, 4, ErrInvalidDuration},
		{"negative growth", -1, 0.2, 4, ErrInvalidDuration},
		{"nan growth", math.NaN(), 0.2, 4, ErrInvalidDuration},
		{"zero length", 0.5, 0, 4, ErrInvalidFlowLength},
		{"inf length", 0.5, math.Inf(1), 4, ErrInvalidFlowLength},
		{"zero speed", 0.5, 0.2, 0, ErrInvalidFlowSpeed},
	}

	for _, tt := range tests {
		if _, err := NewAnimator(tt.growth, tt.length, tt.speed); !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v; want %v", tt.name, err, tt.want)
		}
	}
}

func TestFlowOffsetRange(t *testing.T) {
	for _, length := range []float64{0.05, 0.2, 0.4, 1, 3} {
		period := 1 + length
		for ti := -1000; ti <= 1000; ti++ {
			in := float64(ti) * 0.0731
			got := FlowOffset(in, length)
			if got < 0 || got >= period {
				t.Fatalf("FlowOffset(%f, %f) = %f; want in [0, %f)", in, length, got, period)
			}
		}
	}
	if got := FlowOffset(-1e-18, 0.2); got < 0 || got >= 1.2 {
		t.Errorf("FlowOffset of a tiny negative = %v", got)
	}
	if got := FlowOffset(0.5, 0.2); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("FlowOffset(0.5, 0.2) = %f; want 0.5", got)
	}
	if got := FlowOffset(1.7, 0.2); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("FlowOffset(1.7, 0.2) = %f; want 0.5", got)
	}
	if got := FlowOffset(-0.2, 0.2); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("FlowOffset(-0.2, 0.2) = %f; want 1.0", got)
	}
}

func TestGrowthThenFlow(t *testing.T) {
	a, err := NewAnimator(0.5, 0.2, 4)
	if err != nil {
		t.Fatalf("NewAnimator: %v", err)
	}
	if a.Particle().Visible {
		t.Fatal("particle visible before growth started")
	}

	// 4 thousandths per 60Hz frame = 0.24 per second
	a.Update(time.Second)
	if got := a.State().Elapsed; math.Abs(got-0.24) > 1e-9 {
		t.Fatalf("Elapsed after 1s = %f; want 0.24", got)
	}
	if got := a.GrowthProgress(); math.Abs(got-0.48) > 1e-9 {
		t.Errorf("GrowthProgress = %f; want 0.48", got)
	}
	if a.Particle().Visible {
		t.Error("particle visible during growth")
	}
	if got := a.Head(); got != 0 {
		t.Errorf("Head during growth = %f; want 0", got)
	}

	a.Update(2 * time.Second)
	if got := a.GrowthProgress(); got != 1 {
		t.Errorf("GrowthProgress = %f; want 1", got)
	}
	p := a.Particle()
	if !p.Visible {
		t.Fatal("particle hidden after growth")
	}
	head := a.Head()
	if math.Abs(head-(0.72-0.5)) > 1e-9 {
		t.Errorf("Head = %f; want 0.22", head)
	}
	wantOpacity := 0.8 * math.Sin(math.Pi*head)
	if math.Abs(float64(p.Opacity)-wantOpacity) > 1e-6 {
		t.Errorf("Opacity = %f; want %f", p.Opacity, wantOpacity)
	}
	wantScale := 1 + 0.5*math.Sin(a.State().Elapsed*30)
	if math.Abs(float64(p.Scale)-wantScale) > 1e-6 {
		t.Errorf("Scale = %f; want %f", p.Scale, wantScale)
	}

	u := a.Uniforms()
	if u.FlowLength != 0.2 || u.GrowthDuration != 0.5 || math.Abs(float64(u.CurrentTime)-0.72) > 1e-6 {
		t.Errorf("Uniforms = %+v", u)
	}
}

func TestUpdateIgnoresNegativeDelta(t *testing.T) {
	a, _ := NewAnimator(0.5, 0.2, 4)
	a.Update(time.Second)
	before := a.State().Elapsed
	a.Update(-time.Second)
	if got := a.State().Elapsed; got != before {
		t.Errorf("Elapsed moved backwards: %f -> %f", before, got)
	}
}

func TestOpacityFadesAtWindowEdges(t *testing.T) {
	a, _ := NewAnimator(0.5, 0.2, 1000.0/60.0)
	// speed 1000/60 advances Elapsed by exactly 1 per second
	a.Update(500 * time.Millisecond)
	if !a.Particle().Visible {
		t.Fatal("particle hidden at end of growth")
	}
	if got := a.Particle().Opacity; math.Abs(float64(got)) > 1e-6 {
		t.Errorf("opacity at head 0 = %f; want 0", got)
	}
	a.Update(500 * time.Millisecond)
	if got := a.Particle().Opacity; math.Abs(float64(got)-0.8) > 1e-6 {
		t.Errorf("opacity at head 0.5 = %f; want 0.8", got)
	}
	a.Update(600 * time.Millisecond)
	// offset 1.1 is past the end of the curve: head clamps to 1
	if got := a.Head(); got != 1 {
		t.Errorf("Head past the end = %f; want 1", got)
	}
	if got := a.Particle().Opacity; math.Abs(float64(got)) > 1e-6 {
		t.Errorf("opacity at head 1 = %f; want 0", got)
	}
}

func TestHeadPositions(t *testing.T) {
	start := geo.ToSurfacePosition(0, 0, 100)
	end := geo.ToSurfacePosition(0, 90, 100)
	c, err := curve.NewGreatCircle(start, end, 100, 1.3)
	if err != nil {
		t.Fatalf("NewGreatCircle: %v", err)
	}
	curves := []curve.Curve{c, c}

	a, _ := NewAnimator(0.5, 0.2, 1000.0/60.0)
	if got := a.HeadPositions(curves, nil); len(got) != 0 {
		t.Fatalf("HeadPositions during growth returned %d points", len(got))
	}

	a.Update(time.Second)
	buf := make([]r3.Vector, 0, 2)
	got := a.HeadPositions(curves, buf)
	if len(got) != 2 {
		t.Fatalf("HeadPositions returned %d points; want 2", len(got))
	}
	want := c.Point(0.5)
	if got[0].Sub(want).Norm() > 1e-9 {
		t.Errorf("head = %v; want %v", got[0], want)
	}
	if &got[0] != &buf[:1][0] {
		t.Error("HeadPositions did not reuse the destination buffer")
	}
}

func TestLineAlpha(t *testing.T) {
	a, _ := NewAnimator(1, 0.2, 1000.0/60.0)
	a.Update(250 * time.Millisecond)
	if got := a.LineAlpha(0.2, 0.5); got != 0.5 {
		t.Errorf("grown part alpha = %f; want 0.5", got)
	}
	if got := a.LineAlpha(0.3, 0.5); got != 0 {
		t.Errorf("ungrown part alpha = %f; want 0", got)
	}

	a.Update(1250 * time.Millisecond)
	head := a.Offset()
	if math.Abs(head-0.5) > 1e-9 {
		t.Fatalf("Offset = %f; want 0.5", head)
	}
	if got := a.LineAlpha(0.1, 0.5); got != 0.5 {
		t.Errorf("outside window alpha = %f; want 0.5", got)
	}
	if got := a.LineAlpha(head, 0.5); math.Abs(got-1) > 1e-9 {
		t.Errorf("head alpha = %f; want 1", got)
	}
	if got := a.LineAlpha(head-0.1, 0.5); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("mid window alpha = %f; want 0.75", got)
	}
	if got := a.LineAlpha(head+0.05, 0.5); got != 0.5 {
		t.Errorf("ahead of particle alpha = %f; want 0.5", got)
	}
}

func BenchmarkAnimatorUpdate(b *testing.B) {
	start := geo.ToSurfacePosition(40.7128, -74.0060, 100)
	end := geo.ToSurfacePosition(51.5074, -0.1278, 100)
	c, _ := curve.NewGreatCircle(start, end, 100, 1.3)
	curves := make([]curve.Curve, 64)
	for i := range curves {
		curves[i] = c
	}
	a, _ := NewAnimator(0.5, 0.2, 4)
	buf := make([]r3.Vector, 0, len(curves))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		a.Update(16 * time.Millisecond)
		buf = a.HeadPositions(curves, buf)
	}
}
