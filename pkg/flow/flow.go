// Package flow drives the fly-line animation: a draw-in growth phase
// followed by a particle that loops along every arc.
package flow

import (
	"errors"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/sudorandom/globe-lines/pkg/curve"
)

var (
	ErrInvalidDuration   = errors.New("growth duration must be positive")
	ErrInvalidFlowLength = errors.New("flow length must be positive")
	ErrInvalidFlowSpeed  = errors.New("flow speed must be positive")
)

const (
	// flowSpeed settings are expressed per 1/60s frame, in thousandths.
	referenceFrameRate = 60.0
	speedUnit          = 1000.0

	pulseFrequency = 30.0
	pulseAmplitude = 0.5
	maxOpacity     = 0.8
)

// State is the per-group time accumulator.
type State struct {
	Elapsed        float64
	GrowthDuration float64
	FlowLength     float64
}

// Uniforms are the values consumed by the fly-line program.
type Uniforms struct {
	FlowLength     float32
	GrowthDuration float32
	CurrentTime    float32
}

// ParticleUniforms are the values consumed by the particle program.
type ParticleUniforms struct {
	Visible bool
	Opacity float32
	Scale   float32
}

// Animator advances one FlowState and derives the particle uniforms from it.
type Animator struct {
	state    State
	speed    float64
	particle ParticleUniforms
}

// NewAnimator validates the timing settings. All three must be positive
// and finite.
func NewAnimator(growthDuration, flowLength, flowSpeed float64) (*Animator, error) {
	if !(growthDuration > 0) || math.IsInf(growthDuration, 0) {
		return nil, ErrInvalidDuration
	}
	if !(flowLength > 0) || math.IsInf(flowLength, 0) {
		return nil, ErrInvalidFlowLength
	}
	if !(flowSpeed > 0) || math.IsInf(flowSpeed, 0) {
		return nil, ErrInvalidFlowSpeed
	}
	a := &Animator{
		state: State{GrowthDuration: growthDuration, FlowLength: flowLength},
		speed: flowSpeed,
	}
	a.refreshParticle()
	return a, nil
}

// Update advances the animation by one frame of real time dt.
func (a *Animator) Update(dt time.Duration) {
	if dt > 0 {
		a.state.Elapsed += dt.Seconds() * a.speed * referenceFrameRate / speedUnit
	}
	a.refreshParticle()
}

func (a *Animator) refreshParticle() {
	a.particle.Visible = a.GrowthProgress() >= 1
	if !a.particle.Visible {
		a.particle.Opacity = 0
		a.particle.Scale = 1
		return
	}
	a.particle.Scale = float32(1 + pulseAmplitude*math.Sin(a.state.Elapsed*pulseFrequency))
	a.particle.Opacity = float32(maxOpacity * math.Sin(math.Pi*a.Head()))
}

func (a *Animator) State() State { return a.state }

// GrowthProgress is the completed fraction of the draw-in phase.
func (a *Animator) GrowthProgress() float64 {
	return math.Min(a.state.Elapsed/a.state.GrowthDuration, 1)
}

// Offset is the wrapped flow offset in [0, 1+FlowLength).
func (a *Animator) Offset() float64 {
	return FlowOffset(math.Max(0, a.state.Elapsed-a.state.GrowthDuration), a.state.FlowLength)
}

// Head is the curve parameter of the particle, Offset clamped to [0, 1].
func (a *Animator) Head() float64 {
	return clamp01(a.Offset())
}

func (a *Animator) Uniforms() Uniforms {
	return Uniforms{
		FlowLength:     float32(a.state.FlowLength),
		GrowthDuration: float32(a.state.GrowthDuration),
		CurrentTime:    float32(a.state.Elapsed),
	}
}

func (a *Animator) Particle() ParticleUniforms { return a.particle }

// HeadPositions writes the particle position on each curve into dst,
// reusing its backing array. Nothing is written while the particle is hidden.
func (a *Animator) HeadPositions(curves []curve.Curve, dst []r3.Vector) []r3.Vector {
	if !a.particle.Visible {
		return dst[:0]
	}
	head := a.Head()
	dst = dst[:0]
	for _, c := range curves {
		dst = append(dst, c.Point(head))
	}
	return dst
}

// LineAlpha mirrors the fly-line fragment program on the CPU: u is the
// arc-length parameter of a vertex and base the resting line opacity.
// While growing only u <= progress is drawn; afterwards a highlight window
// of width FlowLength trails the particle head.
func (a *Animator) LineAlpha(u, base float64) float64 {
	progress := a.GrowthProgress()
	if progress < 1 {
		if u <= progress {
			return base
		}
		return 0
	}
	offset := a.Offset()
	tail := offset - a.state.FlowLength
	if u < tail || u > offset {
		return base
	}
	w := (u - tail) / a.state.FlowLength
	return math.Min(1, base+(1-base)*w)
}

// FlowOffset wraps t into [0, 1+flowLength) for any sign of t.
func FlowOffset(t, flowLength float64) float64 {
	period := 1 + flowLength
	offset := math.Mod(math.Mod(t, period)+period, period)
	if offset >= period {
		offset = 0
	}
	return offset
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
