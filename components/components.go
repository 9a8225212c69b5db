// Package components defines the plain data records of the particle field.
package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Agent is one simulated flow element.
type Agent struct {
	Pos  r2.Vec // Current position
	Prev r2.Vec // Position at the start of the frame, trail origin
	Vel  r2.Vec
	Acc  r2.Vec // Per-frame force accumulator, zeroed after integration

	BaseMaxSpeed float64
	MaxSpeed     float64 // Boosted near the pointer, relaxes back toward BaseMaxSpeed

	Age  float64
	Life float64

	// Alignment in [0,1] tracks how strongly the pointer currently influences the agent.
	Alignment float64

	Noise r2.Vec  // Private noise offsets
	Phase float64 // Breathing phase in radians

	Glow Glow
}

// Speed returns the velocity magnitude.
func (a *Agent) Speed() float64 {
	return r2.Norm(a.Vel)
}

// SpeedCap returns the clamp applied during integration.
func (a *Agent) SpeedCap(alignmentBonus float64) float64 {
	return a.MaxSpeed + a.Alignment*alignmentBonus
}

// LifeRatio returns age/life clamped to [0,1].
func (a *Agent) LifeRatio() float64 {
	if a.Life <= 0 {
		return 1
	}
	return math.Min(math.Max(a.Age/a.Life, 0), 1)
}

// GlowState is a phase of the flash state machine.
type GlowState uint8

const (
	GlowIdle GlowState = iota
	GlowRising
	GlowHold
	GlowFalling
)

func (s GlowState) String() string {
	switch s {
	case GlowRising:
		return "rising"
	case GlowHold:
		return "hold"
	case GlowFalling:
		return "falling"
	default:
		return "idle"
	}
}

// Glow is the optional flash sub-state layered over an agent's motion.
type Glow struct {
	State     GlowState
	Timer     int     // Frames left in the current state
	Peak      float64 // Intensity reached at the end of Rising, in [0,1]
	Intensity float64 // Current intensity in [0, Peak]
}

// Pointer is the per-frame pointer snapshot.
type Pointer struct {
	X, Y   float64
	Active bool // True iff the pointer lies inside the surface
}

// Vec returns the pointer position.
func (p Pointer) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Spark is a transient burst particle.
type Spark struct {
	Pos r2.Vec
	Vel r2.Vec
}

// Lifetime counts a spark down to removal.
type Lifetime struct {
	Life    float64
	MaxLife float64
}

// Ratio returns the remaining life fraction in [0,1].
func (l Lifetime) Ratio() float64 {
	if l.MaxLife <= 0 {
		return 0
	}
	return math.Min(math.Max(l.Life/l.MaxLife, 0), 1)
}
