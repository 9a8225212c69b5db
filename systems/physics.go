// Package systems contains the simulation systems of the particle field.
package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/heroflow/components"
)

// Bounds represents the surface the field lives on.
type Bounds struct {
	Width, Height float64
}

// Contains reports whether a point lies inside the bounds, edges included.
func (b Bounds) Contains(x, y float64) bool {
	return x >= 0 && x <= b.Width && y >= 0 && y <= b.Height
}

// integrate applies the accumulated force, clamps speed, moves the agent,
// applies friction, zeroes the accumulator and ages the agent.
func integrate(a *components.Agent, friction, alignmentBonus float64) {
	a.Vel = r2.Add(a.Vel, a.Acc)

	limit := a.SpeedCap(alignmentBonus)
	if speed := r2.Norm(a.Vel); speed > limit && speed > 0 {
		a.Vel = r2.Scale(limit/speed, a.Vel)
	}

	a.Pos = r2.Add(a.Pos, a.Vel)
	a.Vel = r2.Scale(friction, a.Vel)
	a.Acc = r2.Vec{}
	a.Age++
}

// wrap moves an agent that left the padded bounds to the opposite edge.
// The trail origin is reset on the wrapped axis so no streak crosses the surface.
func wrap(a *components.Agent, b Bounds, margin float64) {
	switch {
	case a.Pos.X < -margin:
		a.Pos.X = b.Width + margin
		a.Prev.X = a.Pos.X
	case a.Pos.X > b.Width+margin:
		a.Pos.X = -margin
		a.Prev.X = a.Pos.X
	}
	switch {
	case a.Pos.Y < -margin:
		a.Pos.Y = b.Height + margin
		a.Prev.Y = a.Pos.Y
	case a.Pos.Y > b.Height+margin:
		a.Pos.Y = -margin
		a.Prev.Y = a.Pos.Y
	}
}
