package game

import (
	"github.com/charmbracelet/harmonica"

	"github.com/pthm-cable/heroflow/config"
)

// Follower trails the pointer on a damped spring, drawn as the custom cursor ring.
type Follower struct {
	spring harmonica.Spring
	x, y   float64
	vx, vy float64
	placed bool
}

// NewFollower creates a follower stepping at the given frame rate.
func NewFollower(fps int, cfg config.CursorConfig) *Follower {
	f := &Follower{}
	f.SetConfig(fps, cfg)
	return f
}

// SetConfig rebuilds the spring, keeping position and velocity.
func (f *Follower) SetConfig(fps int, cfg config.CursorConfig) {
	if fps <= 0 {
		fps = 60
	}
	f.spring = harmonica.NewSpring(harmonica.FPS(fps), cfg.Frequency, cfg.Damping)
}

// Update steps the spring toward the target. The first call snaps to it.
func (f *Follower) Update(tx, ty float64) {
	if !f.placed {
		f.x, f.y = tx, ty
		f.placed = true
		return
	}
	f.x, f.vx = f.spring.Update(f.x, f.vx, tx)
	f.y, f.vy = f.spring.Update(f.y, f.vy, ty)
}

// Position returns the follower position.
func (f *Follower) Position() (x, y float64) {
	return f.x, f.y
}
