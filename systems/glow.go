package systems

import (
	"math/rand"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// GlowSystem drives the per-agent flash state machine:
// idle -> rising -> hold -> falling -> idle.
type GlowSystem struct {
	cfg *config.GlowConfig
	rng *rand.Rand
}

// NewGlowSystem creates a glow system.
func NewGlowSystem(cfg *config.GlowConfig, rng *rand.Rand) *GlowSystem {
	return &GlowSystem{cfg: cfg, rng: rng}
}

// SetConfig swaps the glow parameters.
func (s *GlowSystem) SetConfig(cfg *config.GlowConfig) {
	s.cfg = cfg
}

// Enabled reports whether agents flash at all.
func (s *GlowSystem) Enabled() bool {
	return s.cfg.Enabled
}

// Update advances one agent's glow by one frame.
func (s *GlowSystem) Update(a *components.Agent) {
	g := &a.Glow
	cfg := s.cfg

	switch g.State {
	case components.GlowIdle:
		g.Intensity = 0
		chance := cfg.Chance + cfg.AlignedChance*a.Alignment
		if s.rng.Float64() < chance {
			g.State = components.GlowRising
			g.Timer = max(cfg.RiseFrames, 1)
			g.Peak = clamp01(cfg.Peak.Lerp(s.rng.Float64()))
		}

	case components.GlowRising:
		g.Timer--
		rise := max(cfg.RiseFrames, 1)
		g.Intensity = g.Peak * float64(rise-g.Timer) / float64(rise)
		if g.Timer <= 0 {
			g.Intensity = g.Peak
			g.State = components.GlowHold
			g.Timer = cfg.HoldFrames
		}

	case components.GlowHold:
		g.Intensity = g.Peak
		g.Timer--
		if g.Timer <= 0 {
			g.State = components.GlowFalling
			g.Timer = max(cfg.FallFrames, 1)
		}

	case components.GlowFalling:
		g.Timer--
		fall := max(cfg.FallFrames, 1)
		g.Intensity = g.Peak * float64(max(g.Timer, 0)) / float64(fall)
		if g.Timer <= 0 {
			g.Intensity = 0
			g.State = components.GlowIdle
		}
	}

	if g.Intensity < 0 {
		g.Intensity = 0
	}
	if g.Intensity > g.Peak {
		g.Intensity = g.Peak
	}
}
