package systems

import (
	"github.com/ojrac/opensimplex-go"
)

// NoiseField is the shared smooth noise function sampled by every agent.
type NoiseField struct {
	noise opensimplex.Noise
}

// NewNoiseField creates a noise field seeded for reproducible runs.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{noise: opensimplex.NewNormalized(seed)}
}

// Sample returns a value in [0, 1) for an offset pair and a shared time term.
func (n *NoiseField) Sample(x, y, t float64) float64 {
	v := n.noise.Eval3(x, y, t)
	// Normalized noise can touch 1.0 at extreme inputs.
	if v >= 1 {
		v = 0.9999999
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Sample2D samples a plane of the field at a fixed time, used by previews.
func (n *NoiseField) Sample2D(x, y float64) float64 {
	return n.Sample(x, y, 0)
}
