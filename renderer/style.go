package renderer

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// TrailAlpha returns the 0-255 stroke alpha of an agent: the theme's base alpha
// faded in over the first fade_in frames and out over the last fade_out frames
// of life, then boosted by alignment up to the theme maximum.
func TrailAlpha(a *components.Agent, t Theme, rc *config.RenderConfig) float64 {
	alpha := t.BaseAlpha
	fadeIn := float64(rc.FadeIn)
	fadeOut := float64(rc.FadeOut)

	switch {
	case fadeIn > 0 && a.Age < fadeIn:
		alpha = t.BaseAlpha * a.Age / fadeIn
	case fadeOut > 0 && a.Age > a.Life-fadeOut:
		alpha = t.BaseAlpha * (a.Life - a.Age) / fadeOut
	}

	alpha *= 1 + a.Alignment*rc.AlignmentBoost
	return math.Max(0, math.Min(alpha, t.MaxAlpha))
}

// StrokeWeight returns the trail width for an alignment.
func StrokeWeight(alignment float64, rc *config.RenderConfig) float64 {
	return rc.Weight + alignment*rc.WeightBoost
}

// AgentColor ramps from the theme's base color to its highlight by alignment.
func AgentColor(t Theme, alignment float64) colorful.Color {
	return t.Base.BlendLab(t.Highlight, math.Max(0, math.Min(alignment, 1))).Clamped()
}

// CellRadius returns a breathing cell's radius at the given frame.
func CellRadius(a *components.Agent, frame int, rc *config.RenderConfig) float64 {
	breath := 1 + rc.BreathAmplitude*math.Sin(float64(frame)*rc.BreathSpeed+a.Phase)
	r := rc.CellRadius*breath + a.Glow.Intensity*rc.GlowRadius*0.5
	return math.Max(r, 0.5)
}

// SparkAlpha fades a spark out over its lifetime.
func SparkAlpha(l components.Lifetime, t Theme) float64 {
	return l.Ratio() * t.SparkAlpha
}
