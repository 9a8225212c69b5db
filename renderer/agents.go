package renderer

import (
	"math"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

// SparkSet iterates live burst sparks.
type SparkSet interface {
	Each(fn func(spark *components.Spark, life *components.Lifetime))
}

// Renderer draws the field. It reads simulation state and never modifies it.
type Renderer struct {
	cfg   *config.RenderConfig
	dark  Theme
	light Theme
	theme string
}

// New parses both themes and selects the configured one.
func New(cfg *config.RenderConfig) (*Renderer, error) {
	r := &Renderer{}
	if err := r.SetConfig(cfg); err != nil {
		return nil, err
	}
	return r, nil
}

// SetConfig swaps presentation parameters, keeping the current theme selection.
func (r *Renderer) SetConfig(cfg *config.RenderConfig) error {
	dark, err := NewTheme(config.ThemeDark, cfg.Dark)
	if err != nil {
		return err
	}
	light, err := NewTheme(config.ThemeLight, cfg.Light)
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.dark = dark
	r.light = light
	if r.theme == "" {
		r.theme = cfg.Theme
	}
	return nil
}

// SetTheme selects dark or light.
func (r *Renderer) SetTheme(name string) {
	if name == config.ThemeLight {
		r.theme = config.ThemeLight
		return
	}
	r.theme = config.ThemeDark
}

// ThemeName returns the selected theme.
func (r *Renderer) ThemeName() string {
	return r.theme
}

// Theme returns the selected theme's colors.
func (r *Renderer) Theme() Theme {
	if r.theme == config.ThemeLight {
		return r.light
	}
	return r.dark
}

// Reset paints the theme background, used after setup and resize.
func (r *Renderer) Reset(s Surface) {
	s.SetBlend(BlendNormal)
	s.Clear(RGBA(r.Theme().Background, 255))
}

// Background prepares the surface for a new frame and selects the theme's blend mode.
func (r *Renderer) Background(s Surface) {
	t := r.Theme()
	s.SetBlend(BlendNormal)
	if r.cfg.Background == config.BackgroundClear {
		s.Clear(RGBA(t.Background, 255))
	} else {
		s.Fade(RGBA(t.Fade, t.FadeAlpha))
	}
	s.SetBlend(t.Blend())
}

// Agents draws every agent as a trail segment or a breathing cell.
func (r *Renderer) Agents(s Surface, agents []components.Agent, frame int) {
	t := r.Theme()
	cell := r.cfg.Shape == config.ShapeCell

	for i := range agents {
		a := &agents[i]
		alpha := TrailAlpha(a, t, r.cfg)
		col := AgentColor(t, a.Alignment)

		if !cell {
			if alpha <= 0 {
				continue
			}
			s.Line(a.Prev.X, a.Prev.Y, a.Pos.X, a.Pos.Y, StrokeWeight(a.Alignment, r.cfg), RGBA(col, alpha))
			continue
		}

		glow := a.Glow.Intensity
		if glow > 0 {
			col = col.BlendLab(t.Glow, glow).Clamped()
			alpha = math.Min(alpha+glow*(t.MaxAlpha-alpha), t.MaxAlpha)
			halo := CellRadius(a, frame, r.cfg) + glow*r.cfg.GlowRadius
			s.Circle(a.Pos.X, a.Pos.Y, halo, RGBA(t.Glow, glow*t.MaxAlpha*0.35))
		}
		if alpha <= 0 {
			continue
		}
		s.Circle(a.Pos.X, a.Pos.Y, CellRadius(a, frame, r.cfg), RGBA(col, alpha))
	}
}

// Sparks draws burst sparks as points fading with their remaining life.
func (r *Renderer) Sparks(s Surface, sparks SparkSet, weight float64) {
	t := r.Theme()
	radius := math.Max(weight*0.5, 0.5)
	sparks.Each(func(spark *components.Spark, life *components.Lifetime) {
		alpha := SparkAlpha(*life, t)
		if alpha <= 0 {
			return
		}
		s.Circle(spark.Pos.X, spark.Pos.Y, radius, RGBA(t.Spark, alpha))
	})
}

// Follower draws the cursor follower ring.
func (r *Renderer) Follower(s Surface, x, y float64, cc *config.CursorConfig) {
	t := r.Theme()
	s.SetBlend(BlendNormal)
	s.Ring(x, y, cc.Radius, cc.Weight, RGBA(t.Cursor, cc.Alpha))
}
