package renderer

import (
	"image/color"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
)

type call struct {
	op    string
	c     color.RGBA
	r     float64
	blend BlendMode
}

// recordingSurface keeps every draw call for inspection.
type recordingSurface struct {
	calls []call
	w, h  int
}

func (s *recordingSurface) Resize(w, h int)    { s.w, s.h = w, h }
func (s *recordingSurface) Clear(c color.RGBA) { s.calls = append(s.calls, call{op: "clear", c: c}) }
func (s *recordingSurface) Fade(c color.RGBA)  { s.calls = append(s.calls, call{op: "fade", c: c}) }
func (s *recordingSurface) SetBlend(m BlendMode) {
	s.calls = append(s.calls, call{op: "blend", blend: m})
}
func (s *recordingSurface) Line(x0, y0, x1, y1, weight float64, c color.RGBA) {
	s.calls = append(s.calls, call{op: "line", c: c, r: weight})
}
func (s *recordingSurface) Circle(x, y, r float64, c color.RGBA) {
	s.calls = append(s.calls, call{op: "circle", c: c, r: r})
}
func (s *recordingSurface) Ring(x, y, r, weight float64, c color.RGBA) {
	s.calls = append(s.calls, call{op: "ring", c: c, r: r})
}

func (s *recordingSurface) count(op string) int {
	n := 0
	for _, c := range s.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func loadRenderConfig(t *testing.T, preset string) *config.Config {
	t.Helper()
	cfg, err := config.Load("", preset)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	return cfg
}

func TestTrailAlpha(t *testing.T) {
	cfg := loadRenderConfig(t, "")
	dark, err := NewTheme(config.ThemeDark, cfg.Render.Dark)
	if err != nil {
		t.Fatal(err)
	}
	light, err := NewTheme(config.ThemeLight, cfg.Render.Light)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		theme     Theme
		age, life float64
		alignment float64
		want      float64
	}{
		{"birth", dark, 0, 200, 0, 0},
		{"fading in", dark, 7.5, 200, 0, 12.5},
		{"mid life", dark, 100, 200, 0, 25},
		{"fading out", dark, 180, 200, 0, 12.5},
		{"end of life", dark, 200, 200, 0, 0},
		{"partly aligned", dark, 100, 200, 0.2, 37.5},
		{"aligned clamps to dark max", dark, 100, 200, 1, 80},
		{"light mid life", light, 100, 200, 0, 45},
		{"aligned clamps to light max", light, 100, 200, 1, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &components.Agent{Age: tt.age, Life: tt.life, Alignment: tt.alignment}
			got := TrailAlpha(a, tt.theme, &cfg.Render)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected alpha %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStrokeWeight(t *testing.T) {
	cfg := loadRenderConfig(t, "")
	if got := StrokeWeight(0, &cfg.Render); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("expected 0.8, got %v", got)
	}
	if got := StrokeWeight(1, &cfg.Render); math.Abs(got-1.6) > 1e-9 {
		t.Errorf("expected 1.6, got %v", got)
	}
}

func TestAgentColor_Ramp(t *testing.T) {
	cfg := loadRenderConfig(t, "")
	dark, err := NewTheme(config.ThemeDark, cfg.Render.Dark)
	if err != nil {
		t.Fatal(err)
	}

	if got := RGBA(AgentColor(dark, 0), 255); got != (color.RGBA{R: 0, G: 220, B: 255, A: 255}) {
		t.Errorf("expected base cyan at alignment 0, got %v", got)
	}
	if got, want := RGBA(AgentColor(dark, 1), 255), RGBA(dark.Highlight, 255); got != want {
		t.Errorf("expected highlight %v at alignment 1, got %v", want, got)
	}
}

func TestNewTheme_BadHex(t *testing.T) {
	tc := config.ThemeConfig{Background: "#zzz", Fade: "#000000", Base: "#000000", Highlight: "#000000", Glow: "#000000", Spark: "nope", Cursor: "#000000"}
	if _, err := NewTheme("dark", tc); err == nil {
		t.Error("expected error for malformed colors")
	}
}

func TestRenderer_BackgroundAndBlend(t *testing.T) {
	tests := []struct {
		name      string
		preset    string
		theme     string
		wantOp    string
		wantAlpha uint8
		wantBlend BlendMode
	}{
		{"dark fade additive", "", config.ThemeDark, "fade", 20, BlendAdditive},
		{"light fade normal", "", config.ThemeLight, "fade", 25, BlendNormal},
		{"cells clear", "cells", config.ThemeDark, "clear", 255, BlendAdditive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadRenderConfig(t, tt.preset)
			r, err := New(&cfg.Render)
			if err != nil {
				t.Fatal(err)
			}
			r.SetTheme(tt.theme)

			s := &recordingSurface{}
			r.Background(s)

			var bg *call
			for i := range s.calls {
				if s.calls[i].op == "fade" || s.calls[i].op == "clear" {
					bg = &s.calls[i]
				}
			}
			if bg == nil || bg.op != tt.wantOp {
				t.Fatalf("expected %s call, got %+v", tt.wantOp, s.calls)
			}
			if bg.c.A != tt.wantAlpha {
				t.Errorf("expected background alpha %d, got %d", tt.wantAlpha, bg.c.A)
			}
			last := s.calls[len(s.calls)-1]
			if last.op != "blend" || last.blend != tt.wantBlend {
				t.Errorf("expected frame to end in %v blend, got %+v", tt.wantBlend, last)
			}
		})
	}
}

func TestRenderer_AgentsDoNotMutate(t *testing.T) {
	cfg := loadRenderConfig(t, "fireflies")
	r, err := New(&cfg.Render)
	if err != nil {
		t.Fatal(err)
	}

	agents := []components.Agent{
		{Pos: r2.Vec{X: 10, Y: 10}, Prev: r2.Vec{X: 9, Y: 9}, Age: 50, Life: 100},
		{Pos: r2.Vec{X: 20, Y: 20}, Age: 50, Life: 100, Glow: components.Glow{State: components.GlowHold, Peak: 1, Intensity: 1}},
	}
	before := append([]components.Agent(nil), agents...)

	s := &recordingSurface{}
	r.Agents(s, agents, 12)

	if !reflect.DeepEqual(before, agents) {
		t.Error("expected rendering to leave agents untouched")
	}
	// One body per agent plus one halo for the glowing agent.
	if got := s.count("circle"); got != 3 {
		t.Errorf("expected 3 circles, got %d", got)
	}
}

func TestRenderer_TrailsSkipInvisible(t *testing.T) {
	cfg := loadRenderConfig(t, "")
	r, err := New(&cfg.Render)
	if err != nil {
		t.Fatal(err)
	}

	agents := []components.Agent{
		{Age: 0, Life: 100},  // invisible at birth
		{Age: 50, Life: 100}, // visible
	}
	s := &recordingSurface{}
	r.Agents(s, agents, 0)
	if got := s.count("line"); got != 1 {
		t.Errorf("expected 1 trail segment, got %d", got)
	}
}

type sparkSlice []struct {
	spark components.Spark
	life  components.Lifetime
}

func (ss sparkSlice) Each(fn func(*components.Spark, *components.Lifetime)) {
	for i := range ss {
		fn(&ss[i].spark, &ss[i].life)
	}
}

func TestRenderer_SparksFade(t *testing.T) {
	cfg := loadRenderConfig(t, "")
	r, err := New(&cfg.Render)
	if err != nil {
		t.Fatal(err)
	}

	sparks := sparkSlice{
		{life: components.Lifetime{Life: 45, MaxLife: 45}},
		{life: components.Lifetime{Life: 22.5, MaxLife: 45}},
		{life: components.Lifetime{Life: 0, MaxLife: 45}},
	}
	s := &recordingSurface{}
	r.Sparks(s, sparks, cfg.Burst.Weight)

	if len(s.calls) != 2 {
		t.Fatalf("expected 2 visible sparks, got %d", len(s.calls))
	}
	if s.calls[0].c.A != 50 || s.calls[1].c.A != 25 {
		t.Errorf("expected alphas 50 and 25, got %d and %d", s.calls[0].c.A, s.calls[1].c.A)
	}
}

func TestCellRadius_Breathes(t *testing.T) {
	cfg := loadRenderConfig(t, "cells")
	a := &components.Agent{Phase: 0}

	rc := &cfg.Render
	r0 := CellRadius(a, 0, rc)
	if math.Abs(r0-rc.CellRadius) > 1e-9 {
		t.Errorf("expected rest radius %v at phase 0, got %v", rc.CellRadius, r0)
	}
	quarter := int(math.Round(math.Pi / 2 / rc.BreathSpeed))
	r1 := CellRadius(a, quarter, rc)
	if r1 <= r0 {
		t.Errorf("expected radius to swell, got %v then %v", r0, r1)
	}
}
