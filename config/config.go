// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Wander modes.
const (
	WanderNoise    = "noise"
	WanderBrownian = "brownian"
	WanderNone     = "none"
)

// Pointer attraction modes.
const (
	AttractOrbit = "orbit"
	AttractSteer = "steer"
	AttractNone  = "none"
)

// Burst modes for press events.
const (
	BurstParticles = "particles"
	BurstImpulse   = "impulse"
	BurstNone      = "none"
)

// Agent shapes.
const (
	ShapeTrail = "trail"
	ShapeCell  = "cell"
)

// Background modes.
const (
	BackgroundFade  = "fade"
	BackgroundClear = "clear"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Field      FieldConfig      `yaml:"field"`
	Population PopulationConfig `yaml:"population"`
	Quality    QualityConfig    `yaml:"quality"`
	Burst      BurstConfig      `yaml:"burst"`
	Render     RenderConfig     `yaml:"render"`
	Cursor     CursorConfig     `yaml:"cursor"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Newsletter NewsletterConfig `yaml:"newsletter"`

	// Preset names the entry of Presets layered between the defaults and the user file.
	Preset  string               `yaml:"preset"`
	Presets map[string]yaml.Node `yaml:"presets"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp maps t in [0,1] onto the range.
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FieldConfig holds the per-agent force model.
type FieldConfig struct {
	Wander       WanderConfig  `yaml:"wander"`
	Attract      AttractConfig `yaml:"attract"`
	Speed        SpeedConfig   `yaml:"speed"`
	Friction     float64       `yaml:"friction"`      // Velocity multiplier applied after each move
	Margin       float64       `yaml:"margin"`        // Wrap margin outside the surface, in pixels
	Life         Range         `yaml:"life"`          // Frames before an agent resets in place
	InitialSpeed float64       `yaml:"initial_speed"` // Initial velocity components drawn from [-v, v]
	Glow         GlowConfig    `yaml:"glow"`
}

// WanderConfig holds the idle wander force.
type WanderConfig struct {
	Mode                  string  `yaml:"mode"`
	Force                 float64 `yaml:"force"`       // Magnitude of the noise-driven force
	Step                  float64 `yaml:"step"`        // Per-frame advance of each agent's noise offsets
	TimeDrift             float64 `yaml:"time_drift"`  // Shared time term so the field drifts as a whole
	AngleSpan             float64 `yaml:"angle_span"`  // Noise [0,1) maps onto [0, angle_span)
	Jitter                float64 `yaml:"jitter"`      // Brownian per-frame velocity jitter
	KickChance            float64 `yaml:"kick_chance"` // Brownian probability of a larger kick
	Kick                  float64 `yaml:"kick"`
	SuppressWhenAttracted bool    `yaml:"suppress_when_attracted"`
}

// AttractConfig holds the pointer attraction model.
type AttractConfig struct {
	Mode            string  `yaml:"mode"`
	InfluenceRadius float64 `yaml:"influence_radius"`
	MinDistance     float64 `yaml:"min_distance"` // Guard against the singularity at the pointer
	OrbitRadius     float64 `yaml:"orbit_radius"`
	Exponent        float64 `yaml:"exponent"` // Falloff = (1 - d/R)^exponent
	Attract         float64 `yaml:"attract"`  // Inward radial strength outside the orbit radius
	Orbit           float64 `yaml:"orbit"`    // Tangential strength
	Repel           float64 `yaml:"repel"`    // Outward push inside the orbit radius
	Steer           float64 `yaml:"steer"`    // Steer mode lerp factor at full falloff
	SteerSpeed      float64 `yaml:"steer_speed"`
	AlignRate       float64 `yaml:"align_rate"`      // Alignment smoothing toward falloff
	DecayRate       float64 `yaml:"decay_rate"`      // Alignment decay outside the influence radius
	IdleDecayRate   float64 `yaml:"idle_decay_rate"` // Alignment decay while the pointer is away
}

// SpeedConfig holds per-agent speed caps.
type SpeedConfig struct {
	Base           Range   `yaml:"base"`
	Boost          float64 `yaml:"boost"`           // Cap multiplier at full alignment
	BoostSmoothing float64 `yaml:"boost_smoothing"` // 1 follows the boosted target immediately
	RecoverRate    float64 `yaml:"recover_rate"`
	AlignmentBonus float64 `yaml:"alignment_bonus"` // Extra clamp headroom per unit alignment
}

// GlowConfig holds the firefly flash state machine.
type GlowConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Chance        float64 `yaml:"chance"`         // Per-frame chance to start a flash when idle
	AlignedChance float64 `yaml:"aligned_chance"` // Added chance at full alignment
	RiseFrames    int     `yaml:"rise_frames"`
	HoldFrames    int     `yaml:"hold_frames"`
	FallFrames    int     `yaml:"fall_frames"`
	Peak          Range   `yaml:"peak"`
}

// TierConfig maps a viewport width breakpoint to a population size.
// MaxWidth 0 matches every width and acts as the default branch.
type TierConfig struct {
	MaxWidth int `yaml:"max_width"`
	Count    int `yaml:"count"`
}

// PopulationConfig holds population sizing.
type PopulationConfig struct {
	Tiers                  []TierConfig `yaml:"tiers"`
	ReducedMotionScale     float64      `yaml:"reduced_motion_scale"`
	ReducedMotionFrameSkip int          `yaml:"reduced_motion_frame_skip"` // Render 1 of every N frames
}

// QualityConfig holds the adaptive quality controller.
type QualityConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Window        int     `yaml:"window"`         // FPS samples kept
	CheckInterval int     `yaml:"check_interval"` // Frames between checks
	LowFPS        float64 `yaml:"low_fps"`
	Keep          float64 `yaml:"keep"` // Fraction of the population kept after degrading
}

// EmitConfig holds one burst flavor.
type EmitConfig struct {
	Count   int     `yaml:"count"`
	Speed   Range   `yaml:"speed"`
	Life    Range   `yaml:"life"`
	MaxLife float64 `yaml:"max_life"` // Fade denominator
}

// ImpulseConfig holds the impulse burst mode.
type ImpulseConfig struct {
	Radius   float64 `yaml:"radius"`
	Strength float64 `yaml:"strength"`
}

// BurstConfig holds press burst effects.
type BurstConfig struct {
	Mode      string        `yaml:"mode"`
	Click     EmitConfig    `yaml:"click"`
	Touch     EmitConfig    `yaml:"touch"`
	Drag      float64       `yaml:"drag"`
	MaxSparks int           `yaml:"max_sparks"`
	Weight    float64       `yaml:"weight"`
	Impulse   ImpulseConfig `yaml:"impulse"`
}

// ThemeConfig holds the colors of one presentation mode. Colors are hex strings.
// Alphas use the 0-255 scale.
type ThemeConfig struct {
	Background string  `yaml:"background"`
	Fade       string  `yaml:"fade"`
	Base       string  `yaml:"base"`
	Highlight  string  `yaml:"highlight"`
	Glow       string  `yaml:"glow"`
	Spark      string  `yaml:"spark"`
	Cursor     string  `yaml:"cursor"`
	BaseAlpha  float64 `yaml:"base_alpha"`
	MaxAlpha   float64 `yaml:"max_alpha"`
	FadeAlpha  float64 `yaml:"fade_alpha"`
	SparkAlpha float64 `yaml:"spark_alpha"`
	Additive   bool    `yaml:"additive"`
}

// RenderConfig holds presentation parameters.
type RenderConfig struct {
	Theme           string      `yaml:"theme"`
	Shape           string      `yaml:"shape"`
	Background      string      `yaml:"background"`
	FadeIn          int         `yaml:"fade_in"`  // Frames of fade-in at the start of life
	FadeOut         int         `yaml:"fade_out"` // Frames of fade-out at the end of life
	AlignmentBoost  float64     `yaml:"alignment_boost"`
	Weight          float64     `yaml:"weight"`
	WeightBoost     float64     `yaml:"weight_boost"`
	CellRadius      float64     `yaml:"cell_radius"`
	BreathAmplitude float64     `yaml:"breath_amplitude"`
	BreathSpeed     float64     `yaml:"breath_speed"`
	GlowRadius      float64     `yaml:"glow_radius"`
	Dark            ThemeConfig `yaml:"dark"`
	Light           ThemeConfig `yaml:"light"`
}

// CursorConfig holds the spring-smoothed cursor follower.
type CursorConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
	Radius    float64 `yaml:"radius"`
	Weight    float64 `yaml:"weight"`
	Alpha     float64 `yaml:"alpha"`
}

// TelemetryConfig holds stats collection parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Frames per telemetry window
	PerfWindow  int `yaml:"perf_window"`  // Frames in the rolling perf window
}

// NewsletterConfig holds the latest-post scraper.
type NewsletterConfig struct {
	SitemapURL           string        `yaml:"sitemap_url"`
	PostPrefix           string        `yaml:"post_prefix"`
	Listen               string        `yaml:"listen"`
	Timeout              time.Duration `yaml:"timeout"`
	CacheMaxAge          int           `yaml:"cache_max_age"`          // s-maxage, seconds
	StaleWhileRevalidate int           `yaml:"stale_while_revalidate"` // seconds
	FallbackTitle        string        `yaml:"fallback_title"`
	UserAgent            string        `yaml:"user_agent"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ScreenW32   float32
	ScreenH32   float32
	PresetNames []string
}

// Global config instance
var global *Config

// Init loads configuration from the given path and applies the named preset.
// Both may be empty. Must be called before Cfg().
func Init(path, preset string) error {
	cfg, err := Load(path, preset)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit loads configuration or panics on error.
func MustInit(path, preset string) {
	if err := Init(path, preset); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Cfg returns the global configuration.
// Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Load reads configuration from a YAML file, using embedded defaults as base.
// The preset named by the argument (or by the file's preset key) is applied over the
// defaults, then the user file is applied again so its explicit keys win.
func Load(path, preset string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	var data []byte
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if preset == "" {
		preset = cfg.Preset
	}
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
		if data != nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
			cfg.Preset = preset
		}
	}

	cfg.computeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	cfg.computeDerived()
	return cfg, nil
}

// ApplyPreset decodes the named preset over the current values.
func (c *Config) ApplyPreset(name string) error {
	node, ok := c.Presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(c.PresetNames(), ", "))
	}
	if err := node.Decode(c); err != nil {
		return fmt.Errorf("applying preset %q: %w", name, err)
	}
	c.Preset = name
	c.computeDerived()
	return nil
}

// PresetNames returns the preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Theme returns the active theme's colors.
func (c *Config) Theme() ThemeConfig {
	if c.Render.Theme == ThemeLight {
		return c.Render.Light
	}
	return c.Render.Dark
}

// Clone returns a deep copy suitable for independent mutation.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Population.Tiers = append([]TierConfig(nil), c.Population.Tiers...)
	if c.Presets != nil {
		cp.Presets = make(map[string]yaml.Node, len(c.Presets))
		for k, v := range c.Presets {
			cp.Presets[k] = v
		}
	}
	cp.Derived.PresetNames = append([]string(nil), c.Derived.PresetNames...)
	return &cp
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.PresetNames = c.PresetNames()

	if c.Population.ReducedMotionFrameSkip < 1 {
		c.Population.ReducedMotionFrameSkip = 1
	}
}

// Validate reports every value the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error

	f := c.Field
	if f.Friction <= 0 || f.Friction > 1 {
		errs = append(errs, fmt.Errorf("field.friction must be in (0,1], got %v", f.Friction))
	}
	if f.Margin < 0 {
		errs = append(errs, fmt.Errorf("field.margin must be >= 0, got %v", f.Margin))
	}
	if f.Life.Min <= 0 || f.Life.Max < f.Life.Min {
		errs = append(errs, fmt.Errorf("field.life must satisfy 0 < min <= max, got [%v, %v]", f.Life.Min, f.Life.Max))
	}
	if f.Speed.Base.Min <= 0 || f.Speed.Base.Max < f.Speed.Base.Min {
		errs = append(errs, fmt.Errorf("field.speed.base must satisfy 0 < min <= max, got [%v, %v]", f.Speed.Base.Min, f.Speed.Base.Max))
	}
	if f.Speed.Boost < 1 {
		errs = append(errs, fmt.Errorf("field.speed.boost must be >= 1, got %v", f.Speed.Boost))
	}
	switch f.Wander.Mode {
	case WanderNoise, WanderBrownian, WanderNone:
	default:
		errs = append(errs, fmt.Errorf("field.wander.mode %q is not one of noise, brownian, none", f.Wander.Mode))
	}
	switch f.Attract.Mode {
	case AttractOrbit, AttractSteer, AttractNone:
	default:
		errs = append(errs, fmt.Errorf("field.attract.mode %q is not one of orbit, steer, none", f.Attract.Mode))
	}
	if f.Attract.Mode != AttractNone && f.Attract.InfluenceRadius <= f.Attract.MinDistance {
		errs = append(errs, fmt.Errorf("field.attract.influence_radius must exceed min_distance"))
	}
	for _, rate := range []float64{f.Attract.AlignRate, f.Attract.DecayRate, f.Attract.IdleDecayRate} {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Errorf("field.attract smoothing rates must be in [0,1], got %v", rate))
			break
		}
	}
	if f.Glow.Enabled && (f.Glow.Peak.Min < 0 || f.Glow.Peak.Max > 1 || f.Glow.Peak.Max < f.Glow.Peak.Min) {
		errs = append(errs, fmt.Errorf("field.glow.peak must lie within [0,1]"))
	}

	if len(c.Population.Tiers) == 0 {
		errs = append(errs, errors.New("population.tiers must not be empty"))
	} else if last := c.Population.Tiers[len(c.Population.Tiers)-1]; last.MaxWidth != 0 {
		errs = append(errs, errors.New("population.tiers must end with a max_width: 0 default tier"))
	}
	for _, t := range c.Population.Tiers {
		if t.Count < 0 {
			errs = append(errs, fmt.Errorf("population tier count must be >= 0, got %d", t.Count))
		}
	}
	if c.Population.ReducedMotionScale <= 0 || c.Population.ReducedMotionScale > 1 {
		errs = append(errs, fmt.Errorf("population.reduced_motion_scale must be in (0,1], got %v", c.Population.ReducedMotionScale))
	}

	q := c.Quality
	if q.Window < 1 || q.CheckInterval < 1 {
		errs = append(errs, fmt.Errorf("quality.window and quality.check_interval must be positive"))
	}
	if q.Keep <= 0 || q.Keep > 1 {
		errs = append(errs, fmt.Errorf("quality.keep must be in (0,1], got %v", q.Keep))
	}

	switch c.Burst.Mode {
	case BurstParticles, BurstImpulse, BurstNone:
	default:
		errs = append(errs, fmt.Errorf("burst.mode %q is not one of particles, impulse, none", c.Burst.Mode))
	}
	if c.Burst.Drag <= 0 || c.Burst.Drag > 1 {
		errs = append(errs, fmt.Errorf("burst.drag must be in (0,1], got %v", c.Burst.Drag))
	}

	switch c.Render.Theme {
	case ThemeDark, ThemeLight:
	default:
		errs = append(errs, fmt.Errorf("render.theme %q is not one of dark, light", c.Render.Theme))
	}
	switch c.Render.Shape {
	case ShapeTrail, ShapeCell:
	default:
		errs = append(errs, fmt.Errorf("render.shape %q is not one of trail, cell", c.Render.Shape))
	}
	switch c.Render.Background {
	case BackgroundFade, BackgroundClear:
	default:
		errs = append(errs, fmt.Errorf("render.background %q is not one of fade, clear", c.Render.Background))
	}

	if c.Telemetry.StatsWindow < 1 || c.Telemetry.PerfWindow < 1 {
		errs = append(errs, errors.New("telemetry windows must be positive"))
	}

	return errors.Join(errs...)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
