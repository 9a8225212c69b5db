// Package game owns the particle field simulation context: population, pointer
// snapshot, bursts and the adaptive quality controller, advanced one frame at a time.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/heroflow/components"
	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/renderer"
	"github.com/pthm-cable/heroflow/systems"
	"github.com/pthm-cable/heroflow/telemetry"
)

// PressKind distinguishes the two discrete press events.
type PressKind uint8

const (
	PressClick PressKind = iota
	PressTouch
)

func (k PressKind) String() string {
	if k == PressTouch {
		return "touch"
	}
	return "click"
}

// Options configures a Simulator beyond the loaded config.
type Options struct {
	Seed          int64
	Theme         string // Overrides render.theme when set
	ReducedMotion bool
	Clock         func() time.Time // Read once per Frame for quality sampling; time.Now when nil. Perf timing always uses wall time.
	LogStats      bool
	OutputDir     string
}

// Simulator is the simulation context. Every method runs on the caller's
// goroutine; handlers and frames must not run concurrently.
type Simulator struct {
	cfg     *config.Config
	surface renderer.Surface
	clock   func() time.Time

	rng      *rand.Rand
	motion   *systems.Motion
	glow     *systems.GlowSystem
	bursts   *systems.Bursts
	quality  *systems.QualityController
	pop      systems.Population
	render   *renderer.Renderer
	follower *Follower

	pointer       components.Pointer
	width, height int
	target        int
	frame         int
	drawn         bool // Whether the last Frame call advanced and rendered
	reducedMotion bool

	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	lastStats telemetry.WindowStats
	logStats  bool
}

// New creates a simulator drawing into surface. Call Setup before the first Frame.
func New(cfg *config.Config, surface renderer.Surface, opts Options) (*Simulator, error) {
	if surface == nil {
		surface = renderer.NopSurface{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	render, err := renderer.New(&cfg.Render)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	if opts.Theme != "" {
		render.SetTheme(opts.Theme)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	s := &Simulator{
		cfg:           cfg,
		surface:       surface,
		clock:         clock,
		rng:           rng,
		motion:        systems.NewMotion(&cfg.Field, systems.NewNoiseField(seed), rng),
		glow:          systems.NewGlowSystem(&cfg.Field.Glow, rng),
		bursts:        systems.NewBursts(cfg.Burst, rng),
		quality:       systems.NewQualityController(cfg.Quality),
		render:        render,
		follower:      NewFollower(cfg.Screen.TargetFPS, cfg.Cursor),
		reducedMotion: opts.ReducedMotion,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow, nil),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		output:        output,
		logStats:      opts.LogStats,
	}
	return s, nil
}

// Setup sizes the population for the viewport and paints the background.
func (s *Simulator) Setup(width, height int) {
	s.applyViewport(width, height)
	slog.Info("field setup",
		"width", width,
		"height", height,
		"population", s.pop.Len(),
		"preset", s.cfg.Preset,
		"reduced_motion", s.reducedMotion,
	)
}

// Resize recomputes the tier target, truncates or extends the population,
// resizes the surface and resets the background.
func (s *Simulator) Resize(width, height int) {
	s.applyViewport(width, height)
	s.collector.RecordResize()
	slog.Debug("field resized", "width", width, "height", height, "population", s.pop.Len())
}

func (s *Simulator) applyViewport(width, height int) {
	s.width, s.height = width, height
	s.motion.SetBounds(systems.Bounds{Width: float64(width), Height: float64(height)})
	s.retarget()
	s.surface.Resize(width, height)
	s.render.Reset(s.surface)
	if s.pointer.Active && !s.bounds().Contains(s.pointer.X, s.pointer.Y) {
		s.pointer.Active = false
	}
}

// retarget sizes the population to the current tier, keeping a past quality
// reduction in force.
func (s *Simulator) retarget() {
	target := systems.TargetCount(s.cfg.Population, s.width, s.reducedMotion)
	if s.quality.Reduced() {
		target = s.quality.Keep(target)
	}
	s.target = target
	s.pop.Resize(target, s.motion.Spawn)
}

// Frame advances and renders one frame.
func (s *Simulator) Frame() {
	now := s.clock()
	s.perf.StartFrame()

	s.perf.StartPhase(telemetry.PhaseQuality)
	if s.cfg.Quality.Enabled && s.quality.Sample(now) {
		s.degrade()
	}

	s.frame++
	s.drawn = false
	if s.reducedMotion && s.frame%s.cfg.Population.ReducedMotionFrameSkip != 0 {
		s.perf.EndFrame()
		return
	}
	s.drawn = true

	s.perf.StartPhase(telemetry.PhaseRender)
	s.render.Background(s.surface)

	s.perf.StartPhase(telemetry.PhaseAgents)
	respawns := 0
	glow := s.glow.Enabled()
	agents := s.pop.Agents
	for i := range agents {
		a := &agents[i]
		s.motion.Update(a, s.pointer, s.frame)
		if glow {
			s.glow.Update(a)
		}
		if a.Age == 0 {
			respawns++
		}
	}
	s.collector.RecordRespawns(respawns)

	s.perf.StartPhase(telemetry.PhaseBursts)
	s.bursts.Update()

	s.perf.StartPhase(telemetry.PhaseRender)
	s.render.Agents(s.surface, agents, s.frame)
	s.render.Sparks(s.surface, s.bursts, s.cfg.Burst.Weight)
	if s.cfg.Cursor.Enabled {
		s.follower.Update(s.pointer.X, s.pointer.Y)
		if s.pointer.Active {
			x, y := s.follower.Position()
			s.render.Follower(s.surface, x, y, &s.cfg.Cursor)
		}
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	if s.collector.ShouldFlush(s.frame) {
		s.flushTelemetry()
	}

	s.perf.EndFrame()
}

// degrade permanently drops the earliest agents after sustained low FPS.
func (s *Simulator) degrade() {
	n := s.pop.Len()
	keep := s.quality.Keep(n)
	s.pop.DropFront(n - keep)
	s.target = s.quality.Keep(s.target)

	slog.Warn("adaptive quality reduced population",
		"frame", s.frame,
		"fps", s.quality.MeanFPS(),
		"threshold", s.cfg.Quality.LowFPS,
		"from", n,
		"to", keep,
	)
}

func (s *Simulator) flushTelemetry() {
	perfStats := s.perf.Stats()
	stats := s.collector.Flush(s.frame, s.pop.Agents, s.target, s.bursts.Count(), perfStats.FPS, s.quality.Reduced())
	s.lastStats = stats

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}
	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, s.frame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

func (s *Simulator) bounds() systems.Bounds {
	return systems.Bounds{Width: float64(s.width), Height: float64(s.height)}
}

// PointerMove updates the live pointer snapshot. The pointer is active iff it
// lies inside the surface.
func (s *Simulator) PointerMove(x, y float64) {
	s.pointer = components.Pointer{X: x, Y: y, Active: s.bounds().Contains(x, y)}
}

// PointerLeave marks the pointer inactive, keeping its last position.
func (s *Simulator) PointerLeave() {
	s.pointer.Active = false
}

// Press handles a click or touch-start at (x, y). Presses outside the surface
// are ignored. Returns the number of sparks spawned or agents nudged.
func (s *Simulator) Press(x, y float64, kind PressKind) int {
	s.PointerMove(x, y)
	if !s.pointer.Active {
		return 0
	}
	s.collector.RecordPress()

	switch s.cfg.Burst.Mode {
	case config.BurstParticles:
		emit := s.cfg.Burst.Click
		if kind == PressTouch {
			emit = s.cfg.Burst.Touch
		}
		n := s.bursts.Emit(x, y, emit)
		s.collector.RecordSparks(n)
		return n

	case config.BurstImpulse:
		imp := s.cfg.Burst.Impulse
		n := s.motion.Impulse(s.pop.Agents, r2.Vec{X: x, Y: y}, imp.Radius, imp.Strength)
		s.collector.RecordNudged(n)
		return n
	}
	return 0
}

// SetReducedMotion switches the reduced motion tier and frame skipping.
func (s *Simulator) SetReducedMotion(on bool) {
	if s.reducedMotion == on {
		return
	}
	s.reducedMotion = on
	s.retarget()
	slog.Info("reduced motion changed", "enabled", on, "population", s.pop.Len())
}

// ToggleTheme switches between dark and light and repaints the background.
func (s *Simulator) ToggleTheme() {
	if s.render.ThemeName() == config.ThemeDark {
		s.SetTheme(config.ThemeLight)
	} else {
		s.SetTheme(config.ThemeDark)
	}
}

// SetTheme selects a theme and repaints the background.
func (s *Simulator) SetTheme(name string) {
	s.render.SetTheme(name)
	s.render.Reset(s.surface)
}

// SetConfig swaps the running configuration, for example after a preset change.
// The population is resized to the new tier table; a past quality reduction stays.
func (s *Simulator) SetConfig(cfg *config.Config) error {
	if err := s.render.SetConfig(&cfg.Render); err != nil {
		return fmt.Errorf("applying render config: %w", err)
	}
	s.cfg = cfg
	s.motion.SetConfig(&cfg.Field)
	s.glow.SetConfig(&cfg.Field.Glow)
	s.bursts.SetConfig(cfg.Burst)
	s.follower.SetConfig(cfg.Screen.TargetFPS, cfg.Cursor)
	if !s.quality.Reduced() {
		s.quality = systems.NewQualityController(cfg.Quality)
	}
	s.retarget()
	s.render.Reset(s.surface)
	return nil
}

// Close flushes telemetry output.
func (s *Simulator) Close() error {
	return s.output.Close()
}

// Config returns the running configuration.
func (s *Simulator) Config() *config.Config { return s.cfg }

// Agents returns the live population. Callers must not retain it across frames.
func (s *Simulator) Agents() []components.Agent { return s.pop.Agents }

// Population returns the number of agents.
func (s *Simulator) Population() int { return s.pop.Len() }

// Target returns the current population target.
func (s *Simulator) Target() int { return s.target }

// Sparks returns the number of live burst sparks.
func (s *Simulator) Sparks() int { return s.bursts.Count() }

// Frames returns the number of Frame calls so far.
func (s *Simulator) Frames() int { return s.frame }

// Drawn reports whether the last Frame call advanced and rendered.
func (s *Simulator) Drawn() bool { return s.drawn }

// Pointer returns the pointer snapshot.
func (s *Simulator) Pointer() components.Pointer { return s.pointer }

// Size returns the viewport size.
func (s *Simulator) Size() (int, int) { return s.width, s.height }

// ThemeName returns the active theme.
func (s *Simulator) ThemeName() string { return s.render.ThemeName() }

// ReducedMotion reports whether reduced motion is on.
func (s *Simulator) ReducedMotion() bool { return s.reducedMotion }

// QualityReduced reports whether adaptive quality has degraded the population.
func (s *Simulator) QualityReduced() bool { return s.quality.Reduced() }

// LastStats returns the most recently flushed telemetry window.
func (s *Simulator) LastStats() telemetry.WindowStats { return s.lastStats }

// PerfStats returns frame timing over the rolling window.
func (s *Simulator) PerfStats() telemetry.PerfStats { return s.perf.Stats() }
