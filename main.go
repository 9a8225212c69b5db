package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/heroflow/canvas/rlcanvas"
	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/game"
	"github.com/pthm-cable/heroflow/renderer"
	"github.com/pthm-cable/heroflow/ui"
)

const controlsLegend = "Click: burst | T: theme | R: reduced motion | H/S/P: overlays | Tab: tuning | F1: controls | F11: fullscreen"

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Preset name (empty = use config)")
	headless := flag.Bool("headless", false, "Run without graphics")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	theme := flag.String("theme", "", "Theme: dark or light (empty = use config)")
	reduced := flag.Bool("reduced-motion", false, "Start in reduced motion")
	width := flag.Int("width", 0, "Surface width (0 = use config)")
	height := flag.Int("height", 0, "Surface height (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath, *preset); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *width > 0 {
		cfg.Screen.Width = *width
	}
	if *height > 0 {
		cfg.Screen.Height = *height
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:          rngSeed,
		Theme:         *theme,
		ReducedMotion: *reduced,
		LogStats:      *logStats,
		OutputDir:     *outputDir,
	}

	if *headless {
		runHeadless(cfg, opts, *maxFrames)
		return
	}
	runWindowed(cfg, *configPath, opts, *maxFrames)
}

// runHeadless drives the field with a synthetic pointer and no graphics.
func runHeadless(cfg *config.Config, opts game.Options, maxFrames int) {
	sim, err := game.New(cfg, renderer.NopSurface{}, opts)
	if err != nil {
		slog.Error("failed to create simulator", "error", err)
		os.Exit(1)
	}
	defer closeSim(sim)
	sim.Setup(cfg.Screen.Width, cfg.Screen.Height)

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"preset", cfg.Preset,
		"width", cfg.Screen.Width,
		"height", cfg.Screen.Height,
		"population", sim.Population(),
		"max_frames", maxFrames,
	)

	for {
		sim.UpdateHeadless()

		if maxFrames > 0 && sim.Frames() >= maxFrames {
			slog.Info("max frames reached", "frame", sim.Frames(), "population", sim.Population())
			return
		}
	}
}

func runWindowed(cfg *config.Config, configPath string, opts game.Options, maxFrames int) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	canvas := rlcanvas.New()
	defer canvas.Unload()

	sim, err := game.New(cfg, canvas, opts)
	if err != nil {
		slog.Error("failed to create simulator", "error", err)
		os.Exit(1)
	}
	defer closeSim(sim)
	sim.Setup(rl.GetScreenWidth(), rl.GetScreenHeight())

	overlays := ui.NewOverlayRegistry()
	input := ui.NewInput(sim, overlays)
	hud := ui.NewHUD()
	widgets := ui.NewRenderer()
	stats := ui.StatsPanelDescriptor()
	perf := ui.NewPerfPanel(10, 100)
	controls := ui.NewControlsPanel(10, 100, 300)
	tuning := ui.NewTuningPanel(10, 100, 320, func(name string) (*config.Config, error) {
		return config.Load(configPath, name)
	})

	// Panels drawn last frame; presses over them do not reach the field.
	var panels []rl.Rectangle

	for !rl.WindowShouldClose() {
		input.Poll(panels...)

		canvas.Begin()
		sim.Frame()
		canvas.End()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		canvas.Present()

		panels = panels[:0]
		screenW, screenH := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
		if overlays.IsEnabled(ui.OverlayHUD) {
			hud.Draw(ui.HUDData{
				Title:          cfg.Screen.Title,
				Preset:         sim.Config().Preset,
				Theme:          sim.ThemeName(),
				Population:     sim.Population(),
				Target:         sim.Target(),
				Sparks:         sim.Sparks(),
				Frame:          sim.Frames(),
				FPS:            rl.GetFPS(),
				ReducedMotion:  sim.ReducedMotion(),
				QualityReduced: sim.QualityReduced(),
			})
			hud.DrawControls(screenH, controlsLegend)
		}
		if overlays.IsEnabled(ui.OverlayStats) {
			panels = append(panels, widgets.DrawDescriptor(stats, sim.LastStats(), screenW, screenH))
		}
		if overlays.IsEnabled(ui.OverlayPerf) {
			perf.SetPosition(screenW-230, screenH-260)
			perf.Draw(sim.PerfStats())
		}
		if overlays.IsEnabled(ui.OverlayTuning) {
			panels = append(panels, tuning.Draw(sim))
		}
		if overlays.IsEnabled(ui.OverlayControls) {
			panels = append(panels, controls.Draw(overlays))
		}

		rl.EndDrawing()

		if maxFrames > 0 && sim.Frames() >= maxFrames {
			break
		}
	}
}

func closeSim(sim *game.Simulator) {
	if err := sim.Close(); err != nil {
		slog.Error("failed to close simulator", "error", err)
	}
}
