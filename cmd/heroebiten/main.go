// Ebiten frontend: runs the field in an ebiten window.
//
// Usage: go run ./cmd/heroebiten -preset fireflies
// Keys: T theme, R reduced motion, Esc quit. Click or touch for a burst.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/heroflow/canvas/ebitencanvas"
	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/game"
)

var debugFlag = flag.Bool("debug", false, "Show FPS and population overlay")

// Game adapts the simulator to ebiten's Update/Draw/Layout loop.
type Game struct {
	sim     *game.Simulator
	canvas  *ebitencanvas.Canvas
	w, h    int
	started bool
	touches []ebiten.TouchID
}

// Update advances one simulation frame. Rendering goes to the offscreen
// canvas; Draw only presents it.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if !g.started {
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		g.sim.ToggleTheme()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sim.SetReducedMotion(!g.sim.ReducedMotion())
	}

	g.handlePointer()
	g.sim.Frame()
	return nil
}

func (g *Game) handlePointer() {
	g.touches = inpututil.AppendJustPressedTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		x, y := ebiten.TouchPosition(id)
		g.sim.Press(float64(x), float64(y), game.PressTouch)
	}
	if len(g.touches) > 0 {
		return
	}

	x, y := ebiten.CursorPosition()
	g.sim.PointerMove(float64(x), float64(y))
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.sim.Press(float64(x), float64(y), game.PressClick)
	}
}

// Draw presents the canvas.
func (g *Game) Draw(screen *ebiten.Image) {
	g.canvas.Present(screen)

	if *debugFlag {
		msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nPreset: %s\nAgents: %d/%d\nSparks: %d",
			ebiten.ActualFPS(), ebiten.ActualTPS(),
			g.sim.Config().Preset, g.sim.Population(), g.sim.Target(), g.sim.Sparks())
		ebitenutil.DebugPrint(screen, msg)
	}
}

// Layout tracks the window size; a change resizes the field.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.w || outsideHeight != g.h {
		g.w, g.h = outsideWidth, outsideHeight
		if !g.started {
			g.sim.Setup(g.w, g.h)
			g.started = true
		} else {
			g.sim.Resize(g.w, g.h)
		}
	}
	return g.w, g.h
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Preset name (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	theme := flag.String("theme", "", "Theme: dark or light (empty = use config)")
	reduced := flag.Bool("reduced-motion", false, "Start in reduced motion")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath, *preset); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	canvas := ebitencanvas.New()
	sim, err := game.New(cfg, canvas, game.Options{
		Seed:          *seed,
		Theme:         *theme,
		ReducedMotion: *reduced,
		OutputDir:     *outputDir,
	})
	if err != nil {
		slog.Error("failed to create simulator", "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	ebiten.SetWindowSize(cfg.Screen.Width, cfg.Screen.Height)
	ebiten.SetWindowTitle(cfg.Screen.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Screen.TargetFPS)

	if err := ebiten.RunGame(&Game{sim: sim, canvas: canvas}); err != nil && !errors.Is(err, ebiten.Termination) {
		slog.Error("game loop failed", "error", err)
		os.Exit(1)
	}
}
