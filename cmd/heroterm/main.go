// Terminal frontend: renders the field into terminal cells with tcell.
//
// Usage: go run ./cmd/heroterm -preset orbit
// Keys: t theme, r reduced motion, p next preset, q/Esc quit. Mouse moves and clicks drive the field.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/heroflow/canvas/termcanvas"
	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/game"
)

type app struct {
	screen     tcell.Screen
	canvas     *termcanvas.Canvas
	sim        *game.Simulator
	configPath string
	mouseDown  bool
	status     bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Preset name (empty = use config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	theme := flag.String("theme", "", "Theme: dark or light (empty = use config)")
	reduced := flag.Bool("reduced-motion", false, "Start in reduced motion")
	logFile := flag.String("log", "", "Write JSON logs to this file (terminal output is the canvas)")
	flag.Parse()

	// The terminal is the canvas, so logs go to a file or nowhere.
	var logger *slog.Logger
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, nil))
	} else {
		logger = slog.New(slog.DiscardHandler)
	}
	slog.SetDefault(logger)

	if err := config.Init(*configPath, *preset); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	a, err := newApp(*configPath, game.Options{Seed: *seed, Theme: *theme, ReducedMotion: *reduced})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.cleanup()

	a.run()
}

func newApp(configPath string, opts game.Options) (*app, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()

	canvas := termcanvas.New()
	sim, err := game.New(config.Cfg(), canvas, opts)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	a := &app{screen: screen, canvas: canvas, sim: sim, configPath: configPath, status: true}
	a.sim.Setup(termcanvas.PixelSize(screen.Size()))
	return a, nil
}

func (a *app) run() {
	fps := max(config.Cfg().Screen.TargetFPS, 1)
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	// PollEvent blocks, so events arrive on a channel and are handled
	// between frames on this goroutine.
	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !a.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			a.sim.Frame()
			if a.sim.Drawn() {
				a.canvas.Present(a.screen)
				a.drawStatus()
			}
		}
	}
}

func (a *app) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 't':
			a.sim.ToggleTheme()
		case 'r':
			a.sim.SetReducedMotion(!a.sim.ReducedMotion())
		case 'p':
			a.nextPreset()
		case 'h':
			a.status = !a.status
		}

	case *tcell.EventMouse:
		col, row := ev.Position()
		x, y := termcanvas.CellCenter(col, row)
		a.sim.PointerMove(x, y)
		down := ev.Buttons()&tcell.Button1 != 0
		if down && !a.mouseDown {
			a.sim.Press(x, y, game.PressClick)
		}
		a.mouseDown = down

	case *tcell.EventFocus:
		if !ev.Focused {
			a.sim.PointerLeave()
		}

	case *tcell.EventResize:
		a.screen.Sync()
		a.sim.Resize(termcanvas.PixelSize(a.screen.Size()))
	}
	return true
}

func (a *app) nextPreset() {
	cfg := a.sim.Config()
	names := cfg.Derived.PresetNames
	if len(names) == 0 {
		return
	}
	next := names[0]
	if i := slices.Index(names, cfg.Preset); i >= 0 {
		next = names[(i+1)%len(names)]
	}

	loaded, err := config.Load(a.configPath, next)
	if err == nil {
		err = a.sim.SetConfig(loaded)
	}
	if err != nil {
		slog.Error("failed to apply preset", "preset", next, "error", err)
		return
	}
	slog.Info("preset applied", "preset", next, "population", a.sim.Population())
}

func (a *app) drawStatus() {
	if !a.status {
		return
	}
	_, rows := a.screen.Size()
	text := fmt.Sprintf(" %s | %d agents | %d sparks | %.0f fps | t theme  r reduced  p preset  h hide  q quit ",
		a.sim.Config().Preset, a.sim.Population(), a.sim.Sparks(), a.sim.PerfStats().FPS)
	termcanvas.Overlay(a.screen, 0, rows-1, text, tcell.StyleDefault.Reverse(true))
	a.screen.Show()
}

func (a *app) cleanup() {
	if err := a.sim.Close(); err != nil {
		slog.Error("failed to close simulator", "error", err)
	}
	a.screen.Fini()
}
