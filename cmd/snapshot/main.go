// Snapshot tool - runs the field headlessly in a hidden raylib window and
// writes the final frame to a PNG file for inspection.
//
// Usage: go run ./cmd/snapshot -preset flow -frames 600 -out flow.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/heroflow/canvas/rlcanvas"
	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	preset := flag.String("preset", "", "Preset name (empty = use config)")
	theme := flag.String("theme", "", "Theme: dark or light (empty = use config)")
	outPath := flag.String("out", "snapshot.png", "Output PNG path")
	width := flag.Int("width", 1280, "Render width")
	height := flag.Int("height", 720, "Render height")
	frames := flag.Int("frames", 600, "Frames to simulate before capturing")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	cfg, err := config.Load(*configPath, *preset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*width), int32(*height), "Snapshot")
	defer rl.CloseWindow()

	canvas := rlcanvas.New()
	defer canvas.Unload()

	sim, err := game.New(cfg, canvas, game.Options{Seed: *seed, Theme: *theme})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create simulator: %v\n", err)
		os.Exit(1)
	}
	defer sim.Close()
	sim.Setup(*width, *height)

	for sim.Frames() < *frames {
		canvas.Begin()
		sim.UpdateHeadless()
		canvas.End()
	}

	img := canvas.Image()
	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Field rendered to: %s (%dx%d, %d frames, %d agents)\n",
			*outPath, *width, *height, sim.Frames(), sim.Population())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
