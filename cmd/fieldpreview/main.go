// Wander field preview tool - interactive visualization of the noise-driven
// wander angles with sliders.
//
// Usage: go run ./cmd/fieldpreview
package main

import (
	"fmt"
	"image/color"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 512
	gridSize     = 128
	arrowEvery   = 8
	panelWidth   = windowWidth - previewSize - 30
)

// WanderParams holds the wander noise parameters.
type WanderParams struct {
	Scale     float32 // Noise lattice units across the preview
	TimeDrift float32 // Shared time term advance per frame
	AngleSpan float32 // Noise [0,1) maps to [0, AngleSpan)
	Force     float32
	Seed      int64
}

func defaultParams() WanderParams {
	cfg, err := config.Defaults()
	if err != nil {
		panic(err)
	}
	w := cfg.Field.Wander
	return WanderParams{
		Scale:     4,
		TimeDrift: float32(w.TimeDrift),
		AngleSpan: float32(w.AngleSpan),
		Force:     float32(w.Force),
		Seed:      12345,
	}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Wander Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	field := systems.NewNoiseField(params.Seed)

	angles := make([]float64, gridSize*gridSize)
	img := rl.GenImageColor(gridSize, gridSize, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)
	rl.SetTextureFilter(texture, rl.FilterBilinear)

	var t float64
	animating := false
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			t += float64(params.TimeDrift)
			needsRegen = true
		}
		if needsRegen {
			generateAngles(angles, field, params, t)
			updateTexture(texture, angles)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridSize, Height: gridSize},
			rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize},
			rl.Vector2{},
			0,
			rl.White,
		)
		drawArrows(angles)
		rl.DrawRectangleLines(10, 10, previewSize, previewSize, rl.DarkGray)

		// Angle coverage: a span of 4*pi wraps the circle twice, so the
		// histogram should look flat even though noise clusters near 0.5.
		coverage := angleCoverage(angles)
		statsY := int32(previewSize + 25)
		rl.DrawText(fmt.Sprintf("Angle coverage: %.0f%% of 16 sectors", coverage*100), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.3f", t), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Wander Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		panelY, needsRegen = slider(panelX, panelY, "Scale (lattice units across view)", "%.1f", &params.Scale, 0.5, 20, needsRegen)
		panelY, needsRegen = slider(panelX, panelY, "Time drift (per frame)", "%.4f", &params.TimeDrift, 0, 0.02, needsRegen)
		panelY, needsRegen = slider(panelX, panelY, "Angle span (radians)", "%.2f", &params.AngleSpan, math.Pi, 4*math.Pi, needsRegen)
		panelY, _ = slider(panelX, panelY, "Force (per frame)", "%.3f", &params.Force, 0, 0.3, false)

		seed := float32(params.Seed)
		panelY, _ = slider(panelX, panelY, "Seed", "%.0f", &seed, 0, 99999, false)
		if int64(seed) != params.Seed {
			params.Seed = int64(seed)
			field = systems.NewNoiseField(params.Seed)
			needsRegen = true
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			t = 0
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			field = systems.NewNoiseField(params.Seed)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			field = systems.NewNoiseField(params.Seed)
			t = 0
			needsRegen = true
		}
		panelY += 55

		snippet := yamlSnippet(params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		rl.DrawText(snippet, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(snippet)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled raygui slider bound to v and returns the next row
// position and whether anything changed.
func slider(x, y float32, label, format string, v *float32, lo, hi float32, changed bool) (float32, bool) {
	rl.DrawText(label, int32(x), int32(y), 14, rl.Gray)
	y += 18
	nv := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: panelWidth - 80, Height: 20}, "", "", *v, lo, hi)
	rl.DrawText(fmt.Sprintf(format, *v), int32(x+panelWidth-70), int32(y+2), 16, rl.DarkGray)
	if nv != *v {
		*v = nv
		changed = true
	}
	return y + 35, changed
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func yamlSnippet(p WanderParams) string {
	return fmt.Sprintf(`field:
  wander:
    mode: noise
    force: %.3f
    time_drift: %.4f
    angle_span: %.4f`, p.Force, p.TimeDrift, p.AngleSpan)
}

// generateAngles fills the grid with wander headings, the same mapping the
// agents use: angle = noise * span.
func generateAngles(angles []float64, field *systems.NoiseField, p WanderParams, t float64) {
	for y := 0; y < gridSize; y++ {
		v := (float64(y) + 0.5) / gridSize * float64(p.Scale)
		for x := 0; x < gridSize; x++ {
			u := (float64(x) + 0.5) / gridSize * float64(p.Scale)
			angles[y*gridSize+x] = field.Sample(u, v, t) * float64(p.AngleSpan)
		}
	}
}

// updateTexture colors each heading by hue.
func updateTexture(texture rl.Texture2D, angles []float64) {
	pixels := make([]color.RGBA, len(angles))
	for i, a := range angles {
		hue := math.Mod(a, 2*math.Pi) / (2 * math.Pi) * 360
		r, g, b := colorful.Hsv(hue, 0.55, 0.9).RGB255()
		pixels[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	rl.UpdateTexture(texture, pixels)
}

func drawArrows(angles []float64) {
	cell := float32(previewSize) / gridSize
	for y := arrowEvery / 2; y < gridSize; y += arrowEvery {
		for x := arrowEvery / 2; x < gridSize; x += arrowEvery {
			a := angles[y*gridSize+x]
			cx := 10 + (float32(x)+0.5)*cell
			cy := 10 + (float32(y)+0.5)*cell
			l := cell * arrowEvery * 0.4
			ex := cx + float32(math.Cos(a))*l
			ey := cy + float32(math.Sin(a))*l
			rl.DrawLineEx(rl.Vector2{X: cx, Y: cy}, rl.Vector2{X: ex, Y: ey}, 1.5, rl.Color{R: 20, G: 20, B: 20, A: 200})
			rl.DrawCircleV(rl.Vector2{X: ex, Y: ey}, 2, rl.Color{R: 20, G: 20, B: 20, A: 200})
		}
	}
}

// angleCoverage returns the share of 16 direction sectors that any cell points into.
func angleCoverage(angles []float64) float64 {
	var hit [16]bool
	for _, a := range angles {
		s := int(math.Mod(a, 2*math.Pi) / (2 * math.Pi) * 16)
		hit[min(max(s, 0), 15)] = true
	}
	n := 0
	for _, h := range hit {
		if h {
			n++
		}
	}
	return float64(n) / 16
}
