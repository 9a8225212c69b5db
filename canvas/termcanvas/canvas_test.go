package termcanvas

import (
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/heroflow/renderer"
)

var black = color.RGBA{A: 255}

func TestResize_CellGrid(t *testing.T) {
	tests := []struct {
		w, h       int
		cols, rows int
	}{
		{800, 480, 100, 30},
		{801, 490, 100, 30},
		{3, 3, 1, 1},
	}
	for _, tt := range tests {
		c := New()
		c.Resize(tt.w, tt.h)
		cols, rows := c.Size()
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("Resize(%d, %d): expected %dx%d cells, got %dx%d", tt.w, tt.h, tt.cols, tt.rows, cols, rows)
		}
	}
}

func TestPixelSizeRoundTrip(t *testing.T) {
	w, h := PixelSize(80, 24)
	c := New()
	c.Resize(w, h)
	if cols, rows := c.Size(); cols != 80 || rows != 24 {
		t.Errorf("expected 80x24, got %dx%d", cols, rows)
	}
	x, y := CellCenter(2, 3)
	if x != 20 || y != 56 {
		t.Errorf("expected cell center (20, 56), got (%v, %v)", x, y)
	}
}

func TestClear_BlankGlyphs(t *testing.T) {
	c := New()
	c.Resize(80, 80)
	c.Clear(black)
	for row := 0; row < 5; row++ {
		for col := 0; col < 10; col++ {
			if g := c.Glyph(col, row); g != ' ' {
				t.Fatalf("expected blank cell at %d,%d, got %q", col, row, g)
			}
		}
	}
}

func TestAdditiveAccumulates(t *testing.T) {
	c := New()
	c.Resize(80, 80)
	c.Clear(black)
	c.SetBlend(renderer.BlendAdditive)

	cyan := color.RGBA{R: 0, G: 220, B: 255, A: 60}
	c.Circle(4, 8, 1, cyan)
	once := c.At(0, 0)
	c.Circle(4, 8, 1, cyan)
	twice := c.At(0, 0)

	if twice.G <= once.G || twice.B <= once.B {
		t.Errorf("expected additive strokes to brighten, got %v then %v", once, twice)
	}
	if c.Glyph(0, 0) == ' ' {
		t.Error("expected a visible glyph after drawing")
	}
}

func TestFadeDecaysTowardBackground(t *testing.T) {
	c := New()
	c.Resize(80, 80)
	c.Clear(black)
	c.Circle(4, 8, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	before := c.At(0, 0).R
	for i := 0; i < 50; i++ {
		c.Fade(color.RGBA{A: 20})
	}
	after := c.At(0, 0).R
	if after >= before || after > 0.05 {
		t.Errorf("expected fade toward black, got %v -> %v", before, after)
	}
}

func TestLineCoversEndpoints(t *testing.T) {
	c := New()
	c.Resize(160, 160)
	c.Clear(black)
	c.Line(4, 8, 156, 152, 1, color.RGBA{R: 255, A: 255})

	if c.At(0, 0).R == 0 {
		t.Error("expected start cell drawn")
	}
	if c.At(19, 9).R == 0 {
		t.Error("expected end cell drawn")
	}
}

func TestDrawingOutsideIsClipped(t *testing.T) {
	c := New()
	c.Resize(80, 80)
	c.Clear(black)
	c.Line(-100, -100, -10, -10, 1, color.RGBA{R: 255, A: 255})
	c.Ring(500, 500, 20, 1, color.RGBA{R: 255, A: 255})
}

func TestPresent(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(10, 5)

	c := New()
	c.Resize(PixelSize(10, 5))
	c.Clear(black)
	c.Circle(4, 8, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	c.Present(screen)

	mainc, _, _, _ := screen.GetContent(0, 0)
	if mainc != '@' {
		t.Errorf("expected full-intensity glyph, got %q", mainc)
	}
	mainc, _, _, _ = screen.GetContent(5, 3)
	if mainc != ' ' {
		t.Errorf("expected blank glyph, got %q", mainc)
	}
}
