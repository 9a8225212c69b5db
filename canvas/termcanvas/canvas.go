// Package termcanvas rasterizes the field into terminal cells.
//
// Every cell stands for a CellWidth x CellHeight block of pixels. Cells keep a
// full color; Present maps the distance from the background onto a character
// ramp so dense regions read as heavier glyphs.
package termcanvas

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/heroflow/renderer"
)

// Pixel size of one terminal cell.
const (
	CellWidth  = 8
	CellHeight = 16
)

var ramp = []rune(" .:-=+*#%@")

// Canvas is a renderer.Surface backed by a cell buffer.
type Canvas struct {
	cols, rows int
	cells      []colorful.Color
	bg         colorful.Color
	blend      renderer.BlendMode
}

var _ renderer.Surface = (*Canvas)(nil)

// New creates an empty canvas. Call Resize before drawing.
func New() *Canvas {
	return &Canvas{}
}

// PixelSize converts a terminal size in cells to surface pixels.
func PixelSize(cols, rows int) (w, h int) {
	return cols * CellWidth, rows * CellHeight
}

// CellCenter returns the pixel coordinate at the center of a cell.
func CellCenter(col, row int) (x, y float64) {
	return float64(col*CellWidth) + CellWidth/2, float64(row*CellHeight) + CellHeight/2
}

// Size returns the canvas size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

func (c *Canvas) Resize(w, h int) {
	cols := max(w/CellWidth, 1)
	rows := max(h/CellHeight, 1)
	if cols == c.cols && rows == c.rows {
		return
	}
	c.cols, c.rows = cols, rows
	c.cells = make([]colorful.Color, cols*rows)
	for i := range c.cells {
		c.cells[i] = c.bg
	}
}

func (c *Canvas) Clear(col color.RGBA) {
	c.bg = toColorful(col)
	for i := range c.cells {
		c.cells[i] = c.bg
	}
}

// Fade always blends normally, whatever the current mode.
func (c *Canvas) Fade(col color.RGBA) {
	src := toColorful(col)
	t := float64(col.A) / 255
	for i := range c.cells {
		c.cells[i] = c.cells[i].BlendRgb(src, t)
	}
	c.bg = c.bg.BlendRgb(src, t)
}

func (c *Canvas) SetBlend(mode renderer.BlendMode) {
	c.blend = mode
}

func (c *Canvas) Line(x0, y0, x1, y1, _ float64, col color.RGBA) {
	cx0, cy0 := x0/CellWidth, y0/CellHeight
	cx1, cy1 := x1/CellWidth, y1/CellHeight
	steps := int(math.Ceil(math.Max(math.Abs(cx1-cx0), math.Abs(cy1-cy0))))

	lastCol, lastRow := -1, -1
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		col2 := int(math.Floor(cx0 + (cx1-cx0)*t))
		row := int(math.Floor(cy0 + (cy1-cy0)*t))
		if col2 == lastCol && row == lastRow {
			continue
		}
		lastCol, lastRow = col2, row
		c.plot(col2, row, col)
	}
}

func (c *Canvas) Circle(x, y, r float64, col color.RGBA) {
	minCol := int(math.Floor((x - r) / CellWidth))
	maxCol := int(math.Floor((x + r) / CellWidth))
	minRow := int(math.Floor((y - r) / CellHeight))
	maxRow := int(math.Floor((y + r) / CellHeight))

	hit := false
	for row := minRow; row <= maxRow; row++ {
		for cl := minCol; cl <= maxCol; cl++ {
			px, py := CellCenter(cl, row)
			if math.Hypot(px-x, py-y) <= r {
				c.plot(cl, row, col)
				hit = true
			}
		}
	}
	// Circles smaller than a cell still mark the cell they sit in.
	if !hit {
		c.plot(int(math.Floor(x/CellWidth)), int(math.Floor(y/CellHeight)), col)
	}
}

func (c *Canvas) Ring(x, y, r, _ float64, col color.RGBA) {
	n := max(8, int(2*math.Pi*r/CellWidth))
	lastCol, lastRow := -1, -1
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		cl := int(math.Floor((x + r*math.Cos(a)) / CellWidth))
		row := int(math.Floor((y + r*math.Sin(a)) / CellHeight))
		if cl == lastCol && row == lastRow {
			continue
		}
		lastCol, lastRow = cl, row
		c.plot(cl, row, col)
	}
}

func (c *Canvas) plot(col, row int, src color.RGBA) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	i := row*c.cols + col
	s := toColorful(src)
	a := float64(src.A) / 255

	switch c.blend {
	case renderer.BlendAdditive:
		d := c.cells[i]
		c.cells[i] = colorful.Color{R: d.R + s.R*a, G: d.G + s.G*a, B: d.B + s.B*a}.Clamped()
	default:
		c.cells[i] = c.cells[i].BlendRgb(s, a)
	}
}

// At returns the color of a cell.
func (c *Canvas) At(col, row int) colorful.Color {
	return c.cells[row*c.cols+col]
}

// Glyph picks the ramp character for a cell.
func (c *Canvas) Glyph(col, row int) rune {
	d := c.At(col, row).DistanceCIE76(c.bg)
	idx := int(math.Round(math.Min(d*2, 1) * float64(len(ramp)-1)))
	return ramp[idx]
}

// Present copies the buffer to the screen and shows it.
func (c *Canvas) Present(screen tcell.Screen) {
	bg := tcellColor(c.bg)
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			style := tcell.StyleDefault.
				Foreground(tcellColor(c.At(col, row))).
				Background(bg)
			screen.SetContent(col, row, c.Glyph(col, row), nil, style)
		}
	}
	screen.Show()
}

// Overlay writes text at a cell position over the last presented frame.
func Overlay(screen tcell.Screen, col, row int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		screen.SetContent(col+i, row, r, nil, style)
	}
}

func toColorful(c color.RGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
