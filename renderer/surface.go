// Package renderer turns simulation state into draw calls on a Surface.
package renderer

import "image/color"

// BlendMode selects how new strokes combine with what is already drawn.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdditive
)

func (m BlendMode) String() string {
	if m == BlendAdditive {
		return "additive"
	}
	return "normal"
}

// Surface is a 2D raster the renderer draws into. Colors carry straight
// (non-premultiplied) alpha. Implementations never report pixels back.
type Surface interface {
	Resize(w, h int)
	// Clear replaces every pixel with c.
	Clear(c color.RGBA)
	// Fade blends c over the whole surface, leaving translucent trails.
	Fade(c color.RGBA)
	SetBlend(mode BlendMode)
	Line(x0, y0, x1, y1, weight float64, c color.RGBA)
	Circle(x, y, r float64, c color.RGBA)
	Ring(x, y, r, weight float64, c color.RGBA)
}

// NopSurface discards every call. Used for headless runs.
type NopSurface struct{}

func (NopSurface) Resize(int, int) {}
func (NopSurface) Clear(color.RGBA) {}
func (NopSurface) Fade(color.RGBA) {}
func (NopSurface) SetBlend(BlendMode) {}
func (NopSurface) Line(float64, float64, float64, float64, float64, color.RGBA) {}
func (NopSurface) Circle(float64, float64, float64, color.RGBA) {}
func (NopSurface) Ring(float64, float64, float64, float64, color.RGBA) {}
