// Package ebitencanvas draws the field into an offscreen ebiten image.
package ebitencanvas

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/pthm-cable/heroflow/renderer"
)

// Canvas is a renderer.Surface backed by two images: the persistent trail
// buffer and a scratch layer. Additive strokes go to the layer, which is
// composited with BlendLighter when the mode changes or the frame is presented.
type Canvas struct {
	target *ebiten.Image
	layer  *ebiten.Image
	w, h   int
	blend  renderer.BlendMode
	dirty  bool // Layer holds strokes not yet composited
}

var _ renderer.Surface = (*Canvas)(nil)

// New creates a canvas. Call Resize before drawing.
func New() *Canvas {
	return &Canvas{}
}

func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if c.target != nil && w == c.w && h == c.h {
		return
	}
	if c.target != nil {
		c.target.Deallocate()
		c.layer.Deallocate()
	}
	c.w, c.h = w, h
	c.target = ebiten.NewImage(w, h)
	c.layer = ebiten.NewImage(w, h)
	c.dirty = false
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (int, int) {
	return c.w, c.h
}

func (c *Canvas) Clear(col color.RGBA) {
	if c.target == nil {
		return
	}
	c.layer.Clear()
	c.dirty = false
	c.target.Fill(straight(col))
}

func (c *Canvas) Fade(col color.RGBA) {
	c.flush()
	vector.DrawFilledRect(c.target, 0, 0, float32(c.w), float32(c.h), straight(col), false)
}

func (c *Canvas) SetBlend(mode renderer.BlendMode) {
	if mode == c.blend {
		return
	}
	c.flush()
	c.blend = mode
}

// flush composites pending additive strokes onto the trail buffer.
func (c *Canvas) flush() {
	if !c.dirty {
		return
	}
	c.target.DrawImage(c.layer, &ebiten.DrawImageOptions{Blend: ebiten.BlendLighter})
	c.layer.Clear()
	c.dirty = false
}

func (c *Canvas) dst() *ebiten.Image {
	if c.blend == renderer.BlendAdditive {
		c.dirty = true
		return c.layer
	}
	return c.target
}

func (c *Canvas) Line(x0, y0, x1, y1, weight float64, col color.RGBA) {
	vector.StrokeLine(c.dst(), float32(x0), float32(y0), float32(x1), float32(y1), float32(weight), straight(col), true)
}

func (c *Canvas) Circle(x, y, r float64, col color.RGBA) {
	vector.DrawFilledCircle(c.dst(), float32(x), float32(y), float32(r), straight(col), true)
}

func (c *Canvas) Ring(x, y, r, weight float64, col color.RGBA) {
	vector.StrokeCircle(c.dst(), float32(x), float32(y), float32(r), float32(weight), straight(col), true)
}

// Present composites pending strokes and draws the trail buffer onto screen.
func (c *Canvas) Present(screen *ebiten.Image) {
	if c.target == nil {
		return
	}
	c.flush()
	screen.DrawImage(c.target, nil)
}

// Surface colors carry straight alpha; image/color.RGBA is premultiplied.
func straight(c color.RGBA) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
