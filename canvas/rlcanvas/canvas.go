// Package rlcanvas draws the field into a raylib render texture.
// The texture persists between frames so Fade can leave trails.
package rlcanvas

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/heroflow/renderer"
)

// Canvas is a renderer.Surface backed by a RenderTexture2D.
// Must be created after the raylib window.
type Canvas struct {
	target rl.RenderTexture2D
	w, h   int32
	loaded bool

	drawing bool // Inside Begin/End
	blend   renderer.BlendMode
}

var _ renderer.Surface = (*Canvas)(nil)

// New creates a canvas. Call Resize before drawing.
func New() *Canvas {
	return &Canvas{}
}

// Resize reallocates the texture. A minimized window reports 0x0, so each
// side is at least one pixel.
func (c *Canvas) Resize(w, h int) {
	tw, th := textureSize(w, h)
	if c.loaded && tw == c.w && th == c.h {
		return
	}
	if c.loaded {
		rl.UnloadRenderTexture(c.target)
	}
	c.w, c.h = tw, th
	c.target = rl.LoadRenderTexture(c.w, c.h)
	c.loaded = true
}

func textureSize(w, h int) (int32, int32) {
	return int32(max(w, 1)), int32(max(h, 1))
}

// Begin opens the texture for a frame of draw calls.
func (c *Canvas) Begin() {
	rl.BeginTextureMode(c.target)
	c.drawing = true
	c.applyBlend()
}

// End closes the texture after a frame of draw calls.
func (c *Canvas) End() {
	if c.blend == renderer.BlendAdditive {
		rl.EndBlendMode()
	}
	rl.EndTextureMode()
	c.drawing = false
}

// Present draws the texture onto the current framebuffer.
// Render textures are stored upside down, hence the negative height.
func (c *Canvas) Present() {
	if !c.loaded {
		return
	}
	src := rl.Rectangle{X: 0, Y: 0, Width: float32(c.w), Height: -float32(c.h)}
	rl.DrawTextureRec(c.target.Texture, src, rl.Vector2{}, rl.White)
}

// Image reads the texture back into an upright CPU image. The caller unloads it.
func (c *Canvas) Image() *rl.Image {
	img := rl.LoadImageFromTexture(c.target.Texture)
	rl.ImageFlipVertical(img)
	return img
}

// Unload releases the texture.
func (c *Canvas) Unload() {
	if c.loaded {
		rl.UnloadRenderTexture(c.target)
		c.loaded = false
	}
}

// Clear may be called outside Begin/End, for example from a resize handler.
func (c *Canvas) Clear(col color.RGBA) {
	if !c.loaded {
		return
	}
	if c.drawing {
		rl.ClearBackground(col)
		return
	}
	rl.BeginTextureMode(c.target)
	rl.ClearBackground(col)
	rl.EndTextureMode()
}

func (c *Canvas) Fade(col color.RGBA) {
	if c.blend == renderer.BlendAdditive {
		rl.EndBlendMode()
	}
	rl.DrawRectangle(0, 0, c.w, c.h, col)
	c.applyBlend()
}

func (c *Canvas) SetBlend(mode renderer.BlendMode) {
	if mode == c.blend {
		return
	}
	if c.drawing && c.blend == renderer.BlendAdditive {
		rl.EndBlendMode()
	}
	c.blend = mode
	if c.drawing {
		c.applyBlend()
	}
}

func (c *Canvas) applyBlend() {
	if c.blend == renderer.BlendAdditive {
		rl.BeginBlendMode(rl.BlendAdditive)
	}
}

func (c *Canvas) Line(x0, y0, x1, y1, weight float64, col color.RGBA) {
	rl.DrawLineEx(
		rl.Vector2{X: float32(x0), Y: float32(y0)},
		rl.Vector2{X: float32(x1), Y: float32(y1)},
		float32(weight),
		col,
	)
}

func (c *Canvas) Circle(x, y, r float64, col color.RGBA) {
	rl.DrawCircleV(rl.Vector2{X: float32(x), Y: float32(y)}, float32(r), col)
}

func (c *Canvas) Ring(x, y, r, weight float64, col color.RGBA) {
	half := float32(weight / 2)
	rl.DrawRing(rl.Vector2{X: float32(x), Y: float32(y)}, float32(r)-half, float32(r)+half, 0, 360, 48, col)
}
