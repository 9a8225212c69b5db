package renderer

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/heroflow/config"
)

// Theme holds the parsed colors of one presentation mode.
type Theme struct {
	Name       string
	Background colorful.Color
	Fade       colorful.Color
	Base       colorful.Color
	Highlight  colorful.Color
	Glow       colorful.Color
	Spark      colorful.Color
	Cursor     colorful.Color
	BaseAlpha  float64
	MaxAlpha   float64
	FadeAlpha  float64
	SparkAlpha float64
	Additive   bool
}

// NewTheme parses a theme's hex colors.
func NewTheme(name string, tc config.ThemeConfig) (Theme, error) {
	t := Theme{
		Name:       name,
		BaseAlpha:  tc.BaseAlpha,
		MaxAlpha:   tc.MaxAlpha,
		FadeAlpha:  tc.FadeAlpha,
		SparkAlpha: tc.SparkAlpha,
		Additive:   tc.Additive,
	}

	var errs []error
	parse := func(field, hex string, dst *colorful.Color) {
		c, err := colorful.Hex(hex)
		if err != nil {
			errs = append(errs, fmt.Errorf("render.%s.%s: %w", name, field, err))
			return
		}
		*dst = c
	}
	parse("background", tc.Background, &t.Background)
	parse("fade", tc.Fade, &t.Fade)
	parse("base", tc.Base, &t.Base)
	parse("highlight", tc.Highlight, &t.Highlight)
	parse("glow", tc.Glow, &t.Glow)
	parse("spark", tc.Spark, &t.Spark)
	parse("cursor", tc.Cursor, &t.Cursor)

	return t, errors.Join(errs...)
}

// Blend returns the compositing mode of the theme.
func (t Theme) Blend() BlendMode {
	if t.Additive {
		return BlendAdditive
	}
	return BlendNormal
}

// RGBA converts a color and a 0-255 alpha into a straight-alpha color.RGBA.
func RGBA(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Min(math.Max(alpha, 0), 255)))}
}
