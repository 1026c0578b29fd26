package boneoverlay

import (
	"image/color"
	"math"
)

// A Color represents a color, containing R, G, B, and A components, each expected to range from 0 to 1.
type Color struct {
	R, G, B, A float32
}

// NewColor returns a new Color, with the provided R, G, B, and A components expected to range from 0 to 1.
func NewColor(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// Clamped returns a copy of the Color with every component clamped to the 0-1 range. NaN components become 0.
func (c Color) Clamped() Color {
	c.R = clampComponent(c.R)
	c.G = clampComponent(c.G)
	c.B = clampComponent(c.B)
	c.A = clampComponent(c.A)
	return c
}

// Finite returns true if none of the Color's components are NaN or infinite.
func (c Color) Finite() bool {
	return finite(float64(c.R)) && finite(float64(c.G)) && finite(float64(c.B)) && finite(float64(c.A))
}

func clampComponent(v float32) float32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	return clamp(v, 0, 1)
}

// MultiplyAlpha returns a copy of the Color with its alpha multiplied by the factor given.
func (c Color) MultiplyAlpha(factor float64) Color {
	c.A = clamp(float32(float64(c.A)*factor), 0, 1)
	return c
}

// Equals returns true if every component of both Colors is within a small tolerance.
func (c Color) Equals(other Color) bool {
	const eps = 1e-4
	return math.Abs(float64(c.R-other.R)) < eps &&
		math.Abs(float64(c.G-other.G)) < eps &&
		math.Abs(float64(c.B-other.B)) < eps &&
		math.Abs(float64(c.A-other.A)) < eps
}

// ToNRGBA converts the Color to a non-premultiplied 8-bit color for drawing with image/color consumers (like Ebitengine's vector package).
func (c Color) ToNRGBA() color.NRGBA {
	c = c.Clamped()
	return color.NRGBA{
		R: uint8(math.Round(float64(c.R) * 255)),
		G: uint8(math.Round(float64(c.G) * 255)),
		B: uint8(math.Round(float64(c.B) * 255)),
		A: uint8(math.Round(float64(c.A) * 255)),
	}
}
