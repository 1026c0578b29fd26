// Package ebitenhost runs the bone overlay inside an Ebitengine window: a Canvas that draws onto an *ebiten.Image, pointer
// input, a selection set, an orbiting camera, and an App tying them to a boneoverlay.Session.
package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/solarlune/boneoverlay"
	"golang.org/x/image/font/basicfont"
)

// baseFontSize is the pixel height of the built-in font at a scale of 1.
const baseFontSize = 13.0

// Canvas is a boneoverlay.Canvas that draws onto an *ebiten.Image using Ebitengine's vector and text packages.
type Canvas struct {
	Screen *ebiten.Image
	// AntiAlias turns on anti-aliasing for lines and discs.
	AntiAlias bool
	face      *text.GoXFace
}

var _ boneoverlay.Canvas = (*Canvas)(nil)

// NewCanvas creates a new Canvas using the built-in 7x13 bitmap font for labels.
func NewCanvas() *Canvas {
	return &Canvas{
		AntiAlias: true,
		face:      text.NewGoXFace(basicfont.Face7x13),
	}
}

// SetScreen sets the image the Canvas draws onto; it should be called at the start of each Draw().
func (canvas *Canvas) SetScreen(screen *ebiten.Image) {
	canvas.Screen = screen
}

func (canvas *Canvas) DrawLine(x0, y0, x1, y1, width float64, color boneoverlay.Color) {
	if canvas.Screen == nil || color.A <= 0 {
		return
	}
	vector.StrokeLine(canvas.Screen, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), color.ToNRGBA(), canvas.AntiAlias)
}

func (canvas *Canvas) DrawDisc(cx, cy, radius float64, color boneoverlay.Color) {
	if canvas.Screen == nil || color.A <= 0 {
		return
	}
	vector.DrawFilledCircle(canvas.Screen, float32(cx), float32(cy), float32(radius), color.ToNRGBA(), canvas.AntiAlias)
}

// DrawRing draws a circle outline; the App uses it for ping highlights.
func (canvas *Canvas) DrawRing(cx, cy, radius, width float64, color boneoverlay.Color) {
	if canvas.Screen == nil || color.A <= 0 {
		return
	}
	vector.StrokeCircle(canvas.Screen, float32(cx), float32(cy), float32(radius), float32(width), color.ToNRGBA(), canvas.AntiAlias)
}

// DrawText draws the text with its top-left corner at x, y. size is the pixel height of a line.
func (canvas *Canvas) DrawText(txt string, x, y, size float64, color boneoverlay.Color) {

	if canvas.Screen == nil || color.A <= 0 {
		return
	}

	scale := size / baseFontSize

	opt := &text.DrawOptions{}
	opt.GeoM.Scale(scale, scale)
	opt.GeoM.Translate(x, y)
	opt.ColorScale.ScaleWithColor(color.ToNRGBA())
	opt.LineSpacing = baseFontSize

	text.Draw(canvas.Screen, txt, canvas.face, opt)

}

func (canvas *Canvas) MeasureText(txt string, size float64) (float64, float64) {
	w, h := text.Measure(txt, canvas.face, baseFontSize)
	scale := size / baseFontSize
	return w * scale, h * scale
}
