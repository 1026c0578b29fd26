package boneoverlay

import (
	"slices"
	"time"
)

type canvasOp struct {
	kind   string // "line", "disc", or "text"
	x, y   float64
	radius float64
	text   string
	color  Color
}

// recordingCanvas is a Canvas that records everything drawn to it.
type recordingCanvas struct {
	ops []canvasOp
}

func (canvas *recordingCanvas) DrawLine(x0, y0, x1, y1, width float64, color Color) {
	canvas.ops = append(canvas.ops, canvasOp{kind: "line", x: x0, y: y0, color: color})
}

func (canvas *recordingCanvas) DrawDisc(cx, cy, radius float64, color Color) {
	canvas.ops = append(canvas.ops, canvasOp{kind: "disc", x: cx, y: cy, radius: radius, color: color})
}

func (canvas *recordingCanvas) DrawText(text string, x, y, size float64, color Color) {
	canvas.ops = append(canvas.ops, canvasOp{kind: "text", x: x, y: y, text: text, color: color})
}

// Every glyph is 6x10 pixels.
func (canvas *recordingCanvas) MeasureText(text string, size float64) (float64, float64) {
	return float64(len(text)) * 6, 10
}

func (canvas *recordingCanvas) count(kind string) int {
	n := 0
	for _, op := range canvas.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func (canvas *recordingCanvas) reset() {
	canvas.ops = canvas.ops[:0]
}

type fakeSelection struct {
	selected []NodeID
	pings    []NodeID
}

func (selection *fakeSelection) Selected() []NodeID {
	return slices.Clone(selection.selected)
}

func (selection *fakeSelection) SetSelected(ids ...NodeID) {
	selection.selected = slices.Clone(ids)
}

func (selection *fakeSelection) Ping(id NodeID) {
	selection.pings = append(selection.pings, id)
}

type repaintCounter struct {
	count int
}

func (counter *repaintCounter) Repaint() {
	counter.count++
}

// fakeClock is a wall clock that only moves when told to.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	return clock.now
}

func (clock *fakeClock) Advance(d time.Duration) {
	clock.now = clock.now.Add(d)
}
