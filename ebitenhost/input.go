package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/boneoverlay"
)

var mouseButtons = []struct {
	ebiten  ebiten.MouseButton
	overlay boneoverlay.MouseButton
}{
	{ebiten.MouseButtonLeft, boneoverlay.MouseButtonLeft},
	{ebiten.MouseButtonRight, boneoverlay.MouseButtonRight},
	{ebiten.MouseButtonMiddle, boneoverlay.MouseButtonMiddle},
}

// pointerSample is the state of the mouse and modifier keys on a single tick.
type pointerSample struct {
	Position  boneoverlay.Vector
	Pressed   []boneoverlay.MouseButton
	Released  []boneoverlay.MouseButton
	Modifiers boneoverlay.Modifiers
}

// Input turns Ebitengine's polled mouse state into one boneoverlay.Event per tick.
type Input struct {
	prev    boneoverlay.Vector
	hasPrev bool
}

// Poll reads the mouse and keyboard and returns the event for this tick, or nil if nothing happened. It should be called from
// the game's Update(), as inpututil's "just pressed" state is only valid there.
func (input *Input) Poll() *boneoverlay.Event {

	mx, my := ebiten.CursorPosition()

	sample := pointerSample{
		Position: boneoverlay.NewVector(float64(mx), float64(my), 0),
		Modifiers: modifiersFromKeys(
			ebiten.IsKeyPressed(ebiten.KeyShift),
			ebiten.IsKeyPressed(ebiten.KeyControl),
			ebiten.IsKeyPressed(ebiten.KeyAlt),
			ebiten.IsKeyPressed(ebiten.KeyMeta),
		),
	}

	for _, button := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(button.ebiten) {
			sample.Pressed = append(sample.Pressed, button.overlay)
		}
		if inpututil.IsMouseButtonJustReleased(button.ebiten) {
			sample.Released = append(sample.Released, button.overlay)
		}
	}

	return input.next(sample)

}

// next picks the most important thing that happened in the sample: presses win over releases, which win over movement.
func (input *Input) next(sample pointerSample) *boneoverlay.Event {

	moved := !input.hasPrev || !sample.Position.Equals(input.prev)
	input.prev = sample.Position
	input.hasPrev = true

	event := &boneoverlay.Event{Position: sample.Position, Modifiers: sample.Modifiers}

	switch {
	case len(sample.Pressed) > 0:
		event.Type = boneoverlay.EventMouseDown
		event.Button = sample.Pressed[0]
	case len(sample.Released) > 0:
		event.Type = boneoverlay.EventMouseUp
		event.Button = sample.Released[0]
	case moved:
		event.Type = boneoverlay.EventMouseMove
	default:
		return nil
	}

	return event

}

func modifiersFromKeys(shift, control, alt, meta bool) boneoverlay.Modifiers {
	var mods boneoverlay.Modifiers
	if shift {
		mods |= boneoverlay.ModShift
	}
	if control {
		mods |= boneoverlay.ModControl
	}
	if alt {
		mods |= boneoverlay.ModAlt
	}
	if meta {
		mods |= boneoverlay.ModCommand
	}
	return mods
}

// mergeEvents combines an event that hasn't been drawn yet with a newer one. Clicks are never dropped in favor of plain movement.
func mergeEvents(pending, next *boneoverlay.Event) *boneoverlay.Event {
	if next == nil {
		return pending
	}
	if pending != nil && pending.Type != boneoverlay.EventMouseMove && next.Type == boneoverlay.EventMouseMove {
		return pending
	}
	return next
}
