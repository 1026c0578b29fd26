package boneoverlay

import (
	"slices"
	"time"
)

// DoubleClickWindow is the longest gap between two clicks on the same bone for them to count as a double-click.
const DoubleClickWindow = 300 * time.Millisecond

// InteractionState is the coarse state of the overlay's pointer interaction.
type InteractionState int

const (
	StateIdle     InteractionState = iota // Nothing hovered, nothing selected
	StateHovering                         // A bone is under the pointer, but nothing is selected
	StateSelected                         // The host selection is non-empty
)

func (s InteractionState) String() string {
	switch s {
	case StateHovering:
		return "Hovering"
	case StateSelected:
		return "Selected"
	}
	return "Idle"
}

// InteractionStateMachine turns the hit-tested pointer events of each tick into hover and selection changes on the host.
type InteractionStateMachine struct {
	selection Selection
	state     *OverlayState

	hovered       NodeID
	lastClickNode NodeID
	lastClickTime time.Time

	// Now returns the current time; it's used to time double-clicks.
	Now func() time.Time
}

// NewInteractionStateMachine creates a new InteractionStateMachine acting on the selection given.
func NewInteractionStateMachine(selection Selection, state *OverlayState) *InteractionStateMachine {
	return &InteractionStateMachine{
		selection: selection,
		state:     state,
		Now:       time.Now,
	}
}

// State returns the current InteractionState.
func (ism *InteractionStateMachine) State() InteractionState {
	if ism.selection != nil && len(ism.selection.Selected()) > 0 {
		return StateSelected
	}
	if ism.hovered != NoNode {
		return StateHovering
	}
	return StateIdle
}

// Hovered returns the currently hovered node, or NoNode.
func (ism *InteractionStateMachine) Hovered() NodeID {
	return ism.hovered
}

// Hover sets the hovered node, returning true if it changed.
func (ism *InteractionStateMachine) Hover(node NodeID) bool {
	if ism.hovered == node {
		return false
	}
	ism.hovered = node
	return true
}

// Reset forgets the hovered node and any pending double-click.
func (ism *InteractionStateMachine) Reset() {
	ism.hovered = NoNode
	ism.lastClickNode = NoNode
}

// HandleClick applies a left-button press to the selection. hit is the bone under the pointer (NoNode for a click on empty space).
// It returns true if the selection changed.
//
// A click on a bone always consumes the event. A click on empty space clears the selection, but only consumes the event if
// the state's ConsumeEmptyClicks option is set, so the host's own handling of the click still runs otherwise.
func (ism *InteractionStateMachine) HandleClick(event *Event, hit NodeID) bool {

	if !event.IsLeftDown() || ism.selection == nil {
		return false
	}

	before := ism.selection.Selected()

	if hit == NoNode {

		ism.lastClickNode = NoNode

		if event.Modifiers.Toggles() {
			return false
		}

		if len(before) > 0 {
			ism.selection.SetSelected()
		}

		if ism.state.ConsumeEmptyClicks() {
			event.Use()
		}

		return len(before) > 0

	}

	event.Use()

	if event.Modifiers.Toggles() {

		ism.lastClickNode = NoNode

		if index := slices.Index(before, hit); index >= 0 {
			ism.selection.SetSelected(slices.Delete(slices.Clone(before), index, index+1)...)
		} else {
			ism.selection.SetSelected(append(slices.Clone(before), hit)...)
		}

		return true

	}

	now := ism.Now()

	if ism.state.DoubleClickPing() && ism.lastClickNode == hit && now.Sub(ism.lastClickTime) <= DoubleClickWindow {
		ism.selection.Ping(hit)
		ism.lastClickNode = NoNode
	} else {
		ism.lastClickNode = hit
		ism.lastClickTime = now
	}

	if len(before) == 1 && before[0] == hit {
		return false
	}

	ism.selection.SetSelected(hit)

	return true

}
