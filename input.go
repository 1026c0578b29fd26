package boneoverlay

// EventType identifies what kind of pointer event an Event is.
type EventType int

const (
	EventNone      EventType = iota // No pointer activity this tick (a plain repaint)
	EventMouseMove                  // The pointer moved
	EventMouseDown                  // A button was pressed
	EventMouseUp                    // A button was released
)

// String returns the name of the event type.
func (t EventType) String() string {
	switch t {
	case EventMouseMove:
		return "MouseMove"
	case EventMouseDown:
		return "MouseDown"
	case EventMouseUp:
		return "MouseUp"
	}
	return "None"
}

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Modifiers is a bitmask of the modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModCommand
)

// Toggles returns true if any of the modifiers that switch a click from "select" to "toggle selection" are held (shift, control, or command).
func (mods Modifiers) Toggles() bool {
	return mods&(ModShift|ModControl|ModCommand) > 0
}

// Event is the pointer event delivered to the overlay on a tick. Position is in viewport pixels, with Y pointing down (Z is unused).
// Once an event has been acted upon, it's marked as used so the host knows not to handle it again.
type Event struct {
	Type      EventType
	Button    MouseButton
	Position  Vector
	Modifiers Modifiers
	used      bool
}

// Use marks the event as consumed.
func (event *Event) Use() {
	event.used = true
}

// Used returns whether the event has been consumed.
func (event *Event) Used() bool {
	return event.used
}

// IsLeftDown returns true if the event is a press of the left mouse button.
func (event *Event) IsLeftDown() bool {
	return event != nil && event.Type == EventMouseDown && event.Button == MouseButtonLeft
}

// View is everything the overlay needs to draw a single tick of one viewport.
type View struct {
	Camera CameraInfo
	Canvas Canvas
	// Event is the pointer event for this tick; it can be nil if the host has no pointer information.
	Event *Event
}
