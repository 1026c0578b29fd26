package boneoverlay

// NodeID is an opaque handle to a node in a host scene graph. IDs are never reused by the reference Scene, so a destroyed node's ID
// simply stops being Alive.
type NodeID uint64

// NoNode is the zero NodeID, used wherever a node is absent (a root's parent, for example).
const NoNode NodeID = 0

// SceneGraph is the read-only query surface the overlay needs from a host scene. None of the overlay's code mutates the scene.
// Queries made with an ID that is no longer alive should return zero values rather than panicking.
type SceneGraph interface {
	// Nodes enumerates every node currently in the scene, in a stable order.
	Nodes() []NodeID
	// Skins enumerates the scene's skin components (each one lists the nodes it deforms with).
	Skins() []SkinComponent
	// Rigs enumerates the scene's animation rig components.
	Rigs() []RigComponent

	Alive(id NodeID) bool
	Name(id NodeID) string
	Parent(id NodeID) NodeID
	Children(id NodeID) []NodeID
	WorldPosition(id NodeID) Vector

	// IsHidden and IsPickingDisabled report the host's visibility and pickability flags; nodes with either set are never treated as bones.
	IsHidden(id NodeID) bool
	IsPickingDisabled(id NodeID) bool
}

// CameraInfo describes the viewport camera the overlay draws through.
type CameraInfo interface {
	WorldPosition() Vector
	// WorldRotation returns the camera's rotation; its rows are the camera's right, up, and backward (+Z) axes.
	WorldRotation() Matrix4
	Perspective() bool
	// Size returns the viewport size in pixels.
	Size() (w, h int)
	// OrthoSize returns half of the vertical extent of an orthographic view in world units.
	OrthoSize() float64
	// WorldToScreenPixels projects a world position to pixel coordinates, with Z holding the depth in front of the camera
	// (zero or negative for positions behind it).
	WorldToScreenPixels(pos Vector) Vector
	FrustumPlanes() Frustum
}

// Selection is the host's selection surface.
type Selection interface {
	Selected() []NodeID
	SetSelected(ids ...NodeID)
	// Ping briefly highlights the node in the host's own UI.
	Ping(id NodeID)
}

// Canvas is a 2D drawing surface laid over the viewport, in pixel coordinates with Y pointing down.
type Canvas interface {
	DrawLine(x0, y0, x1, y1, width float64, color Color)
	DrawDisc(cx, cy, radius float64, color Color)
	DrawText(text string, x, y, size float64, color Color)
	// MeasureText returns the pixel size of the text at the given point size.
	MeasureText(text string, size float64) (w, h float64)
}

// Repainter requests another tick from the host's viewport.
type Repainter interface {
	Repaint()
}

// FrameClock reports the host's monotonically increasing frame tick. Per-frame caches are keyed on it.
type FrameClock interface {
	FrameCount() uint64
}

// PrefStore is a persistent key-value store for overlay settings. Errors from setters are logged by the caller, never surfaced.
type PrefStore interface {
	GetBool(key string, def bool) bool
	SetBool(key string, value bool) error
	GetFloat(key string, def float64) float64
	SetFloat(key string, value float64) error
	GetString(key string, def string) string
	SetString(key string, value string) error
}

// Flusher is implemented by PrefStores that buffer writes. OverlayState flushes its store after persisting the whole record.
type Flusher interface {
	Flush() error
}

// RepaintFunc adapts a plain function to the Repainter interface.
type RepaintFunc func()

func (f RepaintFunc) Repaint() {
	if f != nil {
		f()
	}
}

// FrameCounter is a FrameClock that's advanced by hand, once per host frame.
type FrameCounter struct {
	frame uint64
}

// FrameCount returns the current frame.
func (counter *FrameCounter) FrameCount() uint64 {
	return counter.frame
}

// Advance moves to the next frame.
func (counter *FrameCounter) Advance() {
	counter.frame++
}
