package boneoverlay

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rendererFixture struct {
	scene     *Scene
	camera    *Camera
	canvas    *recordingCanvas
	selection *fakeSelection
	repaints  *repaintCounter
	frames    *FrameCounter
	clock     *fakeClock
	state     *OverlayState
	renderer  *OverlayRenderer
}

// newRendererFixture sets up an 800x600 camera at (0, 0, 10), looking down -Z at the origin.
func newRendererFixture() *rendererFixture {

	f := &rendererFixture{
		scene:     NewScene("test"),
		camera:    NewCamera(800, 600),
		canvas:    &recordingCanvas{},
		selection: &fakeSelection{},
		repaints:  &repaintCounter{},
		frames:    &FrameCounter{},
		clock:     newFakeClock(),
		state:     NewOverlayState(nil, nil),
	}

	f.camera.SetWorldPosition(0, 0, 10)
	f.renderer = NewOverlayRenderer(f.scene, f.frames, f.state, nil, f.selection, f.repaints, nil)
	f.renderer.Interaction().Now = f.clock.Now

	return f

}

func (f *rendererFixture) draw(event *Event, bones ...*BoneInfo) {
	f.frames.Advance()
	f.canvas.reset()
	f.renderer.DrawBones(View{Camera: f.camera, Canvas: f.canvas, Event: event}, bones)
}

func (f *rendererFixture) screen(node *Node) Vector {
	return f.camera.WorldToScreenPixels(node.WorldPosition())
}

func clickAt(p Vector, mods Modifiers) *Event {
	return &Event{Type: EventMouseDown, Button: MouseButtonLeft, Position: p, Modifiers: mods}
}

func moveTo(p Vector) *Event {
	return &Event{Type: EventMouseMove, Position: p}
}

func TestRendererNearestBoneWins(t *testing.T) {

	f := newRendererFixture()

	near := f.scene.AddNode("near", NoNode)
	far := f.scene.AddNode("far", NoNode)
	far.SetLocalPosition(0, 0, -5)

	bones := []*BoneInfo{{Node: near.ID()}, {Node: far.ID()}}

	// Both project onto the center of the screen.
	require.InDelta(t, f.screen(near).X, f.screen(far).X, 1e-6)

	f.draw(clickAt(f.screen(near), 0), bones...)
	assert.Equal(t, []NodeID{near.ID()}, f.selection.selected)

	// Same result with the bones given in the opposite order.
	f.selection.selected = nil
	f.draw(clickAt(f.screen(near), 0), bones[1], bones[0])
	assert.Equal(t, []NodeID{near.ID()}, f.selection.selected)

}

func TestRendererClickThenClickAnother(t *testing.T) {

	f := newRendererFixture()

	x := f.scene.AddNode("x", NoNode)
	y := f.scene.AddNode("y", NoNode)
	y.SetLocalPosition(2, 0, 0)

	bones := []*BoneInfo{{Node: x.ID()}, {Node: y.ID()}}

	f.draw(clickAt(f.screen(x), 0), bones...)
	assert.Equal(t, []NodeID{x.ID()}, f.selection.selected)

	f.clock.Advance(time.Second)
	f.draw(clickAt(f.screen(y), 0), bones...)
	assert.Equal(t, []NodeID{y.ID()}, f.selection.selected)

	f.draw(clickAt(f.screen(x), ModShift), bones...)
	assert.ElementsMatch(t, []NodeID{x.ID(), y.ID()}, f.selection.selected)

	f.draw(clickAt(f.screen(y), ModShift), bones...)
	assert.Equal(t, []NodeID{x.ID()}, f.selection.selected)

	// Off in empty space.
	event := clickAt(NewVector(10, 10, 0), 0)
	f.draw(event, bones...)
	assert.Empty(t, f.selection.selected)
	assert.False(t, event.Used())

}

func TestRendererDrawsFarToNearWithLinesFirst(t *testing.T) {

	f := newRendererFixture()

	parent := f.scene.AddNode("parent", NoNode)
	parent.SetLocalPosition(0, 0, -10)
	child := parent.AddChild("child")
	child.SetLocalPosition(1, 0, 10) // world (1, 0, 0), nearer to the camera

	f.state.SetShowLabels(false)

	f.draw(nil, &BoneInfo{Node: parent.ID(), Children: []NodeID{child.ID()}}, &BoneInfo{Node: child.ID(), Parent: parent.ID()})

	require.Len(t, f.canvas.ops, 3)

	assert.Equal(t, "disc", f.canvas.ops[0].kind)
	assert.InDelta(t, f.screen(parent).X, f.canvas.ops[0].x, 1e-6)

	assert.Equal(t, "line", f.canvas.ops[1].kind)
	assert.Equal(t, "disc", f.canvas.ops[2].kind)
	assert.InDelta(t, f.screen(child).X, f.canvas.ops[2].x, 1e-6)

	assert.Equal(t, 2, f.renderer.DrawnCount())

}

func TestRendererCullsAndColors(t *testing.T) {

	f := newRendererFixture()
	f.state.SetShowLabels(false)

	visible := f.scene.AddNode("visible", NoNode)
	behind := f.scene.AddNode("behind", NoNode)
	behind.SetLocalPosition(0, 0, 20)
	tooFar := f.scene.AddNode("tooFar", NoNode)
	tooFar.SetLocalPosition(0, 0, -100)
	selected := f.scene.AddNode("selected", NoNode)
	selected.SetLocalPosition(-1, 0, 0)

	f.selection.selected = []NodeID{selected.ID()}

	f.draw(nil, &BoneInfo{Node: visible.ID()}, &BoneInfo{Node: behind.ID()}, &BoneInfo{Node: tooFar.ID()}, &BoneInfo{Node: selected.ID()})

	assert.Equal(t, 2, f.renderer.DrawnCount())

	settings := f.state.Settings()
	colors := map[Color]bool{}
	for _, op := range f.canvas.ops {
		colors[op.color] = true
	}

	assert.True(t, colors[settings.NormalColor])
	assert.True(t, colors[settings.SelectedColor])

}

func TestRendererFadesNearMaxDistance(t *testing.T) {

	f := newRendererFixture()
	f.state.SetShowLabels(false)

	bone := f.scene.AddNode("bone", NoNode)
	bone.SetLocalPosition(0, 0, -35) // 45 units away, halfway through the fade band

	f.draw(nil, &BoneInfo{Node: bone.ID()})

	require.Len(t, f.canvas.ops, 1)
	assert.InDelta(t, f.state.NormalColor().A*0.5, f.canvas.ops[0].color.A, 1e-4)

}

func TestRendererHoverAndHalo(t *testing.T) {

	f := newRendererFixture()
	f.state.SetShowLabels(false)
	f.renderer.RepaintMode = RepaintOnChange

	bone := f.scene.AddNode("bone", NoNode)
	info := &BoneInfo{Node: bone.ID()}

	f.draw(moveTo(f.screen(bone)), info)
	assert.Equal(t, bone.ID(), f.renderer.Hovered())
	assert.Equal(t, 1, f.repaints.count, "hover change repaints")

	// Next tick, the hovered bone is drawn in the hover color with a halo around it.
	f.clock.Advance(time.Second / 60)
	f.draw(moveTo(f.screen(bone)), info)

	require.Equal(t, 2, f.canvas.count("disc"))
	marker, halo := f.canvas.ops[0], f.canvas.ops[1]
	assert.Equal(t, f.state.HoverColor(), marker.color)
	assert.Greater(t, halo.radius, marker.radius*haloStart-1e-6)
	assert.InDelta(t, f.state.HoverColor().A*haloAlpha, halo.color.A, 1e-4)

	// Once the halo has finished growing and the pointer is still, nothing asks for a repaint.
	f.clock.Advance(time.Second)
	f.draw(moveTo(f.screen(bone)), info)
	repaints := f.repaints.count
	f.clock.Advance(time.Second / 60)
	f.draw(moveTo(f.screen(bone)), info)
	assert.Equal(t, repaints, f.repaints.count)
	assert.InDelta(t, haloEnd, f.renderer.haloFactor, 1e-6)

	// Moving off of the bone clears the hover.
	f.draw(moveTo(NewVector(5, 5, 0)), info)
	assert.Equal(t, NoNode, f.renderer.Hovered())

}

func TestRendererRepaintAlways(t *testing.T) {

	f := newRendererFixture()
	bone := f.scene.AddNode("bone", NoNode)

	f.draw(nil, &BoneInfo{Node: bone.ID()})
	f.draw(nil, &BoneInfo{Node: bone.ID()})
	assert.Equal(t, 2, f.repaints.count)

	f.renderer.RepaintMode = RepaintOnChange
	f.draw(nil, &BoneInfo{Node: bone.ID()})
	assert.Equal(t, 2, f.repaints.count)

}

func TestRendererLabelClickSelects(t *testing.T) {

	f := newRendererFixture()

	bone := f.scene.AddNode("shoulder", NoNode)
	info := &BoneInfo{Node: bone.ID()}

	f.draw(nil, info)
	require.Equal(t, 1, f.canvas.count("text"))

	var label canvasOp
	for _, op := range f.canvas.ops {
		if op.kind == "text" {
			label = op
		}
	}
	assert.Equal(t, "shoulder", label.text)

	// Click in the middle of the label, well away from the marker.
	f.draw(clickAt(NewVector(label.x+20, label.y+5, 0), 0), info)
	assert.Equal(t, []NodeID{bone.ID()}, f.selection.selected)

	// Hovering a label hovers its bone.
	f.draw(moveTo(NewVector(5, 5, 0)), info)
	require.Equal(t, NoNode, f.renderer.Hovered())
	f.draw(moveTo(NewVector(label.x+20, label.y+5, 0)), info)
	assert.Equal(t, bone.ID(), f.renderer.Hovered())

}

func TestRendererLabelsRespectDistance(t *testing.T) {

	f := newRendererFixture()

	near := f.scene.AddNode("near", NoNode)
	far := f.scene.AddNode("far", NoNode)
	far.SetLocalPosition(0, 0, -25) // 35 units away, past the label distance

	f.draw(nil, &BoneInfo{Node: near.ID()}, &BoneInfo{Node: far.ID()})

	assert.Equal(t, 2, f.canvas.count("disc"))
	assert.Equal(t, 1, f.canvas.count("text"))

}

func TestRendererDispose(t *testing.T) {

	f := newRendererFixture()
	detector := NewBoneDetector(f.scene, f.frames, f.state, nil)
	f.renderer.detector = detector

	f.scene.AddNode("spine", NoNode).AddChild("neck")
	bones := detector.DetectBones()
	f.draw(nil, bones...)
	require.NotZero(t, f.renderer.Distances().Len())

	f.renderer.Dispose()
	assert.Zero(t, f.renderer.Distances().Len())
	assert.Nil(t, detector.Bone(bones[0].Node))

}

func TestMarkerRadius(t *testing.T) {

	settings := DefaultSettings()
	settings.SphereSize = 0.1

	camera := NewCamera(800, 600)
	camera.SetWorldPosition(0, 0, 10)

	focal := 300 / math.Tan(math.Pi/6)

	pos := Vector{}
	screen := camera.WorldToScreenPixels(pos)
	assert.InDelta(t, 0.1*focal/10*0.5, MarkerRadius(camera, &settings, pos, screen, 10), 1e-6)

	camera.SetWorldPosition(0, 0, 2.5)
	screen = camera.WorldToScreenPixels(pos)
	assert.InDelta(t, 0.1*focal/2.5*2, MarkerRadius(camera, &settings, pos, screen, 2.5), 1e-6)

	camera.SetPerspective(false)
	camera.SetOrthoSize(5)
	assert.InDelta(t, 0.1*600/10*2, MarkerRadius(camera, &settings, pos, screen, 1), 1e-6)
	assert.InDelta(t, 0.1*600/10*0.5, MarkerRadius(camera, &settings, pos, screen, 10), 1e-6)

	// Tiny markers are kept clickable.
	settings.SphereSize = MinSphereSize
	assert.Equal(t, minMarkerRadius, MarkerRadius(camera, &settings, pos, screen, 10))

}

func TestRendererHoverFollowsCameraUnderStillPointer(t *testing.T) {

	f := newRendererFixture()
	f.state.SetShowLabels(false)
	f.renderer.RepaintMode = RepaintOnChange

	bone := f.scene.AddNode("bone", NoNode)
	info := &BoneInfo{Node: bone.ID()}

	f.draw(moveTo(f.screen(bone)), info)
	require.Equal(t, bone.ID(), f.renderer.Hovered())

	// The camera moves away (a zoom or reframe, say) while the pointer stays put; no event arrives.
	repaints := f.repaints.count
	f.camera.SetWorldPosition(3, 0, 10)
	f.draw(nil, info)
	assert.Equal(t, NoNode, f.renderer.Hovered())
	assert.Greater(t, f.repaints.count, repaints, "losing the hover repaints")

	f.camera.SetWorldPosition(0, 0, 10)
	f.draw(nil, info)
	assert.Equal(t, bone.ID(), f.renderer.Hovered())

	// Without any pointer seen yet, nothing is hovered.
	f.renderer.Dispose()
	f.draw(nil, info)
	assert.Equal(t, NoNode, f.renderer.Hovered())

}
