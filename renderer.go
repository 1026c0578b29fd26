package boneoverlay

import (
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RepaintMode controls when the OverlayRenderer asks its host for another tick.
type RepaintMode int

const (
	// RepaintAlways requests a repaint after every drawn tick, so the overlay follows the scene live.
	RepaintAlways RepaintMode = iota
	// RepaintOnChange only requests a repaint when the hover target changed, the pointer moved, the selection
	// changed, or the hover halo is still animating.
	RepaintOnChange
)

const (
	minMarkerRadius     = 2.0 // Markers never get smaller than this many pixels, so they stay clickable
	markerScaleDistance = 5.0 // Markers are drawn at their natural size at this distance from the camera
	haloAlpha           = 0.3
	haloStart           = 1.2
	haloEnd             = 1.5
	haloDuration        = 0.25 // seconds
	labelPadding        = 2.0
)

// drawnBone is a bone that passed the visibility filter this tick.
type drawnBone struct {
	info     *BoneInfo
	position Vector
	screen   Vector
	distance float64
	radius   float64
	alpha    float64
}

// OverlayRenderer draws the detected bones of a scene over a viewport and hit tests them against the pointer.
type OverlayRenderer struct {
	graph     SceneGraph
	clock     FrameClock
	state     *OverlayState
	detector  *BoneDetector
	selection Selection
	repainter Repainter
	logger    *slog.Logger

	distances   *DistanceCache
	visibility  VisibilityFilter
	interaction *InteractionStateMachine

	// RepaintMode sets when the renderer requests a repaint; it defaults to RepaintAlways.
	RepaintMode RepaintMode

	drawn  []drawnBone
	labels []drawnBone

	halo         *gween.Tween
	haloFactor   float64
	lastDraw     time.Time
	lastPointer  Vector
	hasPointer   bool
	drawnThisRun int
}

// NewOverlayRenderer creates an OverlayRenderer. detector may be nil, in which case Dispose() only clears the renderer's own caches.
func NewOverlayRenderer(graph SceneGraph, clock FrameClock, state *OverlayState, detector *BoneDetector, selection Selection, repainter Repainter, logger *slog.Logger) *OverlayRenderer {

	if logger == nil {
		logger = slog.Default()
	}

	return &OverlayRenderer{
		graph:       graph,
		clock:       clock,
		state:       state,
		detector:    detector,
		selection:   selection,
		repainter:   repainter,
		logger:      logger,
		distances:   NewDistanceCache(),
		interaction: NewInteractionStateMachine(selection, state),
		haloFactor:  haloStart,
	}

}

// Interaction returns the renderer's InteractionStateMachine.
func (renderer *OverlayRenderer) Interaction() *InteractionStateMachine {
	return renderer.interaction
}

// Hovered returns the bone currently under the pointer, or NoNode.
func (renderer *OverlayRenderer) Hovered() NodeID {
	return renderer.interaction.Hovered()
}

// DrawnCount returns how many bone markers were drawn on the last tick.
func (renderer *OverlayRenderer) DrawnCount() int {
	return renderer.drawnThisRun
}

// Distances returns the renderer's per-tick distance cache.
func (renderer *OverlayRenderer) Distances() *DistanceCache {
	return renderer.distances
}

// SetGraph points the renderer at another scene graph.
func (renderer *OverlayRenderer) SetGraph(graph SceneGraph) {
	renderer.graph = graph
	renderer.Dispose()
}

// DrawBones draws the bones given onto the view's canvas, hit tests them against the view's event, and applies any resulting
// hover or selection change.
func (renderer *OverlayRenderer) DrawBones(view View, bones []*BoneInfo) {

	renderer.drawnThisRun = 0

	if view.Camera == nil || view.Canvas == nil || renderer.graph == nil {
		return
	}

	settings := renderer.state.Settings()
	frame := renderer.clock.FrameCount()
	camera := view.Camera

	renderer.distances.Update(frame, camera.WorldPosition(), renderer.graph, bones)
	renderer.visibility.Prepare(frame, camera)

	renderer.collect(camera, &settings, bones)

	selected := map[NodeID]bool{}
	if renderer.selection != nil {
		for _, id := range renderer.selection.Selected() {
			selected[id] = true
		}
	}

	haloAnimating := renderer.updateHalo()
	hovered := renderer.interaction.Hovered()

	event := view.Event
	pointer, hasPointer := renderer.pointer(event)

	markerHit := NoNode
	markerHitDistance := math.Inf(1)

	renderer.labels = renderer.labels[:0]

	// Far to near, so nearer bones draw over farther ones.
	for _, bone := range renderer.drawn {

		renderer.drawLine(view, &settings, bone)

		color := settings.NormalColor
		if selected[bone.info.Node] {
			color = settings.SelectedColor
		} else if bone.info.Node == hovered {
			color = settings.HoverColor
		}

		view.Canvas.DrawDisc(bone.screen.X, bone.screen.Y, bone.radius, color.MultiplyAlpha(bone.alpha))

		if bone.info.Node == hovered {
			view.Canvas.DrawDisc(bone.screen.X, bone.screen.Y, bone.radius*renderer.haloFactor, settings.HoverColor.MultiplyAlpha(bone.alpha*haloAlpha))
		}

		renderer.drawnThisRun++

		if hasPointer && pointer.Distance2D(bone.screen) < bone.radius && bone.distance <= markerHitDistance {
			markerHit = bone.info.Node
			markerHitDistance = bone.distance
		}

		if _, ok := LabelAlpha(&settings, bone.distance); ok {
			renderer.labels = append(renderer.labels, bone)
		}

	}

	labelHit := renderer.drawLabels(view, &settings, pointer, hasPointer)

	target := markerHit
	if target == NoNode {
		target = labelHit
	}

	// Hover follows the last known pointer position every tick, so it keeps up with a camera that moves under a still pointer.
	hoverChanged := false
	if hasPointer {
		hoverChanged = renderer.interaction.Hover(target)
		if hoverChanged && target != NoNode {
			renderer.halo = gween.New(haloStart, haloEnd, haloDuration, ease.OutQuad)
			renderer.haloFactor = haloStart
		}
	}

	selectionChanged := false
	if event.IsLeftDown() {
		selectionChanged = renderer.interaction.HandleClick(event, target)
		if selectionChanged {
			renderer.logger.Debug("bone selection changed", "target", target, "state", renderer.interaction.State().String())
		}
	}

	pointerMoved := false
	if event != nil && event.Type != EventNone {
		pointerMoved = renderer.hasPointer && event.Type == EventMouseMove && !renderer.lastPointer.Equals(event.Position)
		renderer.lastPointer = event.Position
		renderer.hasPointer = true
	}

	switch {
	case selectionChanged:
		renderer.repaint()
	case renderer.RepaintMode == RepaintAlways:
		renderer.repaint()
	case hoverChanged || pointerMoved || haloAnimating:
		renderer.repaint()
	}

}

// pointer returns the pointer position for this tick: the event's, or the last one seen if the event carries none.
func (renderer *OverlayRenderer) pointer(event *Event) (Vector, bool) {
	if event != nil && event.Type != EventNone {
		return event.Position, true
	}
	return renderer.lastPointer, renderer.hasPointer
}

// collect fills renderer.drawn with the visible bones, sorted far to near.
func (renderer *OverlayRenderer) collect(camera CameraInfo, settings *Settings, bones []*BoneInfo) {

	renderer.drawn = renderer.drawn[:0]

	for _, info := range bones {

		distance, ok := renderer.distances.Distance(info.Node)
		if !ok {
			continue
		}

		position := renderer.graph.WorldPosition(info.Node)

		alpha, visible := renderer.visibility.Visible(settings, position, distance)
		if !visible {
			continue
		}

		screen := camera.WorldToScreenPixels(position)
		if screen.Z <= 0 {
			continue
		}

		renderer.drawn = append(renderer.drawn, drawnBone{
			info:     info,
			position: position,
			screen:   screen,
			distance: distance,
			radius:   MarkerRadius(camera, settings, position, screen, distance),
			alpha:    alpha,
		})

	}

	slices.SortStableFunc(renderer.drawn, func(a, b drawnBone) int {
		if a.distance > b.distance {
			return -1
		} else if a.distance < b.distance {
			return 1
		}
		return 0
	})

}

func (renderer *OverlayRenderer) drawLine(view View, settings *Settings, bone drawnBone) {

	parent := bone.info.Parent
	if parent == NoNode {
		return
	}

	if _, ok := renderer.distances.Distance(parent); !ok {
		return
	}

	parentScreen := view.Camera.WorldToScreenPixels(renderer.graph.WorldPosition(parent))
	if parentScreen.Z <= 0 {
		return
	}

	view.Canvas.DrawLine(bone.screen.X, bone.screen.Y, parentScreen.X, parentScreen.Y, settings.LineWidth, settings.LineColor.MultiplyAlpha(bone.alpha))

}

// drawLabels draws the labels collected during the marker pass, returning the nearest label under the pointer, if any.
func (renderer *OverlayRenderer) drawLabels(view View, settings *Settings, pointer Vector, hasPointer bool) NodeID {

	hit := NoNode

	for _, bone := range renderer.labels {

		labelAlpha, _ := LabelAlpha(settings, bone.distance)
		name := renderer.graph.Name(bone.info.Node)

		w, h := view.Canvas.MeasureText(name, settings.LabelSize)
		x := bone.screen.X + bone.radius + labelPadding
		y := bone.screen.Y - h/2

		view.Canvas.DrawText(name, x, y, settings.LabelSize, settings.LabelColor.MultiplyAlpha(labelAlpha*bone.alpha))

		if hasPointer && pointer.X >= x && pointer.X <= x+w && pointer.Y >= y && pointer.Y <= y+h {
			hit = bone.info.Node
		}

	}

	return hit

}

// updateHalo advances the hover halo tween, returning true if it's still running.
func (renderer *OverlayRenderer) updateHalo() bool {

	now := renderer.interaction.Now()
	dt := 0.0
	if !renderer.lastDraw.IsZero() {
		dt = now.Sub(renderer.lastDraw).Seconds()
	}
	renderer.lastDraw = now

	if renderer.halo == nil {
		return false
	}

	factor, finished := renderer.halo.Update(float32(dt))
	renderer.haloFactor = float64(factor)

	if finished {
		renderer.halo = nil
		renderer.haloFactor = haloEnd
	}

	return !finished

}

func (renderer *OverlayRenderer) repaint() {
	if renderer.repainter != nil {
		renderer.repainter.Repaint()
	}
}

// Dispose clears the renderer's caches and the detector's cached result.
func (renderer *OverlayRenderer) Dispose() {
	renderer.distances.Clear()
	renderer.visibility.Invalidate()
	renderer.interaction.Reset()
	renderer.drawn = renderer.drawn[:0]
	renderer.labels = renderer.labels[:0]
	renderer.halo = nil
	renderer.hasPointer = false
	if renderer.detector != nil {
		renderer.detector.ClearCache()
	}
}

// MarkerRadius returns the on-screen radius in pixels of the marker for a bone at the world position given, with screen being
// that position already projected to pixels and distance its distance from the camera.
func MarkerRadius(camera CameraInfo, settings *Settings, position, screen Vector, distance float64) float64 {

	var radius float64

	if camera.Perspective() {
		edge := camera.WorldToScreenPixels(position.Add(camera.WorldRotation().Right().Scale(settings.SphereSize)))
		radius = edge.Distance2D(screen)
	} else {
		_, h := camera.Size()
		if orthoSize := camera.OrthoSize(); orthoSize > 0 {
			radius = settings.SphereSize * float64(h) / (2 * orthoSize)
		}
	}

	scale := settings.MarkerScaleMax
	if distance > 0 {
		scale = clamp(markerScaleDistance/distance, settings.MarkerScaleMin, settings.MarkerScaleMax)
	}

	return math.Max(radius*scale, minMarkerRadius)

}
