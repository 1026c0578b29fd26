package ebitenhost

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/boneoverlay"
)

const (
	orbitSpeed   = 0.005
	zoomStep     = 0.9
	maxTilt      = math.Pi/2 - 0.1
	framePadding = 1.2
)

// OrbitCamera turns and zooms a boneoverlay.Camera around a target point. Dragging with the right mouse button orbits, and the
// mouse wheel zooms.
type OrbitCamera struct {
	Camera *boneoverlay.Camera
	Target boneoverlay.Vector

	Distance    float64
	MinDistance float64
	MaxDistance float64
	Tilt        float64 // Negative values look down on the target
	Rotate      float64

	dragging  bool
	prevMouse boneoverlay.Vector
}

// NewOrbitCamera creates an OrbitCamera looking at the origin from slightly above.
func NewOrbitCamera(camera *boneoverlay.Camera) *OrbitCamera {
	orbit := &OrbitCamera{
		Camera:      camera,
		Distance:    5,
		MinDistance: 0.05,
		MaxDistance: 500,
		Tilt:        -0.3,
	}
	orbit.Apply()
	return orbit
}

// Update reads the mouse and moves the camera. It returns true if the camera moved.
func (orbit *OrbitCamera) Update() bool {

	mx, my := ebiten.CursorPosition()
	mouse := boneoverlay.NewVector(float64(mx), float64(my), 0)

	moved := false

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if orbit.dragging {
			diff := mouse.Sub(orbit.prevMouse)
			if !diff.IsZero() {
				orbit.Drag(diff.X, diff.Y)
				moved = true
			}
		}
		orbit.dragging = true
	} else {
		orbit.dragging = false
	}

	orbit.prevMouse = mouse

	if _, wheel := ebiten.Wheel(); wheel != 0 {
		orbit.Zoom(wheel)
		moved = true
	}

	if moved {
		orbit.Apply()
	}

	return moved

}

// Drag orbits the camera by a mouse movement of dx, dy pixels.
func (orbit *OrbitCamera) Drag(dx, dy float64) {
	orbit.Rotate -= dx * orbitSpeed
	orbit.Tilt -= dy * orbitSpeed
	orbit.Tilt = math.Max(math.Min(orbit.Tilt, maxTilt), -maxTilt)
}

// Zoom moves the camera closer for positive steps and further away for negative ones.
func (orbit *OrbitCamera) Zoom(steps float64) {
	orbit.Distance *= math.Pow(zoomStep, steps)
	orbit.Distance = math.Max(math.Min(orbit.Distance, orbit.MaxDistance), orbit.MinDistance)
}

// Frame points the camera at the center of the nodes given and backs it off until all of them fit in view.
func (orbit *OrbitCamera) Frame(graph boneoverlay.SceneGraph, nodes []boneoverlay.NodeID) {

	count := 0
	min := boneoverlay.NewVector(math.Inf(1), math.Inf(1), math.Inf(1))
	max := min.Invert()

	for _, id := range nodes {
		if !graph.Alive(id) {
			continue
		}
		p := graph.WorldPosition(id)
		min = boneoverlay.NewVector(math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z))
		max = boneoverlay.NewVector(math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z))
		count++
	}

	if count == 0 {
		return
	}

	orbit.Target = min.Add(max).Scale(0.5)

	radius := math.Max(max.Sub(min).Magnitude()/2, 0.5)
	halfFov := boneoverlay.ToRadians(orbit.Camera.FieldOfView()) / 2
	orbit.Distance = radius / math.Tan(halfFov) * framePadding
	orbit.MaxDistance = math.Max(orbit.MaxDistance, orbit.Distance*4)

	orbit.Apply()

}

// Apply places and rotates the camera according to the OrbitCamera's current target, distance, and angles.
func (orbit *OrbitCamera) Apply() {

	tilt := boneoverlay.NewMatrix4Rotate(1, 0, 0, orbit.Tilt)
	rotate := boneoverlay.NewMatrix4Rotate(0, 1, 0, orbit.Rotate)

	// Tilt first, then rotate; the other way around rolls the camera.
	rotation := tilt.Mult(rotate)

	pos := orbit.Target.Add(rotation.Forward().Scale(orbit.Distance))

	orbit.Camera.SetWorldPosition(pos.X, pos.Y, pos.Z)
	orbit.Camera.SetWorldRotation(rotation)

	if !orbit.Camera.Perspective() {
		orbit.Camera.SetOrthoSize(orbit.Distance * math.Tan(boneoverlay.ToRadians(orbit.Camera.FieldOfView())/2))
	}

}
