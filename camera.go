package boneoverlay

import (
	"math"
)

// Camera represents a viewport camera (where you look from). It looks down its local -Z axis, with +Y up.
// Camera implements CameraInfo.
type Camera struct {
	position    Vector
	rotation    Matrix4
	width       int
	height      int
	near, far   float64 // The near and far clipping plane. Near defaults to 0.1, Far to 1000.
	perspective bool    // If the Camera has a perspective projection. If not, it would be orthographic
	fieldOfView float64 // Vertical field of view in degrees for a perspective projection camera
	orthoSize   float64 // Half of the vertical extent of an orthographic view, in world units

	updateProjectionMatrix bool
	cachedProjectionMatrix Matrix4
}

// NewCamera creates a new perspective Camera with the specified viewport width and height in pixels.
func NewCamera(w, h int) *Camera {
	return &Camera{
		rotation:               NewMatrix4(),
		width:                  w,
		height:                 h,
		near:                   0.1,
		far:                    1000,
		perspective:            true,
		fieldOfView:            60,
		orthoSize:              5,
		updateProjectionMatrix: true,
	}
}

// Resize sets the viewport size in pixels.
func (camera *Camera) Resize(w, h int) {
	if camera.width == w && camera.height == h {
		return
	}
	camera.width = w
	camera.height = h
	camera.updateProjectionMatrix = true
}

// Size returns the width and height of the Camera's viewport in pixels.
func (camera *Camera) Size() (w, h int) {
	return camera.width, camera.height
}

// AspectRatio returns the camera's aspect ratio (width / height).
func (camera *Camera) AspectRatio() float64 {
	if camera.height == 0 {
		return 1
	}
	return float64(camera.width) / float64(camera.height)
}

// WorldPosition returns the Camera's position.
func (camera *Camera) WorldPosition() Vector {
	return camera.position
}

// SetWorldPosition moves the Camera to the given position.
func (camera *Camera) SetWorldPosition(x, y, z float64) {
	camera.position = Vector{X: x, Y: y, Z: z}
}

// WorldRotation returns the Camera's rotation. Its rows are the camera's right, up, and backward axes.
func (camera *Camera) WorldRotation() Matrix4 {
	return camera.rotation
}

// SetWorldRotation sets the Camera's rotation.
func (camera *Camera) SetWorldRotation(rotation Matrix4) {
	camera.rotation = rotation
}

// LookAt rotates the Camera so that it faces the target position, keeping up as close to its upward axis as possible.
func (camera *Camera) LookAt(target, up Vector) {
	// The camera looks down -Z, so its backward axis points from the target to the camera.
	camera.rotation = NewLookAtMatrix(target, camera.position, up)
}

// Right returns the Camera's rightward axis in world space.
func (camera *Camera) Right() Vector {
	return camera.rotation.Right()
}

// Up returns the Camera's upward axis in world space.
func (camera *Camera) Up() Vector {
	return camera.rotation.Up()
}

// Forward returns the direction the Camera is looking in, in world space.
func (camera *Camera) Forward() Vector {
	return camera.rotation.Forward().Invert()
}

// ViewMatrix returns the Camera's view matrix.
func (camera *Camera) ViewMatrix() Matrix4 {

	camPos := camera.position.Invert()
	transform := NewMatrix4Translate(camPos.X, camPos.Y, camPos.Z)

	// The inverse of a pure rotation is its transpose
	transform = transform.Mult(camera.rotation.Transposed())

	return transform

}

// Projection returns the Camera's projection matrix.
func (camera *Camera) Projection() Matrix4 {

	if !camera.updateProjectionMatrix {
		return camera.cachedProjectionMatrix
	}

	camera.updateProjectionMatrix = false

	if camera.perspective {
		camera.cachedProjectionMatrix = NewProjectionPerspective(camera.fieldOfView, camera.near, camera.far, float64(camera.width), float64(camera.height))
	} else {
		camera.cachedProjectionMatrix = NewProjectionOrthographic(camera.near, camera.far, camera.orthoSize*camera.AspectRatio(), camera.orthoSize)
	}

	return camera.cachedProjectionMatrix

}

// SetPerspective sets the Camera's projection to be a perspective (true) or orthographic (false) projection.
func (camera *Camera) SetPerspective(perspective bool) {
	if camera.perspective == perspective {
		return
	}
	camera.perspective = perspective
	camera.updateProjectionMatrix = true
}

// Perspective returns whether the Camera is perspective or not (orthographic).
func (camera *Camera) Perspective() bool {
	return camera.perspective
}

// SetFieldOfView sets the vertical field of the view of the camera in degrees.
func (camera *Camera) SetFieldOfView(fovY float64) {
	if camera.fieldOfView == fovY {
		return
	}
	camera.fieldOfView = fovY
	camera.updateProjectionMatrix = true
}

// FieldOfView returns the vertical field of view in degrees.
func (camera *Camera) FieldOfView() float64 {
	return camera.fieldOfView
}

// SetOrthoSize sets half of the vertical extent of an orthographic camera, in world units.
func (camera *Camera) SetOrthoSize(size float64) {
	if camera.orthoSize == size {
		return
	}
	camera.orthoSize = size
	camera.updateProjectionMatrix = true
}

// OrthoSize returns half of the vertical extent of an orthographic camera, in world units.
func (camera *Camera) OrthoSize() float64 {
	return camera.orthoSize
}

// Near returns the near plane of a camera.
func (camera *Camera) Near() float64 {
	return camera.near
}

// SetNear sets the near plane of a camera.
func (camera *Camera) SetNear(near float64) {
	if camera.near == near {
		return
	}
	camera.near = near
	camera.updateProjectionMatrix = true
}

// Far returns the far plane of a camera.
func (camera *Camera) Far() float64 {
	return camera.far
}

// SetFar sets the far plane of the camera.
func (camera *Camera) SetFar(far float64) {
	if camera.far == far {
		return
	}
	camera.far = far
	camera.updateProjectionMatrix = true
}

// WorldToClip transforms a 3D position in the world to clip coordinates (before the perspective divide).
func (camera *Camera) WorldToClip(vert Vector) Vector {
	return camera.ViewMatrix().Mult(camera.Projection()).MultVecW(vert)
}

// WorldToScreenPixels transforms a 3D position in the world to a position onscreen, with X and Y representing the pixels
// (from the top-left corner). The Z coordinate indicates depth away from the camera in 3D world units; it's zero or
// negative for positions behind the camera, whose X and Y should then be ignored.
func (camera *Camera) WorldToScreenPixels(vert Vector) Vector {

	clip := camera.WorldToClip(vert)
	depth := -camera.ViewMatrix().MultVec(vert).Z

	w := clip.W
	if math.Abs(w) < 1e-9 {
		w = 1e-9
	}

	width, height := float64(camera.width), float64(camera.height)

	return Vector{
		X: (clip.X/w*0.5 + 0.5) * width,
		Y: (-clip.Y/w*0.5 + 0.5) * height,
		Z: depth,
	}

}

// FrustumPlanes extracts the six planes of the Camera's view frustum in world space.
func (camera *Camera) FrustumPlanes() Frustum {
	return NewFrustumFromMatrix(camera.ViewMatrix().Mult(camera.Projection()))
}

// PointInFrustum returns true if the point is visible through the camera frustum.
func (camera *Camera) PointInFrustum(point Vector) bool {
	return camera.FrustumPlanes().ContainsSphere(point, 0)
}
