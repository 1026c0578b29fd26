package boneoverlay

import "math"

// Plane represents an infinite plane as a normal and a distance, such that points p on the plane satisfy Normal.Dot(p) + D == 0.
// Points on the side the normal faces give positive distances.
type Plane struct {
	Normal Vector
	D      float64
}

// Distance returns the signed distance from the plane to the point given.
func (plane Plane) Distance(point Vector) float64 {
	return plane.Normal.Dot(point) + plane.D
}

func newPlaneFromVector(v Vector) Plane {
	n := Vector{X: v.X, Y: v.Y, Z: v.Z}
	l := n.Magnitude()
	if l < 1e-12 {
		return Plane{Normal: n, D: v.W}
	}
	return Plane{Normal: n.Scale(1 / l), D: v.W / l}
}

// Frustum is the set of six planes bounding a camera's view volume: left, right, bottom, top, near, and far.
// All plane normals face inwards.
type Frustum [6]Plane

// NewFrustumFromMatrix extracts the frustum planes from a combined view-projection matrix (in row-vector form).
func NewFrustumFromMatrix(viewProjection Matrix4) Frustum {

	c0 := viewProjection.Column(0)
	c1 := viewProjection.Column(1)
	c2 := viewProjection.Column(2)
	c3 := viewProjection.Column(3)

	add := func(a, b Vector) Vector { return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z, a.W + b.W} }
	sub := func(a, b Vector) Vector { return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z, a.W - b.W} }

	return Frustum{
		newPlaneFromVector(add(c3, c0)), // left
		newPlaneFromVector(sub(c3, c0)), // right
		newPlaneFromVector(add(c3, c1)), // bottom
		newPlaneFromVector(sub(c3, c1)), // top
		newPlaneFromVector(add(c3, c2)), // near
		newPlaneFromVector(sub(c3, c2)), // far
	}

}

// ContainsSphere returns true if any part of the sphere given lies inside the frustum.
func (frustum Frustum) ContainsSphere(center Vector, radius float64) bool {
	for _, plane := range frustum {
		if plane.Distance(center) < -radius {
			return false
		}
	}
	return true
}

// Equals returns if the two frustums are (nearly) identical.
func (frustum Frustum) Equals(other Frustum) bool {
	for i := range frustum {
		if !frustum[i].Normal.Equals(other[i].Normal) || math.Abs(frustum[i].D-other[i].D) > 1e-8 {
			return false
		}
	}
	return true
}
