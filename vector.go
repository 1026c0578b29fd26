package boneoverlay

import (
	"math"
	"strconv"
)

// WorldRight represents a unit vector pointing right (+X) in the right-handed coordinate system the overlay works in.
var WorldRight = NewVector(1, 0, 0)

// WorldUp represents a unit vector pointing upwards (+Y).
var WorldUp = NewVector(0, 1, 0)

// WorldBackward represents a unit vector pointing backwards, towards the viewer (+Z). Cameras look down -Z.
var WorldBackward = NewVector(0, 0, 1)

// Vector represents a 3D Vector, used for positions and directions in world space, or for projected screen positions
// (where X and Y are pixels and Z is the depth away from the camera).
// The fourth component, W, is only used when multiplying by projection matrices.
// Any Vector functions that modify the calling Vector return copies of the modified Vector, meaning you can method-chain easily.
type Vector struct {
	X float64 // The X (1st) component of the Vector
	Y float64 // The Y (2nd) component of the Vector
	Z float64 // The Z (3rd) component of the Vector
	W float64 // The W (4th) component of the Vector; not used for most Vector functions
}

// NewVector creates a new Vector with the specified x, y, and z components. W is left at 0.
func NewVector(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns a copy of the calling vector, added together with the other Vector provided (ignoring the W component).
func (vec Vector) Add(other Vector) Vector {
	vec.X += other.X
	vec.Y += other.Y
	vec.Z += other.Z
	return vec
}

// Sub returns a copy of the calling Vector, with the other Vector subtracted from it (ignoring the W component).
func (vec Vector) Sub(other Vector) Vector {
	vec.X -= other.X
	vec.Y -= other.Y
	vec.Z -= other.Z
	return vec
}

// Cross returns a new Vector, indicating the cross product of the calling Vector and the provided Other Vector.
// This function ignores the W component of both Vectors.
func (vec Vector) Cross(other Vector) Vector {

	ogVecY := vec.Y
	ogVecZ := vec.Z

	vec.Z = vec.X*other.Y - other.X*vec.Y
	vec.Y = ogVecZ*other.X - other.Z*vec.X
	vec.X = ogVecY*other.Z - other.Y*ogVecZ

	return vec

}

// Invert returns a copy of the Vector with all components negated.
func (vec Vector) Invert() Vector {
	vec.X = -vec.X
	vec.Y = -vec.Y
	vec.Z = -vec.Z
	vec.W = -vec.W
	return vec
}

// Magnitude returns the length of the Vector (ignoring the Vector's W component).
func (vec Vector) Magnitude() float64 {
	return math.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
}

// Distance returns the distance between the two Vectors (ignoring W).
func (vec Vector) Distance(other Vector) float64 {
	return vec.Sub(other).Magnitude()
}

// Distance2D returns the distance between the two Vectors on the X and Y axes only; used for comparing screen positions.
func (vec Vector) Distance2D(other Vector) float64 {
	dx := vec.X - other.X
	dy := vec.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Unit returns a copy of the Vector, normalized (set to be of unit length).
// It does not alter the W component of the Vector.
func (vec Vector) Unit() Vector {
	l := vec.Magnitude()
	if l < 1e-8 {
		// If it's 0, then don't modify the vector
		return vec
	}
	vec.X, vec.Y, vec.Z = vec.X/l, vec.Y/l, vec.Z/l
	return vec
}

// Scale scales a Vector by the given scalar (ignoring the W component).
func (vec Vector) Scale(scalar float64) Vector {
	vec.X *= scalar
	vec.Y *= scalar
	vec.Z *= scalar
	return vec
}

// Dot returns the dot product of a Vector and another Vector (ignoring the W component).
func (vec Vector) Dot(other Vector) float64 {
	return vec.X*other.X + vec.Y*other.Y + vec.Z*other.Z
}

// Equals returns true if the two Vectors are close enough in all values (excluding W).
func (vec Vector) Equals(other Vector) bool {

	eps := 1e-8

	if math.Abs(vec.X-other.X) > eps || math.Abs(vec.Y-other.Y) > eps || math.Abs(vec.Z-other.Z) > eps {
		return false
	}

	return true

}

// IsZero returns true if the values in the Vector are extremely close to 0 (excluding W).
func (vec Vector) IsZero() bool {
	return vec.Equals(Vector{})
}

// Rotate returns a copy of the Vector, rotated around the axis provided by the angle provided (in radians).
// Note that this function ignores the W component of both Vectors.
func (vec Vector) Rotate(axis Vector, angle float64) Vector {
	return NewMatrix4Rotate(axis.X, axis.Y, axis.Z, angle).MultVec(vec)
}

func (vec Vector) String() string {
	return "{" + strconv.FormatFloat(vec.X, 'f', 2, 64) + ", " + strconv.FormatFloat(vec.Y, 'f', 2, 64) + ", " + strconv.FormatFloat(vec.Z, 'f', 2, 64) + "}"
}
