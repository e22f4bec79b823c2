package geometry

import (
	"fmt"
	"math"
)

// Epsilon Precision constant used for float64 comparisons.
const (
	Epsilon = 1e-9
)

// Vector3D represents a 3D vector or point in cartesian space.
// The simulation ground is the XZ plane, Y is up.
type Vector3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero is the zero vector.
var Zero = Vector3D{}

// NewVectorOnPlane creates a point on the XZ plane at the given polar coordinates.
// theta is in radians, measured from the X axis toward the Z axis.
func NewVectorOnPlane(radius, theta float64) Vector3D {
	x := radius * math.Cos(theta)
	z := radius * math.Sin(theta)

	// Handle standard floating point precision issues near zero
	if math.Abs(x) < Epsilon {
		x = 0
	}
	if math.Abs(z) < Epsilon {
		z = 0
	}
	return Vector3D{X: x, Z: z}
}

// String implements the fmt.Stringer interface.
func (v Vector3D) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// ---------------------------------------------------------------------
// Arithmetic Operations
// Value receivers returning new values, the struct is small enough.
// ---------------------------------------------------------------------

// Add adds two vectors and returns the result.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return Vector3D{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub subtracts the other vector from the current vector.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return Vector3D{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul scales the vector by a scalar value.
func (v Vector3D) Mul(scalar float64) Vector3D {
	return Vector3D{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector.
// Faster than Len() as it avoids the square root. Use for comparisons.
func (v Vector3D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Len calculates the magnitude (length) of the vector.
func (v Vector3D) Len() float64 {
	return math.Sqrt(v.LenSqr())
}

// Normalize returns a unit vector in the same direction.
// Returns a zero vector if the length is effectively zero.
func (v Vector3D) Normalize() Vector3D {
	l := v.Len()
	if l < Epsilon {
		return Vector3D{}
	}
	return v.Mul(1 / l)
}

// ClampMagnitude returns a copy of v whose length is at most maxLength.
// A negative maxLength is treated as zero.
func (v Vector3D) ClampMagnitude(maxLength float64) Vector3D {
	if maxLength <= 0 {
		return Vector3D{}
	}
	lenSq := v.LenSqr()
	if lenSq <= maxLength*maxLength {
		return v
	}
	return v.Mul(maxLength / math.Sqrt(lenSq))
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another vector.
func (v Vector3D) DistanceTo(other Vector3D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another vector.
func (v Vector3D) DistanceSquaredTo(other Vector3D) float64 {
	return v.Sub(other).LenSqr()
}

// Flatten projects the vector onto the XZ plane.
func (v Vector3D) Flatten() Vector3D {
	return Vector3D{X: v.X, Z: v.Z}
}

// Yaw returns the heading angle (in radians) of the vector on the XZ plane,
// measured from the X axis toward the Z axis. Range: [-Pi, Pi]
func (v Vector3D) Yaw() float64 {
	return math.Atan2(v.Z, v.X)
}

// MoveTowards moves v toward target by at most maxDelta without overshooting.
func (v Vector3D) MoveTowards(target Vector3D, maxDelta float64) Vector3D {
	diff := target.Sub(v)
	dist := diff.Len()
	if dist <= maxDelta || dist < Epsilon {
		return target
	}
	return v.Add(diff.Mul(maxDelta / dist))
}

// Eq checks if two vectors are approximately equal using the Epsilon constant.
func (v Vector3D) Eq(other Vector3D) bool {
	return math.Abs(v.X-other.X) <= Epsilon &&
		math.Abs(v.Y-other.Y) <= Epsilon &&
		math.Abs(v.Z-other.Z) <= Epsilon
}

// IsFinite reports whether all components are finite numbers.
func (v Vector3D) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
