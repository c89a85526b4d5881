package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-9

// UnitOrZero returns the unit vector of v, or the zero vector when v is
// shorter than Epsilon.
func UnitOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n < Epsilon {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// FromAngle returns the unit vector pointing at angle a (radians).
func FromAngle(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// Angle returns the direction of v in (-π, π].
func Angle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Perp returns v rotated by +90°.
func Perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// Rotate rotates v by a radians about the origin.
func Rotate(v r2.Vec, a float64) r2.Vec {
	s, c := math.Sincos(a)
	return r2.Vec{X: c*v.X - s*v.Y, Y: s*v.X + c*v.Y}
}

// XY drops the Z component.
func XY(v r3.Vec) r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// WithZ lifts v into 3D at height z.
func WithZ(v r2.Vec, z float64) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: z}
}

// IsFinite reports whether both components are finite.
func IsFinite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}
