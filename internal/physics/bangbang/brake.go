package bangbang

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/kickoff/internal/geometry"
)

// BrakeDistance returns the distance to stop from velocity v at constant
// deceleration aBrake.
func BrakeDistance(v r2.Vec, aBrake float64) float64 {
	return r2.Norm2(v) / (2 * aBrake)
}

// BrakeTime returns the time to stop from velocity v.
func BrakeTime(v r2.Vec, aBrake float64) float64 {
	return r2.Norm(v) / aBrake
}

// BrakeDisplacement returns the displacement until rest.
func BrakeDisplacement(v r2.Vec, aBrake float64) r2.Vec {
	return r2.Scale(BrakeDistance(v, aBrake), geometry.UnitOrZero(v))
}
