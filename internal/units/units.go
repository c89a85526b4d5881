// Package units provides shared physical constants, unit conversions and
// speed-unit validation. Internally everything is millimetres, seconds and
// int64 nanosecond timestamps.
package units

import (
	"math"
	"time"
)

// Gravity is the standard gravitational acceleration in mm/s².
const Gravity = 9810.0

// Speed unit constants
const (
	MMPS = "mmps"
	MPS  = "mps"
	KMPH = "kmph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{MMPS, MPS, KMPH}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "mmps, mps, kmph"
}

// ConvertSpeed converts a speed from millimetres per second to the target units.
func ConvertSpeed(speedMMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMMPS / 1000
	case KMPH:
		return speedMMPS * 0.0036
	default:
		return speedMMPS
	}
}

// SecondsToNanos converts floating-point seconds to int64 nanoseconds,
// rounding to the nearest nanosecond.
func SecondsToNanos(s float64) int64 {
	return int64(math.Round(s * 1e9))
}

// NanosToSeconds converts int64 nanoseconds to floating-point seconds.
func NanosToSeconds(ns int64) float64 {
	return float64(ns) / 1e9
}

// DurationSeconds returns d as floating-point seconds.
func DurationSeconds(d time.Duration) float64 {
	return d.Seconds()
}

// NormalizeAngle wraps an angle to (-π, π].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
