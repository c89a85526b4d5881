package bangbang

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	syncAccuracy  = 1e-4 // seconds between axis completion times
	minAlphaStep  = 1e-7
	minShareAngle = 1e-6 // keeps both axis limits positive
)

// Trajectory2D combines two 1D profiles whose limits are split so both
// axes finish together.
type Trajectory2D struct {
	x, y Trajectory1D
}

// NewTrajectory2D computes a time-synchronised profile from s0 with
// initial velocity v0 to rest at s1. The limits are distributed over the
// axes as vMax·cosα and vMax·sinα, with α found by a halving search.
//
// When |v0| <= vMax, α is confined to the range where each axis share is
// at least that axis's initial speed. Neither axis then exceeds its share,
// so the combined speed never exceeds vMax. If synchronisation needs an α
// outside that range the axes finish at different times.
func NewTrajectory2D(s0, s1, v0 r2.Vec, vMax, aMax float64) Trajectory2D {
	lo, hi := alphaRange(v0, vMax)
	alpha := 0.5 * (lo + hi)
	inc := 0.25 * (hi - lo)

	var tr Trajectory2D
	for {
		sin, cos := math.Sincos(alpha)
		tr.x = NewTrajectory1D(s0.X, s1.X, v0.X, vMax*cos, aMax*cos)
		tr.y = NewTrajectory1D(s0.Y, s1.Y, v0.Y, vMax*sin, aMax*sin)

		diff := tr.x.TotalTime() - tr.y.TotalTime()
		if math.Abs(diff) < syncAccuracy || inc < minAlphaStep {
			return tr
		}
		if diff > 0 {
			alpha -= inc // give X a larger share
		} else {
			alpha += inc
		}
		alpha = math.Max(lo, math.Min(hi, alpha))
		inc *= 0.5
	}
}

// alphaRange returns the α interval the split search may use.
func alphaRange(v0 r2.Vec, vMax float64) (lo, hi float64) {
	lo, hi = minShareAngle, math.Pi/2-minShareAngle
	if r2.Norm(v0) > vMax {
		// Already too fast: the profile brakes first and no split keeps
		// the speed under vMax from t=0.
		return lo, hi
	}
	lo = math.Max(lo, math.Asin(math.Min(1, math.Abs(v0.Y)/vMax)))
	hi = math.Min(hi, math.Acos(math.Min(1, math.Abs(v0.X)/vMax)))
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Position returns the position at t seconds. Negative t panics.
func (tr Trajectory2D) Position(t float64) r2.Vec {
	return r2.Vec{X: tr.x.Position(t), Y: tr.y.Position(t)}
}

// Velocity returns the velocity at t seconds.
func (tr Trajectory2D) Velocity(t float64) r2.Vec {
	return r2.Vec{X: tr.x.Velocity(t), Y: tr.y.Velocity(t)}
}

// Acceleration returns the acceleration at t seconds.
func (tr Trajectory2D) Acceleration(t float64) r2.Vec {
	return r2.Vec{X: tr.x.Acceleration(t), Y: tr.y.Acceleration(t)}
}

// TotalTime returns the duration of the slower axis.
func (tr Trajectory2D) TotalTime() float64 {
	return math.Max(tr.x.TotalTime(), tr.y.TotalTime())
}

// MaxVelocityReached returns the largest speed on the profile. Speed is
// convex between phase boundaries, so the boundaries suffice.
func (tr Trajectory2D) MaxVelocityReached() float64 {
	max := 0.0
	for _, t := range mergeTimes(tr.x.breakpoints(), tr.y.breakpoints()) {
		max = math.Max(max, r2.Norm(tr.Velocity(t)))
	}
	return max
}

// X returns the X-axis profile.
func (tr Trajectory2D) X() Trajectory1D { return tr.x }

// Y returns the Y-axis profile.
func (tr Trajectory2D) Y() Trajectory1D { return tr.y }

func mergeTimes(sets ...[]float64) []float64 {
	var out []float64
	for _, s := range sets {
		out = append(out, s...)
	}
	sort.Float64s(out)
	return out
}

// Trajectory3D is a 2D profile in the ground plane plus an independent
// vertical axis.
type Trajectory3D struct {
	xy Trajectory2D
	z  Trajectory1D
}

// NewTrajectory3D computes a profile whose XY part is time-synchronised
// and whose Z axis uses the full limits on its own.
func NewTrajectory3D(s0, s1, v0 r3.Vec, vMax, aMax float64) Trajectory3D {
	return Trajectory3D{
		xy: NewTrajectory2D(r2.Vec{X: s0.X, Y: s0.Y}, r2.Vec{X: s1.X, Y: s1.Y}, r2.Vec{X: v0.X, Y: v0.Y}, vMax, aMax),
		z:  NewTrajectory1D(s0.Z, s1.Z, v0.Z, vMax, aMax),
	}
}

// Position returns the position at t seconds. Negative t panics.
func (tr Trajectory3D) Position(t float64) r3.Vec {
	p := tr.xy.Position(t)
	return r3.Vec{X: p.X, Y: p.Y, Z: tr.z.Position(t)}
}

// Velocity returns the velocity at t seconds.
func (tr Trajectory3D) Velocity(t float64) r3.Vec {
	v := tr.xy.Velocity(t)
	return r3.Vec{X: v.X, Y: v.Y, Z: tr.z.Velocity(t)}
}

// TotalTime returns the longer of the XY and Z durations.
func (tr Trajectory3D) TotalTime() float64 {
	return math.Max(tr.xy.TotalTime(), tr.z.TotalTime())
}

// MaxVelocityReached returns the largest speed on the profile.
func (tr Trajectory3D) MaxVelocityReached() float64 {
	max := 0.0
	times := mergeTimes(tr.xy.x.breakpoints(), tr.xy.y.breakpoints(), tr.z.breakpoints())
	for _, t := range times {
		max = math.Max(max, r3.Norm(tr.Velocity(t)))
	}
	return max
}
