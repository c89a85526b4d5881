package bangbang

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/kickoff/internal/geometry"
)

// MovingHorizon describes an object whose reachable region is queried.
// During the reaction time it keeps its current velocity; afterwards a
// bang-bang profile along the velocity direction takes over.
type MovingHorizon struct {
	Pos      r2.Vec
	Vel      r2.Vec
	VMax     float64
	AMax     float64
	Reaction float64 // seconds
}

// direction is the unit velocity, or +X for an object at rest.
func (m MovingHorizon) direction() r2.Vec {
	if d := geometry.UnitOrZero(m.Vel); d != (r2.Vec{}) {
		return d
	}
	return r2.Vec{X: 1}
}

// ForwardBackward returns the signed displacement bounds along the
// velocity direction reachable within horizon seconds. bwd may be
// positive when the object cannot reverse in time.
func (m MovingHorizon) ForwardBackward(horizon, extraReaction float64) (fwd, bwd float64) {
	if horizon < 0 {
		horizon = 0
	}
	speed := r2.Norm(m.Vel)
	reaction := math.Max(0, m.Reaction+extraReaction)
	if horizon <= reaction {
		d := speed * horizon
		return d, d
	}

	drift := speed * reaction
	rest := horizon - reaction

	// A target far enough away that no braking starts within rest.
	far := 2*(speed+m.VMax)*rest + m.AMax*rest*rest + (speed+m.VMax)*(speed+m.VMax)/m.AMax + 1

	fwd = drift + NewTrajectory1D(0, far, speed, m.VMax, m.AMax).Position(rest)
	bwd = drift + NewTrajectory1D(0, -far, speed, m.VMax, m.AMax).Position(rest)
	return fwd, bwd
}

// Circle returns the reachable region as a circle spanning the forward
// and backward bounds, grown by margin.
func (m MovingHorizon) Circle(horizon, extraReaction, margin float64) geometry.Circle {
	fwd, bwd := m.ForwardBackward(horizon, extraReaction)
	dir := m.direction()
	return geometry.Circle{
		Center: r2.Add(m.Pos, r2.Scale((fwd+bwd)/2, dir)),
		Radius: (fwd-bwd)/2 + margin,
	}
}

// Tube returns the reachable region as a capsule from the backward to the
// forward bound with radius margin.
func (m MovingHorizon) Tube(horizon, extraReaction, margin float64) geometry.Tube {
	fwd, bwd := m.ForwardBackward(horizon, extraReaction)
	dir := m.direction()
	return geometry.Tube{
		Start:  r2.Add(m.Pos, r2.Scale(bwd, dir)),
		End:    r2.Add(m.Pos, r2.Scale(fwd, dir)),
		Radius: margin,
	}
}
