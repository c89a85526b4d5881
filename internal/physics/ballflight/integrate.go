package ballflight

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
)

// maxBouncesPerStep bounds the bounce loop of a single Integrate call.
const maxBouncesPerStep = 8

// Integrate advances a free ball by dt seconds under gravity, ground
// bounces and rolling friction, ignoring obstacles. Bounces use the
// later-hop XY damping since the hop index is unknown here.
func Integrate(s BallState, dt float64, p Params) BallState {
	remaining := dt
	for i := 0; i < maxBouncesPerStep && remaining > 0; i++ {
		if s.Pos.Z <= 0 {
			if s.Vel.Z < 0 {
				s = bounce(s, p)
				continue
			}
			if s.Vel.Z == 0 {
				return rollStep(s, remaining, p)
			}
		}

		g := p.Gravity
		z := math.Max(0, s.Pos.Z)
		vz := s.Vel.Z
		toGround := (vz + math.Sqrt(vz*vz+2*g*z)) / g
		if toGround >= remaining {
			return ballistic(s, remaining, g)
		}

		s = bounce(ballistic(s, toGround, g), p)
		remaining -= toGround
	}
	if remaining > 0 {
		s.Pos.Z = 0
		s.Vel.Z = 0
		return rollStep(s, remaining, p)
	}
	return s
}

// bounce reflects a ball touching the ground. Rebounds too weak to reach
// MinHopHeight become a roll.
func bounce(s BallState, p Params) BallState {
	up := -s.Vel.Z * p.ChipDampingZ
	if p.apex(up) < p.MinHopHeight {
		up = 0
	}
	xy := r2.Scale(p.ChipDampingXYOtherHops, geometry.XY(s.Vel))
	s.Pos.Z = 0
	s.Vel = geometry.WithZ(xy, up)
	return s
}

func ballistic(s BallState, dt, g float64) BallState {
	return BallState{
		Pos: r3.Vec{
			X: s.Pos.X + s.Vel.X*dt,
			Y: s.Pos.Y + s.Vel.Y*dt,
			Z: math.Max(0, s.Pos.Z+s.Vel.Z*dt-0.5*g*dt*dt),
		},
		Vel: r3.Vec{X: s.Vel.X, Y: s.Vel.Y, Z: s.Vel.Z - g*dt},
	}
}

func rollStep(s BallState, dt float64, p Params) BallState {
	r := newRoll(0, geometry.XY(s.Pos), geometry.XY(s.Vel), p.rollDecel())
	return r.at(dt)
}
