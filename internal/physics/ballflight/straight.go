package ballflight

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
)

// roll is a straight deceleration along dir starting at tStart.
type roll struct {
	tStart float64
	p0     r2.Vec
	dir    r2.Vec
	speed  float64
	decel  float64
}

func newRoll(tStart float64, p0, v0 r2.Vec, decel float64) roll {
	return roll{tStart: tStart, p0: p0, dir: geometry.UnitOrZero(v0), speed: r2.Norm(v0), decel: decel}
}

// duration is the time to stop; without friction a moving ball never does.
func (r roll) duration() float64 {
	if r.speed == 0 {
		return 0
	}
	if r.decel <= 0 {
		return math.Inf(1)
	}
	return r.speed / r.decel
}

func (r roll) at(dt float64) BallState {
	tau := dt - r.tStart
	v := 0.0
	if d := r.duration(); tau >= d {
		tau = d
	} else {
		v = r.speed - r.decel*tau
	}
	dist := r.speed*tau - 0.5*r.decel*tau*tau
	p := r2.Add(r.p0, r2.Scale(dist, r.dir))
	return BallState{
		Pos: geometry.WithZ(p, 0),
		Vel: geometry.WithZ(r2.Scale(v, r.dir), 0),
	}
}

// Straight is a ball rolling with constant deceleration.
type Straight struct {
	r      roll
	params Params
}

// NewStraight returns a rolling ball kicked at pos with ground velocity vel.
func NewStraight(pos r3.Vec, vel r2.Vec, params Params) Straight {
	return Straight{
		r:      newRoll(0, geometry.XY(pos), vel, params.rollDecel()),
		params: params,
	}
}

func (s Straight) StateAfter(dt float64) BallState {
	checkDt(dt)
	return s.r.at(dt)
}

func (s Straight) RestTime() float64 { return s.r.duration() }

func (s Straight) RestPosition() r3.Vec { return s.r.at(s.r.duration()).Pos }

func (Straight) Touchdowns() []r2.Vec { return nil }

func (Straight) HopCount() int { return 0 }

func (s Straight) IsInterceptableAt(dt float64) bool {
	checkDt(dt)
	return true
}
