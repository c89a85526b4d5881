package ballflight

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/units"
)

// BallState is a ball position and velocity at one instant.
type BallState struct {
	Pos r3.Vec
	Vel r3.Vec
}

// Trajectory answers queries about a kicked ball. dt is seconds since the
// kick; negative dt panics.
type Trajectory interface {
	StateAfter(dt float64) BallState
	// RestTime is the time at which the ball stops.
	RestTime() float64
	RestPosition() r3.Vec
	// Touchdowns returns the ground contact points of every hop.
	Touchdowns() []r2.Vec
	HopCount() int
	// IsInterceptableAt reports whether the ball is low enough to touch.
	IsInterceptableAt(dt float64) bool
}

// State is the authoritative flight of one kick.
type State struct {
	ID            uuid.UUID
	KickPos       r3.Vec
	KickVel       r3.Vec
	KickTimestamp int64 // local ns
	Params        Params
}

// NewState records a kick. The returned value is never mutated.
func NewState(kickPos, kickVel r3.Vec, ts int64, params Params) State {
	return State{
		ID:            uuid.New(),
		KickPos:       kickPos,
		KickVel:       kickVel,
		KickTimestamp: ts,
		Params:        params,
	}
}

// IsChip reports whether the kick has an upward component.
func (s State) IsChip() bool {
	return s.KickVel.Z > 0
}

// Trajectory returns the flight model for the kick.
func (s State) Trajectory() Trajectory {
	if s.IsChip() {
		return NewChip(s.KickPos, s.KickVel, s.Params)
	}
	return NewStraight(s.KickPos, r2.Vec{X: s.KickVel.X, Y: s.KickVel.Y}, s.Params)
}

func (s State) elapsed(ts int64) float64 {
	if ts < s.KickTimestamp {
		panic(fmt.Sprintf("ballflight: query at %d before kick at %d", ts, s.KickTimestamp))
	}
	return units.NanosToSeconds(ts - s.KickTimestamp)
}

// StateAt returns the ball state at local time ts, which must not precede
// the kick.
func (s State) StateAt(ts int64) BallState {
	return s.Trajectory().StateAfter(s.elapsed(ts))
}

// AtRest reports whether the ball has stopped by ts.
func (s State) AtRest(ts int64) bool {
	return s.elapsed(ts) >= s.Trajectory().RestTime()
}

func checkDt(dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		panic(fmt.Sprintf("ballflight: query at invalid time %g", dt))
	}
}
