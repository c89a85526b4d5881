package collision

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/kickoff/internal/physics/ballflight"
)

// Kind classifies the surface that was hit.
type Kind int

const (
	KindWall Kind = iota
	KindRobotHull
	KindDribbler
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindRobotHull:
		return "robot-hull"
	case KindDribbler:
		return "dribbler"
	default:
		return "unknown"
	}
}

// Impulse classifies how a contact changed the ball's velocity.
type Impulse int

const (
	ImpulseNone Impulse = iota
	ImpulseBounce
	ImpulseKick
	ImpulseDribble
)

func (i Impulse) String() string {
	switch i {
	case ImpulseNone:
		return "none"
	case ImpulseBounce:
		return "bounce"
	case ImpulseKick:
		return "kick"
	case ImpulseDribble:
		return "dribble"
	default:
		return "unknown"
	}
}

// Candidate is one potential contact found during a step.
type Candidate struct {
	Obstacle int     // index into the obstacle slice
	Kind     Kind
	S        float64 // path parameter in [0, 1]
	Point    r2.Vec  // ball centre at contact
	Normal   r2.Vec  // unit, from the obstacle toward the ball
}

// Path is the ball's straight-line motion over one step.
type Path struct {
	P0, P1  r2.Vec
	Vel     r2.Vec  // ball ground velocity at the start of the step
	Dt      float64 // step length, seconds
	Radius  float64 // ball radius
	Contact float64 // extra distance at which the dribbler holds the ball
}

// Result is the outcome of one Engine step.
type Result struct {
	State    ballflight.BallState
	Collided bool
	Contact  Candidate
	Impulse  Impulse
}
