package bangbang

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/config"
)

// Planner bundles motion limits. It is a stateless value; copy it freely.
type Planner struct {
	VMax     float64 // mm/s
	AMax     float64 // mm/s²
	Reaction float64 // seconds
}

// DefaultPlanner returns a planner with the built-in robot limits.
func DefaultPlanner() Planner {
	return PlannerFromTuning(config.EmptyTuningConfig())
}

// PlannerFromTuning builds a planner from the robot limits in cfg.
func PlannerFromTuning(cfg *config.TuningConfig) Planner {
	return Planner{
		VMax:     cfg.GetRobotMaxVel(),
		AMax:     cfg.GetRobotMaxAcc(),
		Reaction: cfg.GetRobotReaction(),
	}
}

func (p Planner) Trajectory1D(s0, s1, v0 float64) Trajectory1D {
	return NewTrajectory1D(s0, s1, v0, p.VMax, p.AMax)
}

func (p Planner) Trajectory2D(s0, s1, v0 r2.Vec) Trajectory2D {
	return NewTrajectory2D(s0, s1, v0, p.VMax, p.AMax)
}

func (p Planner) Trajectory3D(s0, s1, v0 r3.Vec) Trajectory3D {
	return NewTrajectory3D(s0, s1, v0, p.VMax, p.AMax)
}

// BrakeDistance returns the stopping distance from v at AMax.
func (p Planner) BrakeDistance(v r2.Vec) float64 { return BrakeDistance(v, p.AMax) }

// BrakeTime returns the stopping time from v at AMax.
func (p Planner) BrakeTime(v r2.Vec) float64 { return BrakeTime(v, p.AMax) }

// Horizon returns the moving horizon of an object at pos with velocity vel.
func (p Planner) Horizon(pos, vel r2.Vec) MovingHorizon {
	return MovingHorizon{Pos: pos, Vel: vel, VMax: p.VMax, AMax: p.AMax, Reaction: p.Reaction}
}
