package kicksolver

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/physics/ballflight"
)

// Fit is an accepted kick estimate.
type Fit struct {
	KickPos       r3.Vec
	Velocity      r3.Vec // mm/s
	KickTimestamp int64  // local ns
	Offset        float64
	Iterations    int
	L1Residual    float64
	RMS           float64 // mm, ground reprojection over the whole window
	Samples       int
}

// FlightState seeds a new authoritative flight from the fit.
func (f Fit) FlightState(params ballflight.Params) ballflight.State {
	return ballflight.NewState(f.KickPos, f.Velocity, f.KickTimestamp, params)
}
