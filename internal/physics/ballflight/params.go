package ballflight

import (
	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/units"
)

// Params are the physical constants of ball flight.
type Params struct {
	Gravity                float64 // mm/s²
	AccRoll                float64 // rolling acceleration, negative, mm/s²
	ChipDampingXYFirstHop  float64
	ChipDampingXYOtherHops float64
	ChipDampingZ           float64
	MinHopHeight           float64 // mm; lower hops are rolled instead
	BallRadius             float64 // mm
	MaxInterceptableHeight float64 // mm; a robot can touch the ball below this
}

// DefaultParams returns the built-in ball model.
func DefaultParams() Params {
	return ParamsFromTuning(config.EmptyTuningConfig())
}

// ParamsFromTuning builds Params from a loaded TuningConfig.
func ParamsFromTuning(cfg *config.TuningConfig) Params {
	return Params{
		Gravity:                units.Gravity,
		AccRoll:                cfg.GetBallAccRoll(),
		ChipDampingXYFirstHop:  cfg.GetChipDampingXYFirstHop(),
		ChipDampingXYOtherHops: cfg.GetChipDampingXYOtherHops(),
		ChipDampingZ:           cfg.GetChipDampingZ(),
		MinHopHeight:           cfg.GetMinHopHeight(),
		BallRadius:             cfg.GetBallRadius(),
		MaxInterceptableHeight: cfg.GetMaxInterceptableHeight(),
	}
}

// rollDecel is the positive magnitude of the rolling deceleration.
func (p Params) rollDecel() float64 {
	if p.AccRoll < 0 {
		return -p.AccRoll
	}
	return p.AccRoll
}

// apex returns the height gained by a hop leaving the ground at vz.
func (p Params) apex(vz float64) float64 {
	return vz * vz / (2 * p.Gravity)
}
