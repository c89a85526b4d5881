package worldmodel

import (
	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/bangbang"
	"github.com/banshee-data/kickoff/internal/physics/collision"
	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
	"github.com/banshee-data/kickoff/internal/vision/l3filter"
)

// Config gathers the tuning of every component the model drives.
type Config struct {
	Frames    l2frames.ConverterConfig
	Filter    l3filter.Config
	Flight    ballflight.Params
	Kick      kicksolver.Config
	Collision collision.Config
	Planner   bangbang.Planner

	BallGate       float64 // mm from the predicted ball within which a detection is accepted
	KickSpeedJump  float64 // mm/s of raw speed above the filter speed that suggests a kick
	KickWindowSize int     // samples handed to the kick solver
	MaxRobotMisses int     // keep-alive steps before a robot is dropped
	MaxBallMisses  int     // keep-alive steps before the ball track restarts from the next sighting
}

// DefaultConfig returns the built-in tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Frames:         l2frames.ConverterConfigFromTuning(cfg),
		Filter:         l3filter.ConfigFromTuning(cfg),
		Flight:         ballflight.ParamsFromTuning(cfg),
		Kick:           kicksolver.ConfigFromTuning(cfg),
		Collision:      collision.ConfigFromTuning(cfg),
		Planner:        bangbang.PlannerFromTuning(cfg),
		BallGate:       cfg.GetBallGate(),
		KickSpeedJump:  cfg.GetKickSpeedJump(),
		KickWindowSize: cfg.GetKickWindowSize(),
		MaxRobotMisses: cfg.GetMaxRobotMisses(),
		MaxBallMisses:  cfg.GetMaxBallMisses(),
	}
}
