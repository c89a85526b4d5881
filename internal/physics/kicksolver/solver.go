package kicksolver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/units"
)

var logf = monitoring.Component("kicksolver")

var (
	ErrTooFewSamples = errors.New("kicksolver: too few samples")
	ErrUnordered     = errors.New("kicksolver: observations out of order")
	ErrUnknownCamera = errors.New("kicksolver: unknown camera")
	ErrSingular      = errors.New("kicksolver: singular system")
	ErrNotConverged  = errors.New("kicksolver: offset search did not converge")
	ErrImplausible   = errors.New("kicksolver: implausible kick")
)

// minSamples is the smallest window that over-determines the three
// velocity components.
const minSamples = 2

// probeEpsilon is the offset perturbation, in seconds, used to pick the
// search direction.
const probeEpsilon = 1e-5

// Observation is one ball sighting on the ground plane.
type Observation struct {
	Ground    r2.Vec // mm, where the camera ray through the ball meets z=0
	CameraID  int
	Timestamp int64 // local ns
}

// Config holds the offset search bounds and plausibility limits.
type Config struct {
	SeedOffset    float64 // s
	InitialStep   float64 // s
	Tolerance     float64 // s; the search stops once the step is smaller
	MaxIterations int
	MaxOffset     float64 // s
	MinSpeed      float64 // mm/s
	MaxSpeed      float64 // mm/s
	MaxChipAngle  float64 // radians above the ground
	Gravity       float64 // mm/s²
	RCond         float64 // relative singular value cutoff for the rank
}

// DefaultConfig returns the built-in solver tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		SeedOffset:    cfg.GetKickSeedOffset(),
		InitialStep:   cfg.GetKickInitialStep(),
		Tolerance:     cfg.GetKickTolerance(),
		MaxIterations: cfg.GetKickMaxIterations(),
		MaxOffset:     cfg.GetKickMaxOffset(),
		MinSpeed:      cfg.GetMinKickSpeed(),
		MaxSpeed:      cfg.GetMaxKickSpeed(),
		MaxChipAngle:  cfg.GetMaxChipAngleDeg() * math.Pi / 180,
		Gravity:       units.Gravity,
		RCond:         1e-9,
	}
}

// Solver fits kicks. It keeps no state between calls.
type Solver struct {
	cfg  Config
	diag *monitoring.Diagnostics
}

// NewSolver returns a solver. diag may be nil.
func NewSolver(cfg Config, diag *monitoring.Diagnostics) *Solver {
	return &Solver{cfg: cfg, diag: diag}
}

// Config returns the solver tuning.
func (s *Solver) Config() Config { return s.cfg }

// Solve estimates the kick velocity and instant for a ball kicked from
// kickPos and then seen at obs, which must be in chronological order.
// cameras maps camera ids to mounting positions. Every failure is
// reported as one of the package errors and counted as a rejected fit.
func (s *Solver) Solve(kickPos r3.Vec, obs []Observation, cameras map[int]r3.Vec) (Fit, error) {
	fit, err := s.solve(kickPos, obs, cameras)
	if err != nil {
		s.diag.IncRejectedKickFit()
		logf("kick fit rejected over %d samples: %v", len(obs), err)
		return Fit{}, err
	}
	s.diag.IncAcceptedKickFit()
	return fit, nil
}

func (s *Solver) solve(kickPos r3.Vec, obs []Observation, cameras map[int]r3.Vec) (Fit, error) {
	sys, err := newSystem(kickPos, obs, cameras, s.cfg.Gravity, s.cfg.RCond)
	if err != nil {
		return Fit{}, err
	}

	offset, iterations, err := s.search(sys)
	if err != nil {
		return Fit{}, err
	}

	vel, l1, err := sys.solve(offset)
	if err != nil {
		return Fit{}, err
	}
	if err := s.plausible(vel); err != nil {
		return Fit{}, err
	}

	rms, err := sys.reprojectionRMS(offset, vel)
	if err != nil {
		return Fit{}, err
	}

	return Fit{
		KickPos:       kickPos,
		Velocity:      vel,
		KickTimestamp: obs[0].Timestamp - units.SecondsToNanos(offset),
		Offset:        offset,
		Iterations:    iterations,
		L1Residual:    l1,
		RMS:           rms,
		Samples:       len(obs),
	}, nil
}

// search refines the offset between the kick and the first observation.
// Each iteration probes the residual on both sides of the current offset,
// steps toward the lower side and halves the step.
func (s *Solver) search(sys *system) (float64, int, error) {
	offset := s.clampOffset(s.cfg.SeedOffset)
	step := s.cfg.InitialStep

	for i := 1; i <= s.cfg.MaxIterations; i++ {
		_, lo, err := sys.solve(offset - probeEpsilon)
		if err != nil {
			return 0, i, err
		}
		_, hi, err := sys.solve(offset + probeEpsilon)
		if err != nil {
			return 0, i, err
		}

		if lo < hi {
			offset -= step
		} else {
			offset += step
		}
		offset = s.clampOffset(offset)
		step /= 2

		if step < s.cfg.Tolerance {
			return offset, i, nil
		}
	}
	return offset, s.cfg.MaxIterations, fmt.Errorf("%w after %d iterations (step %.2g s)",
		ErrNotConverged, s.cfg.MaxIterations, step)
}

func (s *Solver) clampOffset(v float64) float64 {
	return math.Max(0, math.Min(s.cfg.MaxOffset, v))
}

func (s *Solver) plausible(v r3.Vec) error {
	speed := r3.Norm(v)
	switch {
	case math.IsNaN(speed) || math.IsInf(speed, 0):
		return fmt.Errorf("%w: non-finite velocity", ErrImplausible)
	case speed < s.cfg.MinSpeed:
		return fmt.Errorf("%w: speed %.0f mm/s below %.0f", ErrImplausible, speed, s.cfg.MinSpeed)
	case speed > s.cfg.MaxSpeed:
		return fmt.Errorf("%w: speed %.0f mm/s above %.0f", ErrImplausible, speed, s.cfg.MaxSpeed)
	case v.Z < 0:
		return fmt.Errorf("%w: downward launch %.0f mm/s", ErrImplausible, v.Z)
	}
	if angle := math.Atan2(v.Z, math.Hypot(v.X, v.Y)); angle > s.cfg.MaxChipAngle {
		return fmt.Errorf("%w: chip angle %.1f° above %.1f°", ErrImplausible,
			angle*180/math.Pi, s.cfg.MaxChipAngle*180/math.Pi)
	}
	return nil
}
