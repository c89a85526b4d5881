package l3filter

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrAlreadyInitialized is returned when Init is called twice.
	ErrAlreadyInitialized = errors.New("l3filter: estimator already initialized")
	// ErrNotInitialized is returned when the estimator is used before Init.
	ErrNotInitialized = errors.New("l3filter: estimator not initialized")
	// ErrNegativeHorizon is returned for lookahead queries into the past.
	ErrNegativeHorizon = errors.New("l3filter: negative lookahead horizon")
)

// Observation is one measurement of a tracked object.
type Observation struct {
	Pos         r2.Vec
	Orientation float64 // ignored by ball models
}

// Control is a commanded robot velocity in the robot's local frame
// (X forward, Y left).
type Control struct {
	LocalVel r2.Vec
	AngVel   float64
}

// KinematicState is a read-only snapshot of an estimator's state.
type KinematicState struct {
	Timestamp       int64
	Pos             r2.Vec
	Vel             r2.Vec
	Acc             r2.Vec
	Orientation     float64
	AngularVelocity float64
	CovarianceTrace float64
}

// UpdateOutcome reports what an observation did to the filter.
type UpdateOutcome int

const (
	UpdateApplied UpdateOutcome = iota
	UpdateSkippedStale
	UpdateSkippedInvalid
	UpdateSkippedIllConditioned
	UpdateRejectedNonPSD
	UpdateReset
)

func (o UpdateOutcome) String() string {
	switch o {
	case UpdateApplied:
		return "applied"
	case UpdateSkippedStale:
		return "skipped-stale"
	case UpdateSkippedInvalid:
		return "skipped-invalid"
	case UpdateSkippedIllConditioned:
		return "skipped-ill-conditioned"
	case UpdateRejectedNonPSD:
		return "rejected-non-psd"
	case UpdateReset:
		return "reset"
	default:
		return "unknown"
	}
}
