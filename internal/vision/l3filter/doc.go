// Package l3filter owns Layer 3 (state estimation) of the vision data
// model.
//
// Responsibilities: recursive per-object estimation of kinematic state
// from detections and control inputs, lookahead prediction without
// mutating committed state, and prediction-only keep-alive during
// occlusion. Numeric guards keep the covariance positive semi-definite
// and skip updates whose innovation covariance is ill-conditioned.
// Key types: Estimator, MotionModel, KinematicState.
//
// Dependency rule: L3 may depend on L1/L2, but never on L4+.
package l3filter
