// Package kicksolver recovers the 3D kick velocity and the kick instant
// from a short window of ground-plane ball observations.
//
// Responsibilities: build the linear system that relates a ballistic
// flight to each camera's ground projection, solve it by SVD for a trial
// kick-time offset, refine the offset with a halving sign search on the
// L1 residual, and reject singular or physically implausible fits.
// Key types: Solver, Observation, Fit.
//
// Dependency rule: kicksolver may depend on ballflight and the shared
// support packages, but never on vision layers or the world model.
// Solvers hold no per-call state and are safe for concurrent use.
package kicksolver
