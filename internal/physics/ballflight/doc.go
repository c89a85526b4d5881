// Package ballflight models a struck ball: a straight roll with constant
// deceleration, or a chip made of ballistic hops with per-bounce damping
// that settles into a roll once hops fall below a minimum height.
//
// Positions are in mm with z the height above the ground, velocities in
// mm/s, and durations in seconds relative to the kick. Flight states are
// immutable; a new kick produces a new State with a fresh ID.
package ballflight
