// Package geometry provides the 2D shapes and swept-path intersection
// tests shared by the trajectory, ball-flight and collision packages.
//
// Vectors are gonum spatial/r2 and spatial/r3 values; all lengths are
// millimetres. Everything here is pure and safe for concurrent use.
package geometry
