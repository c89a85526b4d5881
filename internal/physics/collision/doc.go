// Package collision detects and resolves ball contacts with walls, goal
// structure and robots for one simulation step.
//
// Engine is a plain value with no mutable state: identical inputs yield
// bit-identical results, and a single Engine may be used from any number
// of goroutines. Obstacles are evaluated in slice order and ties on the
// contact parameter go to the lowest index.
package collision
