// Package bangbang computes minimal-time motion profiles under velocity
// and acceleration limits, brake analysis, and moving-horizon
// reachability shapes.
//
// Trajectories are immutable values built once from boundary conditions;
// every query is a pure function of time and safe for concurrent use.
// Planner bundles limits so callers inject one value instead of reaching
// for a shared factory.
package bangbang
