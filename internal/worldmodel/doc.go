// Package worldmodel drives the perception data flow: detection frames
// update one ball estimator and one estimator per robot, a rule-based
// trigger opens a kick window, and the kick solver turns that window into
// the authoritative ball flight.
//
// Responsibilities: ball association within a gate, robot keep-alive and
// expiry, kick detection and re-seeding of the flight state, and
// read-only snapshots (ball, robots, flight, reachability) for planners.
// Key types: Model, Pipeline, RobotState.
//
// Dependency rule: worldmodel sits above the vision layers and the
// physics packages and may depend on all of them; nothing in internal/
// depends on worldmodel.
package worldmodel
