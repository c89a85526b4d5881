// Package l1sync owns Layer 1 (clock synchronisation) of the vision
// data model.
//
// Responsibilities: translating sensor-clock seconds into the local
// monotonic nanosecond domain, detecting clock jumps and drift, and
// re-converging the offset with a hysteresis that avoids oscillating
// between two estimates under jitter.
// Key types: Synchronizer, Ring.
//
// Dependency rule: L1 depends on nothing above it. A Synchronizer is
// owned by exactly one source and is not safe for concurrent use.
package l1sync
