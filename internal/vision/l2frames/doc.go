// Package l2frames owns Layer 2 (detection frames) of the vision data
// model.
//
// Responsibilities: translating decoded per-camera sensor records into
// immutable, locally time-stamped DetectionFrames, confidence filtering,
// per-source frame ordering, and fan-in from many producer goroutines.
// Key types: RawFrame, Frame, Converter, Ingestor.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
package l2frames
