package monitoring

import "sync/atomic"

// Diagnostics counts recoverable anomalies. All methods are safe for
// concurrent use; a nil *Diagnostics silently discards increments.
type Diagnostics struct {
	resyncEvents     atomic.Int64
	droppedFrames    atomic.Int64
	skippedUpdates   atomic.Int64
	filterResets     atomic.Int64
	rejectedKickFits atomic.Int64
	acceptedKickFits atomic.Int64
}

// DiagnosticsSnapshot is a point-in-time copy of the counters.
type DiagnosticsSnapshot struct {
	ResyncEvents     int64 `json:"resync_events"`
	DroppedFrames    int64 `json:"dropped_frames"`
	SkippedUpdates   int64 `json:"skipped_updates"`
	FilterResets     int64 `json:"filter_resets"`
	RejectedKickFits int64 `json:"rejected_kick_fits"`
	AcceptedKickFits int64 `json:"accepted_kick_fits"`
}

// NewDiagnostics returns a zeroed counter set.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

func (d *Diagnostics) IncResync() {
	if d != nil {
		d.resyncEvents.Add(1)
	}
}

func (d *Diagnostics) IncDroppedFrame() {
	if d != nil {
		d.droppedFrames.Add(1)
	}
}

func (d *Diagnostics) IncSkippedUpdate() {
	if d != nil {
		d.skippedUpdates.Add(1)
	}
}

func (d *Diagnostics) IncFilterReset() {
	if d != nil {
		d.filterResets.Add(1)
	}
}

func (d *Diagnostics) IncRejectedKickFit() {
	if d != nil {
		d.rejectedKickFits.Add(1)
	}
}

func (d *Diagnostics) IncAcceptedKickFit() {
	if d != nil {
		d.acceptedKickFits.Add(1)
	}
}

// Snapshot returns the current counter values.
func (d *Diagnostics) Snapshot() DiagnosticsSnapshot {
	if d == nil {
		return DiagnosticsSnapshot{}
	}
	return DiagnosticsSnapshot{
		ResyncEvents:     d.resyncEvents.Load(),
		DroppedFrames:    d.droppedFrames.Load(),
		SkippedUpdates:   d.skippedUpdates.Load(),
		FilterResets:     d.filterResets.Load(),
		RejectedKickFits: d.rejectedKickFits.Load(),
		AcceptedKickFits: d.acceptedKickFits.Load(),
	}
}
