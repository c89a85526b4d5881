package l1sync

import (
	"math"
	"time"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/units"
)

var logf = monitoring.Component("l1sync")

// Config holds the synchroniser tuning.
type Config struct {
	BufferSize       int           // Offset samples averaged during a resync
	ResyncThreshold  time.Duration // |local - translated| that starts a resync
	SettledThreshold time.Duration // |local - translated| that ends a resync
}

// DefaultConfig returns the built-in synchroniser tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BufferSize:       cfg.GetSyncBufferSize(),
		ResyncThreshold:  cfg.GetSyncResyncThreshold(),
		SettledThreshold: cfg.GetSyncSettledThreshold(),
	}
}

// Synchronizer aligns one sensor's clock to the local monotonic domain.
//
// The offset is local − sensor in nanoseconds. While synchronised the
// offset is fixed; a resync collects fresh offset samples into the ring
// and uses their mean until a send time translated with that mean lands
// within SettledThreshold of the local arrival time, at which point the
// ring is cleared and the offset frozen again. A resync is self-healing
// within BufferSize frames of a steady clock.
type Synchronizer struct {
	cfg    Config
	offset int64
	ring   *Ring
	diag   *monitoring.Diagnostics

	lastDiff int64
	frames   int64
}

// NewSynchronizer returns a synchroniser with a zero offset; the first
// frame always triggers a resync.
func NewSynchronizer(cfg Config, diag *monitoring.Diagnostics) *Synchronizer {
	return &Synchronizer{
		cfg:  cfg,
		ring: NewRing(cfg.BufferSize),
		diag: diag,
	}
}

// Translate converts sensor-clock seconds to local nanoseconds using the
// current offset.
func (s *Synchronizer) Translate(sensorSeconds float64) int64 {
	return units.SecondsToNanos(sensorSeconds) + s.offset
}

// Sync ingests one frame's sensor send time and local arrival time,
// updates the offset when needed, and returns the translated send time.
func (s *Synchronizer) Sync(sensorSentSeconds float64, localArrival int64) int64 {
	s.frames++
	sensorNanos := units.SecondsToNanos(sensorSentSeconds)
	diff := localArrival - (sensorNanos + s.offset)

	if absNanos(diff) > s.cfg.ResyncThreshold.Nanoseconds() || s.ring.Len() > 0 {
		if s.ring.Len() == 0 {
			s.diag.IncResync()
			logf("clock difference %.3f ms after %d frames, resynchronising",
				float64(diff)/1e6, s.frames)
		}
		s.ring.Push(float64(localArrival - sensorNanos))
		s.offset = int64(math.Round(s.ring.Mean()))

		// diff was measured against the smoothed offset of the samples
		// collected so far; once that agrees the resync is complete.
		if absNanos(diff) < s.cfg.SettledThreshold.Nanoseconds() {
			s.ring.Clear()
		}
	}

	s.lastDiff = diff
	return sensorNanos + s.offset
}

// Offset returns the current local − sensor offset in nanoseconds.
func (s *Synchronizer) Offset() int64 { return s.offset }

// Resyncing reports whether a resync is in progress.
func (s *Synchronizer) Resyncing() bool { return s.ring.Len() > 0 }

// LastDifference returns local − translated for the most recent frame.
func (s *Synchronizer) LastDifference() time.Duration {
	return time.Duration(s.lastDiff)
}

func absNanos(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
