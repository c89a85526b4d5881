package l1sync

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing(t *testing.T) {
	t.Parallel()

	r := NewRing(3)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 3, r.Cap())
	assert.Equal(t, 0.0, r.Mean())

	r.Push(1)
	r.Push(2)
	assert.Equal(t, 2, r.Len())
	assert.InDelta(t, 1.5, r.Mean(), 1e-12)
	assert.Equal(t, []float64{1, 2}, r.Values())

	r.Push(3)
	r.Push(4) // evicts 1
	assert.Equal(t, 3, r.Len())
	assert.InDelta(t, 3.0, r.Mean(), 1e-12)
	assert.Equal(t, []float64{2, 3, 4}, r.Values())

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Values())

	assert.Equal(t, 1, NewRing(0).Cap())
}

// clockFeed simulates a sensor whose clock runs offset from the local
// monotonic clock. Frames are sent every period; arrival is exact apart
// from a uniform jitter.
type clockFeed struct {
	sensorStart float64 // sensor seconds at local t=0
	period      time.Duration
	jitter      time.Duration
	rng         *rand.Rand
	frame       int
}

// next returns (sensor capture seconds, local arrival nanos, true local
// capture nanos).
func (f *clockFeed) next() (float64, int64, int64) {
	local := int64(f.frame) * f.period.Nanoseconds()
	f.frame++
	j := int64(0)
	if f.jitter > 0 {
		j = f.rng.Int63n(2*f.jitter.Nanoseconds()+1) - f.jitter.Nanoseconds()
	}
	sensor := f.sensorStart + float64(local)/1e9
	return sensor, local + j, local
}

func TestSynchronizer_FirstFrameSyncs(t *testing.T) {
	t.Parallel()

	diag := monitoring.NewDiagnostics()
	s := NewSynchronizer(DefaultConfig(), diag)

	got := s.Sync(1234.5, 42_000_000)
	assert.Equal(t, int64(42_000_000), got)
	assert.Equal(t, int64(1), diag.Snapshot().ResyncEvents)
	assert.True(t, s.Resyncing(), "one sample is not yet confirmation")

	// The next frame agrees with the offset and ends the resync.
	got = s.Sync(1234.516, 58_000_000)
	assert.InDelta(t, 58_000_000, float64(got), 1000)
	assert.False(t, s.Resyncing())
	assert.Equal(t, int64(1), diag.Snapshot().ResyncEvents)
}

func TestSynchronizer_ClockJumpConverges(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	diag := monitoring.NewDiagnostics()
	s := NewSynchronizer(cfg, diag)
	feed := &clockFeed{
		sensorStart: 1_700_000_000.25,
		period:      16 * time.Millisecond,
		jitter:      30 * time.Microsecond,
		rng:         rand.New(rand.NewSource(7)),
	}

	for i := 0; i < 60; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
	}
	require.False(t, s.Resyncing())

	// Sensor clock jumps forward by one second.
	feed.sensorStart += 1.0

	converged := -1
	for i := 0; i < cfg.BufferSize; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
		if !s.Resyncing() {
			converged = i
			break
		}
	}
	require.GreaterOrEqual(t, converged, 0, "did not converge within %d frames", cfg.BufferSize)
	assert.Equal(t, int64(2), diag.Snapshot().ResyncEvents)

	for i := 0; i < 100; i++ {
		sensor, arrival, truth := feed.next()
		s.Sync(sensor, arrival)
		translated := s.Translate(sensor)
		assert.LessOrEqual(t, math.Abs(float64(translated-truth)), float64(100*time.Microsecond),
			"frame %d translated %d, truth %d", i, translated, truth)
		assert.False(t, s.Resyncing())
	}
}

func TestSynchronizer_SmallJitterDoesNotResync(t *testing.T) {
	t.Parallel()

	diag := monitoring.NewDiagnostics()
	s := NewSynchronizer(DefaultConfig(), diag)
	feed := &clockFeed{
		sensorStart: 50,
		period:      16 * time.Millisecond,
		jitter:      40 * time.Microsecond,
		rng:         rand.New(rand.NewSource(11)),
	}
	for i := 0; i < 500; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
	}
	assert.Equal(t, int64(1), diag.Snapshot().ResyncEvents, "only the initial sync")
	assert.Less(t, s.LastDifference().Abs(), 300*time.Millisecond)
}

func TestSynchronizer_LargeJitterAveragesOffset(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ResyncThreshold = 500 * time.Microsecond
	s := NewSynchronizer(cfg, nil)
	feed := &clockFeed{
		sensorStart: 10,
		period:      16 * time.Millisecond,
		jitter:      2 * time.Millisecond,
		rng:         rand.New(rand.NewSource(3)),
	}
	for i := 0; i < 400; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
	}
	// Averaging keeps the offset well inside the jitter band around the
	// true offset of -10 s.
	assert.InDelta(t, -10e9, float64(s.Offset()), float64(2*time.Millisecond))
}

func TestSynchronizer_SensorRestartSelfHeals(t *testing.T) {
	t.Parallel()

	s := NewSynchronizer(DefaultConfig(), nil)
	feed := &clockFeed{sensorStart: 5000, period: 10 * time.Millisecond}
	for i := 0; i < 20; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
	}
	// Sensor restarts: its clock regresses to zero.
	feed.sensorStart = -float64(feed.frame) * 0.01
	for i := 0; i < 5; i++ {
		sensor, arrival, _ := feed.next()
		s.Sync(sensor, arrival)
	}
	sensor, arrival, truth := feed.next()
	got := s.Sync(sensor, arrival)
	assert.InDelta(t, float64(truth), float64(got), 1000)
	assert.False(t, s.Resyncing())
}
