package l2frames

import (
	"sync"
	"testing"
	"time"

	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFrame(camera int, number uint32, capture, sent float64) RawFrame {
	return RawFrame{
		CameraID:       camera,
		FrameNumber:    number,
		CaptureSeconds: capture,
		SentSeconds:    sent,
	}
}

func TestConverter_TranslatesTimes(t *testing.T) {
	t.Parallel()

	c := NewConverter(1, DefaultConverterConfig(), nil, nil, nil)
	f, ok := c.ConvertAt(rawFrame(1, 10, 99.5, 100.0), 5_000_000_000)
	require.True(t, ok)

	// The first frame seeds the offset from its own arrival.
	assert.Equal(t, int64(5_000_000_000), f.SentTime())
	assert.Equal(t, int64(4_500_000_000), f.CaptureTime())
	assert.Equal(t, 1, f.CameraID())
	assert.Equal(t, uint32(10), f.FrameNumber())
}

func TestConverter_MissingSentTimeUsesCapture(t *testing.T) {
	t.Parallel()

	c := NewConverter(0, DefaultConverterConfig(), nil, nil, nil)
	f, ok := c.ConvertAt(rawFrame(0, 1, 20.0, 0), 1_000_000_000)
	require.True(t, ok)
	assert.Equal(t, f.SentTime(), f.CaptureTime())
	assert.Equal(t, int64(1_000_000_000), f.CaptureTime())
}

func TestConverter_ConfidenceFilter(t *testing.T) {
	t.Parallel()

	cfg := DefaultConverterConfig()
	cfg.MinBallConfidence = 0.5
	cfg.MinRobotConfidence = 0.3
	c := NewConverter(2, cfg, nil, nil, nil)

	raw := rawFrame(2, 1, 1.0, 1.0)
	raw.Balls = []RawBall{
		{Confidence: 0.2, X: 1, Y: 2},
		{Confidence: 0.9, X: 100, Y: 200, PixelX: 320, PixelY: 240},
	}
	raw.Robots = []RawRobot{
		{Team: TeamBlue, ID: 3, Confidence: 0.25},
		{Team: TeamYellow, ID: 4, Confidence: 0.8, X: -500, Y: 250, Orientation: 1.2},
	}

	f, ok := c.ConvertAt(raw, 0)
	require.True(t, ok)

	balls := f.Balls()
	require.Len(t, balls, 1)
	assert.Equal(t, 100.0, balls[0].Pos.X)
	assert.Equal(t, 200.0, balls[0].Pos.Y)
	assert.Equal(t, 320.0, balls[0].Pixel.X)
	assert.Equal(t, 2, balls[0].CameraID)
	assert.Equal(t, f.CaptureTime(), balls[0].Timestamp)

	robots := f.Robots()
	require.Len(t, robots, 1)
	assert.Equal(t, RobotKey{Team: TeamYellow, ID: 4}, robots[0].Key())
	assert.Equal(t, 1.2, robots[0].Orientation)
}

func TestConverter_FrameOrdering(t *testing.T) {
	t.Parallel()

	diag := monitoring.NewDiagnostics()
	c := NewConverter(0, DefaultConverterConfig(), nil, nil, diag)

	tests := []struct {
		number uint32
		want   bool
	}{
		{500, true},
		{500, true},  // repeated number is not a regression
		{499, false}, // stale
		{400, false}, // regression of exactly RestartFrameGap
		{501, true},
		{300, true}, // large regression: sensor restart
		{301, true},
		{299, false},
	}

	for i, tt := range tests {
		_, ok := c.ConvertAt(rawFrame(0, tt.number, float64(i)*0.016, float64(i)*0.016), int64(i)*16_000_000)
		assert.Equal(t, tt.want, ok, "frame %d (number %d)", i, tt.number)
	}
	assert.Equal(t, int64(3), diag.Snapshot().DroppedFrames)
}

func TestConverter_IDsIncrease(t *testing.T) {
	t.Parallel()

	c := NewConverter(0, DefaultConverterConfig(), nil, nil, nil)
	var last uint64
	for i := 0; i < 20; i++ {
		f, ok := c.ConvertAt(rawFrame(0, uint32(i), float64(i)*0.01, float64(i)*0.01), int64(i)*10_000_000)
		require.True(t, ok)
		assert.Greater(t, f.ID(), last)
		last = f.ID()
	}
}

func TestFrame_Immutable(t *testing.T) {
	t.Parallel()

	balls := []BallDetection{{Confidence: 0.5}}
	f := NewFrame(1, 0, 1, 0, 0, balls, nil)
	balls[0].Confidence = 0.9

	got := f.Balls()
	assert.Equal(t, 0.5, got[0].Confidence)
	got[0].Confidence = 0.1
	assert.Equal(t, 0.5, f.Balls()[0].Confidence)
	assert.Empty(t, f.Robots())
}

func TestFrame_BestBall(t *testing.T) {
	t.Parallel()

	_, ok := Frame{}.BestBall()
	assert.False(t, ok)

	f := NewFrame(1, 0, 1, 0, 0, []BallDetection{
		{Confidence: 0.4},
		{Confidence: 0.95},
		{Confidence: 0.7},
	}, nil)
	b, ok := f.BestBall()
	require.True(t, ok)
	assert.Equal(t, 0.95, b.Confidence)
	assert.Equal(t, 3, f.NumBalls())
}

func TestIngestor_Concurrent(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Unix(1700000000, 0))
	in := NewIngestor(DefaultConverterConfig(), clock, monitoring.NewDiagnostics())

	const cameras = 4
	const frames = 200

	ids := make(chan uint64, cameras*frames)
	var wg sync.WaitGroup
	for cam := 0; cam < cameras; cam++ {
		wg.Add(1)
		go func(cam int) {
			defer wg.Done()
			for i := 0; i < frames; i++ {
				sec := 50.0 + float64(cam) + float64(i)*0.016
				f, ok := in.IngestAt(rawFrame(cam, uint32(i), sec, sec), int64(i)*16_000_000)
				if ok {
					ids <- f.ID()
				}
			}
		}(cam)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate frame id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, cameras*frames)

	stats := in.Stats()
	require.Len(t, stats, cameras)
	for i, s := range stats {
		assert.Equal(t, i, s.CameraID)
		assert.Equal(t, int64(frames), s.Accepted)
		assert.Zero(t, s.Dropped)
	}
}

func TestIngestor_UsesClock(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Unix(1700000000, 0))
	in := NewIngestor(DefaultConverterConfig(), clock, nil)

	clock.Advance(2 * time.Second)
	assert.Equal(t, int64(2_000_000_000), in.Now())

	f, ok := in.Ingest(rawFrame(7, 1, 10.0, 10.0))
	require.True(t, ok)
	assert.Equal(t, int64(2_000_000_000), f.SentTime())
}

func TestTeamString(t *testing.T) {
	assert.Equal(t, "yellow", TeamYellow.String())
	assert.Equal(t, "blue", TeamBlue.String())
	assert.Equal(t, "unknown", Team(9).String())
}
