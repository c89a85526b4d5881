package l2frames

import (
	"sync/atomic"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/timeutil"
	"github.com/banshee-data/kickoff/internal/vision/l1sync"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var logf = monitoring.Component("l2frames")

// ConverterConfig holds per-source conversion tuning.
type ConverterConfig struct {
	Sync               l1sync.Config
	MinBallConfidence  float64
	MinRobotConfidence float64
	RestartFrameGap    uint32 // Regressions larger than this are sensor restarts
}

// DefaultConverterConfig returns the built-in conversion tuning.
func DefaultConverterConfig() ConverterConfig {
	return ConverterConfigFromTuning(config.EmptyTuningConfig())
}

// ConverterConfigFromTuning builds a ConverterConfig from a loaded TuningConfig.
func ConverterConfigFromTuning(cfg *config.TuningConfig) ConverterConfig {
	gap := cfg.GetRestartFrameGap()
	if gap < 0 {
		gap = 0
	}
	return ConverterConfig{
		Sync:               l1sync.ConfigFromTuning(cfg),
		MinBallConfidence:  cfg.GetMinBallConfidence(),
		MinRobotConfidence: cfg.GetMinRobotConfidence(),
		RestartFrameGap:    uint32(gap),
	}
}

// Converter translates one source's RawFrames into Frames. It owns the
// source's Synchronizer and is not safe for concurrent use.
type Converter struct {
	cfg      ConverterConfig
	cameraID int
	sync     *l1sync.Synchronizer
	mono     *timeutil.Monotonic
	ids      *atomic.Uint64
	diag     *monitoring.Diagnostics

	lastFrame uint32
	hasFrame  bool
}

// NewConverter creates a converter for one camera. mono supplies local
// arrival times; ids is shared between converters so frame ids are unique
// across sources (nil allocates a private counter).
func NewConverter(cameraID int, cfg ConverterConfig, mono *timeutil.Monotonic,
	ids *atomic.Uint64, diag *monitoring.Diagnostics) *Converter {
	if mono == nil {
		mono = timeutil.NewMonotonic(nil)
	}
	if ids == nil {
		ids = new(atomic.Uint64)
	}
	return &Converter{
		cfg:      cfg,
		cameraID: cameraID,
		sync:     l1sync.NewSynchronizer(cfg.Sync, diag),
		mono:     mono,
		ids:      ids,
		diag:     diag,
	}
}

// Convert translates raw using the current local time as arrival time.
func (c *Converter) Convert(raw RawFrame) (Frame, bool) {
	return c.ConvertAt(raw, c.mono.Nanos())
}

// ConvertAt translates raw with an explicit local arrival time. Frames
// that regress the sensor frame counter by at most RestartFrameGap are
// dropped; larger regressions are taken as a sensor restart.
func (c *Converter) ConvertAt(raw RawFrame, arrival int64) (Frame, bool) {
	if c.hasFrame && raw.FrameNumber < c.lastFrame {
		if c.lastFrame-raw.FrameNumber <= c.cfg.RestartFrameGap {
			c.diag.IncDroppedFrame()
			return Frame{}, false
		}
		logf("camera %d frame counter restarted (%d -> %d)", c.cameraID, c.lastFrame, raw.FrameNumber)
	}
	c.lastFrame = raw.FrameNumber
	c.hasFrame = true

	sent := raw.SentSeconds
	if sent == 0 {
		sent = raw.CaptureSeconds
	}
	sentLocal := c.sync.Sync(sent, arrival)
	captureLocal := c.sync.Translate(raw.CaptureSeconds)

	balls := make([]BallDetection, 0, len(raw.Balls))
	for _, b := range raw.Balls {
		if b.Confidence < c.cfg.MinBallConfidence {
			continue
		}
		balls = append(balls, BallDetection{
			Confidence: b.Confidence,
			Pos:        r3.Vec{X: b.X, Y: b.Y, Z: b.Z},
			Pixel:      r2.Vec{X: b.PixelX, Y: b.PixelY},
			CameraID:   c.cameraID,
			Timestamp:  captureLocal,
		})
	}

	robots := make([]RobotDetection, 0, len(raw.Robots))
	for _, r := range raw.Robots {
		if r.Confidence < c.cfg.MinRobotConfidence {
			continue
		}
		robots = append(robots, RobotDetection{
			Team:        r.Team,
			ID:          r.ID,
			Confidence:  r.Confidence,
			Pos:         r2.Vec{X: r.X, Y: r.Y},
			Orientation: r.Orientation,
			Height:      r.Height,
			Pixel:       r2.Vec{X: r.PixelX, Y: r.PixelY},
			CameraID:    c.cameraID,
			Timestamp:   captureLocal,
		})
	}

	id := c.ids.Add(1)
	return NewFrame(id, c.cameraID, raw.FrameNumber, captureLocal, sentLocal, balls, robots), true
}

// Synchronizer exposes the source's clock synchroniser for inspection.
func (c *Converter) Synchronizer() *l1sync.Synchronizer {
	return c.sync
}
