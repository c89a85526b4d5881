package worldmodel

import (
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/collision"
	"github.com/banshee-data/kickoff/internal/testutil"
	"github.com/banshee-data/kickoff/internal/timeutil"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
	"github.com/banshee-data/kickoff/internal/vision/l3filter"
)

const t0 = int64(10_000_000_000)

const ms = int64(time.Millisecond)

type feeder struct {
	m  *Model
	id uint64
}

func (f *feeder) send(cam int, ts int64, balls []l2frames.BallDetection, robots []l2frames.RobotDetection) {
	f.id++
	f.m.Update(l2frames.NewFrame(f.id, cam, uint32(f.id), ts, ts, balls, robots))
}

func ballAt(cam int, ts int64, p r2.Vec) l2frames.BallDetection {
	return l2frames.BallDetection{Confidence: 1, Pos: geometry.WithZ(p, 0), CameraID: cam, Timestamp: ts}
}

func robotAt(id int, cam int, ts int64, p r2.Vec, orientation float64) l2frames.RobotDetection {
	return l2frames.RobotDetection{
		Team: l2frames.TeamBlue, ID: id, Confidence: 1, Pos: p, Orientation: orientation,
		CameraID: cam, Timestamp: ts,
	}
}

func blue(id int) l2frames.RobotKey { return l2frames.RobotKey{Team: l2frames.TeamBlue, ID: id} }

func TestRobotTracking(t *testing.T) {
	t.Parallel()

	f := &feeder{m: NewModel(DefaultConfig(), testutil.DefaultCameras(), nil)}
	for i := 0; i < 50; i++ {
		ts := t0 + int64(i)*20*ms
		pos := r2.Vec{X: 1000 * float64(i) * 0.02, Y: -300}
		f.send(0, ts, nil, []l2frames.RobotDetection{
			robotAt(3, 0, ts, pos, 0),
			robotAt(1, 0, ts, r2.Vec{X: 500}, 1),
		})
	}

	robots := f.m.Robots()
	require.Len(t, robots, 2)
	assert.Equal(t, blue(1), robots[0].Key)
	assert.Equal(t, blue(3), robots[1].Key)

	moving := robots[1].State
	assert.InDelta(t, 980, moving.Pos.X, 20)
	assert.InDelta(t, -300, moving.Pos.Y, 5)
	assert.InDelta(t, 1000, moving.Vel.X, 150)
	assert.False(t, robots[1].KeptAlive)

	still := robots[0].State
	assert.InDelta(t, 1, still.Orientation, 0.01)
	assert.InDelta(t, 0, r2.Norm(still.Vel), 10)
}

func TestRobotKeepAliveAndExpiry(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxRobotMisses = 3
	f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), nil)}

	f.send(0, t0, nil, []l2frames.RobotDetection{robotAt(7, 0, t0, r2.Vec{X: 100}, 0)})

	// Another camera not seeing the robot says nothing about it.
	f.send(1, t0+20*ms, nil, nil)
	r, ok := f.m.Robot(blue(7))
	require.True(t, ok)
	assert.False(t, r.KeptAlive)
	assert.Zero(t, r.Misses)

	for i := 1; i <= 3; i++ {
		f.send(0, t0+int64(20+20*i)*ms, nil, nil)
		r, ok := f.m.Robot(blue(7))
		require.True(t, ok, "miss %d", i)
		assert.True(t, r.KeptAlive)
		assert.Equal(t, i, r.Misses)
	}

	f.send(0, t0+100*ms, nil, nil)
	_, ok = f.m.Robot(blue(7))
	assert.False(t, ok)
	assert.Empty(t, f.m.Robots())
}

func TestBallTrackRestartsAfterMisses(t *testing.T) {
	t.Parallel()

	far := r2.Vec{X: 3000, Y: 0}
	run := func(cfg Config) l3filter.KinematicState {
		f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), nil)}
		f.send(0, t0, []l2frames.BallDetection{ballAt(0, t0, r2.Vec{})}, nil)
		for i := int64(1); i <= 3; i++ {
			f.send(0, t0+i*20*ms, nil, nil)
		}
		ts := t0 + 80*ms
		f.send(0, ts, []l2frames.BallDetection{ballAt(0, ts, far)}, nil)
		b, ok := f.m.Ball()
		require.True(t, ok)
		return b
	}

	// Three misses exceed a ball limit of two: the far sighting restarts
	// the track even though robots may miss many more frames.
	cfg := DefaultConfig()
	cfg.MaxBallMisses = 2
	cfg.MaxRobotMisses = 100
	assert.InDelta(t, far.X, run(cfg).Pos.X, 1e-6)

	// A robot limit of two says nothing about the ball.
	cfg = DefaultConfig()
	cfg.MaxBallMisses = 100
	cfg.MaxRobotMisses = 2
	assert.InDelta(t, 0, run(cfg).Pos.X, 50)
}

func TestRobotControl(t *testing.T) {
	t.Parallel()

	f := &feeder{m: NewModel(DefaultConfig(), testutil.DefaultCameras(), nil)}
	f.m.SetRobotControl(blue(2), l3filter.Control{LocalVel: r2.Vec{X: 1000}})

	f.send(0, t0, nil, []l2frames.RobotDetection{robotAt(2, 0, t0, r2.Vec{}, math.Pi/2)})
	f.send(0, t0+20*ms, nil, nil)
	f.send(0, t0+40*ms, nil, nil)

	r, ok := f.m.Robot(blue(2))
	require.True(t, ok)
	assert.InDelta(t, 32, r.State.Pos.Y, 2)
	assert.InDelta(t, 0, r.State.Pos.X, 1)

	f.m.ClearRobotControl(blue(2))
	f.send(0, t0+60*ms, nil, nil)
	r, _ = f.m.Robot(blue(2))
	assert.Greater(t, r.State.Pos.Y, 32.0)
}

func TestBallGate(t *testing.T) {
	t.Parallel()

	f := &feeder{m: NewModel(DefaultConfig(), testutil.DefaultCameras(), nil)}
	_, ok := f.m.Ball()
	assert.False(t, ok)

	f.send(0, t0, []l2frames.BallDetection{ballAt(0, t0, r2.Vec{})}, nil)
	f.send(0, t0+10*ms, []l2frames.BallDetection{
		ballAt(0, t0+10*ms, r2.Vec{X: 3000}),
		ballAt(0, t0+10*ms, r2.Vec{X: 5}),
	}, nil)
	f.send(0, t0+30*ms, []l2frames.BallDetection{ballAt(0, t0+30*ms, r2.Vec{X: 2000, Y: 2000})}, nil)

	ball, ok := f.m.Ball()
	require.True(t, ok)
	assert.Less(t, ball.Pos.X, 50.0)
	assert.Less(t, ball.Pos.Y, 50.0)
	_, ok = f.m.Flight()
	assert.False(t, ok)
}

// chipScenario rests the ball for 100 ms, then chips it at t0+92ms.
func chipScenario(samples int) (testutil.ChipKick, [][]l2frames.BallDetection) {
	rest := r2.Vec{X: 200, Y: 100}
	kick := testutil.ChipKick{
		KickPos:  geometry.WithZ(rest, 0),
		KickVel:  r3.Vec{X: 4000, Y: 1500, Z: 2000},
		KickTime: t0 + 92*ms,
		Cameras:  testutil.DefaultCameras(),
		Delay:    0.008,
		Rate:     100,
		Samples:  samples,
		Params:   ballflight.DefaultParams(),
	}

	var frames [][]l2frames.BallDetection
	for i := 0; i < 10; i++ {
		ts := t0 + int64(i)*10*ms
		frames = append(frames, []l2frames.BallDetection{ballAt(i%2, ts, rest)})
	}
	for _, s := range kick.Observe(rand.New(rand.NewSource(1))) {
		frames = append(frames, []l2frames.BallDetection{ballAt(s.CameraID, s.Timestamp, s.Ground)})
	}
	return kick, frames
}

func feedBalls(f *feeder, frames [][]l2frames.BallDetection) {
	for _, balls := range frames {
		f.send(balls[0].CameraID, balls[0].Timestamp, balls, nil)
	}
}

func TestKickFitted(t *testing.T) {
	t.Parallel()

	diag := monitoring.NewDiagnostics()
	cfg := DefaultConfig()
	f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), diag)}
	kick, frames := chipScenario(12)

	// Three samples into the kick the rule-based flight stands in.
	feedBalls(f, frames[:13])
	rule, ok := f.m.Flight()
	require.True(t, ok)
	assert.False(t, rule.IsChip())
	assert.Equal(t, t0+80*ms, rule.KickTimestamp)

	feedBalls(f, frames[13:10+cfg.KickWindowSize])
	fitted, ok := f.m.Flight()
	require.True(t, ok)
	assert.True(t, fitted.IsChip())
	assert.NotEqual(t, rule.ID, fitted.ID)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(fitted.KickVel, kick.KickVel)), 0.03*r3.Norm(kick.KickVel))
	assert.InDelta(t, kick.KickTime, fitted.KickTimestamp, 5e5)
	assert.Equal(t, kick.KickPos, fitted.KickPos)

	// The remaining sightings follow the fitted flight.
	feedBalls(f, frames[10+cfg.KickWindowSize:])
	still, ok := f.m.Flight()
	require.True(t, ok)
	assert.Equal(t, fitted.ID, still.ID)

	snap := diag.Snapshot()
	assert.Equal(t, int64(1), snap.AcceptedKickFits)
	assert.Zero(t, snap.RejectedKickFits)

	pred, ok := f.m.PredictBall(kick.KickTime + 100*ms)
	require.True(t, ok)
	want := ballflight.NewChip(kick.KickPos, kick.KickVel, kick.Params).StateAfter(0.1)
	assert.InDelta(t, 0, r3.Norm(r3.Sub(pred.Pos, want.Pos)), 20)
}

func TestKickRejectedKeepsRuleFlight(t *testing.T) {
	t.Parallel()

	diag := monitoring.NewDiagnostics()
	cfg := DefaultConfig()
	cfg.Kick.MaxSpeed = 1500
	f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), diag)}
	_, frames := chipScenario(cfg.KickWindowSize)

	feedBalls(f, frames)

	flight, ok := f.m.Flight()
	require.True(t, ok)
	assert.False(t, flight.IsChip())
	assert.Equal(t, int64(1), diag.Snapshot().RejectedKickFits)
}

func TestReachability(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), nil)}
	pos := r2.Vec{X: -1000, Y: 400}
	f.send(1, t0, nil, []l2frames.RobotDetection{robotAt(4, 1, t0, pos, 0)})

	c, ok := f.m.ReachableCircle(blue(4), 0.5)
	require.True(t, ok)
	assert.InDelta(t, pos.X, c.Center.X, 1e-6)
	assert.InDelta(t, pos.Y, c.Center.Y, 1e-6)
	fwd, _ := cfg.Planner.Horizon(pos, r2.Vec{}).ForwardBackward(0.5, 0)
	assert.InDelta(t, fwd+cfg.Collision.RobotRadius, c.Radius, 1e-6)

	tube, ok := f.m.ReachableTube(blue(4), 0.5)
	require.True(t, ok)
	assert.Equal(t, cfg.Collision.RobotRadius, tube.Radius)
	assert.True(t, tube.Contains(pos))

	_, ok = f.m.ReachableCircle(blue(9), 0.5)
	assert.False(t, ok)
}

func TestSimulateBall(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.KickSpeedJump = math.Inf(1)
	f := &feeder{m: NewModel(cfg, testutil.DefaultCameras(), nil)}
	assert.Nil(t, f.m.SimulateBall(1, 0.01, nil))

	// A ball rolling at 2 m/s toward a robot.
	for i := 0; i < 30; i++ {
		ts := t0 + int64(i)*10*ms
		p := r2.Vec{X: -600 + 20*float64(i)}
		f.send(0, ts, []l2frames.BallDetection{ballAt(0, ts, p)},
			[]l2frames.RobotDetection{robotAt(5, 0, ts, r2.Vec{X: 300}, math.Pi)})
	}

	path := f.m.SimulateBall(0.3, 0.01, collision.FieldWalls(9000, 6000, 300, 0.6, 100))
	require.Len(t, path, 31)
	last := path[len(path)-1]
	assert.Less(t, last.Vel.X, 0.0, "ball should have bounced off the robot")
	assert.Less(t, last.Pos.X, 300.0)
}

func TestPipeline(t *testing.T) {
	t.Parallel()

	clock := timeutil.NewMockClock(time.Unix(1000, 0))
	p := NewPipeline(DefaultConfig(), clock, testutil.DefaultCameras(), nil)

	for i := 0; i < 5; i++ {
		raw := l2frames.RawFrame{
			CameraID:       0,
			FrameNumber:    uint32(100 + i),
			CaptureSeconds: 50 + float64(i)*0.01,
			SentSeconds:    50.001 + float64(i)*0.01,
			Robots: []l2frames.RawRobot{
				{Team: l2frames.TeamYellow, ID: 1, Confidence: 0.9, X: 100, Y: 200},
			},
		}
		assert.True(t, p.HandleAt(raw, t0+int64(i)*10*ms))
	}
	stale := l2frames.RawFrame{CameraID: 0, FrameNumber: 101, CaptureSeconds: 50.05, SentSeconds: 50.05}
	assert.False(t, p.HandleAt(stale, t0+60*ms))

	robots := p.Model().Robots()
	require.Len(t, robots, 1)
	assert.Equal(t, l2frames.TeamYellow, robots[0].Key.Team)

	stats := p.Sources()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(5), stats[0].Accepted)
	assert.Equal(t, int64(1), stats[0].Dropped)
}

func TestModel_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	f := &feeder{m: NewModel(DefaultConfig(), testutil.DefaultCameras(), nil)}
	_, frames := chipScenario(20)

	var wg sync.WaitGroup
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				f.m.Ball()
				f.m.Robots()
				f.m.Flight()
				f.m.PredictBall(f.m.Now())
			}
		}()
	}
	feedBalls(f, frames)
	close(done)
	wg.Wait()

	_, ok := f.m.Ball()
	assert.True(t, ok)
}
