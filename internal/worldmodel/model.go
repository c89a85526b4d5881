package worldmodel

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
	"github.com/banshee-data/kickoff/internal/vision/l3filter"
)

var logf = monitoring.Component("worldmodel")

type robotTrack struct {
	est    *l3filter.Estimator
	camera int // camera that last saw the robot
}

// kickWindow collects raw ball sightings after a suspected kick.
type kickWindow struct {
	pos r3.Vec
	obs []kicksolver.Observation
}

// Model is the single owner of all tracked state. Updates are serialised
// internally and should arrive roughly in capture order; snapshot methods
// may run concurrently with them.
type Model struct {
	mu   sync.RWMutex
	cfg  Config
	diag *monitoring.Diagnostics

	cameras map[int]r3.Vec
	solver  *kicksolver.Solver

	ball     *l3filter.Estimator
	lastBall map[int]l2frames.BallDetection // per camera

	robots   map[l2frames.RobotKey]*robotTrack
	controls map[l2frames.RobotKey]l3filter.Control

	flight *ballflight.State
	window *kickWindow
	now    int64
}

// NewModel returns an empty world. cameras maps camera ids to mounting
// positions and is copied.
func NewModel(cfg Config, cameras map[int]r3.Vec, diag *monitoring.Diagnostics) *Model {
	m := &Model{
		cfg:      cfg,
		diag:     diag,
		cameras:  make(map[int]r3.Vec, len(cameras)),
		solver:   kicksolver.NewSolver(cfg.Kick, diag),
		lastBall: make(map[int]l2frames.BallDetection),
		robots:   make(map[l2frames.RobotKey]*robotTrack),
		controls: make(map[l2frames.RobotKey]l3filter.Control),
	}
	for id, pos := range cameras {
		m.cameras[id] = pos
	}
	return m
}

// SetCamera records or moves a camera.
func (m *Model) SetCamera(id int, pos r3.Vec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cameras[id] = pos
}

// SetRobotControl sets the drive command used to predict a robot. It
// applies to the robot's current and future estimators.
func (m *Model) SetRobotControl(key l2frames.RobotKey, u l3filter.Control) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controls[key] = u
	if tr, ok := m.robots[key]; ok {
		tr.est.SetControlInput(u)
	}
}

// ClearRobotControl reverts a robot to uncontrolled prediction.
func (m *Model) ClearRobotControl(key l2frames.RobotKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controls, key)
	if tr, ok := m.robots[key]; ok {
		tr.est.ClearControlInput()
	}
}

// Update folds one detection frame into the world.
func (m *Model) Update(f l2frames.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := f.CaptureTime()
	if ts > m.now {
		m.now = ts
	}
	m.updateBall(f)
	m.updateRobots(f)

	if m.flight != nil && m.window == nil && m.now >= m.flight.KickTimestamp && m.flight.AtRest(m.now) {
		m.flight = nil
	}
}

func (m *Model) newBallEstimator() *l3filter.Estimator {
	return l3filter.NewEstimator(l3filter.ConstantVelocity{Noise: m.cfg.Filter.Noise}, m.cfg.Filter, m.diag)
}

func (m *Model) updateBall(f l2frames.Frame) {
	ts := f.CaptureTime()
	balls := f.Balls()

	if m.ball == nil || m.ball.Misses() > m.cfg.MaxBallMisses {
		best, ok := f.BestBall()
		if !ok {
			return
		}
		m.ball = m.newBallEstimator()
		// Init cannot fail on a fresh estimator.
		_ = m.ball.Init(l3filter.Observation{Pos: geometry.XY(best.Pos)}, ts)
		clear(m.lastBall)
		m.lastBall[best.CameraID] = best
		m.window = nil
		return
	}

	pred, err := m.ball.PredictAt(ts)
	if err != nil {
		// Older than the filter; another camera already moved it on.
		return
	}

	det, ok := nearestBall(balls, pred.Pos, m.cfg.BallGate)
	if !ok {
		m.keepAlive(m.ball, ts)
		return
	}

	if _, err := m.ball.Observe(ts, l3filter.Observation{Pos: geometry.XY(det.Pos)}); err != nil {
		logf("ball update at %d: %v", ts, err)
		return
	}
	m.checkKick(det, pred.Vel)
	m.lastBall[det.CameraID] = det
}

func nearestBall(balls []l2frames.BallDetection, pred r2.Vec, gate float64) (l2frames.BallDetection, bool) {
	best := -1
	bestDist := gate
	for i, b := range balls {
		if d := r2.Norm(r2.Sub(geometry.XY(b.Pos), pred)); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return l2frames.BallDetection{}, false
	}
	return balls[best], true
}

// keepAlive advances est by prediction when a frame that should have seen
// the object did not, at most once per filter cycle.
func (m *Model) keepAlive(est *l3filter.Estimator, ts int64) {
	if ts < est.Timestamp()+m.cfg.Filter.FilterCycle.Nanoseconds() {
		return
	}
	// The estimator is initialised, so keep-alive cannot fail.
	_ = est.KeepAliveWithoutObservation()
}

func (m *Model) updateRobots(f l2frames.Frame) {
	ts := f.CaptureTime()
	seen := make(map[l2frames.RobotKey]bool)

	for _, det := range f.Robots() {
		key := det.Key()
		seen[key] = true
		obs := l3filter.Observation{Pos: det.Pos, Orientation: det.Orientation}

		tr, ok := m.robots[key]
		if !ok {
			est := l3filter.NewEstimator(l3filter.Robot{Noise: m.cfg.Filter.Noise}, m.cfg.Filter, m.diag)
			if u, ok := m.controls[key]; ok {
				est.SetControlInput(u)
			}
			_ = est.Init(obs, ts)
			m.robots[key] = &robotTrack{est: est, camera: f.CameraID()}
			continue
		}
		tr.camera = f.CameraID()
		if _, err := tr.est.Observe(ts, obs); err != nil {
			logf("robot %s/%d update at %d: %v", key.Team, key.ID, ts, err)
		}
	}

	for key, tr := range m.robots {
		if seen[key] || tr.camera != f.CameraID() {
			continue
		}
		m.keepAlive(tr.est, ts)
		if tr.est.Misses() > m.cfg.MaxRobotMisses {
			logf("robot %s/%d lost after %d missed frames", key.Team, key.ID, tr.est.Misses())
			delete(m.robots, key)
		}
	}
}
