package worldmodel

import (
	"math"
	"sort"

	"github.com/banshee-data/kickoff/internal/geometry"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/collision"
	"github.com/banshee-data/kickoff/internal/vision/l2frames"
	"github.com/banshee-data/kickoff/internal/vision/l3filter"
)

// RobotState is a snapshot of one tracked robot.
type RobotState struct {
	Key       l2frames.RobotKey
	State     l3filter.KinematicState
	KeptAlive bool
	Misses    int
}

// Now returns the latest capture time seen.
func (m *Model) Now() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Ball returns the filtered ball state.
func (m *Model) Ball() (l3filter.KinematicState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ball == nil {
		return l3filter.KinematicState{}, false
	}
	return m.ball.State(), true
}

// Robots returns every tracked robot ordered by team and id.
func (m *Model) Robots() []RobotState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]RobotState, 0, len(m.robots))
	for key, tr := range m.robots {
		out = append(out, RobotState{
			Key:       key,
			State:     tr.est.State(),
			KeptAlive: tr.est.HasBeenKeptAlive(),
			Misses:    tr.est.Misses(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Team != out[j].Key.Team {
			return out[i].Key.Team < out[j].Key.Team
		}
		return out[i].Key.ID < out[j].Key.ID
	})
	return out
}

// Robot returns one tracked robot.
func (m *Model) Robot(key l2frames.RobotKey) (RobotState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tr, ok := m.robots[key]
	if !ok {
		return RobotState{}, false
	}
	return RobotState{
		Key:       key,
		State:     tr.est.State(),
		KeptAlive: tr.est.HasBeenKeptAlive(),
		Misses:    tr.est.Misses(),
	}, true
}

// Flight returns the authoritative flight of the last kick while the
// ball is still moving.
func (m *Model) Flight() (ballflight.State, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.flight == nil {
		return ballflight.State{}, false
	}
	return *m.flight, true
}

// PredictBall returns the ball at local time ts: from the flight model
// when a kick is in progress, otherwise from the ball estimator.
func (m *Model) PredictBall(ts int64) (ballflight.BallState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.predictBall(ts)
}

func (m *Model) predictBall(ts int64) (ballflight.BallState, bool) {
	if m.flight != nil && ts >= m.flight.KickTimestamp {
		return m.flight.StateAt(ts), true
	}
	if m.ball == nil {
		return ballflight.BallState{}, false
	}
	s, err := m.ball.PredictAt(ts)
	if err != nil {
		return ballflight.BallState{}, false
	}
	return ballflight.BallState{Pos: geometry.WithZ(s.Pos, 0), Vel: geometry.WithZ(s.Vel, 0)}, true
}

func (m *Model) robotState(key l2frames.RobotKey) (l3filter.KinematicState, bool) {
	tr, ok := m.robots[key]
	if !ok {
		return l3filter.KinematicState{}, false
	}
	return tr.est.State(), true
}

// ReachableCircle returns the region a robot can reach within horizon
// seconds, grown by the robot radius.
func (m *Model) ReachableCircle(key l2frames.RobotKey, horizon float64) (geometry.Circle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.robotState(key)
	if !ok {
		return geometry.Circle{}, false
	}
	return m.cfg.Planner.Horizon(s.Pos, s.Vel).Circle(horizon, 0, m.cfg.Collision.RobotRadius), true
}

// ReachableTube is ReachableCircle as a capsule along the robot's
// velocity.
func (m *Model) ReachableTube(key l2frames.RobotKey, horizon float64) (geometry.Tube, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.robotState(key)
	if !ok {
		return geometry.Tube{}, false
	}
	return m.cfg.Planner.Horizon(s.Pos, s.Vel).Tube(horizon, 0, m.cfg.Collision.RobotRadius), true
}

// Obstacles returns the tracked robots as collision bodies ordered by
// team and id.
func (m *Model) Obstacles() []collision.Obstacle {
	robots := m.Robots()
	out := make([]collision.Obstacle, 0, len(robots))
	for _, r := range robots {
		body := collision.NewRobot(r.Key.ID, r.State.Pos, r.State.Orientation, m.cfg.Collision)
		body.Vel = r.State.Vel
		out = append(out, body)
	}
	return out
}

// SimulateBall steps the ball forward from the latest frame for horizon
// seconds in steps of step seconds, bouncing off the tracked robots and
// the given static geometry. The first element is the starting state.
func (m *Model) SimulateBall(horizon, step float64, static []collision.Obstacle) []ballflight.BallState {
	if step <= 0 || horizon < 0 {
		return nil
	}
	obstacles := append(append([]collision.Obstacle(nil), static...), m.Obstacles()...)

	m.mu.RLock()
	start, ok := m.predictBall(m.now)
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	engine := collision.NewEngine(m.cfg.Collision)
	n := int(math.Ceil(horizon / step))
	out := make([]ballflight.BallState, 0, n+1)
	out = append(out, start)
	s := start
	for i := 0; i < n; i++ {
		s = engine.Advance(s, step, obstacles).State
		out = append(out, s)
	}
	return out
}
