package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/geometry"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
)

// Config holds contact tuning and default body dimensions.
type Config struct {
	BallRadius       float64
	WallRestitution  float64
	RobotRestitution float64
	DribbleDamping   float64 // fraction of tangential speed removed at full strength
	DribblerContact  float64 // mm beyond touching at which the dribbler holds
	RobotRadius      float64
	CenterToDribbler float64
	RobotHeight      float64
	Flight           ballflight.Params
}

// DefaultConfig returns the built-in contact tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		BallRadius:       cfg.GetBallRadius(),
		WallRestitution:  cfg.GetWallRestitution(),
		RobotRestitution: cfg.GetRobotRestitution(),
		DribbleDamping:   cfg.GetDribbleDamping(),
		DribblerContact:  cfg.GetDribblerContact(),
		RobotRadius:      cfg.GetRobotRadius(),
		CenterToDribbler: cfg.GetCenterToDribbler(),
		RobotHeight:      cfg.GetMaxInterceptableHeight(),
		Flight:           ballflight.ParamsFromTuning(cfg),
	}
}

// Engine resolves ball contacts. The zero value is not useful; use
// NewEngine.
type Engine struct {
	cfg Config
}

// NewEngine returns an engine with cfg.
func NewEngine(cfg Config) Engine {
	return Engine{cfg: cfg}
}

// Config returns the engine tuning.
func (e Engine) Config() Config { return e.cfg }

// Step checks the straight path from pre to post (post being the free
// flight result after dt seconds) against obstacles. The earliest contact
// is resolved and the rest of the step is flown straight with the new
// velocity.
func (e Engine) Step(pre, post ballflight.BallState, dt float64, obstacles []Obstacle) Result {
	path := Path{
		P0:      geometry.XY(pre.Pos),
		P1:      geometry.XY(post.Pos),
		Vel:     geometry.XY(pre.Vel),
		Dt:      dt,
		Radius:  e.cfg.BallRadius,
		Contact: e.cfg.DribblerContact,
	}
	low := math.Min(pre.Pos.Z, post.Pos.Z)

	best := Candidate{S: math.Inf(1)}
	found := false
	for i, o := range obstacles {
		if h := o.top(); h > 0 && low > h {
			continue
		}
		c, ok := o.hit(path)
		if !ok || c.S >= best.S {
			continue
		}
		c.Obstacle = i
		best = c
		found = true
	}
	if !found {
		return Result{State: post}
	}

	s := best.S
	vel := r3.Add(pre.Vel, r3.Scale(s, r3.Sub(post.Vel, pre.Vel)))
	z := pre.Pos.Z + s*(post.Pos.Z-pre.Pos.Z)

	newVel, impulse := obstacles[best.Obstacle].resolve(best, vel, e.cfg)

	rest := (1 - s) * dt
	final := ballflight.BallState{
		Pos: r3.Vec{
			X: best.Point.X + newVel.X*rest,
			Y: best.Point.Y + newVel.Y*rest,
			Z: math.Max(0, z+newVel.Z*rest),
		},
		Vel: newVel,
	}
	return Result{State: final, Collided: true, Contact: best, Impulse: impulse}
}

// Advance integrates free flight for dt seconds and resolves contacts
// along the way.
func (e Engine) Advance(pre ballflight.BallState, dt float64, obstacles []Obstacle) Result {
	post := ballflight.Integrate(pre, dt, e.cfg.Flight)
	return e.Step(pre, post, dt, obstacles)
}
