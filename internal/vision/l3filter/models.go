package l3filter

import (
	"math"

	"github.com/banshee-data/kickoff/internal/units"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// MotionModel supplies the process and measurement equations of an
// Estimator. Implementations are stateless values.
type MotionModel interface {
	Name() string
	// Dim is the state vector length.
	Dim() int
	// Init returns the state and covariance seeded from a first observation.
	Init(obs Observation) (*mat.VecDense, *mat.SymDense)
	// Transition propagates x by dt seconds and returns the new state and
	// the Jacobian of the transition. u is nil when no control is active.
	Transition(x *mat.VecDense, u *Control, dt float64) (*mat.VecDense, *mat.Dense)
	// ProcessNoise returns Q for a step of dt seconds.
	ProcessNoise(dt float64) *mat.SymDense
	// Measure returns h(x) and its Jacobian.
	Measure(x *mat.VecDense) (*mat.VecDense, *mat.Dense)
	// Measurement converts an observation to a measurement vector.
	Measurement(obs Observation) *mat.VecDense
	MeasurementNoise() *mat.SymDense
	// Residual returns z − h(x), wrapping angular components.
	Residual(z, hx *mat.VecDense) *mat.VecDense
	// Normalize wraps angular state components in place.
	Normalize(x *mat.VecDense)
	// Snapshot reads kinematic quantities out of a state vector.
	Snapshot(x *mat.VecDense) KinematicState
}

// Noise holds process noise (per second of prediction) and measurement
// noise variances.
type Noise struct {
	Pos       float64 // mm²/s
	Vel       float64 // (mm/s)²/s
	Acc       float64 // (mm/s²)²/s
	Angle     float64 // rad²/s
	AngVel    float64 // (rad/s)²/s
	MeasPos   float64 // mm²
	MeasAngle float64 // rad²
}

func diagSym(vals ...float64) *mat.SymDense {
	s := mat.NewSymDense(len(vals), nil)
	for i, v := range vals {
		s.SetSym(i, i, v)
	}
	return s
}

func identity(n int) *mat.Dense {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return d
}

// positionMeasure is h(x) = (x0, x1) for a state of length n.
func positionMeasure(x *mat.VecDense, n int) (*mat.VecDense, *mat.Dense) {
	h := mat.NewDense(2, n, nil)
	h.Set(0, 0, 1)
	h.Set(1, 1, 1)
	return mat.NewVecDense(2, []float64{x.AtVec(0), x.AtVec(1)}), h
}

func subVec(a, b *mat.VecDense) *mat.VecDense {
	var out mat.VecDense
	out.SubVec(a, b)
	return &out
}

// ConstantVelocity tracks (x, y, vx, vy).
type ConstantVelocity struct {
	Noise Noise
}

func (ConstantVelocity) Name() string { return "constant-velocity" }
func (ConstantVelocity) Dim() int     { return 4 }

func (m ConstantVelocity) Init(obs Observation) (*mat.VecDense, *mat.SymDense) {
	x := mat.NewVecDense(4, []float64{obs.Pos.X, obs.Pos.Y, 0, 0})
	return x, diagSym(m.Noise.MeasPos, m.Noise.MeasPos, m.Noise.Vel, m.Noise.Vel)
}

func (ConstantVelocity) Transition(x *mat.VecDense, _ *Control, dt float64) (*mat.VecDense, *mat.Dense) {
	f := identity(4)
	f.Set(0, 2, dt)
	f.Set(1, 3, dt)
	var out mat.VecDense
	out.MulVec(f, x)
	return &out, f
}

func (m ConstantVelocity) ProcessNoise(dt float64) *mat.SymDense {
	n := m.Noise
	return diagSym(n.Pos*dt, n.Pos*dt, n.Vel*dt, n.Vel*dt)
}

func (ConstantVelocity) Measure(x *mat.VecDense) (*mat.VecDense, *mat.Dense) {
	return positionMeasure(x, 4)
}

func (ConstantVelocity) Measurement(obs Observation) *mat.VecDense {
	return mat.NewVecDense(2, []float64{obs.Pos.X, obs.Pos.Y})
}

func (m ConstantVelocity) MeasurementNoise() *mat.SymDense {
	return diagSym(m.Noise.MeasPos, m.Noise.MeasPos)
}

func (ConstantVelocity) Residual(z, hx *mat.VecDense) *mat.VecDense { return subVec(z, hx) }
func (ConstantVelocity) Normalize(*mat.VecDense)                      {}

func (ConstantVelocity) Snapshot(x *mat.VecDense) KinematicState {
	return KinematicState{
		Pos: r2.Vec{X: x.AtVec(0), Y: x.AtVec(1)},
		Vel: r2.Vec{X: x.AtVec(2), Y: x.AtVec(3)},
	}
}

// ConstantAcceleration tracks (x, y, vx, vy, ax, ay).
type ConstantAcceleration struct {
	Noise Noise
}

func (ConstantAcceleration) Name() string { return "constant-acceleration" }
func (ConstantAcceleration) Dim() int     { return 6 }

func (m ConstantAcceleration) Init(obs Observation) (*mat.VecDense, *mat.SymDense) {
	x := mat.NewVecDense(6, []float64{obs.Pos.X, obs.Pos.Y, 0, 0, 0, 0})
	n := m.Noise
	return x, diagSym(n.MeasPos, n.MeasPos, n.Vel, n.Vel, n.Acc, n.Acc)
}

func (ConstantAcceleration) Transition(x *mat.VecDense, _ *Control, dt float64) (*mat.VecDense, *mat.Dense) {
	f := identity(6)
	half := 0.5 * dt * dt
	f.Set(0, 2, dt)
	f.Set(1, 3, dt)
	f.Set(0, 4, half)
	f.Set(1, 5, half)
	f.Set(2, 4, dt)
	f.Set(3, 5, dt)
	var out mat.VecDense
	out.MulVec(f, x)
	return &out, f
}

func (m ConstantAcceleration) ProcessNoise(dt float64) *mat.SymDense {
	n := m.Noise
	return diagSym(n.Pos*dt, n.Pos*dt, n.Vel*dt, n.Vel*dt, n.Acc*dt, n.Acc*dt)
}

func (ConstantAcceleration) Measure(x *mat.VecDense) (*mat.VecDense, *mat.Dense) {
	return positionMeasure(x, 6)
}

func (ConstantAcceleration) Measurement(obs Observation) *mat.VecDense {
	return mat.NewVecDense(2, []float64{obs.Pos.X, obs.Pos.Y})
}

func (m ConstantAcceleration) MeasurementNoise() *mat.SymDense {
	return diagSym(m.Noise.MeasPos, m.Noise.MeasPos)
}

func (ConstantAcceleration) Residual(z, hx *mat.VecDense) *mat.VecDense { return subVec(z, hx) }
func (ConstantAcceleration) Normalize(*mat.VecDense)                      {}

func (ConstantAcceleration) Snapshot(x *mat.VecDense) KinematicState {
	return KinematicState{
		Pos: r2.Vec{X: x.AtVec(0), Y: x.AtVec(1)},
		Vel: r2.Vec{X: x.AtVec(2), Y: x.AtVec(3)},
		Acc: r2.Vec{X: x.AtVec(4), Y: x.AtVec(5)},
	}
}

// Robot tracks (x, y, θ, vx, vy, ω) with global-frame velocities. With a
// control input the commanded local velocity is rotated into the global
// frame by the current heading, which makes the transition nonlinear in θ.
type Robot struct {
	Noise Noise
}

const (
	robotX = iota
	robotY
	robotTheta
	robotVX
	robotVY
	robotOmega
)

func (Robot) Name() string { return "robot" }
func (Robot) Dim() int     { return 6 }

func (m Robot) Init(obs Observation) (*mat.VecDense, *mat.SymDense) {
	x := mat.NewVecDense(6, []float64{obs.Pos.X, obs.Pos.Y, units.NormalizeAngle(obs.Orientation), 0, 0, 0})
	n := m.Noise
	return x, diagSym(n.MeasPos, n.MeasPos, n.MeasAngle, n.Vel, n.Vel, n.AngVel)
}

func (Robot) Transition(x *mat.VecDense, u *Control, dt float64) (*mat.VecDense, *mat.Dense) {
	px, py, th := x.AtVec(robotX), x.AtVec(robotY), x.AtVec(robotTheta)
	f := identity(6)
	out := mat.NewVecDense(6, nil)

	if u == nil {
		vx, vy, w := x.AtVec(robotVX), x.AtVec(robotVY), x.AtVec(robotOmega)
		f.Set(robotX, robotVX, dt)
		f.Set(robotY, robotVY, dt)
		f.Set(robotTheta, robotOmega, dt)
		out.SetVec(robotX, px+vx*dt)
		out.SetVec(robotY, py+vy*dt)
		out.SetVec(robotTheta, units.NormalizeAngle(th+w*dt))
		out.SetVec(robotVX, vx)
		out.SetVec(robotVY, vy)
		out.SetVec(robotOmega, w)
		return out, f
	}

	sin, cos := math.Sincos(th)
	vx := cos*u.LocalVel.X - sin*u.LocalVel.Y
	vy := sin*u.LocalVel.X + cos*u.LocalVel.Y

	// Commanded velocities replace the estimated ones; only θ couples in.
	f.Set(robotX, robotTheta, -vy*dt)
	f.Set(robotY, robotTheta, vx*dt)
	for _, r := range []int{robotVX, robotVY, robotOmega} {
		f.Set(r, r, 0)
	}
	f.Set(robotVX, robotTheta, -vy)
	f.Set(robotVY, robotTheta, vx)

	out.SetVec(robotX, px+vx*dt)
	out.SetVec(robotY, py+vy*dt)
	out.SetVec(robotTheta, units.NormalizeAngle(th+u.AngVel*dt))
	out.SetVec(robotVX, vx)
	out.SetVec(robotVY, vy)
	out.SetVec(robotOmega, u.AngVel)
	return out, f
}

func (m Robot) ProcessNoise(dt float64) *mat.SymDense {
	n := m.Noise
	return diagSym(n.Pos*dt, n.Pos*dt, n.Angle*dt, n.Vel*dt, n.Vel*dt, n.AngVel*dt)
}

func (Robot) Measure(x *mat.VecDense) (*mat.VecDense, *mat.Dense) {
	h := mat.NewDense(3, 6, nil)
	h.Set(0, robotX, 1)
	h.Set(1, robotY, 1)
	h.Set(2, robotTheta, 1)
	return mat.NewVecDense(3, []float64{x.AtVec(robotX), x.AtVec(robotY), x.AtVec(robotTheta)}), h
}

func (Robot) Measurement(obs Observation) *mat.VecDense {
	return mat.NewVecDense(3, []float64{obs.Pos.X, obs.Pos.Y, units.NormalizeAngle(obs.Orientation)})
}

func (m Robot) MeasurementNoise() *mat.SymDense {
	return diagSym(m.Noise.MeasPos, m.Noise.MeasPos, m.Noise.MeasAngle)
}

func (Robot) Residual(z, hx *mat.VecDense) *mat.VecDense {
	r := subVec(z, hx)
	r.SetVec(2, units.NormalizeAngle(r.AtVec(2)))
	return r
}

func (Robot) Normalize(x *mat.VecDense) {
	x.SetVec(robotTheta, units.NormalizeAngle(x.AtVec(robotTheta)))
}

func (Robot) Snapshot(x *mat.VecDense) KinematicState {
	return KinematicState{
		Pos:             r2.Vec{X: x.AtVec(robotX), Y: x.AtVec(robotY)},
		Vel:             r2.Vec{X: x.AtVec(robotVX), Y: x.AtVec(robotVY)},
		Orientation:     x.AtVec(robotTheta),
		AngularVelocity: x.AtVec(robotOmega),
	}
}
