package collision

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/geometry"
)

// Obstacle is something the ball can hit. The set is closed: Wall and
// Robot.
type Obstacle interface {
	// hit returns the first approaching contact along path.
	hit(path Path) (Candidate, bool)
	// resolve returns the ball velocity after contact c.
	resolve(c Candidate, vel r3.Vec, cfg Config) (r3.Vec, Impulse)
	// top is the obstacle height; a ball above it passes. Zero is unbounded.
	top() float64
}

func approaching(rel, normal r2.Vec) bool {
	return r2.Dot(rel, normal) < 0
}

// reflect removes (1+e) times the approaching normal component of v.
func reflect(v, n r2.Vec, e float64) r2.Vec {
	vn := r2.Dot(v, n)
	if vn >= 0 {
		return v
	}
	return r2.Sub(v, r2.Scale((1+e)*vn, n))
}

// Wall is a static line segment such as a field boundary or goal wall.
type Wall struct {
	Segment     geometry.Segment
	Restitution float64
	Height      float64
}

func (w Wall) hit(path Path) (Candidate, bool) {
	h, ok := geometry.SweepSegment(path.P0, path.P1, w.Segment, path.Radius)
	if !ok || !approaching(path.Vel, h.Normal) {
		return Candidate{}, false
	}
	return Candidate{Kind: KindWall, S: h.S, Point: h.Point, Normal: h.Normal}, true
}

func (w Wall) resolve(c Candidate, vel r3.Vec, _ Config) (r3.Vec, Impulse) {
	xy := reflect(geometry.XY(vel), c.Normal, w.Restitution)
	return geometry.WithZ(xy, vel.Z), ImpulseBounce
}

func (w Wall) top() float64 { return w.Height }

// KickCommand is an active kick: speed in mm/s, chip angle in radians
// above the ground.
type KickCommand struct {
	Speed     float64
	ChipAngle float64
}

// DribbleCommand is an active dribbler with strength in [0, 1].
type DribbleCommand struct {
	Strength float64
}

// Robot is a disc with a flat front face carrying the dribbler and kicker.
type Robot struct {
	ID               int
	Pos              r2.Vec
	Orientation      float64
	Vel              r2.Vec
	Radius           float64
	CenterToDribbler float64
	Height           float64
	Restitution      float64
	Kick             *KickCommand
	Dribble          *DribbleCommand
}

// NewRobot returns a robot with body dimensions from cfg.
func NewRobot(id int, pos r2.Vec, orientation float64, cfg Config) Robot {
	return Robot{
		ID:               id,
		Pos:              pos,
		Orientation:      orientation,
		Radius:           cfg.RobotRadius,
		CenterToDribbler: cfg.CenterToDribbler,
		Height:           cfg.RobotHeight,
		Restitution:      cfg.RobotRestitution,
	}
}

func (r Robot) facing() r2.Vec { return geometry.FromAngle(r.Orientation) }

// Face returns the front face segment.
func (r Robot) Face() geometry.Segment {
	f := r.facing()
	center := r2.Add(r.Pos, r2.Scale(r.CenterToDribbler, f))
	half := math.Sqrt(math.Max(0, r.Radius*r.Radius-r.CenterToDribbler*r.CenterToDribbler))
	side := r2.Scale(half, geometry.Perp(f))
	return geometry.Segment{A: r2.Sub(center, side), B: r2.Add(center, side)}
}

func (r Robot) hit(path Path) (Candidate, bool) {
	f := r.facing()
	face := r.Face()
	rel := r2.Sub(path.Vel, r.Vel)

	// A ball already held at the face is handled by kick or dribble.
	if r.Kick != nil || r.Dribble != nil {
		inFront := r2.Dot(r2.Sub(path.P0, r.Pos), f) >= r.CenterToDribbler
		if inFront && face.Distance(path.P0) <= path.Radius+path.Contact {
			return Candidate{Kind: KindDribbler, S: 0, Point: path.P0, Normal: f}, true
		}
	}

	// Sweep in the robot's frame so a moving robot can run into the ball.
	shift := r2.Scale(path.Dt, r.Vel)
	p1 := r2.Sub(path.P1, shift)
	world := func(h geometry.Hit) r2.Vec {
		return r2.Add(h.Point, r2.Scale(h.S, shift))
	}

	best := Candidate{S: math.Inf(1)}
	found := false
	if h, ok := geometry.SweepSegment(path.P0, p1, face, path.Radius); ok && approaching(rel, h.Normal) {
		best = Candidate{Kind: KindDribbler, S: h.S, Point: world(h), Normal: h.Normal}
		found = true
	}
	if h, ok := geometry.SweepCircle(path.P0, p1, r.Pos, r.Radius+path.Radius); ok && approaching(rel, h.Normal) {
		// Only the rounded part of the hull lies behind the face.
		onHull := r2.Dot(h.Normal, f)*r.Radius <= r.CenterToDribbler
		if onHull && h.S < best.S {
			best = Candidate{Kind: KindRobotHull, S: h.S, Point: world(h), Normal: h.Normal}
			found = true
		}
	}
	return best, found
}

func (r Robot) resolve(c Candidate, vel r3.Vec, cfg Config) (r3.Vec, Impulse) {
	if c.Kind == KindDribbler && r.Kick != nil {
		sin, cos := math.Sincos(r.Kick.ChipAngle)
		xy := r2.Scale(r.Kick.Speed*cos, r.facing())
		return geometry.WithZ(xy, r.Kick.Speed*sin), ImpulseKick
	}

	rel := r2.Sub(geometry.XY(vel), r.Vel)
	if c.Kind == KindDribbler && r.Dribble != nil {
		strength := math.Max(0, math.Min(1, r.Dribble.Strength))
		tangent := r2.Sub(rel, r2.Scale(r2.Dot(rel, c.Normal), c.Normal))
		tangent = r2.Scale(1-cfg.DribbleDamping*strength, tangent)
		return geometry.WithZ(r2.Add(r.Vel, tangent), 0), ImpulseDribble
	}

	rel = reflect(rel, c.Normal, r.Restitution)
	return geometry.WithZ(r2.Add(r.Vel, rel), vel.Z), ImpulseBounce
}

func (r Robot) top() float64 { return r.Height }

// FieldWalls returns the four boundary walls of a field of the given
// length and width (mm) surrounded by a run-off margin.
func FieldWalls(length, width, margin, restitution, height float64) []Obstacle {
	x := length/2 + margin
	y := width/2 + margin
	corners := []r2.Vec{{X: -x, Y: -y}, {X: x, Y: -y}, {X: x, Y: y}, {X: -x, Y: y}}
	walls := make([]Obstacle, 0, 4)
	for i := range corners {
		walls = append(walls, Wall{
			Segment:     geometry.Segment{A: corners[i], B: corners[(i+1)%len(corners)]},
			Restitution: restitution,
			Height:      height,
		})
	}
	return walls
}

// GoalWalls returns the back and side walls of both goals, with goal
// mouths on the field's end lines.
func GoalWalls(fieldLength, goalWidth, goalDepth, restitution, height float64) []Obstacle {
	var walls []Obstacle
	for _, sign := range []float64{-1, 1} {
		line := sign * fieldLength / 2
		back := sign * (fieldLength/2 + goalDepth)
		half := goalWidth / 2
		segs := []geometry.Segment{
			{A: r2.Vec{X: back, Y: -half}, B: r2.Vec{X: back, Y: half}},
			{A: r2.Vec{X: line, Y: -half}, B: r2.Vec{X: back, Y: -half}},
			{A: r2.Vec{X: line, Y: half}, B: r2.Vec{X: back, Y: half}},
		}
		for _, s := range segs {
			walls = append(walls, Wall{Segment: s, Restitution: restitution, Height: height})
		}
	}
	return walls
}
