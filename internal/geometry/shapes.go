package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Circle is a disc in the field plane.
type Circle struct {
	Center r2.Vec
	Radius float64
}

// Contains reports whether p lies inside or on the circle.
func (c Circle) Contains(p r2.Vec) bool {
	return r2.Norm2(r2.Sub(p, c.Center)) <= c.Radius*c.Radius
}

// Segment is a straight line segment from A to B.
type Segment struct {
	A, B r2.Vec
}

// Length returns |B-A|.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.B, s.A))
}

// Direction returns the unit vector from A to B (zero for a degenerate segment).
func (s Segment) Direction() r2.Vec {
	return UnitOrZero(r2.Sub(s.B, s.A))
}

// Normal returns the left-hand unit normal of the segment.
func (s Segment) Normal() r2.Vec {
	return Perp(s.Direction())
}

// ClosestPoint returns the point on the segment nearest to p.
func (s Segment) ClosestPoint(p r2.Vec) r2.Vec {
	ab := r2.Sub(s.B, s.A)
	l2 := r2.Norm2(ab)
	if l2 < Epsilon*Epsilon {
		return s.A
	}
	t := r2.Dot(r2.Sub(p, s.A), ab) / l2
	t = math.Max(0, math.Min(1, t))
	return r2.Add(s.A, r2.Scale(t, ab))
}

// Distance returns the shortest distance from p to the segment.
func (s Segment) Distance(p r2.Vec) float64 {
	return r2.Norm(r2.Sub(p, s.ClosestPoint(p)))
}

// Tube is a capsule: every point within Radius of the segment Start→End.
type Tube struct {
	Start, End r2.Vec
	Radius     float64
}

// Contains reports whether p lies inside or on the tube.
func (t Tube) Contains(p r2.Vec) bool {
	return Segment{A: t.Start, B: t.End}.Distance(p) <= t.Radius
}

// Center returns the midpoint of the tube's core segment.
func (t Tube) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(t.Start, t.End))
}
