package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hit describes where a swept point first touches a shape.
// S is the path parameter in [0, 1]; Normal points away from the shape
// toward the path start.
type Hit struct {
	S      float64
	Point  r2.Vec
	Normal r2.Vec
}

// SweepCircle finds the first parameter s in [0, 1] at which the point
// p0 + s·(p1-p0) reaches distance radius from center. A start point that
// already lies inside yields s = 0.
func SweepCircle(p0, p1, center r2.Vec, radius float64) (Hit, bool) {
	d := r2.Sub(p1, p0)
	f := r2.Sub(p0, center)
	c := r2.Norm2(f) - radius*radius
	if c <= 0 {
		return Hit{S: 0, Point: p0, Normal: radialNormal(f, d)}, true
	}
	a := r2.Norm2(d)
	if a < Epsilon*Epsilon {
		return Hit{}, false
	}
	b := 2 * r2.Dot(f, d)
	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	s := (-b - math.Sqrt(disc)) / (2 * a)
	if s < 0 || s > 1 {
		return Hit{}, false
	}
	p := r2.Add(p0, r2.Scale(s, d))
	return Hit{S: s, Point: p, Normal: UnitOrZero(r2.Sub(p, center))}, true
}

// SweepSegment finds the first parameter s in [0, 1] at which the point
// p0 + s·(p1-p0) comes within radius of seg, i.e. enters the capsule
// around the segment.
func SweepSegment(p0, p1 r2.Vec, seg Segment, radius float64) (Hit, bool) {
	closest := seg.ClosestPoint(p0)
	if off := r2.Sub(p0, closest); r2.Norm(off) <= radius {
		return Hit{S: 0, Point: p0, Normal: radialNormal(off, r2.Sub(p1, p0))}, true
	}

	best := Hit{S: math.Inf(1)}
	found := false
	consider := func(h Hit, ok bool) {
		if ok && h.S < best.S {
			best = h
			found = true
		}
	}

	// Flat side facing the start point.
	d := r2.Sub(p1, p0)
	n := seg.Normal()
	dist0 := r2.Dot(r2.Sub(p0, seg.A), n)
	if dist0 < 0 {
		n = r2.Scale(-1, n)
		dist0 = -dist0
	}
	if approach := r2.Dot(d, n); approach < 0 {
		s := (radius - dist0) / approach
		if s >= 0 && s <= 1 {
			p := r2.Add(p0, r2.Scale(s, d))
			along := r2.Dot(r2.Sub(p, seg.A), seg.Direction())
			if along >= 0 && along <= seg.Length() {
				consider(Hit{S: s, Point: p, Normal: n}, true)
			}
		}
	}

	// Rounded ends.
	consider(SweepCircle(p0, p1, seg.A, radius))
	consider(SweepCircle(p0, p1, seg.B, radius))

	return best, found
}

// radialNormal picks the separation direction for a start point that
// already overlaps a shape: away from the shape, or against the motion
// when the offset is degenerate.
func radialNormal(offset, motion r2.Vec) r2.Vec {
	if n := UnitOrZero(offset); n != (r2.Vec{}) {
		return n
	}
	return r2.Scale(-1, UnitOrZero(motion))
}
