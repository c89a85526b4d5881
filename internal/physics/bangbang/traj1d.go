package bangbang

import (
	"fmt"
	"math"
)

// phase is one constant-acceleration segment starting at tStart.
type phase struct {
	tStart float64
	tEnd   float64
	s0     float64
	v0     float64
	acc    float64
}

func (p phase) at(t float64) (s, v float64) {
	tau := t - p.tStart
	return p.s0 + p.v0*tau + 0.5*p.acc*tau*tau, p.v0 + p.acc*tau
}

// Trajectory1D is a bang-bang profile along one axis with at most three
// phases: accelerate, cruise, decelerate. Units are mm, mm/s and seconds.
type Trajectory1D struct {
	phases []phase
	total  float64
	sEnd   float64
}

// NewTrajectory1D computes the minimal-time profile from s0 with initial
// velocity v0 to rest at s1. vMax and aMax must be positive.
func NewTrajectory1D(s0, s1, v0, vMax, aMax float64) Trajectory1D {
	if vMax <= 0 || aMax <= 0 {
		panic(fmt.Sprintf("bangbang: non-positive limits vMax=%g aMax=%g", vMax, aMax))
	}

	// Stopping from v0 right now must not pass the target, otherwise solve
	// the mirrored problem where it does not.
	if stopPosition(s0, v0, aMax) <= s1 {
		return build(s0, s1, v0, vMax, aMax, 1)
	}
	return build(-s0, -s1, -v0, vMax, aMax, -1)
}

// velChange is the distance covered while changing velocity from va to vb
// at acceleration magnitude a.
func velChange(va, vb, a float64) float64 {
	return math.Abs(vb-va) * (va + vb) / (2 * a)
}

func stopPosition(s0, v0, a float64) float64 {
	return s0 + velChange(v0, 0, a)
}

// build solves the problem for a target at or beyond the stop position
// and maps the result back through sign.
func build(s0, s1, v0, vMax, aMax, sign float64) Trajectory1D {
	var segs []phase
	add := func(dur, acc float64) {
		if dur <= 0 {
			return
		}
		start, s, v := 0.0, s0, v0
		if n := len(segs); n > 0 {
			last := segs[n-1]
			start = last.tEnd
			s, v = last.at(last.tEnd)
		}
		segs = append(segs, phase{tStart: start, tEnd: start + dur, s0: s, v0: v, acc: acc})
	}

	peakEnd := s0 + velChange(v0, vMax, aMax) + velChange(vMax, 0, aMax)
	if peakEnd >= s1 {
		// Triangle: accelerate to the peak, then brake onto the target.
		peak := math.Sqrt(math.Max(0, aMax*(s1-s0)+0.5*v0*v0))
		add((peak-v0)/aMax, aMax)
		add(peak/aMax, -aMax)
	} else {
		// Trapezoid: reach vMax (decelerating when v0 exceeds it), cruise,
		// then brake.
		acc := aMax
		if v0 > vMax {
			acc = -aMax
		}
		add((vMax-v0)/acc, acc)
		add((s1-peakEnd)/vMax, 0)
		add(vMax/aMax, -aMax)
	}

	tr := Trajectory1D{sEnd: sign * s1}
	for _, p := range segs {
		p.s0 *= sign
		p.v0 *= sign
		p.acc *= sign
		tr.phases = append(tr.phases, p)
	}
	if n := len(tr.phases); n > 0 {
		tr.total = tr.phases[n-1].tEnd
	} else {
		tr.sEnd = sign * s0
	}
	return tr
}

func checkTime(t float64) {
	if t < 0 || math.IsNaN(t) {
		panic(fmt.Sprintf("bangbang: query at invalid time %g", t))
	}
}

func (tr Trajectory1D) find(t float64) (phase, bool) {
	for _, p := range tr.phases {
		if t < p.tEnd {
			return p, true
		}
	}
	return phase{}, false
}

// Position returns the position at t seconds. t beyond TotalTime yields
// the target. Negative t panics.
func (tr Trajectory1D) Position(t float64) float64 {
	checkTime(t)
	if p, ok := tr.find(t); ok {
		s, _ := p.at(t)
		return s
	}
	return tr.sEnd
}

// Velocity returns the velocity at t seconds.
func (tr Trajectory1D) Velocity(t float64) float64 {
	checkTime(t)
	if p, ok := tr.find(t); ok {
		_, v := p.at(t)
		return v
	}
	return 0
}

// Acceleration returns the acceleration at t seconds.
func (tr Trajectory1D) Acceleration(t float64) float64 {
	checkTime(t)
	if p, ok := tr.find(t); ok {
		return p.acc
	}
	return 0
}

// TotalTime returns the profile duration in seconds.
func (tr Trajectory1D) TotalTime() float64 { return tr.total }

// MaxVelocityReached returns the largest absolute velocity on the profile.
func (tr Trajectory1D) MaxVelocityReached() float64 {
	max := 0.0
	for _, p := range tr.phases {
		_, vEnd := p.at(p.tEnd)
		max = math.Max(max, math.Max(math.Abs(p.v0), math.Abs(vEnd)))
	}
	return max
}

// breakpoints returns the phase boundary times.
func (tr Trajectory1D) breakpoints() []float64 {
	out := make([]float64, 0, len(tr.phases)+1)
	out = append(out, 0)
	for _, p := range tr.phases {
		out = append(out, p.tEnd)
	}
	return out
}
