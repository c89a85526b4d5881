package ballflight

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxHops bounds the hop sequence for damping factors close to one.
const maxHops = 64

type hop struct {
	tStart float64
	dur    float64
	p0     r3.Vec
	vxy    r2.Vec
	vz     float64
}

func (h hop) at(dt, g float64) BallState {
	tau := dt - h.tStart
	z := math.Max(0, h.p0.Z+h.vz*tau-0.5*g*tau*tau)
	return BallState{
		Pos: r3.Vec{X: h.p0.X + h.vxy.X*tau, Y: h.p0.Y + h.vxy.Y*tau, Z: z},
		Vel: r3.Vec{X: h.vxy.X, Y: h.vxy.Y, Z: h.vz - g*tau},
	}
}

// Chip is a chipped ball: ballistic hops with damped bounces, then a roll.
// The hop sequence is computed once; queries walk it in order.
type Chip struct {
	hops   []hop
	roll   roll
	params Params
}

// NewChip builds the hop sequence for a ball kicked at pos with vel.
func NewChip(pos, vel r3.Vec, params Params) Chip {
	g := params.Gravity
	c := Chip{params: params}

	t := 0.0
	p := pos
	vxy := r2.Vec{X: vel.X, Y: vel.Y}
	vz := vel.Z
	for len(c.hops) < maxHops && vz > 0 && params.apex(vz)+p.Z >= params.MinHopHeight {
		dur := (vz + math.Sqrt(vz*vz+2*g*p.Z)) / g
		c.hops = append(c.hops, hop{tStart: t, dur: dur, p0: p, vxy: vxy, vz: vz})

		t += dur
		p = r3.Vec{X: p.X + vxy.X*dur, Y: p.Y + vxy.Y*dur}
		impact := vz - g*dur // negative
		vz = -impact * params.ChipDampingZ
		if len(c.hops) == 1 {
			vxy = r2.Scale(params.ChipDampingXYFirstHop, vxy)
		} else {
			vxy = r2.Scale(params.ChipDampingXYOtherHops, vxy)
		}
	}
	c.roll = newRoll(t, r2.Vec{X: p.X, Y: p.Y}, vxy, params.rollDecel())
	return c
}

func (c Chip) StateAfter(dt float64) BallState {
	checkDt(dt)
	for _, h := range c.hops {
		if dt < h.tStart+h.dur {
			return h.at(dt, c.params.Gravity)
		}
	}
	return c.roll.at(dt)
}

// RollStart returns the time at which the last hop ends.
func (c Chip) RollStart() float64 { return c.roll.tStart }

func (c Chip) RestTime() float64 { return c.roll.tStart + c.roll.duration() }

func (c Chip) RestPosition() r3.Vec { return c.roll.at(c.RestTime()).Pos }

func (c Chip) Touchdowns() []r2.Vec {
	out := make([]r2.Vec, 0, len(c.hops))
	for _, h := range c.hops {
		out = append(out, r2.Add(r2.Vec{X: h.p0.X, Y: h.p0.Y}, r2.Scale(h.dur, h.vxy)))
	}
	return out
}

func (c Chip) HopCount() int { return len(c.hops) }

func (c Chip) IsInterceptableAt(dt float64) bool {
	return c.StateAfter(dt).Pos.Z <= c.params.MaxInterceptableHeight
}
