package main

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
	"github.com/banshee-data/kickoff/internal/units"
)

// cameras are two ceiling cameras on opposite sides of the field centre.
var cameras = map[int]r3.Vec{
	0: {X: -2000, Y: 1500, Z: 4000},
	1: {X: 2000, Y: -1500, Z: 4000},
}

type flightSeries struct {
	name       string
	t          []float64 // s since the kick
	pos        []r3.Vec
	touchdowns []r2.Vec
}

// sampleFlight evaluates the flight every step seconds until it rests or
// limit seconds pass.
func sampleFlight(name string, s ballflight.State, step, limit float64) flightSeries {
	traj := s.Trajectory()
	end := math.Min(traj.RestTime(), limit)
	n := int(math.Ceil(end/step)) + 1

	out := flightSeries{name: name, touchdowns: traj.Touchdowns()}
	for i := 0; i < n; i++ {
		t := math.Min(float64(i)*step, end)
		out.t = append(out.t, t)
		out.pos = append(out.pos, traj.StateAfter(t).Pos)
	}
	return out
}

// observe samples the flight at interval seconds, alternating cameras,
// starting one interval after the kick.
func observe(s ballflight.State, cams map[int]r3.Vec, n int, interval, noise float64, rng *rand.Rand) []kicksolver.Observation {
	ids := make([]int, 0, len(cams))
	for id := range cams {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	traj := s.Trajectory()
	out := make([]kicksolver.Observation, 0, n)
	for i := 0; i < n; i++ {
		dt := float64(i+1) * interval
		id := ids[i%len(ids)]
		g, ok := ballflight.ProjectToGround(traj.StateAfter(dt).Pos, cams[id])
		if !ok {
			continue
		}
		g.X += rng.NormFloat64() * noise
		g.Y += rng.NormFloat64() * noise
		out = append(out, kicksolver.Observation{
			Ground:    g,
			CameraID:  id,
			Timestamp: s.KickTimestamp + units.SecondsToNanos(dt),
		})
	}
	return out
}
