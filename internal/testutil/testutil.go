// Package testutil provides shared test helpers and synthetic fixtures.
//
// The chip generator produces ground-plane ball observations of a known
// kick, seen alternately by a set of overhead cameras, for solver and
// world-model tests.
package testutil

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/units"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertVecNear fails the test if any component of got differs from want
// by more than tol.
func AssertVecNear(t *testing.T, got, want r3.Vec, tol float64) {
	t.Helper()
	if d := r3.Sub(got, want); math.Abs(d.X) > tol || math.Abs(d.Y) > tol || math.Abs(d.Z) > tol {
		t.Errorf("vector = %+v, want %+v within %g", got, want, tol)
	}
}

// DefaultCameras are two ceiling cameras 4 m up, offset to either side of
// the field centre.
func DefaultCameras() map[int]r3.Vec {
	return map[int]r3.Vec{
		0: {X: -2000, Y: 1500, Z: 4000},
		1: {X: 2000, Y: -1500, Z: 4000},
	}
}

// GroundSample is one synthetic camera sighting.
type GroundSample struct {
	Ground    r2.Vec
	CameraID  int
	Timestamp int64
}

// ChipKick describes a known kick and how it is sampled.
type ChipKick struct {
	KickPos  r3.Vec
	KickVel  r3.Vec
	KickTime int64 // local ns
	Cameras  map[int]r3.Vec
	Delay    float64 // s from the kick to the first sample
	Rate     float64 // Hz
	Samples  int
	Noise    float64 // mm, standard deviation per ground axis
	Params   ballflight.Params
}

// RandomChipKick draws a chip kick near the field centre whose first hop
// outlasts a 20-sample window at 100 Hz.
func RandomChipKick(rng *rand.Rand) ChipKick {
	heading := rng.Float64() * 2 * math.Pi
	speed := 2000 + rng.Float64()*2500
	return ChipKick{
		KickPos: r3.Vec{X: rng.Float64()*1000 - 500, Y: rng.Float64()*1000 - 500},
		KickVel: r3.Vec{
			X: speed * math.Cos(heading),
			Y: speed * math.Sin(heading),
			Z: 1800 + rng.Float64()*1500,
		},
		KickTime: 5_000_000_000 + rng.Int63n(1_000_000_000),
		Cameras:  DefaultCameras(),
		Delay:    0.005 + rng.Float64()*0.03,
		Rate:     100,
		Samples:  20,
		Noise:    0.4,
		Params:   ballflight.DefaultParams(),
	}
}

// Observe samples the flight, alternating cameras in id order and adding
// Gaussian noise to every ground coordinate.
func (c ChipKick) Observe(rng *rand.Rand) []GroundSample {
	ids := make([]int, 0, len(c.Cameras))
	for id := range c.Cameras {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	flight := ballflight.NewChip(c.KickPos, c.KickVel, c.Params)
	out := make([]GroundSample, 0, c.Samples)
	for i := 0; i < c.Samples; i++ {
		dt := c.Delay + float64(i)/c.Rate
		id := ids[i%len(ids)]
		ball := flight.StateAfter(dt).Pos
		g, ok := ballflight.ProjectToGround(ball, c.Cameras[id])
		if !ok {
			continue
		}
		if c.Noise > 0 {
			g.X += rng.NormFloat64() * c.Noise
			g.Y += rng.NormFloat64() * c.Noise
		}
		out = append(out, GroundSample{
			Ground:    g,
			CameraID:  id,
			Timestamp: c.KickTime + units.SecondsToNanos(dt),
		})
	}
	return out
}
