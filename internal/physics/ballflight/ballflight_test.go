package ballflight

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func scenarioParams() Params {
	p := DefaultParams()
	p.ChipDampingXYFirstHop = 0.5
	p.ChipDampingXYOtherHops = 0.5
	p.ChipDampingZ = 0.5
	p.MinHopHeight = 10
	return p
}

func TestChip_Scenario(t *testing.T) {
	t.Parallel()

	p := scenarioParams()
	c := NewChip(r3.Vec{}, r3.Vec{Y: 2000, Z: 2000}, p)

	// Apex heights 204, 51 and 12.7 mm fly; the fourth (3.2 mm) rolls.
	require.Equal(t, 3, c.HopCount())

	g := p.Gravity
	air := 2 * (2000 + 1000 + 500) / g
	assert.InDelta(t, air, c.RollStart(), 1e-12)

	touch := c.Touchdowns()
	require.Len(t, touch, 3)
	assert.InDelta(t, 2000*2*2000/g, touch[0].Y, 1e-9)
	assert.InDelta(t, touch[0].Y+1000*2*1000/g, touch[1].Y, 1e-9)
	assert.InDelta(t, touch[1].Y+500*2*500/g, touch[2].Y, 1e-9)

	decel := -p.AccRoll
	assert.InDelta(t, air+250/decel, c.RestTime(), 1e-9)
	assert.InDelta(t, touch[2].Y+250*250/(2*decel), c.RestPosition().Y, 1e-9)

	lastY := -1.0
	for dt := 0.0; dt <= c.RestTime()+0.5; dt += 0.001 {
		s := c.StateAfter(dt)
		require.GreaterOrEqual(t, s.Pos.Z, 0.0, "below ground at %.3fs", dt)
		require.GreaterOrEqual(t, s.Pos.Y, lastY, "moved backwards at %.3fs", dt)
		assert.InDelta(t, 0, s.Pos.X, 1e-12)
		lastY = s.Pos.Y
	}
}

func TestChip_ContinuousAtHopBoundaries(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	c := NewChip(r3.Vec{X: -1000, Y: 500}, r3.Vec{X: 3000, Y: -1000, Z: 3000}, p)
	require.GreaterOrEqual(t, c.HopCount(), 2)

	const eps = 1e-9
	for i, h := range c.hops {
		end := h.tStart + h.dur
		before := c.StateAfter(end - eps)
		after := c.StateAfter(end)

		assert.InDelta(t, before.Pos.X, after.Pos.X, 1e-3, "hop %d", i)
		assert.InDelta(t, before.Pos.Y, after.Pos.Y, 1e-3, "hop %d", i)
		assert.InDelta(t, 0, after.Pos.Z, 1e-3, "hop %d", i)

		dampXY := p.ChipDampingXYOtherHops
		if i == 0 {
			dampXY = p.ChipDampingXYFirstHop
		}
		assert.InDelta(t, dampXY*before.Vel.X, after.Vel.X, 1e-3, "hop %d", i)
		assert.InDelta(t, dampXY*before.Vel.Y, after.Vel.Y, 1e-3, "hop %d", i)

		if i+1 < len(c.hops) {
			// Vertical velocity flips sign and is damped.
			assert.InDelta(t, -p.ChipDampingZ*before.Vel.Z, after.Vel.Z, 1e-3, "hop %d", i)
		} else {
			assert.Zero(t, after.Vel.Z)
		}
	}
}

func TestChip_LowKickRolls(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	// Apex 200²/(2g) ≈ 2 mm is below MinHopHeight.
	c := NewChip(r3.Vec{}, r3.Vec{X: 1500, Z: 200}, p)
	s := NewStraight(r3.Vec{}, r2.Vec{X: 1500}, p)

	assert.Zero(t, c.HopCount())
	assert.Empty(t, c.Touchdowns())
	assert.InDelta(t, s.RestTime(), c.RestTime(), 1e-12)
	assert.Equal(t, s.StateAfter(0.7), c.StateAfter(0.7))
}

func TestStraight(t *testing.T) {
	t.Parallel()

	p := DefaultParams() // rolls at -260 mm/s²
	s := NewStraight(r3.Vec{X: 100, Y: 100, Z: 40}, r2.Vec{X: 1000}, p)

	assert.InDelta(t, 1000.0/260, s.RestTime(), 1e-12)
	assert.InDelta(t, 100+1000*1000/520.0, s.RestPosition().X, 1e-9)

	st := s.StateAfter(1)
	assert.InDelta(t, 100+1000-130, st.Pos.X, 1e-9)
	assert.InDelta(t, 100, st.Pos.Y, 1e-12)
	assert.Zero(t, st.Pos.Z)
	assert.InDelta(t, 740, st.Vel.X, 1e-9)

	late := s.StateAfter(100)
	assert.Equal(t, s.RestPosition(), late.Pos)
	assert.Equal(t, r3.Vec{}, late.Vel)
	assert.True(t, s.IsInterceptableAt(0))
	assert.Zero(t, s.HopCount())
}

func TestState(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	chip := NewState(r3.Vec{}, r3.Vec{X: 1000, Z: 3000}, 1_000_000_000, p)
	flat := NewState(r3.Vec{}, r3.Vec{X: 1000}, 1_000_000_000, p)

	assert.NotEqual(t, chip.ID, flat.ID)
	assert.True(t, chip.IsChip())
	assert.IsType(t, Chip{}, chip.Trajectory())
	assert.IsType(t, Straight{}, flat.Trajectory())

	at := flat.StateAt(2_000_000_000)
	assert.InDelta(t, 1000-130, at.Pos.X, 1e-9)
	assert.False(t, flat.AtRest(2_000_000_000))
	assert.True(t, flat.AtRest(10_000_000_000))

	assert.Panics(t, func() { flat.StateAt(0) })
	assert.Panics(t, func() { flat.Trajectory().StateAfter(-1) })
}

func TestChip_Interceptable(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	c := NewChip(r3.Vec{}, r3.Vec{X: 2000, Z: 3000}, p)
	apexT := 3000 / p.Gravity

	assert.True(t, c.IsInterceptableAt(0))
	assert.False(t, c.IsInterceptableAt(apexT))
	assert.True(t, c.IsInterceptableAt(c.RestTime()))
}

func TestProjection(t *testing.T) {
	t.Parallel()

	camera := r3.Vec{X: 0, Y: 0, Z: 4000}
	ball := r3.Vec{X: 1000, Y: -500, Z: 500}

	g, ok := ProjectToGround(ball, camera)
	require.True(t, ok)
	assert.InDelta(t, 1000*8.0/7, g.X, 1e-9)
	assert.InDelta(t, -500*8.0/7, g.Y, 1e-9)

	back, ok := LiftFromGround(g, camera, 500)
	require.True(t, ok)
	assert.InDelta(t, ball.X, back.X, 1e-9)
	assert.InDelta(t, ball.Y, back.Y, 1e-9)
	assert.InDelta(t, ball.Z, back.Z, 1e-9)

	// A ball on the ground projects onto itself.
	g, ok = ProjectToGround(r3.Vec{X: 10, Y: 20}, camera)
	require.True(t, ok)
	assert.Equal(t, r2.Vec{X: 10, Y: 20}, g)

	_, ok = ProjectToGround(r3.Vec{Z: 4000}, camera)
	assert.False(t, ok)
	_, ok = LiftFromGround(r2.Vec{}, camera, 5000)
	assert.False(t, ok)
}

func TestIntegrate_MatchesChip(t *testing.T) {
	t.Parallel()

	p := scenarioParams()
	kick := r3.Vec{Y: 2000, Z: 2000}
	c := NewChip(r3.Vec{}, kick, p)

	s := BallState{Vel: kick}
	const step = 0.001
	for i := 1; i <= 2000; i++ {
		s = Integrate(s, step, p)
		want := c.StateAfter(float64(i) * step)
		require.InDelta(t, want.Pos.Y, s.Pos.Y, 1e-4, "step %d", i)
		require.InDelta(t, want.Pos.Z, s.Pos.Z, 1e-4, "step %d", i)
		require.InDelta(t, want.Vel.Y, s.Vel.Y, 1e-4, "step %d", i)
	}
}

func TestIntegrate_Rolling(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	s := Integrate(BallState{Vel: r3.Vec{X: 520}}, 10, p)
	assert.InDelta(t, 520*520/520.0, s.Pos.X, 1e-9)
	assert.Equal(t, r3.Vec{}, s.Vel)

	still := Integrate(BallState{Pos: r3.Vec{X: 5}}, 1, p)
	assert.Equal(t, r3.Vec{X: 5}, still.Pos)
}

func TestTrajectory_ConcurrentQueries(t *testing.T) {
	t.Parallel()

	c := NewChip(r3.Vec{}, r3.Vec{X: 1500, Y: 1500, Z: 2500}, DefaultParams())
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				dt := float64(i) * 0.005
				assert.Equal(t, c.StateAfter(dt), c.StateAfter(dt))
			}
		}()
	}
	wg.Wait()

	assert.False(t, math.IsInf(c.RestTime(), 0))
}
