package kicksolver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/units"
)

// sample is an observation resolved against its camera, with time
// measured from the first observation.
type sample struct {
	ground r2.Vec
	camera r3.Vec
	dt     float64 // s since the first observation
}

// system relates the kick velocity to the observed ground points.
//
// A ball at P = k + v·τ − ½gτ²·ẑ seen from camera C projects to G with
// (G − C)(Cz − Pz) = (P − C)·Cz in x and y. For a fixed τ this is linear
// in v, giving two rows per sample:
//
//	[τCz, 0, τ(Gx−Cx)]·v = (Gx−Cx)(Cz−kz+½gτ²) − (kx−Cx)Cz
//	[0, τCz, τ(Gy−Cy)]·v = (Gy−Cy)(Cz−kz+½gτ²) − (ky−Cy)Cz
type system struct {
	kick    r3.Vec
	samples []sample
	gravity float64
	rcond   float64
}

func newSystem(kick r3.Vec, obs []Observation, cameras map[int]r3.Vec, gravity, rcond float64) (*system, error) {
	if len(obs) < minSamples {
		return nil, fmt.Errorf("%w: %d, need %d", ErrTooFewSamples, len(obs), minSamples)
	}
	sys := &system{
		kick:    kick,
		samples: make([]sample, 0, len(obs)),
		gravity: gravity,
		rcond:   rcond,
	}
	t0 := obs[0].Timestamp
	for i, o := range obs {
		if i > 0 && o.Timestamp < obs[i-1].Timestamp {
			return nil, fmt.Errorf("%w: sample %d at %d precedes %d", ErrUnordered, i, o.Timestamp, obs[i-1].Timestamp)
		}
		cam, ok := cameras[o.CameraID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownCamera, o.CameraID)
		}
		sys.samples = append(sys.samples, sample{
			ground: o.Ground,
			camera: cam,
			dt:     units.NanosToSeconds(o.Timestamp - t0),
		})
	}
	return sys, nil
}

// build fills the design matrix and right-hand side for offset.
func (s *system) build(offset float64) (*mat.Dense, *mat.VecDense) {
	n := len(s.samples)
	a := mat.NewDense(2*n, 3, nil)
	b := mat.NewVecDense(2*n, nil)
	k := s.kick
	for i, sm := range s.samples {
		tau := sm.dt + offset
		c := sm.camera
		gx, gy := sm.ground.X-c.X, sm.ground.Y-c.Y
		drop := c.Z - k.Z + 0.5*s.gravity*tau*tau

		a.Set(2*i, 0, tau*c.Z)
		a.Set(2*i, 2, tau*gx)
		b.SetVec(2*i, gx*drop-(k.X-c.X)*c.Z)

		a.Set(2*i+1, 1, tau*c.Z)
		a.Set(2*i+1, 2, tau*gy)
		b.SetVec(2*i+1, gy*drop-(k.Y-c.Y)*c.Z)
	}
	return a, b
}

// solve returns the least-squares velocity for offset and the L1 norm of
// the system residual.
func (s *system) solve(offset float64) (r3.Vec, float64, error) {
	a, b := s.build(offset)

	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return r3.Vec{}, 0, fmt.Errorf("%w: factorisation failed at offset %.4f s", ErrSingular, offset)
	}
	rank := svd.Rank(s.rcond)
	if rank < 3 {
		return r3.Vec{}, 0, fmt.Errorf("%w: rank %d at offset %.4f s", ErrSingular, rank, offset)
	}

	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)

	var r mat.VecDense
	r.MulVec(a, &x)
	r.SubVec(&r, b)

	v := r3.Vec{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	return v, floats.Norm(r.RawVector().Data, 1), nil
}

// reprojectionRMS is the root mean square distance, in mm, between each
// observation and the ground projection of the fitted parabola.
func (s *system) reprojectionRMS(offset float64, v r3.Vec) (float64, error) {
	d := make([]float64, 0, len(s.samples))
	for _, sm := range s.samples {
		tau := sm.dt + offset
		p := r3.Add(s.kick, r3.Scale(tau, v))
		p.Z -= 0.5 * s.gravity * tau * tau
		g, ok := ballflight.ProjectToGround(p, sm.camera)
		if !ok {
			return 0, fmt.Errorf("%w: ball above camera at τ=%.3f s", ErrImplausible, tau)
		}
		d = append(d, r2.Norm(r2.Sub(g, sm.ground)))
	}
	return math.Sqrt(floats.Dot(d, d) / float64(len(d))), nil
}
