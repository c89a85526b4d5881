package l3filter

import (
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"gonum.org/v1/gonum/mat"
)

var logf = monitoring.Component("l3filter")

// Config holds estimator tuning.
type Config struct {
	FilterCycle        time.Duration // Keep-alive step
	LookaheadStep      time.Duration // Horizon per lookahead index
	Noise              Noise
	OcclusionInflation float64 // Added to position variance per keep-alive
	MaxPredictDt       float64 // Cap on dt used for process noise, seconds
	MaxCovarianceDiag  float64
	MinInnovationRCond float64
}

// DefaultConfig returns the built-in estimator tuning.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		FilterCycle:   cfg.GetFilterCycle(),
		LookaheadStep: cfg.GetLookaheadStep(),
		Noise: Noise{
			Pos:       cfg.GetProcessNoisePos(),
			Vel:       cfg.GetProcessNoiseVel(),
			Acc:       cfg.GetProcessNoiseAcc(),
			Angle:     cfg.GetProcessNoiseAngle(),
			AngVel:    cfg.GetProcessNoiseAngVel(),
			MeasPos:   cfg.GetMeasurementNoisePos(),
			MeasAngle: cfg.GetMeasurementNoiseAngle(),
		},
		OcclusionInflation: cfg.GetOcclusionCovInflation(),
		MaxPredictDt:       cfg.GetMaxPredictDt(),
		MaxCovarianceDiag:  cfg.GetMaxCovarianceDiag(),
		MinInnovationRCond: cfg.GetMinInnovationRCond(),
	}
}

// Estimator is an extended Kalman filter for one tracked object. It must
// be driven by a single owner; lookahead queries never change its state.
type Estimator struct {
	cfg   Config
	model MotionModel
	diag  *monitoring.Diagnostics

	x  *mat.VecDense
	p  *mat.SymDense
	ts int64

	initialized bool
	control     *Control
	lastObs     Observation
	misses      int
	keptAlive   bool
}

// NewEstimator creates an uninitialised estimator for model.
func NewEstimator(model MotionModel, cfg Config, diag *monitoring.Diagnostics) *Estimator {
	return &Estimator{cfg: cfg, model: model, diag: diag}
}

// Model returns the estimator's motion model.
func (e *Estimator) Model() MotionModel { return e.model }

// Init seeds the filter from a first observation.
func (e *Estimator) Init(obs Observation, ts int64) error {
	if e.initialized {
		return ErrAlreadyInitialized
	}
	e.x, e.p = e.model.Init(obs)
	e.ts = ts
	e.lastObs = obs
	e.initialized = true
	return nil
}

// Initialized reports whether Init has been called.
func (e *Estimator) Initialized() bool { return e.initialized }

// SetControlInput sets the control used by subsequent predictions until
// cleared. Models without control ignore it.
func (e *Estimator) SetControlInput(u Control) {
	e.control = &u
}

// ClearControlInput reverts to uncontrolled prediction.
func (e *Estimator) ClearControlInput() {
	e.control = nil
}

// propagate runs the prediction step on copies of x and p.
func (e *Estimator) propagate(x *mat.VecDense, p *mat.SymDense, dt float64) (*mat.VecDense, *mat.SymDense) {
	xNew, f := e.model.Transition(x, e.control, dt)

	qdt := dt
	if e.cfg.MaxPredictDt > 0 && qdt > e.cfg.MaxPredictDt {
		qdt = e.cfg.MaxPredictDt
	}

	var fp, fpf mat.Dense
	fp.Mul(f, p)
	fpf.Mul(&fp, f.T())
	fpf.Add(&fpf, e.model.ProcessNoise(qdt))

	pNew := symmetrize(&fpf)
	e.capCovariance(pNew)
	return xNew, pNew
}

// capCovariance bounds every variance at MaxCovarianceDiag by scaling the
// offending rows and columns together (P <- D·P·D with D diagonal and
// D_ii <= 1), which keeps P positive semi-definite.
func (e *Estimator) capCovariance(p *mat.SymDense) {
	limit := e.cfg.MaxCovarianceDiag
	if limit <= 0 {
		return
	}
	n := p.SymmetricDim()
	scale := make([]float64, n)
	capped := false
	for i := 0; i < n; i++ {
		scale[i] = 1
		if v := p.At(i, i); v > limit {
			scale[i] = math.Sqrt(limit / v)
			capped = true
		}
	}
	if !capped {
		return
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if i == j && scale[i] < 1 {
				p.SetSym(i, i, limit)
				continue
			}
			p.SetSym(i, j, p.At(i, j)*scale[i]*scale[j])
		}
	}
}

// Observe advances the filter to ts and fuses obs. Observations older
// than the filter time are ignored.
func (e *Estimator) Observe(ts int64, obs Observation) (UpdateOutcome, error) {
	if !e.initialized {
		return UpdateSkippedStale, ErrNotInitialized
	}
	if ts < e.ts {
		return UpdateSkippedStale, nil
	}
	if !finiteObservation(obs) {
		return UpdateSkippedInvalid, nil
	}

	dt := float64(ts-e.ts) / 1e9
	xPred, pPred := e.x, e.p
	if dt > 0 {
		xPred, pPred = e.propagate(e.x, e.p, dt)
	}

	e.ts = ts
	e.lastObs = obs
	e.misses = 0
	e.keptAlive = false

	if !isFinite(xPred) || !isFiniteSym(pPred) {
		e.reset(obs)
		return UpdateReset, nil
	}
	e.x, e.p = xPred, pPred

	xNew, pNew, outcome := e.update(xPred, pPred, obs)
	switch outcome {
	case UpdateApplied:
		if !isFinite(xNew) || !isFiniteSym(pNew) {
			e.reset(obs)
			return UpdateReset, nil
		}
		e.x, e.p = xNew, pNew
	case UpdateSkippedIllConditioned, UpdateRejectedNonPSD:
		e.diag.IncSkippedUpdate()
	}
	return outcome, nil
}

// update computes the EKF correction with a Joseph-form covariance.
func (e *Estimator) update(x *mat.VecDense, p *mat.SymDense, obs Observation) (*mat.VecDense, *mat.SymDense, UpdateOutcome) {
	z := e.model.Measurement(obs)
	hx, h := e.model.Measure(x)
	y := e.model.Residual(z, hx)
	r := e.model.MeasurementNoise()

	var hp, hph mat.Dense
	hp.Mul(h, p)
	hph.Mul(&hp, h.T())
	hph.Add(&hph, r)
	s := symmetrize(&hph)

	if cond := mat.Cond(s, 1); math.IsInf(cond, 1) || 1/cond < e.cfg.MinInnovationRCond {
		return nil, nil, UpdateSkippedIllConditioned
	}
	var chol mat.Cholesky
	if !chol.Factorize(s) {
		return nil, nil, UpdateSkippedIllConditioned
	}

	// K = P Hᵀ S⁻¹, obtained as (S⁻¹ H P)ᵀ since P and S are symmetric.
	var kt mat.Dense
	if err := chol.SolveTo(&kt, &hp); err != nil {
		return nil, nil, UpdateSkippedIllConditioned
	}
	k := mat.DenseCopyOf(kt.T())

	var ky mat.VecDense
	ky.MulVec(k, y)
	xNew := mat.VecDenseCopyOf(x)
	xNew.AddVec(xNew, &ky)
	e.model.Normalize(xNew)

	n := e.model.Dim()
	var kh, ikh, a, joseph, kr, krk mat.Dense
	kh.Mul(k, h)
	ikh.Sub(identity(n), &kh)
	a.Mul(&ikh, p)
	joseph.Mul(&a, ikh.T())
	kr.Mul(k, r)
	krk.Mul(&kr, k.T())
	joseph.Add(&joseph, &krk)

	pNew := symmetrize(&joseph)
	if !isPSD(pNew) {
		return nil, nil, UpdateRejectedNonPSD
	}
	e.capCovariance(pNew)
	return xNew, pNew, UpdateApplied
}

func (e *Estimator) reset(obs Observation) {
	e.diag.IncFilterReset()
	logf("%s filter produced a non-finite state, resetting to last observation", e.model.Name())
	e.x, e.p = e.model.Init(obs)
}

// KeepAliveWithoutObservation advances the filter one FilterCycle by
// prediction alone and inflates the position uncertainty.
func (e *Estimator) KeepAliveWithoutObservation() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	dt := e.cfg.FilterCycle.Seconds()
	x, p := e.propagate(e.x, e.p, dt)
	if e.cfg.OcclusionInflation > 0 {
		p.SetSym(0, 0, p.At(0, 0)+e.cfg.OcclusionInflation)
		p.SetSym(1, 1, p.At(1, 1)+e.cfg.OcclusionInflation)
		e.capCovariance(p)
	}

	e.ts += e.cfg.FilterCycle.Nanoseconds()
	e.misses++
	e.keptAlive = true

	if !isFinite(x) || !isFiniteSym(p) {
		e.reset(e.lastObs)
		return nil
	}
	e.x, e.p = x, p
	return nil
}

// HasBeenKeptAlive reports whether the filter has advanced without an
// observation since the last one.
func (e *Estimator) HasBeenKeptAlive() bool { return e.keptAlive }

// Misses returns the number of consecutive keep-alive steps.
func (e *Estimator) Misses() int { return e.misses }

// Predict returns the state index lookahead steps ahead of the filter
// time without changing the committed state.
func (e *Estimator) Predict(index int) (KinematicState, error) {
	if index < 0 {
		return KinematicState{}, fmt.Errorf("lookahead index %d: %w", index, ErrNegativeHorizon)
	}
	return e.PredictAhead(time.Duration(index) * e.cfg.LookaheadStep)
}

// PredictAhead returns the state dt ahead of the filter time without
// changing the committed state.
func (e *Estimator) PredictAhead(dt time.Duration) (KinematicState, error) {
	if !e.initialized {
		return KinematicState{}, ErrNotInitialized
	}
	if dt < 0 {
		return KinematicState{}, fmt.Errorf("horizon %v: %w", dt, ErrNegativeHorizon)
	}
	if dt == 0 {
		return e.State(), nil
	}
	x, p := e.propagate(e.x, e.p, dt.Seconds())
	return e.snapshot(x, p, e.ts+dt.Nanoseconds()), nil
}

// PredictAt returns the state at local time ts, which must not precede
// the filter time.
func (e *Estimator) PredictAt(ts int64) (KinematicState, error) {
	if !e.initialized {
		return KinematicState{}, ErrNotInitialized
	}
	return e.PredictAhead(time.Duration(ts - e.ts))
}

// State returns the committed state, or the zero value before Init.
func (e *Estimator) State() KinematicState {
	if !e.initialized {
		return KinematicState{}
	}
	return e.snapshot(e.x, e.p, e.ts)
}

// Timestamp returns the filter time.
func (e *Estimator) Timestamp() int64 { return e.ts }

// Covariance returns a copy of the committed covariance, or nil before Init.
func (e *Estimator) Covariance() *mat.SymDense {
	if !e.initialized {
		return nil
	}
	c := mat.NewSymDense(e.p.SymmetricDim(), nil)
	c.CopySym(e.p)
	return c
}

func (e *Estimator) snapshot(x *mat.VecDense, p *mat.SymDense, ts int64) KinematicState {
	s := e.model.Snapshot(x)
	s.Timestamp = ts
	s.CovarianceTrace = mat.Trace(p)
	return s
}

func symmetrize(m *mat.Dense) *mat.SymDense {
	n, _ := m.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
	return s
}

func isPSD(p *mat.SymDense) bool {
	var eig mat.EigenSym
	if !eig.Factorize(p, false) {
		return false
	}
	vals := eig.Values(nil)
	tol := 1e-9 * math.Max(1, mat.Trace(p))
	for _, v := range vals {
		if v < -tol {
			return false
		}
	}
	return true
}

func finiteObservation(obs Observation) bool {
	for _, v := range []float64{obs.Pos.X, obs.Pos.Y, obs.Orientation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func isFinite(x *mat.VecDense) bool {
	for i := 0; i < x.Len(); i++ {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func isFiniteSym(p *mat.SymDense) bool {
	n := p.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := p.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
