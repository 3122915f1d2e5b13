// SPDX-License-Identifier: MIT

// Package propagator evolves a linear generator under piecewise-constant
// controls.
//
// For timeslot t with amplitudes u[t][·] the generator is
//
//	G_t = drift + Σ_j u[t][j]·ctrl[j]
//
// and the slot propagator is P_t = exp(G_t·dt), dt = evoTime/nTS. The engine
// keeps
//
//	fwd[0] = X₀,      fwd[t+1] = P_t·fwd[t]          (fwd[nTS] is the final evolution)
//	onward[nTS] = I,  onward[t] = onward[t+1]·P_t    (P_{N−1}…P_t)
//
// and, unless disabled, the exact derivatives ∂P_t/∂u[t][j] = L(G_t·dt, ctrl[j]·dt)
// from the Fréchet derivative of the exponential.
//
// Caching: SetAmplitudes marks the slots whose amplitudes changed. Update
// recomputes only those propagators, the forward chain from the first dirty
// slot and the onward chain from the last dirty slot. Derivatives of a slot
// are computed on the first PropagatorGrad read after its propagator changed,
// so error-only evaluations never pay for them. WithRecomputeAll turns the
// propagator caching off and must give identical results.
//
// An Engine is not safe for concurrent use.
package propagator

import (
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/matrix"
)

// Stats counts work done by an Engine.
type Stats struct {
	Updates         int           // Update calls that did work
	PropagatorEvals int           // slot exponentials computed
	GradientEvals   int           // Fréchet derivatives computed
	ComputeTime     time.Duration // wall time spent computing propagators and derivatives
}

// Engine owns the propagator and evolution caches for one amplitude table.
type Engine struct {
	backend linalg.Backend
	opts    options

	drift   *matrix.Dense
	ctrls   []*matrix.Dense
	initial *matrix.Dense
	ident   *matrix.Dense

	nTS     int
	evoTime float64
	dt      float64

	amps      [][]float64
	props     []*matrix.Dense
	propGrads [][]*matrix.Dense
	fwd       []*matrix.Dense
	onward    []*matrix.Dense

	dirty     []bool
	gradDirty []bool
	anyDirty  bool
	stats    Stats
}

// New builds an Engine with all amplitudes zero.
//
// Inputs:
//   - backend: linear-algebra capability set (nil selects linalg.NewNative()).
//   - drift: D×D generator.
//   - ctrls: D×D control generators (may be empty).
//   - initial: D×m initial operator X₀ (identity superoperator, vectorized state...).
//   - nTS: timeslot count (≥ 1); evoTime: total time (≥ 0).
//
// Errors:
//   - ErrNoTimeslots, ErrNegativeTime, ErrDimensionMismatch (wrapping matrix sentinels
//     where the cause is structural).
func New(backend linalg.Backend, drift matrix.Matrix, ctrls []matrix.Matrix, initial matrix.Matrix,
	nTS int, evoTime float64, opts ...Option) (*Engine, error) {
	if backend == nil {
		backend = linalg.NewNative()
	}
	if nTS < 1 {
		return nil, fmt.Errorf("nTS=%d: %w", nTS, ErrNoTimeslots)
	}
	if evoTime < 0 || math.IsNaN(evoTime) || math.IsInf(evoTime, 0) {
		return nil, fmt.Errorf("evoTime=%v: %w", evoTime, ErrNegativeTime)
	}
	if err := matrix.ValidateSquare(drift); err != nil {
		return nil, fmt.Errorf("drift: %w: %w", ErrDimensionMismatch, err)
	}
	dim := drift.Rows()
	d, err := matrix.AsDense(drift)
	if err != nil {
		return nil, fmt.Errorf("drift: %w", err)
	}
	cs := make([]*matrix.Dense, len(ctrls))
	for j, c := range ctrls {
		if err := matrix.ValidateNotNil(c); err != nil {
			return nil, fmt.Errorf("control %d: %w: %w", j, ErrDimensionMismatch, err)
		}
		if c.Rows() != dim || c.Cols() != dim {
			return nil, fmt.Errorf("control %d is %dx%d, want %dx%d: %w", j, c.Rows(), c.Cols(), dim, dim, ErrDimensionMismatch)
		}
		if cs[j], err = matrix.AsDense(c); err != nil {
			return nil, fmt.Errorf("control %d: %w", j, err)
		}
		cs[j] = cs[j].Clone().(*matrix.Dense)
	}
	if err := matrix.ValidateNotNil(initial); err != nil {
		return nil, fmt.Errorf("initial: %w: %w", ErrDimensionMismatch, err)
	}
	if initial.Rows() != dim {
		return nil, fmt.Errorf("initial has %d rows, want %d: %w", initial.Rows(), dim, ErrDimensionMismatch)
	}
	x0, err := matrix.AsDense(initial)
	if err != nil {
		return nil, fmt.Errorf("initial: %w", err)
	}
	ident, err := matrix.IdentityLike(d)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		backend:   backend,
		opts:      gatherOptions(opts...),
		drift:     d.Clone().(*matrix.Dense),
		ctrls:     cs,
		initial:   x0.Clone().(*matrix.Dense),
		ident:     ident,
		nTS:       nTS,
		evoTime:   evoTime,
		dt:        evoTime / float64(nTS),
		amps:      make([][]float64, nTS),
		props:     make([]*matrix.Dense, nTS),
		propGrads: make([][]*matrix.Dense, nTS),
		fwd:       make([]*matrix.Dense, nTS+1),
		onward:    make([]*matrix.Dense, nTS+1),
		dirty:     make([]bool, nTS),
		gradDirty: make([]bool, nTS),
	}
	for t := range e.amps {
		e.amps[t] = make([]float64, len(cs))
		e.dirty[t] = true
	}
	e.anyDirty = true

	return e, nil
}

// NumTimeslots returns nTS.
func (e *Engine) NumTimeslots() int { return e.nTS }

// NumControls returns the control count.
func (e *Engine) NumControls() int { return len(e.ctrls) }

// Dim returns the generator dimension D.
func (e *Engine) Dim() int { return e.drift.Rows() }

// Dt returns the timeslot duration.
func (e *Engine) Dt() float64 { return e.dt }

// EvoTime returns the total evolution time.
func (e *Engine) EvoTime() float64 { return e.evoTime }

// Initial returns a copy of the initial operator X₀.
func (e *Engine) Initial() *matrix.Dense { return e.initial.Clone().(*matrix.Dense) }

// Backend returns the linear-algebra backend in use.
func (e *Engine) Backend() linalg.Backend { return e.backend }

// GradientEnabled reports whether PropagatorGrad is available.
func (e *Engine) GradientEnabled() bool { return e.opts.gradient }

// Stats returns the work counters.
func (e *Engine) Stats() Stats { return e.stats }

// Amplitudes returns a copy of the current amplitude table.
func (e *Engine) Amplitudes() [][]float64 {
	out := make([][]float64, e.nTS)
	for t, row := range e.amps {
		out[t] = append([]float64(nil), row...)
	}

	return out
}

// SetAmplitudes replaces the amplitude table and marks changed timeslots dirty.
// The table is copied; the caller keeps ownership of amps.
//
// Errors: ErrAmplitudeShape, ErrNonFiniteAmplitude (the table is left untouched).
func (e *Engine) SetAmplitudes(amps [][]float64) error {
	if len(amps) != e.nTS {
		return fmt.Errorf("got %d timeslots, want %d: %w", len(amps), e.nTS, ErrAmplitudeShape)
	}
	for t, row := range amps {
		if len(row) != len(e.ctrls) {
			return fmt.Errorf("timeslot %d has %d controls, want %d: %w", t, len(row), len(e.ctrls), ErrAmplitudeShape)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("amps[%d][%d]=%v: %w", t, j, v, ErrNonFiniteAmplitude)
			}
		}
	}
	for t, row := range amps {
		for j, v := range row {
			if e.amps[t][j] != v {
				e.amps[t][j] = v
				e.dirty[t] = true
				e.anyDirty = true
			}
		}
	}

	return nil
}

// Update brings propagators and both chains in line with the
// current amplitudes. It is a no-op when nothing changed (unless
// WithRecomputeAll is set).
//
// Errors: *NumericalError when an exponential fails; the caches for that
// slot stay dirty so a later Update retries.
func (e *Engine) Update() error {
	if e.opts.recomputeAll {
		for t := range e.dirty {
			e.dirty[t] = true
		}
		e.anyDirty = true
	}
	if !e.anyDirty {
		return nil
	}
	start := time.Now()
	defer func() { e.stats.ComputeTime += time.Since(start) }()
	e.stats.Updates++

	first, last := -1, -1
	for t, d := range e.dirty {
		if !d {
			continue
		}
		if first < 0 {
			first = t
		}
		last = t
		if err := e.computeSlot(t); err != nil {
			return err
		}
	}

	if e.fwd[0] == nil {
		e.fwd[0] = e.initial
	}
	for t := first; t < e.nTS; t++ {
		next, err := e.backend.Mul(e.props[t], e.fwd[t])
		if err != nil {
			return newNumericalError(t, -1, err)
		}
		e.fwd[t+1] = next
	}
	e.onward[e.nTS] = e.ident
	for t := last; t >= 0; t-- {
		prev, err := e.backend.Mul(e.onward[t+1], e.props[t])
		if err != nil {
			return newNumericalError(t, -1, err)
		}
		e.onward[t] = prev
	}

	for t := range e.dirty {
		e.dirty[t] = false
	}
	e.anyDirty = false

	return nil
}

// slotGenerator returns G_t·dt for the current amplitudes of slot t.
func (e *Engine) slotGenerator(t int) (*matrix.Dense, error) {
	gen := e.drift
	var err error
	for j, c := range e.ctrls {
		if u := e.amps[t][j]; u != 0 {
			if gen, err = matrix.AddScaled(gen, c, complex(u, 0)); err != nil {
				return nil, newNumericalError(t, j, err)
			}
		}
	}
	a, err := matrix.Scale(gen, complex(e.dt, 0))
	if err != nil {
		return nil, newNumericalError(t, -1, err)
	}

	return a, nil
}

// computeSlot evaluates P_t and marks its derivatives stale.
func (e *Engine) computeSlot(t int) error {
	a, err := e.slotGenerator(t)
	if err != nil {
		return err
	}
	p, err := e.backend.Expm(a)
	if err != nil {
		return newNumericalError(t, -1, err)
	}
	e.props[t] = p
	e.propGrads[t] = nil
	e.gradDirty[t] = e.opts.gradient && len(e.ctrls) > 0
	e.stats.PropagatorEvals++

	return nil
}

// computeSlotGrads evaluates ∂P_t/∂u[t][j] for every control of slot t.
func (e *Engine) computeSlotGrads(t int) error {
	start := time.Now()
	defer func() { e.stats.ComputeTime += time.Since(start) }()

	a, err := e.slotGenerator(t)
	if err != nil {
		return err
	}
	grads := make([]*matrix.Dense, len(e.ctrls))
	for j, c := range e.ctrls {
		dir, err := matrix.Scale(c, complex(e.dt, 0))
		if err != nil {
			return newNumericalError(t, j, err)
		}
		_, l, err := e.backend.ExpmFrechet(a, dir)
		if err != nil {
			return newNumericalError(t, j, err)
		}
		grads[j] = l
		e.stats.GradientEvals++
	}
	e.propGrads[t] = grads
	e.gradDirty[t] = false

	return nil
}

// ensureFresh rejects reads while caches are stale.
func (e *Engine) ensureFresh() error {
	if e.anyDirty {
		return e.Update()
	}

	return nil
}

// Final returns fwd[nTS], the evolution at the end of the last slot.
// Stale caches are refreshed first.
func (e *Engine) Final() (*matrix.Dense, error) {
	if err := e.ensureFresh(); err != nil {
		return nil, err
	}

	return e.fwd[e.nTS], nil
}

// Forward returns fwd[k] for k ∈ [0, nTS].
func (e *Engine) Forward(k int) (*matrix.Dense, error) {
	if k < 0 || k > e.nTS {
		return nil, fmt.Errorf("forward %d: %w", k, ErrOutOfRange)
	}
	if err := e.ensureFresh(); err != nil {
		return nil, err
	}

	return e.fwd[k], nil
}

// Onward returns onward[k] = P_{N−1}…P_k for k ∈ [0, nTS] (onward[nTS] = I).
func (e *Engine) Onward(k int) (*matrix.Dense, error) {
	if k < 0 || k > e.nTS {
		return nil, fmt.Errorf("onward %d: %w", k, ErrOutOfRange)
	}
	if err := e.ensureFresh(); err != nil {
		return nil, err
	}

	return e.onward[k], nil
}

// Propagator returns P_t.
func (e *Engine) Propagator(t int) (*matrix.Dense, error) {
	if t < 0 || t >= e.nTS {
		return nil, fmt.Errorf("propagator %d: %w", t, ErrOutOfRange)
	}
	if err := e.ensureFresh(); err != nil {
		return nil, err
	}

	return e.props[t], nil
}

// PropagatorGrad returns ∂P_t/∂u[t][j], computing the derivatives of slot t
// if its propagator changed since they were last read.
//
// Errors: ErrGradientDisabled, ErrOutOfRange, *NumericalError.
func (e *Engine) PropagatorGrad(t, j int) (*matrix.Dense, error) {
	if !e.opts.gradient {
		return nil, ErrGradientDisabled
	}
	if t < 0 || t >= e.nTS || j < 0 || j >= len(e.ctrls) {
		return nil, fmt.Errorf("gradient (%d,%d): %w", t, j, ErrOutOfRange)
	}
	if err := e.ensureFresh(); err != nil {
		return nil, err
	}
	if e.gradDirty[t] {
		if err := e.computeSlotGrads(t); err != nil {
			return nil, err
		}
	}

	return e.propGrads[t][j], nil
}
