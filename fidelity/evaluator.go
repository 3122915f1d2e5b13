// SPDX-License-Identifier: MIT

// Package fidelity scores the final evolution of a propagator.Engine against a
// target and differentiates that score with respect to every amplitude.
//
// Gradient assembly: with S the measure seed at X_N and the chain
// X_N = onward[t+1]·P_t·fwd[t],
//
//	∂err/∂u[t][j] = Re Tr( fwd[t]·S·onward[t+1] · ∂P_t/∂u[t][j] )
//
// so one D×D product M_t per timeslot serves every control.
package fidelity

import (
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/propagator"
)

// Stats splits evaluator wall time by subcomponent.
type Stats struct {
	Evaluations   int           // Evaluate + ErrorAt calls
	Gradients     int           // gradient assemblies
	PropagateTime time.Duration // spent in Engine.Update
	FidelityTime  time.Duration // measure error and seed
	GradientTime  time.Duration // Fréchet derivatives, M_t products and trace contractions
}

// Evaluator binds an Engine, a target and a Measure.
// It is not safe for concurrent use (it drives the Engine).
type Evaluator struct {
	engine  *propagator.Engine
	target  *matrix.Dense
	measure Measure
	stats   Stats
}

// New validates the target against the engine's initial operator shape.
// A nil measure selects TraceDiff.
func New(engine *propagator.Engine, target matrix.Matrix, measure Measure) (*Evaluator, error) {
	if engine == nil {
		return nil, fmt.Errorf("nil engine: %w", ErrDimensionMismatch)
	}
	if err := matrix.ValidateNotNil(target); err != nil {
		return nil, fmt.Errorf("target: %w: %w", ErrDimensionMismatch, err)
	}
	x0 := engine.Initial()
	if target.Rows() != x0.Rows() || target.Cols() != x0.Cols() {
		return nil, fmt.Errorf("target %dx%d, evolution %dx%d: %w",
			target.Rows(), target.Cols(), x0.Rows(), x0.Cols(), ErrDimensionMismatch)
	}
	t, err := matrix.AsDense(target)
	if err != nil {
		return nil, err
	}
	if err := matrix.ValidateFinite(t); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if measure == nil {
		measure = TraceDiff{}
	}

	return &Evaluator{engine: engine, target: t.Clone().(*matrix.Dense), measure: measure}, nil
}

// Engine returns the underlying engine.
func (ev *Evaluator) Engine() *propagator.Engine { return ev.engine }

// Measure returns the active measure.
func (ev *Evaluator) Measure() Measure { return ev.measure }

// Target returns a copy of the target operator.
func (ev *Evaluator) Target() *matrix.Dense { return ev.target.Clone().(*matrix.Dense) }

// Stats returns the timing counters.
func (ev *Evaluator) Stats() Stats { return ev.stats }

// propagate loads amps into the engine and refreshes its caches.
func (ev *Evaluator) propagate(amps [][]float64) (*matrix.Dense, error) {
	if err := ev.engine.SetAmplitudes(amps); err != nil {
		return nil, err
	}
	start := time.Now()
	err := ev.engine.Update()
	ev.stats.PropagateTime += time.Since(start)
	if err != nil {
		return nil, err
	}

	return ev.engine.Final()
}

// ErrorAt returns the fidelity error for amps without assembling a gradient.
//
// Errors: propagator shape/finiteness sentinels, *propagator.NumericalError,
// ErrNonFinite.
func (ev *Evaluator) ErrorAt(amps [][]float64) (float64, error) {
	ev.stats.Evaluations++
	x, err := ev.propagate(amps)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	fe, err := ev.measure.Error(ev.target, x)
	ev.stats.FidelityTime += time.Since(start)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(fe) || math.IsInf(fe, 0) {
		return 0, fmt.Errorf("error=%v: %w", fe, ErrNonFinite)
	}

	return fe, nil
}

// Evaluate returns the fidelity error and its gradient grad[t][j] at amps.
// The engine must have gradients enabled.
//
// Errors: as ErrorAt, plus propagator.ErrGradientDisabled.
func (ev *Evaluator) Evaluate(amps [][]float64) (float64, [][]float64, error) {
	if !ev.engine.GradientEnabled() {
		return 0, nil, propagator.ErrGradientDisabled
	}
	fe, err := ev.ErrorAt(amps)
	if err != nil {
		return 0, nil, err
	}
	x, err := ev.engine.Final()
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()
	seed, err := ev.measure.Seed(ev.target, x)
	ev.stats.FidelityTime += time.Since(start)
	if err != nil {
		return 0, nil, err
	}

	start = time.Now()
	defer func() { ev.stats.GradientTime += time.Since(start) }()
	ev.stats.Gradients++

	nTS, nCtrls := ev.engine.NumTimeslots(), ev.engine.NumControls()
	be := ev.engine.Backend()
	grad := make([][]float64, nTS)
	for t := 0; t < nTS; t++ {
		grad[t] = make([]float64, nCtrls)
		if nCtrls == 0 {
			continue
		}
		fwd, err := ev.engine.Forward(t)
		if err != nil {
			return 0, nil, err
		}
		onward, err := ev.engine.Onward(t + 1)
		if err != nil {
			return 0, nil, err
		}
		so, err := be.Mul(seed, onward)
		if err != nil {
			return 0, nil, err
		}
		m, err := be.Mul(fwd, so)
		if err != nil {
			return 0, nil, err
		}
		for j := 0; j < nCtrls; j++ {
			dp, err := ev.engine.PropagatorGrad(t, j)
			if err != nil {
				return 0, nil, err
			}
			tr, err := matrix.TraceProduct(m, dp)
			if err != nil {
				return 0, nil, err
			}
			g := real(tr)
			if math.IsNaN(g) || math.IsInf(g, 0) {
				return 0, nil, fmt.Errorf("grad[%d][%d]=%v: %w", t, j, g, ErrNonFinite)
			}
			grad[t][j] = g
		}
	}

	return fe, grad, nil
}

// FinalEvolution returns X_N for the amplitudes last loaded.
func (ev *Evaluator) FinalEvolution() (*matrix.Dense, error) {
	x, err := ev.engine.Final()
	if err != nil {
		return nil, err
	}

	return x.Clone().(*matrix.Dense), nil
}
