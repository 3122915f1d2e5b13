// SPDX-License-Identifier: MIT

// Package optimize drives a fidelity.Evaluator to a low fidelity error with a
// box-constrained limited-memory quasi-Newton method.
//
// Method (projected L-BFGS with Armijo backtracking):
//   - The amplitude table is flattened row-major into x ∈ [lo, hi]ⁿ.
//   - Direction: two-loop recursion on the projected gradient, components that
//     would leave the box at an active bound are masked. A non-descent
//     direction resets the memory and falls back to steepest descent.
//   - Step: α₀ = 1 (α₀ = min(1, 1/‖g‖) without memory), halved up to 20
//     times until f(P(x+αd)) ≤ f(x) + c₁·gᵀ(P(x+αd) − x). If no trial meets
//     the Armijo test the best strictly improving trial is taken.
//   - A failed line search resets the memory once; failing again from
//     steepest descent ends the run as Failed (ErrLineSearch).
//
// Termination is checked at the top of every iteration in this order: error
// target (Converged), iteration and function-call budgets (IterationLimit),
// wall time (TimeLimit), projected gradient norm (Failed, ErrLocalMinimum).
// Numerical failures at an accepted point end the run as Failed with the
// evaluator's error. Accepted steps strictly decrease the error, so the
// best-seen error is monotone and the final error never exceeds the initial.
package optimize

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/qoc/fidelity"
	"github.com/katalvlaran/qoc/propagator"
	"gonum.org/v1/gonum/floats"
)

// Driver runs one optimization. It is single-use and not safe for concurrent use.
type Driver struct {
	ev   *fidelity.Evaluator
	cfg  Config
	sink Sink
	m    machine
	box  box

	nTS, nCtrls int
}

// New validates cfg and binds the driver to ev. A nil sink selects NopSink.
func New(ev *fidelity.Evaluator, cfg Config, sink Sink) (*Driver, error) {
	if ev == nil {
		return nil, fmt.Errorf("nil evaluator: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = NopSink{}
	}
	e := ev.Engine()

	return &Driver{
		ev:     ev,
		cfg:    cfg,
		sink:   sink,
		box:    box{lo: cfg.LowerBound, hi: cfg.UpperBound},
		nTS:    e.NumTimeslots(),
		nCtrls: e.NumControls(),
	}, nil
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.m.state }

// Config returns the validated configuration.
func (d *Driver) Config() Config { return d.cfg }

// point is an evaluated location.
type point struct {
	x     []float64
	f     float64
	g     []float64
	gnorm float64 // projected gradient norm
}

// run carries the mutable bookkeeping of one Run call.
type run struct {
	d     *Driver
	start time.Time
	base  fidelity.Stats
	res   *Result

	iter, fcalls, gcalls, resets int
	best                         point
}

// Run optimizes from the initial amplitude table (clipped to the bounds).
//
// Returned errors are caller errors only: a second Run (ErrInvalidTransition)
// or a malformed table (propagator.ErrAmplitudeShape,
// propagator.ErrNonFiniteAmplitude). Every other outcome, numerical failures
// included, is a Result with a terminal State.
func (d *Driver) Run(initial [][]float64) (*Result, error) {
	if d.m.state != Initialized {
		return nil, fmt.Errorf("run from %s: %w", d.m.state, ErrInvalidTransition)
	}
	if err := d.checkTable(initial); err != nil {
		return nil, err
	}

	r := &run{d: d, start: time.Now(), base: d.ev.Stats(), res: &Result{}}
	x := flatten(initial)
	d.box.clip(x)
	r.res.InitialAmps = unflatten(x, d.nTS, d.nCtrls)

	// Stage 1: first evaluation moves the machine to RUNNING.
	f, g, err := r.evaluate(x)
	if terr := d.m.transition(Running); terr != nil {
		return nil, terr
	}
	if err != nil {
		r.best = point{x: x, f: math.NaN(), gnorm: math.NaN()}
		r.res.InitialError = math.NaN()

		return r.finish(Failed, "initial evaluation failed: "+err.Error(), err)
	}
	pg := d.box.projectGradient(make([]float64, len(g)), x, g)
	cur := point{x: x, f: f, g: g, gnorm: floats.Norm(pg, 2)}
	r.best = cur
	r.res.InitialError = f
	r.record(0, cur, 0)
	d.sink.Info("optimization started",
		"timeslots", d.nTS, "controls", d.nCtrls, "fid_err", f, "grad_norm", cur.gnorm)

	mem := newMemory(d.cfg.Memory)
	dir := make([]float64, len(x))

	// Stage 2: iterate.
	for {
		switch {
		case cur.f <= d.cfg.FidErrTarget:
			return r.finish(Converged, fmt.Sprintf("fidelity error %.6g reached target %.6g", cur.f, d.cfg.FidErrTarget), nil)
		case r.iter >= d.cfg.MaxIterations:
			return r.finish(IterationLimit, fmt.Sprintf("iteration limit %d reached", d.cfg.MaxIterations), nil)
		case d.cfg.MaxFunctionEvals > 0 && r.fcalls >= d.cfg.MaxFunctionEvals:
			return r.finish(IterationLimit, fmt.Sprintf("function-call limit %d reached", d.cfg.MaxFunctionEvals), nil)
		case d.cfg.MaxWallTime > 0 && time.Since(r.start) > d.cfg.MaxWallTime:
			return r.finish(TimeLimit, fmt.Sprintf("wall time limit %v exceeded", d.cfg.MaxWallTime), nil)
		case cur.gnorm < d.cfg.MinGradNorm:
			return r.finish(Failed, fmt.Sprintf("gradient norm %.3g below minimum %.3g", cur.gnorm, d.cfg.MinGradNorm), ErrLocalMinimum)
		}

		pg = d.box.projectGradient(pg, cur.x, cur.g)
		mem.direction(dir, pg)
		d.box.maskDirection(dir, cur.x)
		if !(floats.Dot(pg, dir) < 0) {
			if mem.len() > 0 {
				mem.reset()
				r.resets++
				d.sink.Warn("non-descent direction, memory reset", "iter", r.iter)
			}
			floats.ScaleTo(dir, -1, pg)
			d.box.maskDirection(dir, cur.x)
		}
		alpha := 1.0
		if mem.len() == 0 {
			alpha = math.Min(1, 1/cur.gnorm)
		}

		xn, ok, exhausted, lsErr := r.lineSearch(cur, dir, alpha)
		if !ok {
			r.iter++
			switch {
			case exhausted:
				continue
			case mem.len() > 0:
				mem.reset()
				r.resets++
				d.sink.Warn("line search failed, memory reset", "iter", r.iter, "fid_err", cur.f)

				continue
			case lsErr != nil:
				return r.finish(Failed, "numerical failure in line search: "+lsErr.Error(), lsErr)
			default:
				return r.finish(Failed, "line search made no progress along steepest descent", ErrLineSearch)
			}
		}

		fn, gn, err := r.evaluate(xn)
		if err != nil {
			return r.finish(Failed, "numerical failure: "+err.Error(), err)
		}
		s := make([]float64, len(xn))
		floats.SubTo(s, xn, cur.x)
		y := make([]float64, len(gn))
		floats.SubTo(y, gn, cur.g)
		mem.push(s, y)

		next := point{x: xn, f: fn, g: gn}
		next.gnorm = floats.Norm(d.box.projectGradient(make([]float64, len(gn)), xn, gn), 2)
		cur = next
		if cur.f < r.best.f {
			r.best = cur
		}
		r.iter++
		r.record(r.iter, cur, floats.Norm(s, 2))
		d.sink.Debug("iteration",
			"iter", r.iter, "fid_err", cur.f, "grad_norm", cur.gnorm,
			"step", floats.Norm(s, 2), "evals", r.fcalls, "memory", mem.len())
	}
}

// checkTable validates the initial table shape and values.
func (d *Driver) checkTable(amps [][]float64) error {
	if len(amps) != d.nTS {
		return fmt.Errorf("got %d timeslots, want %d: %w", len(amps), d.nTS, propagator.ErrAmplitudeShape)
	}
	for t, row := range amps {
		if len(row) != d.nCtrls {
			return fmt.Errorf("timeslot %d has %d controls, want %d: %w", t, len(row), d.nCtrls, propagator.ErrAmplitudeShape)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("amps[%d][%d]=%v: %w", t, j, v, propagator.ErrNonFiniteAmplitude)
			}
		}
	}

	return nil
}

// evaluate returns error and flattened gradient at x.
func (r *run) evaluate(x []float64) (float64, []float64, error) {
	r.fcalls++
	r.gcalls++
	f, grad, err := r.d.ev.Evaluate(unflatten(x, r.d.nTS, r.d.nCtrls))
	if err != nil {
		return 0, nil, err
	}

	return f, flatten(grad), nil
}

// lineSearch backtracks from x along dir. It returns the accepted point, or
// ok=false with exhausted=true when the function-call budget ran out, and the
// last numerical error met on a rejected trial.
func (r *run) lineSearch(cur point, dir []float64, alpha float64) (xn []float64, ok, exhausted bool, lastErr error) {
	var (
		bestX []float64
		bestF = cur.f
		xt    = make([]float64, len(cur.x))
		s     = make([]float64, len(cur.x))
	)
	for k := 0; k < maxBacktracks; k++ {
		if r.d.cfg.MaxFunctionEvals > 0 && r.fcalls >= r.d.cfg.MaxFunctionEvals {
			exhausted = true

			break
		}
		floats.AddScaledTo(xt, cur.x, alpha, dir)
		r.d.box.clip(xt)
		floats.SubTo(s, xt, cur.x)
		if floats.Norm(s, 2) == 0 {
			break
		}

		r.fcalls++
		ft, err := r.d.ev.ErrorAt(unflatten(xt, r.d.nTS, r.d.nCtrls))
		if err != nil {
			var ne *propagator.NumericalError
			if errors.As(err, &ne) || errors.Is(err, fidelity.ErrNonFinite) {
				lastErr = err
				alpha *= backtrackFactor

				continue
			}

			return nil, false, false, err
		}
		if ft <= cur.f+armijoC1*floats.Dot(cur.g, s) && ft < cur.f {
			return append([]float64(nil), xt...), true, false, nil
		}
		if ft < bestF {
			bestF = ft
			bestX = append(bestX[:0], xt...)
		}
		alpha *= backtrackFactor
	}
	if bestX != nil {
		return bestX, true, false, nil
	}

	return nil, false, exhausted, lastErr
}

// record appends a history step when enabled.
func (r *run) record(iter int, p point, step float64) {
	if !r.d.cfg.RecordHistory {
		return
	}
	r.res.History = append(r.res.History, Step{
		Iteration: iter,
		Error:     p.f,
		GradNorm:  p.gnorm,
		StepSize:  step,
		Evals:     r.fcalls,
	})
}

// finish moves to a terminal state and fills the Result from the best point.
func (r *run) finish(state State, reason string, cause error) (*Result, error) {
	d := r.d
	if err := d.m.transition(state); err != nil {
		return nil, err
	}
	res := r.res
	res.State = state
	res.Reason = reason
	res.Err = cause
	res.FinalAmps = unflatten(r.best.x, d.nTS, d.nCtrls)
	res.FinalError = r.best.f
	res.GradNorm = r.best.gnorm
	res.Iterations = r.iter
	res.FunctionEvals = r.fcalls
	res.GradientEvals = r.gcalls
	res.MemoryResets = r.resets

	if _, err := d.ev.ErrorAt(res.FinalAmps); err == nil {
		res.FinalEvolution, _ = d.ev.FinalEvolution()
	}

	st := d.ev.Stats()
	res.WallTime = time.Since(r.start)
	res.Timing = Timing{
		Propagate: st.PropagateTime - r.base.PropagateTime,
		Fidelity:  st.FidelityTime - r.base.FidelityTime,
		Gradient:  st.GradientTime - r.base.GradientTime,
	}
	res.Timing.Optimizer = res.WallTime - res.Timing.Propagate - res.Timing.Fidelity - res.Timing.Gradient
	if res.Timing.Optimizer < 0 {
		res.Timing.Optimizer = 0
	}

	if state == Failed {
		d.sink.Warn("optimization failed", "reason", reason, "err", cause)
	}
	d.sink.Info("optimization finished",
		"state", state.String(), "reason", reason, "fid_err", res.FinalError,
		"iterations", res.Iterations, "evals", res.FunctionEvals, "wall", res.WallTime)

	return res, nil
}
