// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for numeric policy.
// This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the tolerance used by structural checks (Hermitian test,
	// AllClose callers that do not pass their own tolerance).
	DefaultEpsilon = 1e-9

	// DefaultMaxCondition bounds the 1-norm condition estimate of the Padé
	// denominator in Expm. Above it the exponential is reported as
	// ill-conditioned instead of returning a silently inaccurate result.
	DefaultMaxCondition = 1e12

	// DefaultMaxSweeps caps Jacobi rotations per matrix dimension in EigenHermitian.
	DefaultMaxSweeps = 100

	// DefaultEigenTolerance is the off-diagonal convergence threshold for Jacobi.
	DefaultEigenTolerance = 1e-12
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid   = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicConditionInvalid = "matrix: WithMaxCondition: limit must be > 1 (+Inf disables the check)"
	panicSweepsInvalid    = "matrix: WithMaxSweeps: sweeps must be > 0"
	panicEigenTolInvalid  = "matrix: WithEigenTolerance: tol must be finite and > 0"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options holds the numeric policy of a kernel call. Fields are unexported;
// public APIs consume ...Option.
type Options struct {
	eps          float64
	maxCondition float64
	maxSweeps    int
	eigenTol     float64
}

// defaultOptions returns the zero-configuration policy.
func defaultOptions() Options {
	return Options{
		eps:          DefaultEpsilon,
		maxCondition: DefaultMaxCondition,
		maxSweeps:    DefaultMaxSweeps,
		eigenTol:     DefaultEigenTolerance,
	}
}

// gatherOptions folds opts over the defaults in order (last writer wins).
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithEpsilon sets the structural tolerance (Hermitian checks).
// Panics if eps is negative, NaN or Inf.
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithMaxCondition sets the condition-number ceiling used by Expm and
// ExpmFrechet. Pass math.Inf(1) to disable the check (non-finite results are
// still rejected).
func WithMaxCondition(limit float64) Option {
	if !(limit > 1) || math.IsNaN(limit) {
		panic(panicConditionInvalid)
	}

	return func(o *Options) { o.maxCondition = limit }
}

// WithMaxSweeps sets the Jacobi rotation budget per dimension.
func WithMaxSweeps(sweeps int) Option {
	if sweeps <= 0 {
		panic(panicSweepsInvalid)
	}

	return func(o *Options) { o.maxSweeps = sweeps }
}

// WithEigenTolerance sets the Jacobi off-diagonal convergence threshold.
func WithEigenTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicEigenTolInvalid)
	}

	return func(o *Options) { o.eigenTol = tol }
}
