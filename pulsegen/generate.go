// SPDX-License-Identifier: MIT
// Package: qoc/pulsegen
//
// generate.go - deterministic initial-pulse generators.
//
// Purpose (single responsibility):
//   • Produce the starting amplitude table amps[t][j] for the optimizer.
//   • Shapes: ZERO, RND, LIN, SINE, SQUARE, SAW, TRIANGLE, GAUSSIAN.
//   • Knobs: scaling, offset, number of waves, start phase, Gaussian width, clipping.
//
// Contract:
//   • Generate(policy, nTS, nCtrls, seed, opts...) is a pure function: the same
//     arguments give bit-identical tables on every call and platform.
//   • Periodic shapes are sampled at slot starts: frac = mod(t·waves/nTS + φ/2π, 1).
//   • RND draws uniform [-1, 1) per sample from an independent stream per control column.
//   • O(nTS·nCtrls) time and memory.

package pulsegen

import (
	"fmt"
	"math"
)

// Small named constants (no magic literals in the shape formulas).
const (
	tau       = 2 * math.Pi
	unitOne   = 1.0
	triDouble = 2.0
	triCenter = 1.0
	halfCycle = 0.5
)

// Generate returns an nTS×nCtrls amplitude table for policy.
//
// Errors:
//   - ErrBadShape when nTS < 1 or nCtrls < 1.
//   - ErrUnknownPolicy for a non-canonical policy (use ParsePolicy for names).
func Generate(policy Policy, nTS, nCtrls int, seed int64, opts ...Option) ([][]float64, error) {
	if nTS < 1 || nCtrls < 1 {
		return nil, fmt.Errorf("nTS=%d nCtrls=%d: %w", nTS, nCtrls, ErrBadShape)
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("%q: %w", string(policy), ErrUnknownPolicy)
	}
	c := newConfig(opts...)

	amps := make([][]float64, nTS)
	for t := range amps {
		amps[t] = make([]float64, nCtrls)
	}

	for j := 0; j < nCtrls; j++ {
		if policy == Random {
			rng := columnRNG(seed, j)
			for t := 0; t < nTS; t++ {
				amps[t][j] = c.scaling*(2*rng.Float64()-unitOne) + c.offset
			}

			continue
		}
		for t := 0; t < nTS; t++ {
			amps[t][j] = c.scaling*shape(policy, t, nTS, c) + c.offset
		}
	}

	for _, row := range amps {
		for j, v := range row {
			row[j] = math.Min(math.Max(v, c.lower), c.upper)
		}
	}

	return amps, nil
}

// shape returns the unit-amplitude sample of a deterministic policy at slot t.
func shape(policy Policy, t, nTS int, c config) float64 {
	switch policy {
	case Zero:
		return 0
	case Linear:
		// Ramp from −1 at the first slot to +1 at the last.
		if nTS == 1 {
			return 0
		}

		return -unitOne + triDouble*float64(t)/float64(nTS-1)
	case Gaussian:
		mid := float64(nTS-1) / 2
		sigma := c.width * float64(nTS)
		x := (float64(t) - mid) / sigma

		return math.Exp(-0.5 * x * x)
	}

	frac := phaseFraction(t, nTS, c)
	switch policy {
	case Sine:
		return math.Sin(tau * frac)
	case Square:
		if frac < halfCycle {
			return unitOne
		}

		return -unitOne
	case Saw:
		return triDouble*frac - unitOne
	case Triangle:
		// Triangle in [−1,1]: 2·(1 − |2·frac − 1|) − 1.
		return triDouble*(unitOne-math.Abs(triDouble*frac-triCenter)) - unitOne
	}

	return 0
}

// phaseFraction returns mod(t·waves/nTS + φ/2π, 1) in [0, 1).
func phaseFraction(t, nTS int, c config) float64 {
	f := math.Mod(float64(t)*c.numWaves/float64(nTS)+c.phase/tau, unitOne)
	if f < 0 {
		f += unitOne
	}

	return f
}
