// SPDX-License-Identifier: MIT

package superop

import (
	"math"

	"github.com/katalvlaran/qoc/matrix"
)

const panicEpsilonInvalid = "superop: WithEpsilon: eps must be finite, non-negative"

// Option configures builder validation.
type Option func(*options)

type options struct {
	eps           float64
	skipHermitian bool
}

func gatherOptions(opts ...Option) options {
	o := options{eps: matrix.DefaultEpsilon}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithEpsilon sets the Hermiticity tolerance for the Hamiltonian check.
func WithEpsilon(eps float64) Option {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		panic(panicEpsilonInvalid)
	}

	return func(o *options) { o.eps = eps }
}

// WithoutHermitianCheck accepts non-Hermitian "Hamiltonians" (effective
// non-Hermitian generators).
func WithoutHermitianCheck() Option {
	return func(o *options) { o.skipHermitian = true }
}
