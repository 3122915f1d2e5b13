// SPDX-License-Identifier: MIT

package qoc

import (
	"fmt"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
)

// Optimize runs p from the initial pulse its Pulse block describes.
// A nil backend selects Native, a nil sink discards diagnostics.
func Optimize(p *problem.Problem, backend linalg.Backend, sink optimize.Sink) (*optimize.Result, error) {
	if p == nil {
		return nil, fmt.Errorf("nil problem: %w", problem.ErrInvalidSpec)
	}
	amps, err := p.InitialPulse()
	if err != nil {
		return nil, err
	}

	return OptimizeFrom(p, backend, sink, amps)
}

// OptimizeFrom runs p from a caller-supplied amplitude table (nTS × nCtrls).
func OptimizeFrom(p *problem.Problem, backend linalg.Backend, sink optimize.Sink, initial [][]float64) (*optimize.Result, error) {
	if p == nil {
		return nil, fmt.Errorf("nil problem: %w", problem.ErrInvalidSpec)
	}
	ev, err := p.Evaluator(backend)
	if err != nil {
		return nil, err
	}
	d, err := optimize.New(ev, p.Optimizer, sink)
	if err != nil {
		return nil, err
	}

	return d.Run(initial)
}
