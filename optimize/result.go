// SPDX-License-Identifier: MIT

package optimize

import (
	"time"

	"github.com/katalvlaran/qoc/matrix"
)

// Timing splits the wall time of a run.
type Timing struct {
	Propagate time.Duration // propagator recomputation
	Fidelity  time.Duration // measure error and seed
	Gradient  time.Duration // gradient assembly
	Optimizer time.Duration // everything else (directions, line search, bookkeeping)
}

// Step is one history record, taken after each iteration.
type Step struct {
	Iteration int
	Error     float64
	GradNorm  float64
	StepSize  float64
	Evals     int
}

// Result is the read-only outcome of Driver.Run.
type Result struct {
	State  State
	Reason string
	// Err is set for Failed runs: ErrLocalMinimum, ErrLineSearch or the
	// evaluator error (often a *propagator.NumericalError).
	Err error

	InitialAmps [][]float64
	FinalAmps   [][]float64 // best amplitudes seen
	// FinalEvolution is X_N at FinalAmps (nil if it could not be computed).
	FinalEvolution *matrix.Dense

	InitialError float64
	FinalError   float64
	GradNorm     float64 // projected gradient norm at FinalAmps

	Iterations    int
	FunctionEvals int
	GradientEvals int
	MemoryResets  int

	WallTime time.Duration
	Timing   Timing
	History  []Step
}
