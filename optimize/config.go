// SPDX-License-Identifier: MIT

package optimize

import (
	"fmt"
	"math"
	"time"
)

// Defaults applied by DefaultConfig.
const (
	DefaultFidErrTarget     = 1e-10
	DefaultMaxIterations    = 500
	DefaultMaxFunctionEvals = 10000
	DefaultMaxWallTime      = 180 * time.Second
	DefaultMinGradNorm      = 1e-10
	DefaultMemory           = 10
)

// Line-search constants.
const (
	armijoC1        = 1e-4
	maxBacktracks   = 20
	curvatureFloor  = 1e-10
	backtrackFactor = 0.5
)

// Config holds the run limits and method knobs. Zero MaxFunctionEvals or
// MaxWallTime disables that limit; MaxIterations = 0 allows only the initial
// evaluation.
type Config struct {
	// FidErrTarget: stop with Converged once error ≤ FidErrTarget.
	FidErrTarget float64

	// MaxIterations bounds accepted steps (and failed line searches).
	MaxIterations int

	// MaxFunctionEvals bounds fidelity evaluations, line-search trials included.
	MaxFunctionEvals int

	// MaxWallTime bounds elapsed time, checked at the top of every iteration.
	MaxWallTime time.Duration

	// MinGradNorm: a projected gradient norm below this without reaching the
	// target ends the run as Failed (local minimum).
	MinGradNorm float64

	// Memory is the number of L-BFGS correction pairs kept.
	Memory int

	// LowerBound and UpperBound box every amplitude; ±Inf leaves it free.
	LowerBound float64
	UpperBound float64

	// RecordHistory keeps one Step per iteration in the Result.
	RecordHistory bool
}

// DefaultConfig returns an unbounded configuration with the package defaults.
func DefaultConfig() Config {
	return Config{
		FidErrTarget:     DefaultFidErrTarget,
		MaxIterations:    DefaultMaxIterations,
		MaxFunctionEvals: DefaultMaxFunctionEvals,
		MaxWallTime:      DefaultMaxWallTime,
		MinGradNorm:      DefaultMinGradNorm,
		Memory:           DefaultMemory,
		LowerBound:       math.Inf(-1),
		UpperBound:       math.Inf(1),
		RecordHistory:    true,
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case math.IsNaN(c.FidErrTarget) || c.FidErrTarget < 0:
		return fmt.Errorf("fid_err_targ=%v: %w", c.FidErrTarget, ErrInvalidConfig)
	case c.MaxIterations < 0:
		return fmt.Errorf("max_iter=%d: %w", c.MaxIterations, ErrInvalidConfig)
	case c.MaxFunctionEvals < 0:
		return fmt.Errorf("max_fid_func_calls=%d: %w", c.MaxFunctionEvals, ErrInvalidConfig)
	case c.MaxWallTime < 0:
		return fmt.Errorf("max_wall_time=%v: %w", c.MaxWallTime, ErrInvalidConfig)
	case math.IsNaN(c.MinGradNorm) || c.MinGradNorm < 0:
		return fmt.Errorf("min_grad=%v: %w", c.MinGradNorm, ErrInvalidConfig)
	case c.Memory < 1:
		return fmt.Errorf("memory=%d: %w", c.Memory, ErrInvalidConfig)
	case math.IsNaN(c.LowerBound) || math.IsNaN(c.UpperBound) || c.LowerBound > c.UpperBound:
		return fmt.Errorf("bounds [%v, %v]: %w", c.LowerBound, c.UpperBound, ErrInvalidConfig)
	case math.IsInf(c.LowerBound, 1) || math.IsInf(c.UpperBound, -1):
		return fmt.Errorf("bounds [%v, %v]: %w", c.LowerBound, c.UpperBound, ErrInvalidConfig)
	}

	return nil
}
