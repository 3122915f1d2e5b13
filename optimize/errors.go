// SPDX-License-Identifier: MIT

package optimize

import "errors"

var (
	// ErrInvalidConfig is returned by Config.Validate and New for unusable settings.
	ErrInvalidConfig = errors.New("optimize: invalid configuration")

	// ErrInvalidTransition is returned when the state machine is asked for an
	// edge it does not have (for example a second Run on the same Driver).
	ErrInvalidTransition = errors.New("optimize: invalid state transition")

	// ErrLocalMinimum is carried in Result.Err when the projected gradient norm
	// drops below Config.MinGradNorm before the error target is reached.
	ErrLocalMinimum = errors.New("optimize: gradient below minimum without reaching target")

	// ErrLineSearch is carried in Result.Err when no step along steepest
	// descent lowers the error.
	ErrLineSearch = errors.New("optimize: line search made no progress")
)
