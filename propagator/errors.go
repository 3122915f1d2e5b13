// SPDX-License-Identifier: MIT

package propagator

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/qoc/matrix"
)

var (
	// ErrNoTimeslots is returned when the timeslot count is < 1.
	ErrNoTimeslots = errors.New("propagator: timeslot count must be >= 1")

	// ErrNegativeTime is returned for a negative or non-finite evolution time.
	ErrNegativeTime = errors.New("propagator: evolution time must be finite and >= 0")

	// ErrDimensionMismatch is returned when drift, controls and initial operator disagree.
	ErrDimensionMismatch = errors.New("propagator: generator dimension mismatch")

	// ErrAmplitudeShape is returned when an amplitude table is not nTS×nCtrls.
	ErrAmplitudeShape = errors.New("propagator: amplitude table shape mismatch")

	// ErrNonFiniteAmplitude is returned when an amplitude is NaN or ±Inf.
	ErrNonFiniteAmplitude = errors.New("propagator: amplitude is NaN or Inf")

	// ErrGradientDisabled is returned by gradient accessors when the engine was
	// built WithoutGradient.
	ErrGradientDisabled = errors.New("propagator: gradient computation disabled")

	// ErrOutOfRange is returned for invalid timeslot or control indices.
	ErrOutOfRange = errors.New("propagator: index out of range")
)

// NumericalError reports a failed exponential for one timeslot. Control is
// the control index whose Fréchet derivative failed, or -1 for the plain
// propagator. Cond carries the condition estimate when the backend reported one.
type NumericalError struct {
	Timeslot int
	Control  int
	Cond     float64
	Err      error
}

// Error implements error.
func (e *NumericalError) Error() string {
	if math.IsNaN(e.Cond) {
		return fmt.Sprintf("propagator: timeslot %d control %d: %v", e.Timeslot, e.Control, e.Err)
	}

	return fmt.Sprintf("propagator: timeslot %d control %d (cond %.3g): %v", e.Timeslot, e.Control, e.Cond, e.Err)
}

// Unwrap exposes the backend error (typically matrix.ErrIllConditioned).
func (e *NumericalError) Unwrap() error { return e.Err }

// newNumericalError extracts the condition estimate from a backend failure.
func newNumericalError(t, j int, err error) *NumericalError {
	ne := &NumericalError{Timeslot: t, Control: j, Cond: math.NaN(), Err: err}
	var ce *matrix.ConditionError
	if errors.As(err, &ce) {
		ne.Cond = ce.Cond
	}

	return ne
}
