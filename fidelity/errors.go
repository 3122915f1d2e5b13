// SPDX-License-Identifier: MIT

package fidelity

import "errors"

var (
	// ErrUnknownMeasure is returned by MeasureByName for an unrecognized name.
	ErrUnknownMeasure = errors.New("fidelity: unknown measure")

	// ErrDimensionMismatch is returned when target and evolution shapes differ.
	ErrDimensionMismatch = errors.New("fidelity: target/evolution shape mismatch")

	// ErrZeroTarget is returned by the overlap measure for an all-zero target.
	ErrZeroTarget = errors.New("fidelity: target has zero norm")

	// ErrNonFinite is returned when the error or a gradient entry is NaN or Inf.
	ErrNonFinite = errors.New("fidelity: non-finite error or gradient")
)
