// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the matrix
// package. All kernels MUST return these sentinels (optionally wrapped with an
// operation tag) and tests MUST check them via errors.Is. No kernel panics on
// user-triggered error conditions.

package matrix

import (
	"errors"
	"fmt"
)

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "matrix: ..." so the origin is greppable in
// logs. Kernels wrap with matrixErrorf(op, ErrX); callers still match via
// errors.Is.
//
// ERROR PRIORITY (enforced in tests):
// nil -> shape -> dimension mismatch -> NaN/Inf -> structural (Hermitian)
// -> numerical (singular, ill-conditioned, eigen failure).

var (
	// ErrInvalidDimensions indicates that requested matrix dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates that an index (row or column) is outside valid bounds.
	// Public indexers (At/Set) MUST return this, not panic.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands,
	// e.g., Add/Sub different shapes, or Mul where a.Cols != b.Rows.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNaNInf signals a NaN or ±Inf component in a real or imaginary part.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNotHermitian signals |A[i,j] - conj(A[j,i])| > eps for some pair.
	ErrNotHermitian = errors.New("matrix: matrix is not Hermitian within eps")

	// ErrSingular is returned when an exactly zero pivot survives partial pivoting.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrIllConditioned is returned when a linear solve inside a kernel has an
	// estimated 1-norm condition number above the configured limit, or the
	// result is not finite. Concrete failures are reported as *ConditionError.
	ErrIllConditioned = errors.New("matrix: ill-conditioned system")

	// ErrEigenFailed indicates that the Jacobi routine failed to converge
	// under the given tolerance/sweep budget.
	ErrEigenFailed = errors.New("matrix: eigen decomposition failed")
)

// ConditionError carries the condition estimate of a rejected solve.
// It unwraps to ErrIllConditioned.
type ConditionError struct {
	Op    string  // kernel that detected the problem (e.g. "Expm")
	Cond  float64 // estimated 1-norm condition number (+Inf for non-finite output)
	Limit float64 // configured maximum
}

// Error implements error.
func (e *ConditionError) Error() string {
	return fmt.Sprintf("%v (op=%s cond=%.3g limit=%.3g)", ErrIllConditioned, e.Op, e.Cond, e.Limit)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *ConditionError) Unwrap() error { return ErrIllConditioned }
