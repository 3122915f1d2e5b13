// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//  - Provide a single, canonical source of truth for common validation checks.
//  - Keep kernels minimal by delegating shape/nil/Hermitian checks here.
//  - Return sentinel errors tagged with the validator name so call sites can wrap uniformly.
//
// Note:
//  - Each composite validator follows a fixed sequence (NotNil → Shape → Values).

package matrix

import (
	"fmt"
	"math/cmplx"
)

// validatorErrorf wraps an underlying error with the given validator tag.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateNotNil ensures the matrix reference is non-nil.
// A typed nil *Dense is treated as nil as well.
func ValidateNotNil(m Matrix) error {
	if m == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}
	if d, ok := m.(*Dense); ok && d == nil {
		return validatorErrorf("ValidateNotNil", ErrNilMatrix)
	}

	return nil
}

// ValidateSameShape ensures a and b are non-nil and have equal dimensions.
func ValidateSameShape(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return validatorErrorf("ValidateSameShape", ErrDimensionMismatch)
	}

	return nil
}

// ValidateSquare checks that m is non-nil and square.
func ValidateSquare(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	if m.Rows() != m.Cols() {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}

	return nil
}

// ValidateMulCompatible checks a.Cols == b.Rows (and non-nil operands).
func ValidateMulCompatible(a, b Matrix) error {
	if err := ValidateNotNil(a); err != nil {
		return err
	}
	if err := ValidateNotNil(b); err != nil {
		return err
	}
	if a.Cols() != b.Rows() {
		return validatorErrorf("ValidateMulCompatible", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite rejects any NaN/Inf component.
// Complexity: O(r*c).
func ValidateFinite(m Matrix) error {
	if err := ValidateNotNil(m); err != nil {
		return err
	}
	d, err := toDense(m)
	if err != nil {
		return err
	}
	for k, v := range d.data {
		if !isFinite(v) {
			return validatorErrorf(fmt.Sprintf("ValidateFinite(%d,%d)", k/d.c, k%d.c), ErrNaNInf)
		}
	}

	return nil
}

// ValidateHermitian checks that m is square and |m[i,j] - conj(m[j,i])| ≤ eps
// for every pair, diagonal included (imaginary diagonal parts must be ≤ eps).
// Complexity: O(n²) over the upper triangle.
func ValidateHermitian(m Matrix, eps float64) error {
	if err := ValidateSquare(m); err != nil {
		return err
	}
	d, err := toDense(m)
	if err != nil {
		return err
	}
	n := d.r
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if cmplx.Abs(d.data[i*n+j]-cmplx.Conj(d.data[j*n+i])) > eps {
				return validatorErrorf(fmt.Sprintf("ValidateHermitian(%d,%d)", i, j), ErrNotHermitian)
			}
		}
	}

	return nil
}
