// SPDX-License-Identifier: MIT

package superop

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when an operator is not d×d for the
	// system dimension fixed by the Hamiltonian (or the first operator).
	ErrDimensionMismatch = errors.New("superop: operator dimension mismatch")

	// ErrNotHermitian is returned when the Hamiltonian is not Hermitian within eps.
	ErrNotHermitian = errors.New("superop: Hamiltonian is not Hermitian")

	// ErrEmptyOperator is returned for a nil operator argument.
	ErrEmptyOperator = errors.New("superop: nil operator")
)

// Operation tags for error wrapping.
const (
	opLiouvillian = "Liouvillian"
	opCommutator  = "Commutator"
	opDissipator  = "Dissipator"
	opToSuper     = "ToSuper"
	opSpre        = "Spre"
	opSpost       = "Spost"
	opVec         = "Vec"
	opUnvec       = "Unvec"
)

func superopErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
