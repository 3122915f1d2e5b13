// SPDX-License-Identifier: MIT

// Package linalg declares the linear-algebra capability set the propagator
// engine and fidelity evaluator depend on, and ships two interchangeable
// implementations:
//
//   - Native: the in-repo complex kernels of package matrix (default).
//   - Gonum: gonum.org/v1/gonum/mat through the real 2n×2n embedding
//     [[Re, −Im], [Im, Re]] of each complex operand.
//
// Backends are stateless values; a single instance may be shared by any
// number of goroutines.
package linalg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/qoc/matrix"
)

// Backend is the capability set required for piecewise-constant propagation
// and exact gradients.
type Backend interface {
	// Name returns a short stable identifier ("native", "gonum").
	Name() string

	// Expm returns exp(a).
	Expm(a matrix.Matrix) (*matrix.Dense, error)

	// ExpmFrechet returns exp(a) and the Fréchet derivative L(a, e).
	ExpmFrechet(a, e matrix.Matrix) (*matrix.Dense, *matrix.Dense, error)

	// Mul returns a·b.
	Mul(a, b matrix.Matrix) (*matrix.Dense, error)

	// Trace returns Tr(a).
	Trace(a matrix.Matrix) (complex128, error)
}

// EigenBackend is the optional spectral capability.
type EigenBackend interface {
	Backend

	// EigenHermitian returns ascending eigenvalues and the unitary of eigenvectors.
	EigenHermitian(h matrix.Matrix) ([]float64, *matrix.Dense, error)
}

// Backend names accepted by ByName.
const (
	NameNative = "native"
	NameGonum  = "gonum"
)

// ErrUnknownBackend is returned by ByName for unregistered names.
var ErrUnknownBackend = errors.New("linalg: unknown backend")

// ByName returns a default-configured backend for name (case-insensitive).
// The empty string selects Native.
func ByName(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameNative:
		return NewNative(), nil
	case NameGonum:
		return NewGonum(), nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownBackend)
	}
}

// Spectrum returns the eigenvalues of h using b when it implements
// EigenBackend, otherwise the native Jacobi routine.
func Spectrum(b Backend, h matrix.Matrix) ([]float64, error) {
	if eb, ok := b.(EigenBackend); ok {
		vals, _, err := eb.EigenHermitian(h)

		return vals, err
	}
	vals, _, err := matrix.EigenHermitian(h)

	return vals, err
}
