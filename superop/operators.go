// SPDX-License-Identifier: MIT

package superop

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/katalvlaran/qoc/matrix"
)

// ErrUnknownOperator is returned by Named for unregistered names.
var ErrUnknownOperator = errors.New("superop: unknown operator name")

// must unwraps constructor results for fixed, known-valid literals.
func must(m *matrix.Dense, err error) *matrix.Dense {
	if err != nil {
		panic(err)
	}

	return m
}

// Identity returns I_d.
func Identity(d int) (*matrix.Dense, error) { return matrix.NewIdentity(d) }

// SigmaX returns the Pauli X matrix.
func SigmaX() *matrix.Dense { return must(matrix.FromRows([][]complex128{{0, 1}, {1, 0}})) }

// SigmaY returns the Pauli Y matrix.
func SigmaY() *matrix.Dense { return must(matrix.FromRows([][]complex128{{0, -1i}, {1i, 0}})) }

// SigmaZ returns the Pauli Z matrix.
func SigmaZ() *matrix.Dense { return must(matrix.FromRows([][]complex128{{1, 0}, {0, -1}})) }

// SigmaMinus returns the lowering operator |1⟩⟨0| = [[0,0],[1,0]] in the
// basis where σz = diag(1, −1).
func SigmaMinus() *matrix.Dense { return must(matrix.FromRows([][]complex128{{0, 0}, {1, 0}})) }

// SigmaPlus returns the raising operator, the adjoint of SigmaMinus.
func SigmaPlus() *matrix.Dense { return must(matrix.FromRows([][]complex128{{0, 1}, {0, 0}})) }

// Hadamard returns the single-qubit Hadamard gate.
func Hadamard() *matrix.Dense {
	s := complex(1/math.Sqrt2, 0)

	return must(matrix.FromRows([][]complex128{{s, s}, {s, -s}}))
}

// RotationZ returns exp(−iθσz/2).
func RotationZ(theta float64) *matrix.Dense {
	return must(matrix.NewDiag([]complex128{
		cmplx.Exp(complex(0, -theta/2)),
		cmplx.Exp(complex(0, theta/2)),
	}))
}

// Destroy returns the n-level truncated annihilation operator a with
// a[k−1,k] = √k.
func Destroy(n int) (*matrix.Dense, error) {
	a, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for k := 1; k < n; k++ {
		if err = a.Set(k-1, k, complex(math.Sqrt(float64(k)), 0)); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Create returns the n-level truncated creation operator a†.
func Create(n int) (*matrix.Dense, error) {
	a, err := Destroy(n)
	if err != nil {
		return nil, err
	}

	return matrix.Adjoint(a)
}

// namedOperators lists the single-qubit operators addressable by name.
var namedOperators = map[string]func() *matrix.Dense{
	"sigmax":   SigmaX,
	"sigmay":   SigmaY,
	"sigmaz":   SigmaZ,
	"sigmam":   SigmaMinus,
	"sigmap":   SigmaPlus,
	"hadamard": Hadamard,
	"identity": func() *matrix.Dense { return must(matrix.NewIdentity(2)) },
}

// Named returns a fresh copy of a single-qubit operator by case-insensitive
// name: sigmax, sigmay, sigmaz, sigmam, sigmap, hadamard, identity.
func Named(name string) (*matrix.Dense, error) {
	f, ok := namedOperators[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownOperator)
	}

	return f(), nil
}
