// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   • Provide small, deterministic fixtures (Pauli matrices, random Hermitian).
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/stretchr/testify/require"
)

// hide wraps any Matrix to hide its concrete type and force the toDense
// materialization path in kernels.
type hide struct{ matrix.Matrix }

// poisoned reports NaN at (0,0); Dense.Set cannot produce such a matrix.
type poisoned struct{ matrix.Matrix }

func (p poisoned) At(i, j int) (complex128, error) {
	if i == 0 && j == 0 {
		return cmplx.NaN(), nil
	}

	return p.Matrix.At(i, j)
}

// MustRows builds a Dense from complex rows or fails the test.
func MustRows(t *testing.T, rows [][]complex128) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

// MustIdentity returns I_n or fails the test.
func MustIdentity(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewIdentity(n)
	require.NoError(t, err)

	return m
}

// pauliX returns σx.
func pauliX(t *testing.T) *matrix.Dense {
	return MustRows(t, [][]complex128{{0, 1}, {1, 0}})
}

// pauliY returns σy.
func pauliY(t *testing.T) *matrix.Dense {
	return MustRows(t, [][]complex128{{0, -1i}, {1i, 0}})
}

// pauliZ returns σz.
func pauliZ(t *testing.T) *matrix.Dense {
	return MustRows(t, [][]complex128{{1, 0}, {0, -1}})
}

// randomHermitian returns a deterministic n×n Hermitian matrix with entries in [-1,1].
func randomHermitian(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]complex128, n)
	for i := range rows {
		rows[i] = make([]complex128, n)
	}
	for i := 0; i < n; i++ {
		rows[i][i] = complex(2*rng.Float64()-1, 0)
		for j := i + 1; j < n; j++ {
			v := complex(2*rng.Float64()-1, 2*rng.Float64()-1)
			rows[i][j] = v
			rows[j][i] = complex(real(v), -imag(v))
		}
	}

	return MustRows(t, rows)
}

// randomComplex returns a deterministic n×n matrix with entries in [-1,1]+i[-1,1].
func randomComplex(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	rows := make([][]complex128, n)
	for i := range rows {
		rows[i] = make([]complex128, n)
		for j := range rows[i] {
			rows[i][j] = complex(2*rng.Float64()-1, 2*rng.Float64()-1)
		}
	}

	return MustRows(t, rows)
}
