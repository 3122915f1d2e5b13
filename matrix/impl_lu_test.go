// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/stretchr/testify/require"
)

// TestLUReconstruction verifies P·A = L·U for a random complex matrix.
func TestLUReconstruction(t *testing.T) {
	t.Parallel()
	a := randomComplex(t, 5, 7)
	f, err := matrix.LU(a)
	require.NoError(t, err)
	require.Equal(t, 5, f.Size())

	lu, err := matrix.Mul(f.L(), f.U())
	require.NoError(t, err)

	piv := f.Pivots()
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			want, _ := a.At(piv[i], j)
			got, _ := lu.At(i, j)
			require.InDelta(t, real(want), real(got), 1e-12)
			require.InDelta(t, imag(want), imag(got), 1e-12)
		}
	}
}

// TestSolveAndInverse checks A·X = B and A·A⁻¹ = I.
func TestSolveAndInverse(t *testing.T) {
	t.Parallel()
	a := randomComplex(t, 4, 21)
	b := MustRows(t, [][]complex128{{1, 1i}, {2, 0}, {0, -1}, {3i, 4}})

	x, err := matrix.Solve(a, b)
	require.NoError(t, err)
	ax, _ := matrix.Mul(a, x)
	require.True(t, matrix.AllClose(ax, b, 1e-10, 1e-10))

	inv, err := matrix.Inverse(hide{a})
	require.NoError(t, err)
	prod, _ := matrix.Mul(a, inv)
	require.True(t, matrix.AllClose(prod, MustIdentity(t, 4), 1e-10, 1e-10))

	_, err = matrix.Solve(a, MustIdentity(t, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestLUSingular ensures an exactly singular matrix is rejected.
func TestLUSingular(t *testing.T) {
	t.Parallel()
	_, err := matrix.Inverse(MustRows(t, [][]complex128{{1, 2}, {2, 4}}))
	require.ErrorIs(t, err, matrix.ErrSingular)

	_, err = matrix.LU(MustRows(t, [][]complex128{{1, 2, 3}}))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}
