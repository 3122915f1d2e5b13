// SPDX-License-Identifier: MIT
package matrix_test

import (
	"testing"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/stretchr/testify/require"
)

// TestAddSubScaled covers element-wise kernels, including the de-optimized path.
func TestAddSubScaled(t *testing.T) {
	t.Parallel()
	a := MustRows(t, [][]complex128{{1, 2i}, {3, 4}})
	b := MustRows(t, [][]complex128{{1i, 1}, {0, -4}})

	sum, err := matrix.Add(a, hide{b})
	require.NoError(t, err)
	require.Equal(t, []complex128{1 + 1i, 1 + 2i, 3, 0}, sum.RawCopy())

	diff, err := matrix.Sub(hide{a}, b)
	require.NoError(t, err)
	require.Equal(t, []complex128{1 - 1i, -1 + 2i, 3, 8}, diff.RawCopy())

	axpy, err := matrix.AddScaled(a, b, 2i)
	require.NoError(t, err)
	require.Equal(t, []complex128{-1, 4i, 3, 4 - 8i}, axpy.RawCopy())

	_, err = matrix.Add(a, MustIdentity(t, 3))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.Add(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestMulPauliAlgebra checks σx·σy = iσz and the commutator [σx,σy] = 2iσz.
func TestMulPauliAlgebra(t *testing.T) {
	t.Parallel()
	x, y, z := pauliX(t), pauliY(t), pauliZ(t)

	xy, err := matrix.Mul(x, y)
	require.NoError(t, err)
	iz, err := matrix.Scale(z, 1i)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(xy, iz, 0, 1e-15))

	yx, err := matrix.Mul(hide{y}, hide{x})
	require.NoError(t, err)
	comm, err := matrix.Sub(xy, yx)
	require.NoError(t, err)
	twoIZ, _ := matrix.Scale(z, 2i)
	require.True(t, matrix.AllClose(comm, twoIZ, 0, 1e-15))

	_, err = matrix.Mul(x, MustRows(t, [][]complex128{{1, 2, 3}}))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestMulChain multiplies left to right.
func TestMulChain(t *testing.T) {
	t.Parallel()
	x, y, z := pauliX(t), pauliY(t), pauliZ(t)
	p, err := matrix.MulChain(x, y, z) // σxσyσz = i·I
	require.NoError(t, err)
	iI, _ := matrix.Scale(MustIdentity(t, 2), 1i)
	require.True(t, matrix.AllClose(p, iI, 0, 1e-15))

	_, err = matrix.MulChain()
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestTransposeConjAdjoint checks shapes and conjugation rules.
func TestTransposeConjAdjoint(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]complex128{{1, 2i, 3}, {4 - 1i, 5, 6}})

	tr, err := matrix.Transpose(m)
	require.NoError(t, err)
	require.Equal(t, 3, tr.Rows())
	v, _ := tr.At(1, 0)
	require.Equal(t, 2i, v)

	cj, err := matrix.Conj(m)
	require.NoError(t, err)
	v, _ = cj.At(1, 0)
	require.Equal(t, 4+1i, v)

	adj, err := matrix.Adjoint(m)
	require.NoError(t, err)
	v, _ = adj.At(0, 1)
	require.Equal(t, 4+1i, v)
	v, _ = adj.At(1, 0)
	require.Equal(t, -2i, v)

	// σy is Hermitian: σy† = σy.
	ya, err := matrix.Adjoint(pauliY(t))
	require.NoError(t, err)
	require.True(t, matrix.AllClose(ya, pauliY(t), 0, 0))
}

// TestKron checks block layout of σx⊗I₂ and the mixed-product property.
func TestKron(t *testing.T) {
	t.Parallel()
	k, err := matrix.Kron(pauliX(t), MustIdentity(t, 2))
	require.NoError(t, err)
	require.Equal(t, 4, k.Rows())
	want := MustRows(t, [][]complex128{
		{0, 0, 1, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	})
	require.True(t, matrix.AllClose(k, want, 0, 0))

	// (A⊗B)(C⊗D) = (AC)⊗(BD)
	a, b := randomComplex(t, 2, 1), randomComplex(t, 2, 2)
	c, d := randomComplex(t, 2, 3), randomComplex(t, 2, 4)
	ab, _ := matrix.Kron(a, b)
	cd, _ := matrix.Kron(c, d)
	lhs, err := matrix.Mul(ab, cd)
	require.NoError(t, err)
	ac, _ := matrix.Mul(a, c)
	bd, _ := matrix.Mul(b, d)
	rhs, _ := matrix.Kron(ac, bd)
	require.True(t, matrix.AllClose(lhs, rhs, 1e-12, 1e-12))
}

// TestTraceAndTraceProduct compares the fused trace with Trace(Mul).
func TestTraceAndTraceProduct(t *testing.T) {
	t.Parallel()
	a, b := randomComplex(t, 4, 10), randomComplex(t, 4, 11)
	ab, _ := matrix.Mul(a, b)
	want, err := matrix.Trace(ab)
	require.NoError(t, err)
	got, err := matrix.TraceProduct(a, hide{b})
	require.NoError(t, err)
	require.InDelta(t, real(want), real(got), 1e-12)
	require.InDelta(t, imag(want), imag(got), 1e-12)

	_, err = matrix.Trace(MustRows(t, [][]complex128{{1, 2}}))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}

// TestNorms checks the three norms on a small fixture.
func TestNorms(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]complex128{{3, -4i}, {0, 1}})

	f, err := matrix.NormFrobenius(m)
	require.NoError(t, err)
	require.InDelta(t, 5.0990195135927845, f, 1e-15) // sqrt(26)

	one, err := matrix.NormOne(m)
	require.NoError(t, err)
	require.Equal(t, 5.0, one)

	inf, err := matrix.NormInf(m)
	require.NoError(t, err)
	require.Equal(t, 7.0, inf)

	mx, err := matrix.MaxAbs(m)
	require.NoError(t, err)
	require.Equal(t, 4.0, mx)
}
