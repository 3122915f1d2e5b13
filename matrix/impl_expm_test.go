// SPDX-License-Identifier: MIT
package matrix_test

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/stretchr/testify/require"
)

// TestExpmZeroIsIdentity covers the ‖A‖=0 shortcut.
func TestExpmZeroIsIdentity(t *testing.T) {
	t.Parallel()
	z, err := matrix.NewZeros(3, 3)
	require.NoError(t, err)
	e, err := matrix.Expm(z)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(e, MustIdentity(t, 3), 0, 0))
}

// TestExpmDiagonal compares against scalar exponentials.
func TestExpmDiagonal(t *testing.T) {
	t.Parallel()
	d := []complex128{1, -2, 0.5i, 3 - 1i}
	a, err := matrix.NewDiag(d)
	require.NoError(t, err)
	e, err := matrix.Expm(a)
	require.NoError(t, err)
	for i, v := range d {
		got, _ := e.At(i, i)
		want := cmplx.Exp(v)
		require.InDelta(t, real(want), real(got), 1e-12*cmplx.Abs(want)+1e-15)
		require.InDelta(t, imag(want), imag(got), 1e-12*cmplx.Abs(want)+1e-15)
	}
}

// TestExpmPauliRotation checks exp(-iθσx) = cos θ·I − i sin θ·σx across all Padé degrees.
func TestExpmPauliRotation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		theta  float64
		degree int
	}{
		{0.001, 3},
		{0.2, 5},
		{0.9, 7},
		{2.0, 9},
		{4.0, 13},
		{20.0, 13},
	}
	for _, tc := range cases {
		a, err := matrix.Scale(pauliX(t), complex(0, -tc.theta))
		require.NoError(t, err)
		e, info, err := matrix.ExpmWithInfo(a)
		require.NoError(t, err)
		require.Equal(t, tc.degree, info.Degree, "theta=%v", tc.theta)

		c, s := math.Cos(tc.theta), math.Sin(tc.theta)
		want := MustRows(t, [][]complex128{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		})
		require.True(t, matrix.AllClose(e, want, 0, 1e-12), "theta=%v\n%v", tc.theta, e)
	}
}

// TestExpmUnitaryMatchesEigen compares exp(-iH) with Q·diag(e^{-iλ})·Q†.
func TestExpmUnitaryMatchesEigen(t *testing.T) {
	t.Parallel()
	h := randomHermitian(t, 5, 3)
	a, _ := matrix.Scale(h, -1i)
	u, err := matrix.Expm(a)
	require.NoError(t, err)

	vals, q, err := matrix.EigenHermitian(h)
	require.NoError(t, err)
	phases := make([]complex128, len(vals))
	for i, v := range vals {
		phases[i] = cmplx.Exp(complex(0, -v))
	}
	d, _ := matrix.NewDiag(phases)
	qa, _ := matrix.Adjoint(q)
	want, err := matrix.MulChain(q, d, qa)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(u, want, 0, 1e-9))

	ua, _ := matrix.Adjoint(u)
	uu, _ := matrix.Mul(ua, u)
	require.True(t, matrix.AllClose(uu, MustIdentity(t, 5), 0, 1e-12))
}

// TestExpmFrechetFiniteDifference checks L(A,E) against central differences.
func TestExpmFrechetFiniteDifference(t *testing.T) {
	t.Parallel()
	a0 := randomComplex(t, 4, 5)
	a, _ := matrix.Scale(a0, 0.7)
	e := randomComplex(t, 4, 6)

	expA, l, err := matrix.ExpmFrechet(a, e)
	require.NoError(t, err)
	plain, err := matrix.Expm(a)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(expA, plain, 1e-10, 1e-10))

	const h = 1e-6
	ap, _ := matrix.AddScaled(a, e, h)
	am, _ := matrix.AddScaled(a, e, -h)
	ep, _ := matrix.Expm(ap)
	em, _ := matrix.Expm(am)
	fd, _ := matrix.Sub(ep, em)
	fd, _ = matrix.Scale(fd, complex(1/(2*h), 0))
	require.True(t, matrix.AllClose(l, fd, 1e-6, 1e-7))
}

// TestExpmFrechetCommuting checks L(A, A) = A·exp(A).
func TestExpmFrechetCommuting(t *testing.T) {
	t.Parallel()
	a := randomHermitian(t, 3, 9)
	expA, l, err := matrix.ExpmFrechet(a, a)
	require.NoError(t, err)
	want, _ := matrix.Mul(a, expA)
	require.True(t, matrix.AllClose(l, want, 1e-10, 1e-10))

	_, _, err = matrix.ExpmFrechet(a, MustIdentity(t, 2))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestExpmConditionLimit forces the Padé denominator check to trip.
func TestExpmConditionLimit(t *testing.T) {
	t.Parallel()
	a, _ := matrix.NewDiag([]complex128{3, -3})
	_, err := matrix.Expm(a, matrix.WithMaxCondition(1.5))
	require.ErrorIs(t, err, matrix.ErrIllConditioned)

	var ce *matrix.ConditionError
	require.True(t, errors.As(err, &ce))
	require.Greater(t, ce.Cond, 1.5)

	_, err = matrix.Expm(a)
	require.NoError(t, err)
}

// TestExpmValidation covers shape and nil guards.
func TestExpmValidation(t *testing.T) {
	t.Parallel()
	_, err := matrix.Expm(MustRows(t, [][]complex128{{1, 2}}))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	_, err = matrix.Expm(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// TestExpmRejectsNonFinite: NaN inputs never reach the Padé solve, whichever
// operand carries them.
func TestExpmRejectsNonFinite(t *testing.T) {
	t.Parallel()
	bad := poisoned{pauliX(t)}

	_, err := matrix.Expm(bad)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	_, _, err = matrix.ExpmFrechet(pauliZ(t), bad)
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	_, _, err = matrix.ExpmFrechet(bad, pauliZ(t))
	require.ErrorIs(t, err, matrix.ErrNaNInf)
	require.ErrorIs(t, matrix.ValidateFinite(bad), matrix.ErrNaNInf)
}
