// SPDX-License-Identifier: MIT
package linalg_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/matrix"
	"github.com/stretchr/testify/require"
)

func randomComplex(t *testing.T, n int, seed int64, scale float64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]complex128, n*n)
	for i := range data {
		data[i] = complex(scale*(2*rng.Float64()-1), scale*(2*rng.Float64()-1))
	}
	m, err := matrix.NewDenseFrom(n, n, data)
	require.NoError(t, err)

	return m
}

// TestByName resolves registered names and rejects unknown ones.
func TestByName(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"", "native", "NATIVE", " gonum "} {
		b, err := linalg.ByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, b)
	}
	_, err := linalg.ByName("lapack")
	require.ErrorIs(t, err, linalg.ErrUnknownBackend)
}

// TestBackendsAgree compares Native and Gonum on every capability.
func TestBackendsAgree(t *testing.T) {
	t.Parallel()
	native, gonum := linalg.NewNative(), linalg.NewGonum()
	a := randomComplex(t, 4, 1, 0.8)
	e := randomComplex(t, 4, 2, 1.0)

	en, err := native.Expm(a)
	require.NoError(t, err)
	eg, err := gonum.Expm(a)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(en, eg, 1e-10, 1e-12))

	xn, ln, err := native.ExpmFrechet(a, e)
	require.NoError(t, err)
	xg, lg, err := gonum.ExpmFrechet(a, e)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(xn, xg, 1e-10, 1e-12))
	require.True(t, matrix.AllClose(ln, lg, 1e-10, 1e-12))

	mn, err := native.Mul(a, e)
	require.NoError(t, err)
	mg, err := gonum.Mul(a, e)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(mn, mg, 1e-13, 1e-13))

	tn, err := native.Trace(a)
	require.NoError(t, err)
	tg, err := gonum.Trace(a)
	require.NoError(t, err)
	require.Equal(t, tn, tg)
}

// TestGonumValidation rejects shapes gonum would panic on.
func TestGonumValidation(t *testing.T) {
	t.Parallel()
	g := linalg.NewGonum()
	rect, err := matrix.NewDense(2, 3)
	require.NoError(t, err)
	_, err = g.Expm(rect)
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	_, err = g.Mul(rect, rect)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestSpectrum uses the eigen capability when present and falls back otherwise.
func TestSpectrum(t *testing.T) {
	t.Parallel()
	z, err := matrix.FromRows([][]complex128{{1, 0}, {0, -1}})
	require.NoError(t, err)
	for _, b := range []linalg.Backend{linalg.NewNative(), linalg.NewGonum()} {
		vals, err := linalg.Spectrum(b, z)
		require.NoError(t, err, b.Name())
		require.InDeltaSlice(t, []float64{-1, 1}, vals, 1e-12)
	}
}

// TestNativeOptionsReachKernels checks the numeric policy is forwarded.
func TestNativeOptionsReachKernels(t *testing.T) {
	t.Parallel()
	a, err := matrix.NewDiag([]complex128{3, -3})
	require.NoError(t, err)
	_, err = linalg.NewNative(matrix.WithMaxCondition(1.5)).Expm(a)
	require.ErrorIs(t, err, matrix.ErrIllConditioned)
}
