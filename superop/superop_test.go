// SPDX-License-Identifier: MIT
package superop_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/superop"
	"github.com/stretchr/testify/require"
)

// randomDensity returns a deterministic d×d matrix (not necessarily a state;
// linear maps are checked on arbitrary inputs).
func randomDensity(t *testing.T, d int, seed int64) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	data := make([]complex128, d*d)
	for i := range data {
		data[i] = complex(rng.Float64()-0.5, rng.Float64()-0.5)
	}
	m, err := matrix.NewDenseFrom(d, d, data)
	require.NoError(t, err)

	return m
}

// applySuper returns unvec(S·vec(ρ)).
func applySuper(t *testing.T, s, rho *matrix.Dense) *matrix.Dense {
	t.Helper()
	v, err := superop.Vec(rho)
	require.NoError(t, err)
	sv, err := matrix.Mul(s, v)
	require.NoError(t, err)
	out, err := superop.Unvec(sv, rho.Rows())
	require.NoError(t, err)

	return out
}

func mustMul(t *testing.T, ms ...matrix.Matrix) *matrix.Dense {
	t.Helper()
	m, err := matrix.MulChain(ms...)
	require.NoError(t, err)

	return m
}

func mustAdj(t *testing.T, m matrix.Matrix) *matrix.Dense {
	t.Helper()
	a, err := matrix.Adjoint(m)
	require.NoError(t, err)

	return a
}

// TestSpreSpost checks vec(AρB) = Spre(A)·Spost(B)·vec(ρ).
func TestSpreSpost(t *testing.T) {
	t.Parallel()
	a, b, rho := randomDensity(t, 3, 1), randomDensity(t, 3, 2), randomDensity(t, 3, 3)
	pre, err := superop.Spre(a)
	require.NoError(t, err)
	post, err := superop.Spost(b)
	require.NoError(t, err)

	got := applySuper(t, mustMul(t, pre, post), rho)
	want := mustMul(t, a, rho, b)
	require.True(t, matrix.AllClose(got, want, 1e-12, 1e-12))
}

// TestCommutator checks unvec(C·vec ρ) = −i[A, ρ].
func TestCommutator(t *testing.T) {
	t.Parallel()
	h, err := matrix.Scale(superop.SigmaZ(), 0.5)
	require.NoError(t, err)
	rho := randomDensity(t, 2, 4)
	c, err := superop.Commutator(h)
	require.NoError(t, err)

	hr := mustMul(t, h, rho)
	rh := mustMul(t, rho, h)
	comm, _ := matrix.Sub(hr, rh)
	want, _ := matrix.Scale(comm, -1i)
	require.True(t, matrix.AllClose(applySuper(t, c, rho), want, 1e-12, 1e-12))
}

// TestDissipator checks the Lindblad form LρL† − ½{L†L, ρ}.
func TestDissipator(t *testing.T) {
	t.Parallel()
	l := randomDensity(t, 3, 5)
	rho := randomDensity(t, 3, 6)
	dis, err := superop.Dissipator(l)
	require.NoError(t, err)

	ld := mustAdj(t, l)
	ldl := mustMul(t, ld, l)
	jump := mustMul(t, l, rho, ld)
	anti, _ := matrix.Add(mustMul(t, ldl, rho), mustMul(t, rho, ldl))
	want, _ := matrix.AddScaled(jump, anti, -0.5)
	require.True(t, matrix.AllClose(applySuper(t, dis, rho), want, 1e-12, 1e-12))
}

// TestLiouvillianTracePreserving checks Tr(L[ρ]) = 0 for arbitrary ρ.
func TestLiouvillianTracePreserving(t *testing.T) {
	t.Parallel()
	h := superop.SigmaX()
	c, _ := matrix.Scale(superop.SigmaMinus(), complex(math.Sqrt(0.3), 0))
	l, err := superop.Liouvillian(h, []matrix.Matrix{c})
	require.NoError(t, err)
	require.Equal(t, 4, l.Rows())

	out := applySuper(t, l, randomDensity(t, 2, 7))
	tr, err := matrix.Trace(out)
	require.NoError(t, err)
	require.InDelta(t, 0, real(tr), 1e-12)
	require.InDelta(t, 0, imag(tr), 1e-12)
}

// TestAmplitudeDampingDecay checks ρ₀₀(t) = e^{−γt} for the excited state.
func TestAmplitudeDampingDecay(t *testing.T) {
	t.Parallel()
	const gamma, tm = 0.1, 2.0
	zero, _ := matrix.NewZeros(2, 2)
	c, _ := matrix.Scale(superop.SigmaMinus(), complex(math.Sqrt(gamma), 0))
	l, err := superop.Liouvillian(zero, []matrix.Matrix{c})
	require.NoError(t, err)

	lt, _ := matrix.Scale(l, tm)
	prop, err := matrix.Expm(lt)
	require.NoError(t, err)

	excited, _ := matrix.FromRows([][]complex128{{1, 0}, {0, 0}})
	rho := applySuper(t, prop, excited)
	p0, _ := rho.At(0, 0)
	p1, _ := rho.At(1, 1)
	require.InDelta(t, math.Exp(-gamma*tm), real(p0), 1e-12)
	require.InDelta(t, 1-math.Exp(-gamma*tm), real(p1), 1e-12)
}

// TestToSuper checks vec(UρU†) = ToSuper(U)·vec(ρ).
func TestToSuper(t *testing.T) {
	t.Parallel()
	u := superop.Hadamard()
	rho := randomDensity(t, 2, 8)
	s, err := superop.ToSuper(u)
	require.NoError(t, err)
	want := mustMul(t, u, rho, mustAdj(t, u))
	require.True(t, matrix.AllClose(applySuper(t, s, rho), want, 1e-12, 1e-12))
}

// TestLiouvillianErrors covers the construction-time failures.
func TestLiouvillianErrors(t *testing.T) {
	t.Parallel()
	id3, _ := matrix.NewIdentity(3)

	_, err := superop.Liouvillian(nil, nil)
	require.ErrorIs(t, err, superop.ErrEmptyOperator)

	_, err = superop.Liouvillian(superop.SigmaZ(), []matrix.Matrix{id3})
	require.ErrorIs(t, err, superop.ErrDimensionMismatch)

	_, err = superop.Liouvillian(superop.SigmaMinus(), nil)
	require.ErrorIs(t, err, superop.ErrNotHermitian)

	_, err = superop.Liouvillian(superop.SigmaMinus(), nil, superop.WithoutHermitianCheck())
	require.NoError(t, err)

	_, err = superop.ControlGenerators(2, []matrix.Matrix{superop.SigmaX(), id3})
	require.ErrorIs(t, err, superop.ErrDimensionMismatch)

	rect, _ := matrix.NewDense(2, 3)
	_, err = superop.Commutator(rect)
	require.ErrorIs(t, err, superop.ErrDimensionMismatch)
}

// TestVecUnvec checks the row-stacking layout and the inverse.
func TestVecUnvec(t *testing.T) {
	t.Parallel()
	rho, _ := matrix.FromRows([][]complex128{{1, 2}, {3, 4}})
	v, err := superop.Vec(rho)
	require.NoError(t, err)
	require.Equal(t, []complex128{1, 2, 3, 4}, v.RawCopy())

	back, err := superop.Unvec(v, 2)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(back, rho, 0, 0))

	_, err = superop.Unvec(v, 3)
	require.ErrorIs(t, err, superop.ErrDimensionMismatch)
}

// TestNamedOperators resolves names case-insensitively.
func TestNamedOperators(t *testing.T) {
	t.Parallel()
	x, err := superop.Named(" SigmaX ")
	require.NoError(t, err)
	require.True(t, matrix.AllClose(x, superop.SigmaX(), 0, 0))

	_, err = superop.Named("sigmaq")
	require.ErrorIs(t, err, superop.ErrUnknownOperator)

	a, err := superop.Destroy(3)
	require.NoError(t, err)
	v, _ := a.At(1, 2)
	require.InDelta(t, math.Sqrt2, real(v), 1e-15)
	ad, err := superop.Create(3)
	require.NoError(t, err)
	v, _ = ad.At(2, 1)
	require.InDelta(t, math.Sqrt2, real(v), 1e-15)
}
