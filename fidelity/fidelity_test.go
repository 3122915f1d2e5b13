// SPDX-License-Identifier: MIT
package fidelity_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/qoc/fidelity"
	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/propagator"
	"github.com/katalvlaran/qoc/superop"
	"github.com/stretchr/testify/require"
)

func mustSuper(t *testing.T, u *matrix.Dense) *matrix.Dense {
	t.Helper()
	s, err := superop.ToSuper(u)
	require.NoError(t, err)

	return s
}

func identity(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	id, err := matrix.NewIdentity(n)
	require.NoError(t, err)

	return id
}

// TestClosedFormErrors compares both measures with hand-computed values.
func TestClosedFormErrors(t *testing.T) {
	t.Parallel()
	id := identity(t, 4)
	had := mustSuper(t, superop.Hadamard())

	for _, m := range []fidelity.Measure{fidelity.TraceDiff{}, fidelity.Overlap{}} {
		m := m
		t.Run(m.Name(), func(t *testing.T) {
			t.Parallel()
			e, err := m.Error(id, id)
			require.NoError(t, err)
			require.InDelta(t, 0, e, 1e-15)

			e, err = m.Error(had, id)
			require.NoError(t, err)
			require.InDelta(t, 1, e, 1e-12)

			for _, theta := range []float64{0.1, 0.5, 1.3, math.Pi / 2, math.Pi} {
				rz := mustSuper(t, superop.RotationZ(theta))
				e, err = m.Error(rz, id)
				require.NoError(t, err)
				s := math.Sin(theta / 2)
				require.InDelta(t, s*s, e, 1e-12, "theta=%v", theta)
			}
		})
	}
}

// TestOverlapIgnoresGlobalPhase checks err(T, e^{iφ}T) = 0 for the overlap only.
func TestOverlapIgnoresGlobalPhase(t *testing.T) {
	t.Parallel()
	had := mustSuper(t, superop.Hadamard())
	phased, err := matrix.Scale(had, complex(math.Cos(0.7), math.Sin(0.7)))
	require.NoError(t, err)

	e, err := fidelity.Overlap{}.Error(had, phased)
	require.NoError(t, err)
	require.InDelta(t, 0, e, 1e-12)

	e, err = fidelity.TraceDiff{}.Error(had, phased)
	require.NoError(t, err)
	require.Greater(t, e, 0.1)
}

// TestMeasureErrors covers shape and zero-target guards.
func TestMeasureErrors(t *testing.T) {
	t.Parallel()
	_, err := fidelity.TraceDiff{}.Error(identity(t, 2), identity(t, 4))
	require.ErrorIs(t, err, fidelity.ErrDimensionMismatch)
	_, err = fidelity.Overlap{}.Seed(identity(t, 2), identity(t, 4))
	require.ErrorIs(t, err, fidelity.ErrDimensionMismatch)

	zero, _ := matrix.NewZeros(4, 4)
	_, err = fidelity.Overlap{}.Error(zero, identity(t, 4))
	require.ErrorIs(t, err, fidelity.ErrZeroTarget)
}

func TestMeasureByName(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]string{
		"":          fidelity.NameTraceDiff,
		"tracediff": fidelity.NameTraceDiff,
		"Overlap":   fidelity.NameOverlap,
		"psu":       fidelity.NameOverlap,
	} {
		m, err := fidelity.MeasureByName(name)
		require.NoError(t, err)
		require.Equal(t, want, m.Name())
	}
	_, err := fidelity.MeasureByName("unit")
	require.ErrorIs(t, err, fidelity.ErrUnknownMeasure)
}

// dampedEvaluator builds the amplitude-damped qubit with a Hadamard target.
func dampedEvaluator(t *testing.T, nTS int, backend linalg.Backend, m fidelity.Measure) *fidelity.Evaluator {
	t.Helper()
	hz, _ := matrix.Scale(superop.SigmaZ(), 0.5)
	hx, _ := matrix.Scale(superop.SigmaX(), 0.05)
	h, _ := matrix.Add(hz, hx)
	c, _ := matrix.Scale(superop.SigmaMinus(), complex(math.Sqrt(0.1), 0))
	drift, err := superop.Liouvillian(h, []matrix.Matrix{c})
	require.NoError(t, err)
	gens, err := superop.ControlGenerators(2, []matrix.Matrix{superop.SigmaZ(), superop.SigmaX()})
	require.NoError(t, err)
	ctrls := []matrix.Matrix{gens[0], gens[1]}

	e, err := propagator.New(backend, drift, ctrls, identity(t, 4), nTS, 2)
	require.NoError(t, err)
	ev, err := fidelity.New(e, mustSuper(t, superop.Hadamard()), m)
	require.NoError(t, err)

	return ev
}

func randomAmps(nTS, nCtrls int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([][]float64, nTS)
	for t := range out {
		out[t] = make([]float64, nCtrls)
		for j := range out[t] {
			out[t][j] = 2*rng.Float64() - 1
		}
	}

	return out
}

// TestGradientMatchesFiniteDifference is the main check on the Fréchet chain.
func TestGradientMatchesFiniteDifference(t *testing.T) {
	t.Parallel()
	const h = 1e-6
	cases := []struct {
		name    string
		measure fidelity.Measure
		backend linalg.Backend
		seed    int64
	}{
		{"tracediff/native", fidelity.TraceDiff{}, linalg.NewNative(), 1},
		{"tracediff/gonum", fidelity.TraceDiff{}, linalg.NewGonum(), 2},
		{"overlap/native", fidelity.Overlap{}, linalg.NewNative(), 3},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev := dampedEvaluator(t, 5, tc.backend, tc.measure)
			amps := randomAmps(5, 2, tc.seed)

			_, grad, err := ev.Evaluate(amps)
			require.NoError(t, err)
			require.Len(t, grad, 5)

			for ts := range amps {
				for j := range amps[ts] {
					orig := amps[ts][j]
					amps[ts][j] = orig + h
					ep, err := ev.ErrorAt(amps)
					require.NoError(t, err)
					amps[ts][j] = orig - h
					em, err := ev.ErrorAt(amps)
					require.NoError(t, err)
					amps[ts][j] = orig

					fd := (ep - em) / (2 * h)
					require.InDelta(t, fd, grad[ts][j], 1e-6, "t=%d j=%d", ts, j)
				}
			}
		})
	}
}

// TestEvaluateIsDeterministic repeats the same evaluation after moving away.
func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()
	ev := dampedEvaluator(t, 4, nil, nil)
	amps := randomAmps(4, 2, 9)

	e1, g1, err := ev.Evaluate(amps)
	require.NoError(t, err)
	_, _, err = ev.Evaluate(randomAmps(4, 2, 10))
	require.NoError(t, err)
	e2, g2, err := ev.Evaluate(amps)
	require.NoError(t, err)

	require.Equal(t, e1, e2)
	require.Equal(t, g1, g2)
	require.Equal(t, fidelity.NameTraceDiff, ev.Measure().Name())

	st := ev.Stats()
	require.Equal(t, 3, st.Evaluations)
	require.Equal(t, 3, st.Gradients)
}

// TestZeroErrorAtTarget uses the evolution itself as the target.
func TestZeroErrorAtTarget(t *testing.T) {
	t.Parallel()
	ev := dampedEvaluator(t, 3, nil, nil)
	amps := randomAmps(3, 2, 4)
	_, _, err := ev.Evaluate(amps)
	require.NoError(t, err)
	x, err := ev.FinalEvolution()
	require.NoError(t, err)

	self, err := fidelity.New(ev.Engine(), x, fidelity.TraceDiff{})
	require.NoError(t, err)
	fe, grad, err := self.Evaluate(amps)
	require.NoError(t, err)
	require.InDelta(t, 0, fe, 1e-20)
	for _, row := range grad {
		for _, g := range row {
			require.InDelta(t, 0, g, 1e-12)
		}
	}
}

// TestNewValidation checks target shape and gradient mode guards.
func TestNewValidation(t *testing.T) {
	t.Parallel()
	drift, _ := matrix.NewZeros(4, 4)
	e, err := propagator.New(nil, drift, nil, identity(t, 4), 1, 1, propagator.WithoutGradient())
	require.NoError(t, err)

	_, err = fidelity.New(e, identity(t, 2), nil)
	require.ErrorIs(t, err, fidelity.ErrDimensionMismatch)
	_, err = fidelity.New(nil, identity(t, 4), nil)
	require.ErrorIs(t, err, fidelity.ErrDimensionMismatch)

	ev, err := fidelity.New(e, identity(t, 4), nil)
	require.NoError(t, err)
	_, _, err = ev.Evaluate([][]float64{{}})
	require.ErrorIs(t, err, propagator.ErrGradientDisabled)
	fe, err := ev.ErrorAt([][]float64{{}})
	require.NoError(t, err)
	require.InDelta(t, 0, fe, 1e-15)
}
