// SPDX-License-Identifier: MIT
package problem_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
	"github.com/katalvlaran/qoc/pulsegen"
	"github.com/katalvlaran/qoc/superop"
	"github.com/stretchr/testify/require"
)

func mustRows(t *testing.T, rows [][]complex128) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

func TestPresets(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{problem.PresetAmpDampingHadamard, problem.PresetTrivialIdentity}, problem.Presets())

	p, err := problem.Preset(" AMP-Damping-Hadamard ")
	require.NoError(t, err)
	require.Equal(t, 2, p.Dim())
	require.Len(t, p.Dissipators, 1)
	require.Equal(t, []string{"sigmaz", "sigmax"}, p.Labels())
	require.InDelta(t, 0.2, p.Dt(), 1e-15)
	require.Equal(t, 1e-3, p.Optimizer.FidErrTarget)
	require.Equal(t, 200, p.Optimizer.MaxIterations)
	require.Equal(t, 30*time.Second, p.Optimizer.MaxWallTime)

	_, err = problem.Preset("qutrit")
	require.ErrorIs(t, err, problem.ErrUnknownPreset)

	_, err = problem.AmplitudeDampingHadamard(-1)
	require.ErrorIs(t, err, problem.ErrInvalidSpec)
	closed, err := problem.AmplitudeDampingHadamard(0)
	require.NoError(t, err)
	require.Empty(t, closed.Dissipators)
}

// TestTrivialIdentityStartsAtTarget: zero evolution time leaves X₀ = target.
func TestTrivialIdentityStartsAtTarget(t *testing.T) {
	t.Parallel()
	p, err := problem.TrivialIdentity()
	require.NoError(t, err)
	ev, err := p.Evaluator(nil)
	require.NoError(t, err)
	amps, err := p.InitialPulse()
	require.NoError(t, err)
	e, err := ev.ErrorAt(amps)
	require.NoError(t, err)
	require.InDelta(t, 0, e, 1e-15)
}

func TestLoadFileMatchesPreset(t *testing.T) {
	t.Parallel()
	fromFile, err := problem.LoadFile("testdata/damped_hadamard.yaml")
	require.NoError(t, err)
	preset, err := problem.Preset(problem.PresetAmpDampingHadamard)
	require.NoError(t, err)

	require.Equal(t, "damped-hadamard", fromFile.Name)
	require.True(t, matrix.AllClose(preset.Hamiltonian, fromFile.Hamiltonian, 0, 1e-15))
	require.Len(t, fromFile.Dissipators, 1)
	require.True(t, matrix.AllClose(preset.Dissipators[0], fromFile.Dissipators[0], 0, 1e-15))
	require.True(t, matrix.AllClose(preset.Target, fromFile.Target, 0, 1e-15))
	require.Equal(t, preset.ControlLabels, fromFile.ControlLabels)
	require.Equal(t, preset.NumTimeslots, fromFile.NumTimeslots)
	require.Equal(t, preset.EvoTime, fromFile.EvoTime)
	require.Equal(t, preset.Optimizer, fromFile.Optimizer)
	require.Equal(t, pulsegen.Random, fromFile.Pulse.Policy)
	require.Equal(t, int64(3), fromFile.Pulse.Seed)

	amps, err := fromFile.InitialPulse()
	require.NoError(t, err)
	a, err := fromFile.Evaluator(linalg.NewNative())
	require.NoError(t, err)
	b, err := preset.Evaluator(linalg.NewGonum())
	require.NoError(t, err)
	ea, err := a.ErrorAt(amps)
	require.NoError(t, err)
	eb, err := b.ErrorAt(amps)
	require.NoError(t, err)
	require.InDelta(t, ea, eb, 1e-10)
	require.Greater(t, ea, 0.0)
}

func TestLoadForms(t *testing.T) {
	t.Parallel()
	src := `
name: explicit
hamiltonian:
  matrix:
    - [0, -1i]
    - [1i, 0]
controls:
  - terms: [{op: sigmax, coeff: 0.5}, {op: sigmay, coeff: "1+0i"}, {op: sigmaz}]
target:
  super: {op: identity}
num_tslots: 4
evo_time: 1
fid_type: psu
optimizer:
  max_wall_time: 1.5
  amp_lbound: -1
  amp_ubound: 1
  record_history: false
`
	p, err := problem.Load(strings.NewReader(src))
	require.NoError(t, err)
	require.True(t, matrix.AllClose(superop.SigmaY(), p.Hamiltonian, 0, 0))
	want := mustRows(t, [][]complex128{{1, 0.5 - 1i}, {0.5 + 1i, -1}})
	require.True(t, matrix.AllClose(want, p.Controls[0], 0, 1e-15))
	require.Equal(t, []string{"u0"}, p.Labels())
	require.Nil(t, p.ControlLabels)
	id, _ := matrix.NewIdentity(4)
	require.True(t, matrix.AllClose(id, p.Target, 0, 0))
	require.Equal(t, 1500*time.Millisecond, p.Optimizer.MaxWallTime)
	require.False(t, p.Optimizer.RecordHistory)
	require.Equal(t, optimize.DefaultMaxIterations, p.Optimizer.MaxIterations)

	amps, err := p.InitialPulse()
	require.NoError(t, err)
	require.Len(t, amps, 4)
	for _, row := range amps {
		require.Len(t, row, 1)
		require.LessOrEqual(t, math.Abs(row[0]), 1.0)
	}
}

func TestLoadRejects(t *testing.T) {
	t.Parallel()
	base := "hamiltonian: {op: sigmaz}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 2\nevo_time: 1\n"
	cases := map[string]string{
		"empty":          "",
		"unknown key":    base + "colour: blue\n",
		"bad complex":    "hamiltonian: {terms: [{op: sigmaz, coeff: abc}]}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 2\nevo_time: 1\n",
		"two forms":      "hamiltonian: {op: sigmaz, matrix: [[1, 0], [0, 1]]}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 2\nevo_time: 1\n",
		"no target":      "hamiltonian: {op: sigmaz}\nnum_tslots: 2\nevo_time: 1\n",
		"ragged matrix":  "hamiltonian: {matrix: [[1, 0], [0]]}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 2\nevo_time: 1\n",
		"bad policy":     base + "pulse: {policy: WOBBLE}\n",
		"bad measure":    base + "fid_type: FANCY\n",
		"zero slots":     "hamiltonian: {op: sigmaz}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 0\nevo_time: 1\n",
		"control rate":   base + "controls: [{op: sigmax, rate: 2}]\n",
		"spaced label":   base + "controls: [{op: sigmax, label: \"sigma x\"}]\n",
		"bad duration":   base + "optimizer: {max_wall_time: soon}\n",
		"inverted bound": base + "optimizer: {amp_lbound: 1, amp_ubound: -1}\n",
	}
	for name, src := range cases {
		_, err := problem.Load(strings.NewReader(src))
		require.ErrorIs(t, err, problem.ErrInvalidSpec, name)
	}

	_, err := problem.Load(strings.NewReader("hamiltonian: {op: wobble}\ntarget: {unitary: {op: hadamard}}\nnum_tslots: 2\nevo_time: 1\n"))
	require.ErrorIs(t, err, problem.ErrUnknownOperator)
}

func TestNamedOperator(t *testing.T) {
	t.Parallel()
	n, err := problem.NamedOperator("number", 3)
	require.NoError(t, err)
	want, _ := matrix.NewDiag([]complex128{0, 1, 2})
	require.True(t, matrix.AllClose(want, n, 0, 1e-15))

	a, err := problem.NamedOperator("Destroy", 3)
	require.NoError(t, err)
	require.True(t, matrix.AllClose(mustRows(t, [][]complex128{
		{0, 1, 0},
		{0, 0, complex(math.Sqrt2, 0)},
		{0, 0, 0},
	}), a, 0, 1e-15))

	_, err = problem.NamedOperator("sigmax", 3)
	require.ErrorIs(t, err, problem.ErrUnknownOperator)
	_, err = problem.NamedOperator("foo", 2)
	require.ErrorIs(t, err, problem.ErrUnknownOperator)
	_, err = problem.NamedOperator("identity", 0)
	require.ErrorIs(t, err, problem.ErrInvalidSpec)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	fresh := func() *problem.Problem {
		p, err := problem.Preset(problem.PresetAmpDampingHadamard)
		require.NoError(t, err)
		return p
	}
	three, _ := matrix.NewIdentity(3)
	cases := map[string]func(p *problem.Problem){
		"no hamiltonian":   func(p *problem.Problem) { p.Hamiltonian = nil },
		"bad dissipator":   func(p *problem.Problem) { p.Dissipators = []*matrix.Dense{three} },
		"bad control":      func(p *problem.Problem) { p.Controls[1] = three },
		"labels":           func(p *problem.Problem) { p.ControlLabels = []string{"x"} },
		"blank label":      func(p *problem.Problem) { p.ControlLabels = []string{"sigmaz", ""} },
		"spaced label":     func(p *problem.Problem) { p.ControlLabels = []string{"sigma z", "sigmax"} },
		"initial rows":     func(p *problem.Problem) { p.Initial = three },
		"no target":        func(p *problem.Problem) { p.Target = nil },
		"target shape":     func(p *problem.Problem) { p.Target = three },
		"timeslots":        func(p *problem.Problem) { p.NumTimeslots = 0 },
		"negative time":    func(p *problem.Problem) { p.EvoTime = -1 },
		"measure":          func(p *problem.Problem) { p.Measure = "FANCY" },
		"policy":           func(p *problem.Problem) { p.Pulse.Policy = "WOBBLE" },
		"optimizer memory": func(p *problem.Problem) { p.Optimizer.Memory = 0 },
	}
	for name, mutate := range cases {
		p := fresh()
		mutate(p)
		require.ErrorIs(t, p.Validate(), problem.ErrInvalidSpec, name)
		_, err := p.InitialPulse()
		require.ErrorIs(t, err, problem.ErrInvalidSpec, name)
	}
}

func TestDriftSpectrum(t *testing.T) {
	t.Parallel()
	p, err := problem.Preset(problem.PresetAmpDampingHadamard)
	require.NoError(t, err)
	ev, err := p.DriftSpectrum(nil)
	require.NoError(t, err)
	e := math.Sqrt(0.25 + 0.0025)
	require.InDeltaSlice(t, []float64{-e, e}, ev, 1e-10)
}
