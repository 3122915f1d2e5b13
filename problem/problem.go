// SPDX-License-Identifier: MIT

// Package problem holds complete optimization problem definitions: the open
// system (Hamiltonian, dissipators, control operators), the initial and target
// superoperators, timeslots, the fidelity measure, the initial pulse policy
// and the optimizer limits. Problems come from Go code, named presets or YAML
// documents, and assemble the propagator engine and fidelity evaluator.
package problem

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/qoc/ampio"
	"github.com/katalvlaran/qoc/fidelity"
	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/propagator"
	"github.com/katalvlaran/qoc/pulsegen"
	"github.com/katalvlaran/qoc/superop"
)

// Pulse selects and shapes the initial amplitude table. Zero-valued knobs
// keep the pulsegen defaults.
type Pulse struct {
	Policy   pulsegen.Policy
	Seed     int64
	Scaling  float64
	Offset   float64
	NumWaves float64
	Phase    float64
	Width    float64
}

// Problem is one optimization task.
type Problem struct {
	Name string

	// Hamiltonian is the d×d drift Hamiltonian.
	Hamiltonian *matrix.Dense
	// Dissipators are Lindblad operators with their rates folded in (√γ·L).
	Dissipators []*matrix.Dense
	// Controls are d×d control Hamiltonians; ControlLabels names them.
	Controls      []*matrix.Dense
	ControlLabels []string

	// Initial is X₀ (d²×m); nil means the d²×d² identity superoperator.
	Initial *matrix.Dense
	// Target is X_targ with the shape of X₀.
	Target *matrix.Dense

	NumTimeslots int
	EvoTime      float64

	// Measure names the fidelity measure ("" selects TRACEDIFF).
	Measure string

	Pulse     Pulse
	Optimizer optimize.Config
}

// Dim returns the Hilbert-space dimension d.
func (p *Problem) Dim() int {
	if p.Hamiltonian == nil {
		return 0
	}

	return p.Hamiltonian.Rows()
}

// Dt returns the timeslot duration.
func (p *Problem) Dt() float64 { return p.EvoTime / float64(p.NumTimeslots) }

// Validate checks shapes, counts, control labels and the optimizer block.
func (p *Problem) Validate() error {
	if p.Hamiltonian == nil {
		return fmt.Errorf("missing hamiltonian: %w", ErrInvalidSpec)
	}
	d := p.Dim()
	if p.Hamiltonian.Cols() != d || d < 1 {
		return fmt.Errorf("hamiltonian %dx%d: %w", p.Hamiltonian.Rows(), p.Hamiltonian.Cols(), ErrInvalidSpec)
	}
	for k, c := range p.Dissipators {
		if c == nil || c.Rows() != d || c.Cols() != d {
			return fmt.Errorf("dissipator %d is not %dx%d: %w", k, d, d, ErrInvalidSpec)
		}
	}
	for j, c := range p.Controls {
		if c == nil || c.Rows() != d || c.Cols() != d {
			return fmt.Errorf("control %d is not %dx%d: %w", j, d, d, ErrInvalidSpec)
		}
	}
	if len(p.ControlLabels) != 0 && len(p.ControlLabels) != len(p.Controls) {
		return fmt.Errorf("%d labels for %d controls: %w", len(p.ControlLabels), len(p.Controls), ErrInvalidSpec)
	}
	for j, l := range p.ControlLabels {
		if !ampio.ValidLabel(l) {
			return fmt.Errorf("control %d label %q: %w", j, l, ErrInvalidSpec)
		}
	}
	sd := d * d
	initCols := sd
	if p.Initial != nil {
		if p.Initial.Rows() != sd {
			return fmt.Errorf("initial has %d rows, want %d: %w", p.Initial.Rows(), sd, ErrInvalidSpec)
		}
		initCols = p.Initial.Cols()
	}
	if p.Target == nil {
		return fmt.Errorf("missing target: %w", ErrInvalidSpec)
	}
	if p.Target.Rows() != sd || p.Target.Cols() != initCols {
		return fmt.Errorf("target %dx%d, want %dx%d: %w", p.Target.Rows(), p.Target.Cols(), sd, initCols, ErrInvalidSpec)
	}
	if p.NumTimeslots < 1 {
		return fmt.Errorf("timeslots=%d: %w", p.NumTimeslots, ErrInvalidSpec)
	}
	if p.EvoTime < 0 || math.IsNaN(p.EvoTime) || math.IsInf(p.EvoTime, 0) {
		return fmt.Errorf("evo_time=%v: %w", p.EvoTime, ErrInvalidSpec)
	}
	if _, err := fidelity.MeasureByName(p.Measure); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}
	if p.Pulse.Policy != "" && !p.Pulse.Policy.Valid() {
		return fmt.Errorf("pulse policy %q: %w", p.Pulse.Policy, ErrInvalidSpec)
	}
	if err := p.Optimizer.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return nil
}

// Generators builds the drift Liouvillian and the control commutator superoperators.
func (p *Problem) Generators() (*matrix.Dense, []*matrix.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	cOps := make([]matrix.Matrix, len(p.Dissipators))
	for k, c := range p.Dissipators {
		cOps[k] = c
	}
	drift, err := superop.Liouvillian(p.Hamiltonian, cOps)
	if err != nil {
		return nil, nil, err
	}
	ctrls := make([]matrix.Matrix, len(p.Controls))
	for j, c := range p.Controls {
		ctrls[j] = c
	}
	gens, err := superop.ControlGenerators(p.Dim(), ctrls)
	if err != nil {
		return nil, nil, err
	}

	return drift, gens, nil
}

// Engine assembles a propagator.Engine on backend (nil selects Native).
func (p *Problem) Engine(backend linalg.Backend, opts ...propagator.Option) (*propagator.Engine, error) {
	drift, gens, err := p.Generators()
	if err != nil {
		return nil, err
	}
	ctrls := make([]matrix.Matrix, len(gens))
	for j, g := range gens {
		ctrls[j] = g
	}
	initial := p.Initial
	if initial == nil {
		if initial, err = matrix.NewIdentity(p.Dim() * p.Dim()); err != nil {
			return nil, err
		}
	}

	return propagator.New(backend, drift, ctrls, initial, p.NumTimeslots, p.EvoTime, opts...)
}

// Evaluator assembles the engine and binds the target and measure.
func (p *Problem) Evaluator(backend linalg.Backend) (*fidelity.Evaluator, error) {
	e, err := p.Engine(backend)
	if err != nil {
		return nil, err
	}
	m, err := fidelity.MeasureByName(p.Measure)
	if err != nil {
		return nil, err
	}

	return fidelity.New(e, p.Target, m)
}

// InitialPulse generates the starting table from p.Pulse, clipped to the
// optimizer bounds. An empty policy selects RND.
func (p *Problem) InitialPulse() ([][]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(p.Controls) == 0 {
		amps := make([][]float64, p.NumTimeslots)
		for t := range amps {
			amps[t] = []float64{}
		}

		return amps, nil
	}
	policy := p.Pulse.Policy
	if policy == "" {
		policy = pulsegen.Random
	}
	opts := []pulsegen.Option{pulsegen.WithBounds(p.Optimizer.LowerBound, p.Optimizer.UpperBound)}
	if p.Pulse.Scaling != 0 {
		opts = append(opts, pulsegen.WithScaling(p.Pulse.Scaling))
	}
	if p.Pulse.Offset != 0 {
		opts = append(opts, pulsegen.WithOffset(p.Pulse.Offset))
	}
	if p.Pulse.NumWaves > 0 {
		opts = append(opts, pulsegen.WithNumWaves(p.Pulse.NumWaves))
	}
	if p.Pulse.Phase != 0 {
		opts = append(opts, pulsegen.WithPhase(p.Pulse.Phase))
	}
	if p.Pulse.Width > 0 {
		opts = append(opts, pulsegen.WithWidth(p.Pulse.Width))
	}

	return pulsegen.Generate(policy, p.NumTimeslots, len(p.Controls), p.Pulse.Seed, opts...)
}

// DriftSpectrum returns the ascending eigenvalues of the drift Hamiltonian.
func (p *Problem) DriftSpectrum(backend linalg.Backend) ([]float64, error) {
	if p.Hamiltonian == nil {
		return nil, fmt.Errorf("missing hamiltonian: %w", ErrInvalidSpec)
	}
	if backend == nil {
		backend = linalg.NewNative()
	}

	return linalg.Spectrum(backend, p.Hamiltonian)
}

// Labels returns ControlLabels, or u0, u1, ... when unset.
func (p *Problem) Labels() []string {
	if len(p.ControlLabels) == len(p.Controls) && len(p.Controls) > 0 {
		return append([]string(nil), p.ControlLabels...)
	}
	out := make([]string, len(p.Controls))
	for j := range out {
		out[j] = fmt.Sprintf("u%d", j)
	}

	return out
}

// AmplitudeTable wraps amps in an ampio.Table carrying the timeslot duration,
// control labels, problem name, pulse policy and seed.
func (p *Problem) AmplitudeTable(amps [][]float64) ampio.Table {
	extra := map[string]string{"seed": strconv.FormatInt(p.Pulse.Seed, 10)}
	if p.Name != "" {
		extra["problem"] = strings.Join(strings.Fields(p.Name), "-")
	}
	if p.Pulse.Policy != "" {
		extra["policy"] = p.Pulse.Policy.String()
	}

	return ampio.Table{
		Header: ampio.Header{Dt: p.Dt(), Labels: p.Labels(), Extra: extra},
		Amps:   amps,
	}
}
