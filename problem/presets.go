// SPDX-License-Identifier: MIT

package problem

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/pulsegen"
	"github.com/katalvlaran/qoc/superop"
)

// Preset names.
const (
	PresetAmpDampingHadamard = "amp-damping-hadamard"
	PresetTrivialIdentity    = "trivial-identity"
)

// Amplitude-damping qubit defaults.
const (
	DefaultQubitFrequency = 1.0  // ω in H = ½ωσz + ½Δσx
	DefaultTunneling      = 0.1  // Δ
	DefaultDamping        = 0.1  // γ of the √γ·σ− collapse operator
	DefaultTimeslots      = 10   // n_ts
	DefaultEvoTime        = 2.0  // evo_time
	DefaultFidErrTarget   = 1e-3 // fid_err_targ
	DefaultMaxIterations  = 200  // max_iter
	DefaultMaxWallTime    = 30 * time.Second
	DefaultMinGradNorm    = 1e-20
)

var presets = map[string]func() (*Problem, error){
	PresetAmpDampingHadamard: func() (*Problem, error) { return AmplitudeDampingHadamard(DefaultDamping) },
	PresetTrivialIdentity:    TrivialIdentity,
}

// Presets returns the registered preset names in sorted order.
func Presets() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// Preset builds a fresh Problem by case-insensitive name.
func Preset(name string) (*Problem, error) {
	f, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%q (known: %s): %w", name, strings.Join(Presets(), ", "), ErrUnknownPreset)
	}

	return f()
}

// AmplitudeDampingHadamard is a qubit with H = ½ωσz + ½Δσx (ω = 1, Δ = 0.1),
// the collapse operator √γ·σ−, controls {σz, σx}, the identity superoperator
// as X₀ and the Hadamard superoperator as target; 10 timeslots over T = 2,
// random initial pulse.
func AmplitudeDampingHadamard(gamma float64) (*Problem, error) {
	if gamma < 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, fmt.Errorf("gamma=%v: %w", gamma, ErrInvalidSpec)
	}
	hz, err := matrix.Scale(superop.SigmaZ(), complex(0.5*DefaultQubitFrequency, 0))
	if err != nil {
		return nil, err
	}
	h, err := matrix.AddScaled(hz, superop.SigmaX(), complex(0.5*DefaultTunneling, 0))
	if err != nil {
		return nil, err
	}
	var dissipators []*matrix.Dense
	if gamma > 0 {
		c, err := matrix.Scale(superop.SigmaMinus(), complex(math.Sqrt(gamma), 0))
		if err != nil {
			return nil, err
		}
		dissipators = append(dissipators, c)
	}
	target, err := superop.ToSuper(superop.Hadamard())
	if err != nil {
		return nil, err
	}

	cfg := optimize.DefaultConfig()
	cfg.FidErrTarget = DefaultFidErrTarget
	cfg.MaxIterations = DefaultMaxIterations
	cfg.MaxWallTime = DefaultMaxWallTime
	cfg.MinGradNorm = DefaultMinGradNorm

	p := &Problem{
		Name:          PresetAmpDampingHadamard,
		Hamiltonian:   h,
		Dissipators:   dissipators,
		Controls:      []*matrix.Dense{superop.SigmaZ(), superop.SigmaX()},
		ControlLabels: []string{"sigmaz", "sigmax"},
		Target:        target,
		NumTimeslots:  DefaultTimeslots,
		EvoTime:       DefaultEvoTime,
		Pulse:         Pulse{Policy: pulsegen.Random},
		Optimizer:     cfg,
	}

	return p, p.Validate()
}

// TrivialIdentity is H = ½σz without dissipation, one σx control, identity
// target, one timeslot and zero evolution time: the initial evolution already
// matches the target.
func TrivialIdentity() (*Problem, error) {
	h, err := matrix.Scale(superop.SigmaZ(), 0.5)
	if err != nil {
		return nil, err
	}
	target, err := matrix.NewIdentity(4)
	if err != nil {
		return nil, err
	}
	cfg := optimize.DefaultConfig()
	cfg.FidErrTarget = DefaultFidErrTarget

	p := &Problem{
		Name:          PresetTrivialIdentity,
		Hamiltonian:   h,
		Controls:      []*matrix.Dense{superop.SigmaX()},
		ControlLabels: []string{"sigmax"},
		Target:        target,
		NumTimeslots:  1,
		EvoTime:       0,
		Pulse:         Pulse{Policy: pulsegen.Random},
		Optimizer:     cfg,
	}

	return p, p.Validate()
}
