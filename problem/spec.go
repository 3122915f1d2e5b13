// SPDX-License-Identifier: MIT

package problem

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/qoc/matrix"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/pulsegen"
	"github.com/katalvlaran/qoc/superop"
)

// Complex is a YAML scalar parsed by strconv.ParseComplex: 0.5, -2i, 1+0.5i.
type Complex complex128

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Complex) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: complex value must be a scalar: %w", n.Line, ErrInvalidSpec)
	}
	v, err := strconv.ParseComplex(strings.ReplaceAll(n.Value, " ", ""), 128)
	if err != nil {
		return fmt.Errorf("line %d: %q: %w", n.Line, n.Value, ErrInvalidSpec)
	}
	if cmplx.IsNaN(v) || cmplx.IsInf(v) {
		return fmt.Errorf("line %d: non-finite %q: %w", n.Line, n.Value, ErrInvalidSpec)
	}
	*c = Complex(v)

	return nil
}

// Duration accepts a Go duration string ("30s", "1m30s") or plain seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar: %w", n.Line, ErrInvalidSpec)
	}
	if v, err := time.ParseDuration(n.Value); err == nil {
		*d = Duration(v)
		return nil
	}
	sec, err := strconv.ParseFloat(n.Value, 64)
	if err != nil || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return fmt.Errorf("line %d: duration %q: %w", n.Line, n.Value, ErrInvalidSpec)
	}
	*d = Duration(sec * float64(time.Second))

	return nil
}

// TermSpec is coeff·op; a missing coeff means 1.
type TermSpec struct {
	Op    string   `yaml:"op"`
	Coeff *Complex `yaml:"coeff,omitempty"`
}

// OperatorSpec describes one operator. Exactly one of Op, Terms or Matrix
// is set. Rate, on dissipators, folds √rate into the operator.
type OperatorSpec struct {
	Label  string      `yaml:"label,omitempty"`
	Op     string      `yaml:"op,omitempty"`
	Terms  []TermSpec  `yaml:"terms,omitempty"`
	Matrix [][]Complex `yaml:"matrix,omitempty"`
	Rate   *float64    `yaml:"rate,omitempty"`
}

// EvolutionSpec gives X₀ or the target either as a d×d unitary (lifted to
// U⊗U*) or directly as a superoperator with d² rows.
type EvolutionSpec struct {
	Unitary *OperatorSpec `yaml:"unitary,omitempty"`
	Super   *OperatorSpec `yaml:"super,omitempty"`
}

// PulseSpec mirrors Pulse.
type PulseSpec struct {
	Policy   string  `yaml:"policy,omitempty"`
	Seed     int64   `yaml:"seed,omitempty"`
	Scaling  float64 `yaml:"scaling,omitempty"`
	Offset   float64 `yaml:"offset,omitempty"`
	NumWaves float64 `yaml:"num_waves,omitempty"`
	Phase    float64 `yaml:"phase,omitempty"`
	Width    float64 `yaml:"width,omitempty"`
}

// OptimizerSpec overrides optimize.DefaultConfig field by field.
type OptimizerSpec struct {
	FidErrTarget     *float64  `yaml:"fid_err_targ,omitempty"`
	MaxIterations    *int      `yaml:"max_iter,omitempty"`
	MaxFunctionEvals *int      `yaml:"max_fid_func_calls,omitempty"`
	MaxWallTime      *Duration `yaml:"max_wall_time,omitempty"`
	MinGradNorm      *float64  `yaml:"min_grad,omitempty"`
	Memory           *int      `yaml:"memory,omitempty"`
	LowerBound       *float64  `yaml:"amp_lbound,omitempty"`
	UpperBound       *float64  `yaml:"amp_ubound,omitempty"`
	RecordHistory    *bool     `yaml:"record_history,omitempty"`
}

// Spec is the YAML form of a Problem.
type Spec struct {
	Name         string         `yaml:"name"`
	Dim          int            `yaml:"dim,omitempty"`
	Hamiltonian  OperatorSpec   `yaml:"hamiltonian"`
	Dissipators  []OperatorSpec `yaml:"dissipators,omitempty"`
	Controls     []OperatorSpec `yaml:"controls,omitempty"`
	Initial      *EvolutionSpec `yaml:"initial,omitempty"`
	Target       EvolutionSpec  `yaml:"target"`
	NumTimeslots int            `yaml:"num_tslots"`
	EvoTime      float64        `yaml:"evo_time"`
	Measure      string         `yaml:"fid_type,omitempty"`
	Pulse        PulseSpec      `yaml:"pulse,omitempty"`
	Optimizer    OptimizerSpec  `yaml:"optimizer,omitempty"`
}

// Load decodes one YAML document and builds the Problem. Unknown keys are errors.
func Load(r io.Reader) (*Problem, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Spec
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document: %w", ErrInvalidSpec)
		}
		if errors.Is(err, ErrInvalidSpec) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
	}

	return s.Build()
}

// LoadFile opens path and calls Load.
func LoadFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Build resolves operators and returns a validated Problem.
func (s Spec) Build() (*Problem, error) {
	// Stage 1: system
	d := s.Dim
	if d == 0 {
		d = 2
		if len(s.Hamiltonian.Matrix) > 0 {
			d = len(s.Hamiltonian.Matrix)
		}
	}
	if d < 1 {
		return nil, fmt.Errorf("dim=%d: %w", s.Dim, ErrInvalidSpec)
	}
	h, err := s.Hamiltonian.build(d)
	if err != nil {
		return nil, fmt.Errorf("hamiltonian: %w", err)
	}
	p := &Problem{
		Name:         s.Name,
		Hamiltonian:  h,
		NumTimeslots: s.NumTimeslots,
		EvoTime:      s.EvoTime,
		Measure:      s.Measure,
	}
	for k, ds := range s.Dissipators {
		c, err := ds.build(d)
		if err != nil {
			return nil, fmt.Errorf("dissipator %d: %w", k, err)
		}
		p.Dissipators = append(p.Dissipators, c)
	}
	labelled := false
	for j, cs := range s.Controls {
		if cs.Rate != nil {
			return nil, fmt.Errorf("control %d: rate applies to dissipators only: %w", j, ErrInvalidSpec)
		}
		c, err := cs.build(d)
		if err != nil {
			return nil, fmt.Errorf("control %d: %w", j, err)
		}
		p.Controls = append(p.Controls, c)
		p.ControlLabels = append(p.ControlLabels, cs.label(j))
		labelled = labelled || cs.Label != ""
	}
	if !labelled {
		p.ControlLabels = nil
	}

	// Stage 2: evolutions
	if s.Initial != nil {
		if p.Initial, err = s.Initial.build(d); err != nil {
			return nil, fmt.Errorf("initial: %w", err)
		}
	}
	if p.Target, err = s.Target.build(d); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	// Stage 3: pulse and optimizer
	if s.Pulse.Policy != "" {
		if p.Pulse.Policy, err = pulsegen.ParsePolicy(s.Pulse.Policy); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSpec, err)
		}
	}
	p.Pulse.Seed = s.Pulse.Seed
	p.Pulse.Scaling = s.Pulse.Scaling
	p.Pulse.Offset = s.Pulse.Offset
	p.Pulse.NumWaves = s.Pulse.NumWaves
	p.Pulse.Phase = s.Pulse.Phase
	p.Pulse.Width = s.Pulse.Width
	p.Optimizer = s.Optimizer.apply(optimize.DefaultConfig())

	if err = p.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

func (o OptimizerSpec) apply(c optimize.Config) optimize.Config {
	if o.FidErrTarget != nil {
		c.FidErrTarget = *o.FidErrTarget
	}
	if o.MaxIterations != nil {
		c.MaxIterations = *o.MaxIterations
	}
	if o.MaxFunctionEvals != nil {
		c.MaxFunctionEvals = *o.MaxFunctionEvals
	}
	if o.MaxWallTime != nil {
		c.MaxWallTime = time.Duration(*o.MaxWallTime)
	}
	if o.MinGradNorm != nil {
		c.MinGradNorm = *o.MinGradNorm
	}
	if o.Memory != nil {
		c.Memory = *o.Memory
	}
	if o.LowerBound != nil {
		c.LowerBound = *o.LowerBound
	}
	if o.UpperBound != nil {
		c.UpperBound = *o.UpperBound
	}
	if o.RecordHistory != nil {
		c.RecordHistory = *o.RecordHistory
	}

	return c
}

func (o OperatorSpec) label(j int) string {
	if o.Label != "" {
		return o.Label
	}
	if o.Op != "" {
		return strings.ToLower(o.Op)
	}

	return fmt.Sprintf("u%d", j)
}

// build resolves the operator at dimension n.
func (o OperatorSpec) build(n int) (*matrix.Dense, error) {
	forms := 0
	if o.Op != "" {
		forms++
	}
	if len(o.Terms) > 0 {
		forms++
	}
	if len(o.Matrix) > 0 {
		forms++
	}
	if forms != 1 {
		return nil, fmt.Errorf("need exactly one of op, terms, matrix: %w", ErrInvalidSpec)
	}

	var (
		m   *matrix.Dense
		err error
	)
	switch {
	case o.Op != "":
		m, err = NamedOperator(o.Op, n)
	case len(o.Terms) > 0:
		m, err = o.sum(n)
	default:
		m, err = o.explicit(n)
	}
	if err != nil {
		return nil, err
	}
	if o.Rate != nil {
		r := *o.Rate
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("rate=%v: %w", r, ErrInvalidSpec)
		}
		m, err = matrix.Scale(m, complex(math.Sqrt(r), 0))
	}

	return m, err
}

func (o OperatorSpec) sum(n int) (*matrix.Dense, error) {
	acc, err := matrix.NewZeros(n, n)
	if err != nil {
		return nil, err
	}
	for _, t := range o.Terms {
		op, err := NamedOperator(t.Op, n)
		if err != nil {
			return nil, err
		}
		coeff := complex128(1)
		if t.Coeff != nil {
			coeff = complex128(*t.Coeff)
		}
		if acc, err = matrix.AddScaled(acc, op, coeff); err != nil {
			return nil, err
		}
	}

	return acc, nil
}

func (o OperatorSpec) explicit(n int) (*matrix.Dense, error) {
	if len(o.Matrix) != n {
		return nil, fmt.Errorf("matrix has %d rows, want %d: %w", len(o.Matrix), n, ErrInvalidSpec)
	}
	rows := make([][]complex128, n)
	for i, r := range o.Matrix {
		if len(r) != n {
			return nil, fmt.Errorf("matrix row %d has %d entries, want %d: %w", i, len(r), n, ErrInvalidSpec)
		}
		rows[i] = make([]complex128, n)
		for j, v := range r {
			rows[i][j] = complex128(v)
		}
	}

	return matrix.FromRows(rows)
}

func (e EvolutionSpec) build(d int) (*matrix.Dense, error) {
	switch {
	case e.Unitary != nil && e.Super != nil:
		return nil, fmt.Errorf("both unitary and super given: %w", ErrInvalidSpec)
	case e.Unitary != nil:
		u, err := e.Unitary.build(d)
		if err != nil {
			return nil, err
		}

		return superop.ToSuper(u)
	case e.Super != nil:
		return e.Super.build(d * d)
	default:
		return nil, fmt.Errorf("need unitary or super: %w", ErrInvalidSpec)
	}
}

// NamedOperator builds an operator by case-insensitive name at dimension n.
// identity, destroy, create and number exist at every dimension; the qubit
// operators (sigmax, sigmay, sigmaz, sigmam, sigmap, hadamard) need n = 2.
func NamedOperator(name string, n int) (*matrix.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("dim=%d: %w", n, ErrInvalidSpec)
	}
	switch key := strings.ToLower(strings.TrimSpace(name)); key {
	case "identity", "qeye":
		return matrix.NewIdentity(n)
	case "destroy":
		return superop.Destroy(n)
	case "create":
		return superop.Create(n)
	case "number", "num":
		a, err := superop.Destroy(n)
		if err != nil {
			return nil, err
		}
		ad, err := matrix.Adjoint(a)
		if err != nil {
			return nil, err
		}

		return matrix.Mul(ad, a)
	default:
		if n != 2 {
			return nil, fmt.Errorf("%q at dim %d: %w", name, n, ErrUnknownOperator)
		}
		m, err := superop.Named(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownOperator, err)
		}

		return m, nil
	}
}
