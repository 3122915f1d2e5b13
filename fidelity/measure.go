// SPDX-License-Identifier: MIT

package fidelity

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/katalvlaran/qoc/matrix"
)

// Measure names.
const (
	NameTraceDiff = "TRACEDIFF"
	NameOverlap   = "OVERLAP"
)

// Measure maps the final evolution X and the target T (both D×m) to a scalar
// fidelity error, and supplies the seed S (m×D) of its first variation:
//
//	δerr = Re Tr(S·δX)
//
// The Evaluator chains S through the propagator derivatives to obtain the
// amplitude gradient.
type Measure interface {
	Name() string
	Error(target, x *matrix.Dense) (float64, error)
	Seed(target, x *matrix.Dense) (*matrix.Dense, error)
}

// TraceDiff is the default measure
//
//	err = ‖T − X‖²_F / (2D)
//
// with D the row count of X (the generator dimension). For unitary
// superoperators on a qubit it reads sin²(θ/2) for a Z-rotation error θ, and
// 1 between the identity and the Hadamard superoperator.
type TraceDiff struct{}

// Name implements Measure.
func (TraceDiff) Name() string { return NameTraceDiff }

// Error implements Measure.
func (TraceDiff) Error(target, x *matrix.Dense) (float64, error) {
	diff, err := shapedDiff(target, x)
	if err != nil {
		return 0, err
	}
	n, err := matrix.NormFrobenius(diff)
	if err != nil {
		return 0, err
	}

	return n * n / float64(2*x.Rows()), nil
}

// Seed implements Measure: S = (X − T)† / D.
func (TraceDiff) Seed(target, x *matrix.Dense) (*matrix.Dense, error) {
	diff, err := shapedDiff(target, x)
	if err != nil {
		return nil, err
	}
	// shapedDiff gives T − X.
	adj, err := matrix.Adjoint(diff)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(adj, complex(-1/float64(x.Rows()), 0))
}

// Overlap is the phase-insensitive measure
//
//	err = 1 − |Tr(T†X)| / ‖T‖²_F
//
// ‖T‖²_F equals D for unitary superoperator targets.
type Overlap struct{}

// Name implements Measure.
func (Overlap) Name() string { return NameOverlap }

// Error implements Measure.
func (Overlap) Error(target, x *matrix.Dense) (float64, error) {
	f, norm, err := overlap(target, x)
	if err != nil {
		return 0, err
	}

	return 1 - cmplx.Abs(f)/norm, nil
}

// Seed implements Measure: S = −φ·T†/‖T‖²_F with φ = conj(f)/|f|, f = Tr(T†X).
// At f = 0 the error is not differentiable and φ = 1 is used.
func (Overlap) Seed(target, x *matrix.Dense) (*matrix.Dense, error) {
	f, norm, err := overlap(target, x)
	if err != nil {
		return nil, err
	}
	phase := complex(1, 0)
	if a := cmplx.Abs(f); a > 1e-300 {
		phase = cmplx.Conj(f) / complex(a, 0)
	}
	adj, err := matrix.Adjoint(target)
	if err != nil {
		return nil, err
	}

	return matrix.Scale(adj, -phase/complex(norm, 0))
}

// MeasureByName resolves a measure name, case-insensitively. The empty name
// selects TraceDiff; "PSU" is accepted for Overlap.
func MeasureByName(name string) (Measure, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", NameTraceDiff:
		return TraceDiff{}, nil
	case NameOverlap, "PSU":
		return Overlap{}, nil
	default:
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownMeasure)
	}
}

func shapedDiff(target, x *matrix.Dense) (*matrix.Dense, error) {
	if target.Rows() != x.Rows() || target.Cols() != x.Cols() {
		return nil, fmt.Errorf("target %dx%d, evolution %dx%d: %w",
			target.Rows(), target.Cols(), x.Rows(), x.Cols(), ErrDimensionMismatch)
	}

	return matrix.Sub(target, x)
}

func overlap(target, x *matrix.Dense) (complex128, float64, error) {
	if target.Rows() != x.Rows() || target.Cols() != x.Cols() {
		return 0, 0, fmt.Errorf("target %dx%d, evolution %dx%d: %w",
			target.Rows(), target.Cols(), x.Rows(), x.Cols(), ErrDimensionMismatch)
	}
	n, err := matrix.NormFrobenius(target)
	if err != nil {
		return 0, 0, err
	}
	if n == 0 || math.IsNaN(n) {
		return 0, 0, ErrZeroTarget
	}
	adj, err := matrix.Adjoint(target)
	if err != nil {
		return 0, 0, err
	}
	f, err := matrix.TraceProduct(adj, x)
	if err != nil {
		return 0, 0, err
	}

	return f, n * n, nil
}
