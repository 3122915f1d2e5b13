// SPDX-License-Identifier: MIT

package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/qoc/matrix"
)

const (
	opGonumExpm    = "gonum.Expm"
	opGonumFrechet = "gonum.ExpmFrechet"
	opGonumMul     = "gonum.Mul"
)

// Gonum evaluates the exponential and products with gonum/mat on the real
// embedding R(A) = [[Re A, −Im A], [Im A, Re A]]. R is an algebra
// homomorphism, so R(exp A) = exp(R A) and R(A·B) = R(A)·R(B).
type Gonum struct{}

var _ Backend = Gonum{}

// NewGonum returns the gonum-backed implementation.
func NewGonum() Gonum { return Gonum{} }

// Name implements Backend.
func (Gonum) Name() string { return NameGonum }

// Expm implements Backend.
func (g Gonum) Expm(a matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumExpm, err)
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumExpm, err)
	}
	da, err := matrix.AsDense(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumExpm, err)
	}

	return expEmbedded(da, opGonumExpm)
}

// ExpmFrechet implements Backend via the 2n block [[a, e], [0, a]].
func (g Gonum) ExpmFrechet(a, e matrix.Matrix) (*matrix.Dense, *matrix.Dense, error) {
	if err := matrix.ValidateSquare(a); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opGonumFrechet, err)
	}
	if err := matrix.ValidateSameShape(a, e); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opGonumFrechet, err)
	}
	if err := matrix.ValidateFinite(a); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opGonumFrechet, err)
	}
	if err := matrix.ValidateFinite(e); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opGonumFrechet, err)
	}
	n := a.Rows()
	block, err := matrix.NewDense(2*n, 2*n)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", opGonumFrechet, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			av, _ := a.At(i, j)
			ev, _ := e.At(i, j)
			_ = block.Set(i, j, av)
			_ = block.Set(i, j+n, ev)
			_ = block.Set(i+n, j+n, av)
		}
	}
	full, err := expEmbedded(block, opGonumFrechet)
	if err != nil {
		return nil, nil, err
	}
	expA, _ := matrix.NewDense(n, n)
	l, _ := matrix.NewDense(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v, _ := full.At(i, j)
			_ = expA.Set(i, j, v)
			v, _ = full.At(i, j+n)
			_ = l.Set(i, j, v)
		}
	}

	return expA, l, nil
}

// Mul implements Backend.
func (g Gonum) Mul(a, b matrix.Matrix) (*matrix.Dense, error) {
	if err := matrix.ValidateMulCompatible(a, b); err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumMul, err)
	}
	da, err := matrix.AsDense(a)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumMul, err)
	}
	db, err := matrix.AsDense(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opGonumMul, err)
	}
	ra, rb := embed(da), embed(db)
	var out mat.Dense
	out.Mul(ra, rb)

	return unembed(&out, da.Rows(), db.Cols(), opGonumMul)
}

// Trace implements Backend. The embedding loses the imaginary part of the
// trace, so it is computed directly.
func (g Gonum) Trace(a matrix.Matrix) (complex128, error) { return matrix.Trace(a) }

// expEmbedded returns exp(a) computed as exp(R(a)) with gonum.
func expEmbedded(a *matrix.Dense, op string) (*matrix.Dense, error) {
	var out mat.Dense
	out.Exp(embed(a))

	return unembed(&out, a.Rows(), a.Cols(), op)
}

// embed builds R(a), a 2r×2c real matrix.
func embed(a *matrix.Dense) *mat.Dense {
	r, c := a.Rows(), a.Cols()
	raw := a.RawCopy()
	out := mat.NewDense(2*r, 2*c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := raw[i*c+j]
			out.Set(i, j, real(v))
			out.Set(i, j+c, -imag(v))
			out.Set(i+r, j, imag(v))
			out.Set(i+r, j+c, real(v))
		}
	}

	return out
}

// unembed reads the complex r×c matrix back from the left block column of R.
// Non-finite output is reported as an ill-conditioned evaluation.
func unembed(m *mat.Dense, r, c int, op string) (*matrix.Dense, error) {
	data := make([]complex128, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			re, im := m.At(i, j), m.At(i+r, j)
			if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
				return nil, fmt.Errorf("%s: %w", op, &matrix.ConditionError{Op: op, Cond: math.Inf(1), Limit: math.Inf(1)})
			}
			data[i*c+j] = complex(re, im)
		}
	}

	return matrix.NewDenseFrom(r, c, data)
}
