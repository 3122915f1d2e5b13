// SPDX-License-Identifier: MIT

package matrix

import (
	"math/cmplx"
)

// LUFactors holds a row-pivoted Doolittle factorization P·A = L·U packed into
// one buffer: strictly-lower part is L (unit diagonal implied), upper part is U.
type LUFactors struct {
	lu  *Dense
	piv []int // piv[i] = original row placed at position i
}

// LU factorizes a square matrix with partial (row) pivoting.
//
// Implementation:
//   - Stage 1: ValidateSquare, copy input into the working buffer.
//   - Stage 2: for each column k pick the row with max |a[i,k]| (i ≥ k, first wins on ties),
//     swap, then eliminate below the pivot.
//
// Behavior highlights:
//   - Pivot choice is deterministic (strict '>' keeps the first maximum).
//   - Input is never mutated.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrSingular (exactly zero pivot column).
//
// Complexity:
//   - Time O(n³), Space O(n²).
func LU(m Matrix) (*LUFactors, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	src, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	a := src.clone()
	n := a.r
	piv := make([]int, n)
	for i := range piv {
		piv[i] = i
	}
	var (
		i, j, k, p int
		best, mag  float64
		f          complex128
	)
	for k = 0; k < n; k++ {
		p, best = k, cmplx.Abs(a.data[k*n+k])
		for i = k + 1; i < n; i++ {
			if mag = cmplx.Abs(a.data[i*n+k]); mag > best {
				p, best = i, mag
			}
		}
		if best == 0 {
			return nil, matrixErrorf(opLU, ErrSingular)
		}
		if p != k {
			rowK := a.data[k*n : (k+1)*n]
			rowP := a.data[p*n : (p+1)*n]
			for j = 0; j < n; j++ {
				rowK[j], rowP[j] = rowP[j], rowK[j]
			}
			piv[k], piv[p] = piv[p], piv[k]
		}
		pivot := a.data[k*n+k]
		for i = k + 1; i < n; i++ {
			f = a.data[i*n+k] / pivot
			a.data[i*n+k] = f
			if f == 0 {
				continue
			}
			for j = k + 1; j < n; j++ {
				a.data[i*n+j] -= f * a.data[k*n+j]
			}
		}
	}

	return &LUFactors{lu: a, piv: piv}, nil
}

// Size returns n.
func (f *LUFactors) Size() int { return f.lu.r }

// L returns the unit lower-triangular factor.
func (f *LUFactors) L() *Dense {
	n := f.lu.r
	out, _ := NewDense(n, n)
	for i := 0; i < n; i++ {
		out.data[i*n+i] = 1
		for j := 0; j < i; j++ {
			out.data[i*n+j] = f.lu.data[i*n+j]
		}
	}

	return out
}

// U returns the upper-triangular factor.
func (f *LUFactors) U() *Dense {
	n := f.lu.r
	out, _ := NewDense(n, n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.data[i*n+j] = f.lu.data[i*n+j]
		}
	}

	return out
}

// Pivots returns a copy of the row permutation.
func (f *LUFactors) Pivots() []int {
	out := make([]int, len(f.piv))
	copy(out, f.piv)

	return out
}

// Solve returns X with A·X = B for the factorized A.
//
// Implementation:
//   - Stage 1: permute rows of B by piv.
//   - Stage 2: forward substitution with unit L, then backward with U, per column.
//
// Errors:
//   - ErrDimensionMismatch when B.Rows != n.
//
// Complexity:
//   - Time O(n²·m) for m right-hand sides.
func (f *LUFactors) Solve(b Matrix) (*Dense, error) {
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	n := f.lu.r
	if b.Rows() != n {
		return nil, matrixErrorf(opSolve, ErrDimensionMismatch)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opSolve, err)
	}
	m := db.c
	x, _ := NewDense(n, m)
	for i := 0; i < n; i++ {
		copy(x.data[i*m:(i+1)*m], db.data[f.piv[i]*m:(f.piv[i]+1)*m])
	}
	lu := f.lu.data
	var s complex128
	for col := 0; col < m; col++ {
		for i := 1; i < n; i++ {
			s = x.data[i*m+col]
			for k := 0; k < i; k++ {
				s -= lu[i*n+k] * x.data[k*m+col]
			}
			x.data[i*m+col] = s
		}
		for i := n - 1; i >= 0; i-- {
			s = x.data[i*m+col]
			for k := i + 1; k < n; k++ {
				s -= lu[i*n+k] * x.data[k*m+col]
			}
			x.data[i*m+col] = s / lu[i*n+i]
		}
	}

	return x, nil
}

// Inverse returns A⁻¹ from the factorization.
func (f *LUFactors) Inverse() (*Dense, error) {
	id, err := NewIdentity(f.lu.r)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return f.Solve(id)
}

// Solve returns X with a·X = b using pivoted LU.
// Errors: ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch, ErrSingular.
func Solve(a, b Matrix) (*Dense, error) {
	f, err := LU(a)
	if err != nil {
		return nil, err
	}

	return f.Solve(b)
}

// Inverse returns m⁻¹ using pivoted LU.
// Errors: ErrNilMatrix, ErrNonSquare, ErrSingular.
func Inverse(m Matrix) (*Dense, error) {
	f, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	return f.Inverse()
}
