// SPDX-License-Identifier: MIT
// Package matrix provides universal operations on any Matrix implementation:
// element-wise addition and subtraction, scaling, matrix multiplication,
// transpose / conjugate / adjoint, Kronecker products and traces. All
// functions perform strict fail-fast validation and return clear errors on
// dimension mismatches.
//
// Notes:
//   - Every kernel accepts Matrix and returns a freshly allocated *Dense; inputs are never mutated.
//   - Non-*Dense operands are materialized once via toDense, then the flat fast path runs.

package matrix

import (
	"fmt"
	"math/cmplx"
)

// Operation name constants for unified error wrapping and reducing magic strings.
const (
	opAdd         = "Add"
	opSub         = "Sub"
	opAddScaled   = "AddScaled"
	opMul         = "Mul"
	opTranspose   = "Transpose"
	opConj        = "Conj"
	opAdjoint     = "Adjoint"
	opScale       = "Scale"
	opKron        = "Kron"
	opTrace       = "Trace"
	opTraceProd   = "TraceProduct"
	opEigen       = "EigenHermitian"
	opInverse     = "Inverse"
	opLU          = "LU"
	opSolve       = "Solve"
	opExpm        = "Expm"
	opExpmFrechet = "ExpmFrechet"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
//
// Implementation:
//   - Stage 1: Wrap using fmt.Errorf("%s: %w", tag, err) to enable errors.Is/As.
//
// Complexity:
//   - Time O(1), Space O(1).
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// binaryDense validates same-shape operands and materializes both.
func binaryDense(a, b Matrix) (*Dense, *Dense, error) {
	if err := ValidateSameShape(a, b); err != nil {
		return nil, nil, err
	}
	da, err := toDense(a)
	if err != nil {
		return nil, nil, err
	}
	db, err := toDense(b)
	if err != nil {
		return nil, nil, err
	}

	return da, db, nil
}

// axpy computes out = a + alpha*b over identical shapes.
//
// Implementation:
//   - Stage 1: validate shapes, materialize operands.
//   - Stage 2: single flat loop 0..n-1.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for the result.
func axpy(a, b Matrix, alpha complex128, opTag string) (*Dense, error) {
	da, db, err := binaryDense(a, b)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	res, err := NewDense(da.r, da.c)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	for k := range res.data {
		res.data[k] = da.data[k] + alpha*db.data[k]
	}

	return res, nil
}

// Add returns a + b. Errors: ErrNilMatrix, ErrDimensionMismatch.
func Add(a, b Matrix) (*Dense, error) { return axpy(a, b, 1, opAdd) }

// Sub returns a − b. Errors: ErrNilMatrix, ErrDimensionMismatch.
func Sub(a, b Matrix) (*Dense, error) { return axpy(a, b, -1, opSub) }

// AddScaled returns a + alpha*b. It is the workhorse for assembling
// time-slot generators (drift + Σ u_j·H_j) without intermediate scaled copies.
func AddScaled(a, b Matrix, alpha complex128) (*Dense, error) {
	return axpy(a, b, alpha, opAddScaled)
}

// Scale returns alpha*m.
func Scale(m Matrix, alpha complex128) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	res, _ := NewDense(d.r, d.c) // shape already validated by d
	for k, v := range d.data {
		res.data[k] = alpha * v
	}

	return res, nil
}

// Mul computes the matrix product a × b.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); allocate r×c result.
//   - Stage 2: i→k→j loop order so the inner loop streams rows of b and res.
//
// Behavior highlights:
//   - Zero entries of a skip the inner loop (cheap win on sparse generators).
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//
// Determinism:
//   - Fixed i→k→j order produces bitwise-stable output.
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	r, n, c := da.r, da.c, db.c
	res, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, k, j int
		aik     complex128
		rowRes  []complex128
		rowB    []complex128
	)
	for i = 0; i < r; i++ {
		rowRes = res.data[i*c : (i+1)*c]
		for k = 0; k < n; k++ {
			aik = da.data[i*n+k]
			if aik == 0 {
				continue
			}
			rowB = db.data[k*c : (k+1)*c]
			for j = 0; j < c; j++ {
				rowRes[j] += aik * rowB[j]
			}
		}
	}

	return res, nil
}

// MulChain multiplies ms left to right: ms[0]·ms[1]·…. At least one operand
// is required.
func MulChain(ms ...Matrix) (*Dense, error) {
	if len(ms) == 0 {
		return nil, matrixErrorf(opMul, ErrNilMatrix)
	}
	if err := ValidateNotNil(ms[0]); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	acc, err := toDense(ms[0])
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	acc = acc.clone()
	for _, m := range ms[1:] {
		if acc, err = Mul(acc, m); err != nil {
			return nil, err
		}
	}

	return acc, nil
}

// unaryMap applies f to m and writes into position pos(i,j) of a c×r or r×c result.
func unaryMap(m Matrix, transpose bool, f func(complex128) complex128, opTag string) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	d, err := toDense(m)
	if err != nil {
		return nil, matrixErrorf(opTag, err)
	}
	r, c := d.r, d.c
	if !transpose {
		res, _ := NewDense(r, c)
		for k, v := range d.data {
			res.data[k] = f(v)
		}

		return res, nil
	}
	res, _ := NewDense(c, r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			res.data[j*r+i] = f(d.data[i*c+j])
		}
	}

	return res, nil
}

func identityFn(v complex128) complex128 { return v }

// Transpose returns mᵀ (no conjugation).
func Transpose(m Matrix) (*Dense, error) { return unaryMap(m, true, identityFn, opTranspose) }

// Conj returns the element-wise complex conjugate m*.
func Conj(m Matrix) (*Dense, error) { return unaryMap(m, false, cmplx.Conj, opConj) }

// Adjoint returns the conjugate transpose m†.
func Adjoint(m Matrix) (*Dense, error) { return unaryMap(m, true, cmplx.Conj, opAdjoint) }

// Kron returns the Kronecker product a⊗b, an (ra·rb)×(ca·cb) matrix with
// (a⊗b)[i·rb+k, j·cb+l] = a[i,j]·b[k,l].
//
// Determinism:
//   - Fixed i→j→k→l traversal.
//
// Complexity:
//   - Time O(ra·ca·rb·cb), Space the same.
func Kron(a, b Matrix) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	db, err := toDense(b)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	rows, cols := da.r*db.r, da.c*db.c
	res, err := NewDense(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opKron, err)
	}
	var aij complex128
	for i := 0; i < da.r; i++ {
		for j := 0; j < da.c; j++ {
			aij = da.data[i*da.c+j]
			if aij == 0 {
				continue
			}
			for k := 0; k < db.r; k++ {
				base := (i*db.r+k)*cols + j*db.c
				for l := 0; l < db.c; l++ {
					res.data[base+l] = aij * db.data[k*db.c+l]
				}
			}
		}
	}

	return res, nil
}

// Trace returns Σ m[i,i]. Errors: ErrNilMatrix, ErrNonSquare.
func Trace(m Matrix) (complex128, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opTrace, err)
	}
	d, err := toDense(m)
	if err != nil {
		return 0, matrixErrorf(opTrace, err)
	}
	var s complex128
	for i := 0; i < d.r; i++ {
		s += d.data[i*d.c+i]
	}

	return s, nil
}

// TraceProduct returns Tr(a·b) = Σ_ij a[i,j]·b[j,i] without forming the product.
// Requires a: r×n and b: n×r.
// Complexity: O(r·n).
func TraceProduct(a, b Matrix) (complex128, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	if a.Rows() != b.Cols() {
		return 0, matrixErrorf(opTraceProd, ErrNonSquare)
	}
	da, err := toDense(a)
	if err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	db, err := toDense(b)
	if err != nil {
		return 0, matrixErrorf(opTraceProd, err)
	}
	r, n := da.r, da.c
	var s complex128
	for i := 0; i < r; i++ {
		for j := 0; j < n; j++ {
			s += da.data[i*n+j] * db.data[j*r+i]
		}
	}

	return s, nil
}
