// SPDX-License-Identifier: MIT

// Package matrix - matrix exponential and its Fréchet derivative.
//
// Purpose:
//   - Expm: scaling-and-squaring with diagonal Padé approximants of degree 3..13
//     (Higham, "The scaling and squaring method for the matrix exponential revisited", 2005).
//   - ExpmFrechet: exact directional derivative L(A, E) via the block identity
//     exp([[A, E], [0, A]]) = [[exp(A), L(A, E)], [0, exp(A)]].
//
// Numeric policy:
//   - The Padé denominator Q = V − U is solved with pivoted LU. Its 1-norm condition
//     estimate ‖Q‖₁·‖Q⁻¹‖₁ is checked against maxCondition; a breach, or a non-finite
//     result, is returned as *ConditionError (errors.Is → ErrIllConditioned).

package matrix

import (
	"math"
)

// Padé selection thresholds θ_m on ‖A‖₁ (double precision, unit roundoff 2⁻⁵³).
const (
	theta3  = 1.495585217958292e-2
	theta5  = 2.539398330063230e-1
	theta7  = 9.504178996162932e-1
	theta9  = 2.097847961257068e0
	theta13 = 5.371920351148152e0
)

// Padé coefficients b_0..b_m for each supported degree.
var (
	padeB3 = []float64{120, 60, 12, 1}
	padeB5 = []float64{30240, 15120, 3360, 420, 30, 1}
	padeB7 = []float64{17297280, 8648640, 1995840, 277200, 25200, 1512, 56, 1}
	padeB9 = []float64{
		17643225600, 8821612800, 2075673600, 302702400, 30270240,
		2162160, 110880, 3960, 90, 1,
	}
	padeB13 = []float64{
		64764752532480000, 32382376266240000, 7771770303897600,
		1187353796428800, 129060195264000, 10559470521600,
		670442572800, 33522128640, 1323241920,
		40840800, 960960, 16380, 182, 1,
	}
)

// ExpmInfo describes how an exponential was computed.
type ExpmInfo struct {
	Degree  int     // Padé degree used (3, 5, 7, 9 or 13)
	Squares int     // number of squarings s (A was scaled by 2^-s)
	Cond    float64 // 1-norm condition estimate of the Padé denominator
}

// Expm returns exp(a) for a square matrix.
// Errors: ErrNilMatrix, ErrNonSquare, ErrNaNInf, ErrSingular, ErrIllConditioned.
func Expm(a Matrix, opts ...Option) (*Dense, error) {
	res, _, err := ExpmWithInfo(a, opts...)

	return res, err
}

// ExpmWithInfo is Expm that also reports degree, squarings and the condition estimate.
//
// Implementation:
//   - Stage 1: validate square and finite input; compute ‖A‖₁.
//   - Stage 2: choose the smallest degree m ∈ {3,5,7,9} with ‖A‖₁ ≤ θ_m; otherwise
//     degree 13 with s = max(0, ⌈log₂(‖A‖₁/θ₁₃)⌉) and A ← A/2^s.
//   - Stage 3: form U (odd part) and V (even part), solve (V−U)·X = V+U.
//   - Stage 4: square X s times; verify finiteness.
//
// Determinism:
//   - Fixed degree selection and fixed kernel loop orders.
//
// Complexity:
//   - Time O((m/2 + s)·n³), Space O(n²·k) for the power cache.
func ExpmWithInfo(a Matrix, opts ...Option) (*Dense, ExpmInfo, error) {
	o := gatherOptions(opts...)
	if err := ValidateSquare(a); err != nil {
		return nil, ExpmInfo{}, matrixErrorf(opExpm, err)
	}
	if err := ValidateFinite(a); err != nil {
		return nil, ExpmInfo{}, matrixErrorf(opExpm, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, ExpmInfo{}, matrixErrorf(opExpm, err)
	}

	n := da.r
	info := ExpmInfo{}
	nrm := norm1(da)
	if nrm == 0 {
		id, _ := NewIdentity(n)
		info.Degree, info.Cond = 3, 1

		return id, info, nil
	}

	var u, v *Dense
	switch {
	case nrm <= theta3:
		info.Degree = 3
		u, v = padeOddEven(da, padeB3)
	case nrm <= theta5:
		info.Degree = 5
		u, v = padeOddEven(da, padeB5)
	case nrm <= theta7:
		info.Degree = 7
		u, v = padeOddEven(da, padeB7)
	case nrm <= theta9:
		info.Degree = 9
		u, v = padeOddEven(da, padeB9)
	default:
		info.Degree = 13
		s := int(math.Ceil(math.Log2(nrm / theta13)))
		if s < 0 {
			s = 0
		}
		info.Squares = s
		scaled := da
		if s > 0 {
			scaled, _ = Scale(da, complex(math.Ldexp(1, -s), 0))
		}
		u, v = pade13(scaled)
	}

	x, cond, err := padeSolve(u, v, o.maxCondition)
	info.Cond = cond
	if err != nil {
		return nil, info, matrixErrorf(opExpm, err)
	}
	for k := 0; k < info.Squares; k++ {
		if x, err = Mul(x, x); err != nil {
			return nil, info, matrixErrorf(opExpm, err)
		}
	}
	if !IsFinite(x) {
		return nil, info, matrixErrorf(opExpm, &ConditionError{Op: opExpm, Cond: math.Inf(1), Limit: o.maxCondition})
	}

	return x, info, nil
}

// padeOddEven builds U = A·Σ b_{2k+1}A^{2k} and V = Σ b_{2k}A^{2k} for m ≤ 9.
func padeOddEven(a *Dense, b []float64) (*Dense, *Dense) {
	n := a.r
	id, _ := NewIdentity(n)
	a2, _ := Mul(a, a)
	odd, _ := Scale(id, complex(b[1], 0))
	even, _ := Scale(id, complex(b[0], 0))
	pow := id
	for k := 2; k < len(b); k += 2 {
		pow, _ = Mul(pow, a2)
		even, _ = AddScaled(even, pow, complex(b[k], 0))
		if k+1 < len(b) {
			odd, _ = AddScaled(odd, pow, complex(b[k+1], 0))
		}
	}
	u, _ := Mul(a, odd)

	return u, even
}

// pade13 builds U and V for degree 13 using A², A⁴, A⁶ only.
func pade13(a *Dense) (*Dense, *Dense) {
	b := padeB13
	n := a.r
	id, _ := NewIdentity(n)
	a2, _ := Mul(a, a)
	a4, _ := Mul(a2, a2)
	a6, _ := Mul(a4, a2)

	c := func(x float64) complex128 { return complex(x, 0) }

	// U = A·[A6·(b13 A6 + b11 A4 + b9 A2) + b7 A6 + b5 A4 + b3 A2 + b1 I]
	inner, _ := Scale(a6, c(b[13]))
	inner, _ = AddScaled(inner, a4, c(b[11]))
	inner, _ = AddScaled(inner, a2, c(b[9]))
	inner, _ = Mul(a6, inner)
	inner, _ = AddScaled(inner, a6, c(b[7]))
	inner, _ = AddScaled(inner, a4, c(b[5]))
	inner, _ = AddScaled(inner, a2, c(b[3]))
	inner, _ = AddScaled(inner, id, c(b[1]))
	u, _ := Mul(a, inner)

	// V = A6·(b12 A6 + b10 A4 + b8 A2) + b6 A6 + b4 A4 + b2 A2 + b0 I
	ev, _ := Scale(a6, c(b[12]))
	ev, _ = AddScaled(ev, a4, c(b[10]))
	ev, _ = AddScaled(ev, a2, c(b[8]))
	ev, _ = Mul(a6, ev)
	ev, _ = AddScaled(ev, a6, c(b[6]))
	ev, _ = AddScaled(ev, a4, c(b[4]))
	ev, _ = AddScaled(ev, a2, c(b[2]))
	ev, _ = AddScaled(ev, id, c(b[0]))

	return u, ev
}

// padeSolve solves (V−U)·X = V+U and returns X with cond₁(V−U).
func padeSolve(u, v *Dense, maxCond float64) (*Dense, float64, error) {
	q, err := Sub(v, u)
	if err != nil {
		return nil, 0, err
	}
	p, err := Add(v, u)
	if err != nil {
		return nil, 0, err
	}
	f, err := LU(q)
	if err != nil {
		return nil, math.Inf(1), &ConditionError{Op: opExpm, Cond: math.Inf(1), Limit: maxCond}
	}
	qinv, err := f.Inverse()
	if err != nil {
		return nil, math.Inf(1), err
	}
	cond := norm1(q) * norm1(qinv)
	if math.IsNaN(cond) || cond > maxCond {
		return nil, cond, &ConditionError{Op: opExpm, Cond: cond, Limit: maxCond}
	}
	x, err := Mul(qinv, p)
	if err != nil {
		return nil, cond, err
	}

	return x, cond, nil
}

// ExpmFrechet returns exp(a) and the Fréchet derivative L(a, e), the
// directional derivative of exp at a in direction e.
//
// Implementation:
//   - Stage 1: validate a square, e same shape.
//   - Stage 2: assemble the 2n×2n block [[a, e], [0, a]] and exponentiate.
//   - Stage 3: split the top row of blocks into exp(a) and L(a, e).
//
// Errors: as Expm, plus ErrDimensionMismatch for e.
// Complexity: one Expm of size 2n (≈ 8× the cost of Expm(a)).
func ExpmFrechet(a, e Matrix, opts ...Option) (*Dense, *Dense, error) {
	expA, l, _, err := ExpmFrechetWithInfo(a, e, opts...)

	return expA, l, err
}

// ExpmFrechetWithInfo is ExpmFrechet that also reports the block exponential's info.
func ExpmFrechetWithInfo(a, e Matrix, opts ...Option) (*Dense, *Dense, ExpmInfo, error) {
	if err := ValidateSquare(a); err != nil {
		return nil, nil, ExpmInfo{}, matrixErrorf(opExpmFrechet, err)
	}
	if err := ValidateSameShape(a, e); err != nil {
		return nil, nil, ExpmInfo{}, matrixErrorf(opExpmFrechet, err)
	}
	da, err := toDense(a)
	if err != nil {
		return nil, nil, ExpmInfo{}, matrixErrorf(opExpmFrechet, err)
	}
	de, err := toDense(e)
	if err != nil {
		return nil, nil, ExpmInfo{}, matrixErrorf(opExpmFrechet, err)
	}
	n := da.r
	nn := 2 * n
	block, _ := NewDense(nn, nn)
	for i := 0; i < n; i++ {
		copy(block.data[i*nn:i*nn+n], da.data[i*n:(i+1)*n])
		copy(block.data[i*nn+n:(i+1)*nn], de.data[i*n:(i+1)*n])
		copy(block.data[(i+n)*nn+n:(i+n+1)*nn], da.data[i*n:(i+1)*n])
	}
	full, info, err := ExpmWithInfo(block, opts...)
	if err != nil {
		return nil, nil, info, matrixErrorf(opExpmFrechet, err)
	}
	expA, _ := NewDense(n, n)
	l, _ := NewDense(n, n)
	for i := 0; i < n; i++ {
		copy(expA.data[i*n:(i+1)*n], full.data[i*nn:i*nn+n])
		copy(l.data[i*n:(i+1)*n], full.data[i*nn+n:(i+1)*nn])
	}

	return expA, l, info, nil
}
