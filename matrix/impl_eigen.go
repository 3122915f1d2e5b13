// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"math/cmplx"
	"sort"
)

// gramSchmidtFloor is the minimum residual norm a candidate eigenvector must
// keep after projection to count as a new direction.
const gramSchmidtFloor = 1e-6

// EigenHermitian computes the eigen-decomposition of a Hermitian matrix.
//
// Implementation:
//   - Stage 1: ValidateHermitian(m, eps).
//   - Stage 2: Build the real-symmetric embedding M = [[X, −Y], [Y, X]] of H = X + iY (2n×2n).
//     Every eigenvalue of H appears twice in M; a real eigenvector [u; v] of M gives
//     the complex eigenvector z = u + i·v of H.
//   - Stage 3: Classical Jacobi on M (largest off-diagonal pivot, i→j scan).
//   - Stage 4: Sort the 2n pairs ascending by eigenvalue, then greedily keep candidates
//     that stay independent under complex Gram–Schmidt until n vectors are chosen.
//
// Behavior highlights:
//   - Eigenvalues are returned ascending; eigenvectors are the columns of the second result,
//     orthonormal w.r.t. the complex inner product.
//   - Deterministic pivot scan and tie-breaking (stable sort).
//
// Inputs:
//   - m: Hermitian matrix within the configured epsilon.
//   - opts: WithEpsilon, WithEigenTolerance, WithMaxSweeps.
//
// Returns:
//   - []float64: eigenvalues (ascending).
//   - *Dense: n×n unitary matrix whose columns are eigenvectors.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNotHermitian, ErrEigenFailed.
//
// Complexity:
//   - Time O(sweeps·n⁴) worst case for classical Jacobi on the 2n embedding, Space O(n²).
func EigenHermitian(m Matrix, opts ...Option) ([]float64, *Dense, error) {
	o := gatherOptions(opts...)
	if err := ValidateHermitian(m, o.eps); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	h, err := toDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	n := h.r
	nn := 2 * n
	a := make([]float64, nn*nn)
	var x, y float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y = real(h.data[i*n+j]), imag(h.data[i*n+j])
			a[i*nn+j] = x
			a[i*nn+j+n] = -y
			a[(i+n)*nn+j] = y
			a[(i+n)*nn+j+n] = x
		}
	}
	// Symmetrize away the eps-level asymmetry admitted by validation.
	for i := 0; i < nn; i++ {
		for j := i + 1; j < nn; j++ {
			avg := 0.5 * (a[i*nn+j] + a[j*nn+i])
			a[i*nn+j], a[j*nn+i] = avg, avg
		}
	}

	vals, vecs, err := jacobiSymmetric(a, nn, o.eigenTol, o.maxSweeps*nn*nn)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	order := make([]int, nn)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(p, q int) bool { return vals[order[p]] < vals[order[q]] })

	outVals := make([]float64, 0, n)
	chosen := make([][]complex128, 0, n)
	z := make([]complex128, n)
	for _, col := range order {
		for i := 0; i < n; i++ {
			z[i] = complex(vecs[i*nn+col], vecs[(i+n)*nn+col])
		}
		for _, q := range chosen {
			var dot complex128
			for i := range z {
				dot += cmplx.Conj(q[i]) * z[i]
			}
			for i := range z {
				z[i] -= dot * q[i]
			}
		}
		nrm := 0.0
		for _, v := range z {
			nrm += real(v)*real(v) + imag(v)*imag(v)
		}
		nrm = math.Sqrt(nrm)
		if nrm < gramSchmidtFloor {
			continue
		}
		keep := make([]complex128, n)
		for i, v := range z {
			keep[i] = v / complex(nrm, 0)
		}
		chosen = append(chosen, keep)
		outVals = append(outVals, vals[col])
		if len(chosen) == n {
			break
		}
	}
	if len(chosen) != n {
		return nil, nil, matrixErrorf(opEigen, ErrEigenFailed)
	}

	q, _ := NewDense(n, n)
	for j, vec := range chosen {
		for i, v := range vec {
			q.data[i*n+j] = v
		}
	}

	return outVals, q, nil
}

// jacobiSymmetric diagonalizes the real symmetric n×n matrix a (row-major,
// modified in place) by classical Jacobi rotations.
//
// Implementation:
//   - Stage 1: find pivot (p,q) maximizing |a[p,q]| in i→j order.
//   - Stage 2: stop when it is below tol·max(1, ‖a‖_F).
//   - Stage 3: rotate a and accumulate the rotation into v.
//
// Returns eigenvalues (diagonal) and v (columns are eigenvectors).
// Errors: ErrEigenFailed when maxIter rotations do not converge.
func jacobiSymmetric(a []float64, n int, tol float64, maxIter int) ([]float64, []float64, error) {
	v := make([]float64, n*n)
	for i := 0; i < n; i++ {
		v[i*n+i] = 1
	}
	frob := 0.0
	for _, x := range a {
		frob += x * x
	}
	thresh := tol * math.Max(1, math.Sqrt(frob))

	var (
		iter, i, p, q      int
		maxOff, off        float64
		app, aqq, apq      float64
		aip, aiq, vip, viq float64
		theta, t, c, s     float64
		converged          bool
	)
	for iter = 0; iter <= maxIter; iter++ {
		maxOff = 0
		for i = 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if off = math.Abs(a[i*n+j]); off > maxOff {
					maxOff, p, q = off, i, j
				}
			}
		}
		if maxOff <= thresh {
			converged = true
			break
		}
		if iter == maxIter {
			break
		}
		app, aqq, apq = a[p*n+p], a[q*n+q], a[p*n+q]
		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		for i = 0; i < n; i++ {
			if i == p || i == q {
				continue
			}
			aip, aiq = a[i*n+p], a[i*n+q]
			a[i*n+p], a[p*n+i] = c*aip-s*aiq, c*aip-s*aiq
			a[i*n+q], a[q*n+i] = s*aip+c*aiq, s*aip+c*aiq
		}
		a[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a[q*n+q] = s*s*app + 2*c*s*apq + c*c*aqq
		a[p*n+q], a[q*n+p] = 0, 0

		for i = 0; i < n; i++ {
			vip, viq = v[i*n+p], v[i*n+q]
			v[i*n+p] = c*vip - s*viq
			v[i*n+q] = s*vip + c*viq
		}
	}
	if !converged {
		return nil, nil, ErrEigenFailed
	}
	vals := make([]float64, n)
	for i = 0; i < n; i++ {
		vals[i] = a[i*n+i]
	}

	return vals, v, nil
}
