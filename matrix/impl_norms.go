// SPDX-License-Identifier: MIT

package matrix

import (
	"math"
	"math/cmplx"
)

// NormFrobenius returns sqrt(Σ|m[i,j]|²) using a scaled accumulation
// (no overflow for large entries).
func NormFrobenius(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, err
	}
	d, err := toDense(m)
	if err != nil {
		return 0, err
	}
	scale, ssq := 0.0, 1.0
	for _, v := range d.data {
		for _, x := range [2]float64{real(v), imag(v)} {
			if x == 0 {
				continue
			}
			ax := math.Abs(x)
			if scale < ax {
				ssq = 1 + ssq*(scale/ax)*(scale/ax)
				scale = ax
			} else {
				ssq += (ax / scale) * (ax / scale)
			}
		}
	}

	return scale * math.Sqrt(ssq), nil
}

// NormOne returns the maximum absolute column sum.
func NormOne(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, err
	}
	d, err := toDense(m)
	if err != nil {
		return 0, err
	}

	return norm1(d), nil
}

// norm1 is the allocation-free kernel behind NormOne.
func norm1(d *Dense) float64 {
	best := 0.0
	for j := 0; j < d.c; j++ {
		s := 0.0
		for i := 0; i < d.r; i++ {
			s += cmplx.Abs(d.data[i*d.c+j])
		}
		if s > best || math.IsNaN(s) {
			best = s
		}
	}

	return best
}

// NormInf returns the maximum absolute row sum.
func NormInf(m Matrix) (float64, error) {
	t, err := Transpose(m)
	if err != nil {
		return 0, err
	}

	return norm1(t), nil
}

// MaxAbs returns max |m[i,j]|.
func MaxAbs(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, err
	}
	d, err := toDense(m)
	if err != nil {
		return 0, err
	}
	best := 0.0
	for _, v := range d.data {
		if a := cmplx.Abs(v); a > best {
			best = a
		}
	}

	return best, nil
}

// AllClose reports whether a and b have the same shape and every entry
// satisfies |a-b| ≤ atol + rtol·|b|. Nil or mismatched operands are never close.
func AllClose(a, b Matrix, rtol, atol float64) bool {
	da, db, err := binaryDense(a, b)
	if err != nil {
		return false
	}
	for k := range da.data {
		if cmplx.Abs(da.data[k]-db.data[k]) > atol+rtol*cmplx.Abs(db.data[k]) {
			return false
		}
	}

	return true
}

// IsFinite reports whether every entry of m is finite.
func IsFinite(m Matrix) bool {
	return ValidateFinite(m) == nil
}
