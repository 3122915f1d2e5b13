// SPDX-License-Identifier: MIT
// Constructors for the shapes the superoperator code asks for most often:
// identities on d and d² spaces, diagonal operators and zero buffers.

package matrix

// NewZeros is NewDense under the name callers reach for when allocating buffers.
func NewZeros(rows, cols int) (*Dense, error) {
	return NewDense(rows, cols)
}

// NewIdentity returns the n×n identity.
func NewIdentity(n int) (*Dense, error) {
	id, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		id.data[i*n+i] = 1
	}

	return id, nil
}

// NewDiag returns a square matrix with vals on the diagonal.
func NewDiag(vals []complex128) (*Dense, error) {
	n := len(vals)
	d, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if !isFinite(v) {
			return nil, denseErrorf(ctxSet, i, i, ErrNaNInf)
		}
		d.data[i*n+i] = v
	}

	return d, nil
}

// ZerosLike returns a new zero matrix with the same shape as m.
func ZerosLike(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}

	return NewDense(m.Rows(), m.Cols())
}

// IdentityLike returns I with dimension = Rows(m); requires square shape.
func IdentityLike(m Matrix) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf("IdentityLike", err)
	}

	return NewIdentity(m.Rows())
}

// AsDense returns m as a *Dense, copying only when m is another implementation.
// The result must be treated as read-only when m is already *Dense.
func AsDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, err
	}

	return toDense(m)
}
