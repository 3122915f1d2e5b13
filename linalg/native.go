// SPDX-License-Identifier: MIT

package linalg

import "github.com/katalvlaran/qoc/matrix"

// Native delegates every capability to package matrix.
type Native struct {
	opts []matrix.Option
}

var _ EigenBackend = (*Native)(nil)

// NewNative returns a Native backend; opts set the numeric policy of every
// call (e.g. matrix.WithMaxCondition).
func NewNative(opts ...matrix.Option) *Native {
	return &Native{opts: append([]matrix.Option(nil), opts...)}
}

// Name implements Backend.
func (n *Native) Name() string { return NameNative }

// Expm implements Backend.
func (n *Native) Expm(a matrix.Matrix) (*matrix.Dense, error) {
	return matrix.Expm(a, n.opts...)
}

// ExpmFrechet implements Backend.
func (n *Native) ExpmFrechet(a, e matrix.Matrix) (*matrix.Dense, *matrix.Dense, error) {
	return matrix.ExpmFrechet(a, e, n.opts...)
}

// Mul implements Backend.
func (n *Native) Mul(a, b matrix.Matrix) (*matrix.Dense, error) { return matrix.Mul(a, b) }

// Trace implements Backend.
func (n *Native) Trace(a matrix.Matrix) (complex128, error) { return matrix.Trace(a) }

// EigenHermitian implements EigenBackend.
func (n *Native) EigenHermitian(h matrix.Matrix) ([]float64, *matrix.Dense, error) {
	return matrix.EigenHermitian(h, n.opts...)
}
