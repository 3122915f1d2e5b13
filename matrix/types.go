// SPDX-License-Identifier: MIT

package matrix

// Matrix is the read/write view every kernel accepts: operators, density
// vectors and superoperators alike. Accessors are O(1); Clone copies.
type Matrix interface {
	Rows() int
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (complex128, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid, ErrNaNInf under strict policy.
	Set(i, j int, v complex128) error

	// Clone returns a deep copy of the matrix.
	Clone() Matrix
}
