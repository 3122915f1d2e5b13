// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major, complex128) & safe accessors.
//
// Storage is one flat slice indexed i*cols + j. At and Set report bad indices
// as errors and Set rejects NaN/Inf, so a Dense built through the public
// surface is always finite. Kernels in this package read the slice directly.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c).

package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"       // method tag used in error wrappers
	ctxSet      = "Set"      // method tag used in error wrappers
	ctxFromRows = "FromRows" // ctor tag
	ctxFromData = "NewDenseFrom"
)

// ---------- Formatting literals ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
//
// Implementation:
//   - Stage 1: format "Dense.<method>(row,col): %w".
//
// Inputs:
//   - method: context tag (ctxAt/ctxSet/...)
//   - row, col: coordinates
//   - err: sentinel (e.g., ErrOutOfRange, ErrNaNInf)
//
// Complexity:
//   - Time O(1), Space O(1).
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major complex matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int          // row and column counts (>0 for public constructors)
	data []complex128 // contiguous row-major storage (len == r*c)
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate the zero-filled buffer.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]complex128, rows*cols)}, nil
}

// NewDenseFrom wraps a copy of data (row-major, len == rows*cols) into a Dense.
//
// Errors:
//   - ErrInvalidDimensions for non-positive shape.
//   - ErrDimensionMismatch when len(data) != rows*cols.
//   - ErrNaNInf when any entry is non-finite.
func NewDenseFrom(rows, cols int, data []complex128) (*Dense, error) {
	d, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%s: len=%d want %d: %w", ctxFromData, len(data), rows*cols, ErrDimensionMismatch)
	}
	for k, v := range data {
		if !isFinite(v) {
			return nil, denseErrorf(ctxFromData, k/cols, k%cols, ErrNaNInf)
		}
	}
	copy(d.data, data)

	return d, nil
}

// FromRows builds a Dense from a rectangular slice of rows.
// Ragged input yields ErrDimensionMismatch; empty input ErrInvalidDimensions.
func FromRows(rows [][]complex128) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, c := len(rows), len(rows[0])
	d, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%s: row %d has %d cols, want %d: %w", ctxFromRows, i, len(row), c, ErrDimensionMismatch)
		}
		for j, v := range row {
			if !isFinite(v) {
				return nil, denseErrorf(ctxFromRows, i, j, ErrNaNInf)
			}
			d.data[i*c+j] = v
		}
	}

	return d, nil
}

// FromReal builds a Dense with zero imaginary parts from real rows.
func FromReal(rows [][]float64) (*Dense, error) {
	cr := make([][]complex128, len(rows))
	for i, row := range rows {
		cr[i] = make([]complex128, len(row))
		for j, v := range row {
			cr[i][j] = complex(v, 0)
		}
	}

	return FromRows(cr)
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// At returns the element at (i, j) or ErrOutOfRange.
func (m *Dense) At(i, j int) (complex128, error) {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return 0, denseErrorf(ctxAt, i, j, ErrOutOfRange)
	}

	return m.data[i*m.c+j], nil
}

// Set writes v at (i, j). Non-finite values are rejected with ErrNaNInf and
// the matrix is left untouched.
func (m *Dense) Set(i, j int, v complex128) error {
	if i < 0 || i >= m.r || j < 0 || j >= m.c {
		return denseErrorf(ctxSet, i, j, ErrOutOfRange)
	}
	if !isFinite(v) {
		return denseErrorf(ctxSet, i, j, ErrNaNInf)
	}
	m.data[i*m.c+j] = v

	return nil
}

// Clone returns a deep copy.
func (m *Dense) Clone() Matrix { return m.clone() }

// clone is the typed variant used by kernels.
func (m *Dense) clone() *Dense {
	out := &Dense{r: m.r, c: m.c, data: make([]complex128, len(m.data))}
	copy(out.data, m.data)

	return out
}

// RawCopy returns a row-major copy of the backing buffer.
func (m *Dense) RawCopy() []complex128 {
	out := make([]complex128, len(m.data))
	copy(out, m.data)

	return out
}

// String renders rows as "[a, b]\n" with compact complex formatting.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		sb.WriteString(_fmtRowOpen)
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			sb.WriteString(strconv.FormatComplex(m.data[i*m.c+j], 'g', 6, 128))
		}
		sb.WriteString(_fmtRowClose)
	}

	return sb.String()
}

// isFinite reports whether both parts of v are finite.
func isFinite(v complex128) bool {
	return !cmplx.IsNaN(v) && !math.IsInf(real(v), 0) && !math.IsInf(imag(v), 0)
}

// toDense materializes any Matrix as *Dense. A *Dense is returned as-is
// (no copy); callers must not mutate the result unless they own it.
func toDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < out.r; i++ {
		for j := 0; j < out.c; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			out.data[i*out.c+j] = v
		}
	}

	return out, nil
}
