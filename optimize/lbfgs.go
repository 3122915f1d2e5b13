// SPDX-License-Identifier: MIT

package optimize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// box is the feasible region [lo, hi]ⁿ.
type box struct {
	lo, hi float64
}

// clip projects x onto the box in place.
func (b box) clip(x []float64) {
	for i, v := range x {
		x[i] = math.Min(math.Max(v, b.lo), b.hi)
	}
}

// projectGradient zeroes components that point out of the box at active bounds.
// A descent step moves along −g, so g_i > 0 at the lower bound is blocked.
func (b box) projectGradient(dst, x, g []float64) []float64 {
	for i := range g {
		switch {
		case x[i] <= b.lo && g[i] > 0:
			dst[i] = 0
		case x[i] >= b.hi && g[i] < 0:
			dst[i] = 0
		default:
			dst[i] = g[i]
		}
	}

	return dst
}

// maskDirection zeroes direction components that would leave the box at an
// active bound.
func (b box) maskDirection(d, x []float64) {
	for i := range d {
		if (x[i] <= b.lo && d[i] < 0) || (x[i] >= b.hi && d[i] > 0) {
			d[i] = 0
		}
	}
}

// correction is one L-BFGS pair with ρ = 1/(yᵀs).
type correction struct {
	s, y []float64
	rho  float64
}

// memory is the bounded correction history, oldest first.
type memory struct {
	cap   int
	pairs []correction
}

func newMemory(capacity int) *memory {
	return &memory{cap: capacity, pairs: make([]correction, 0, capacity)}
}

func (m *memory) len() int { return len(m.pairs) }

func (m *memory) reset() { m.pairs = m.pairs[:0] }

// push stores (s, y) if the curvature yᵀs is safely positive and reports
// whether it did.
func (m *memory) push(s, y []float64) bool {
	sy := floats.Dot(s, y)
	if sy <= curvatureFloor*floats.Norm(s, 2)*floats.Norm(y, 2) {
		return false
	}
	c := correction{
		s:   append([]float64(nil), s...),
		y:   append([]float64(nil), y...),
		rho: 1 / sy,
	}
	if len(m.pairs) == m.cap {
		copy(m.pairs, m.pairs[1:])
		m.pairs[len(m.pairs)-1] = c
	} else {
		m.pairs = append(m.pairs, c)
	}

	return true
}

// direction returns d = −H·g by the two-loop recursion, with the initial
// scaling γ = sᵀy / yᵀy from the newest pair. With no pairs d = −g.
func (m *memory) direction(dst, g []float64) []float64 {
	copy(dst, g)
	k := len(m.pairs)
	if k == 0 {
		floats.Scale(-1, dst)

		return dst
	}
	alpha := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		p := m.pairs[i]
		alpha[i] = p.rho * floats.Dot(p.s, dst)
		floats.AddScaled(dst, -alpha[i], p.y)
	}
	last := m.pairs[k-1]
	floats.Scale(floats.Dot(last.s, last.y)/floats.Dot(last.y, last.y), dst)
	for i := 0; i < k; i++ {
		p := m.pairs[i]
		beta := p.rho * floats.Dot(p.y, dst)
		floats.AddScaled(dst, alpha[i]-beta, p.s)
	}
	floats.Scale(-1, dst)

	return dst
}

// flatten copies an nTS×nCtrls table into a row-major vector.
func flatten(amps [][]float64) []float64 {
	var n int
	for _, row := range amps {
		n += len(row)
	}
	out := make([]float64, 0, n)
	for _, row := range amps {
		out = append(out, row...)
	}

	return out
}

// unflatten is the inverse of flatten for an nTS×nCtrls table.
func unflatten(x []float64, nTS, nCtrls int) [][]float64 {
	out := make([][]float64, nTS)
	for t := range out {
		out[t] = make([]float64, nCtrls)
		copy(out[t], x[t*nCtrls:(t+1)*nCtrls])
	}

	return out
}
