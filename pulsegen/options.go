// SPDX-License-Identifier: MIT

package pulsegen

import "math"

// Defaults for generator knobs.
const (
	DefaultScaling  = 1.0 // peak amplitude of the shape before offset
	DefaultOffset   = 0.0 // constant added to every sample
	DefaultNumWaves = 1.0 // full periods across the evolution for periodic shapes
	DefaultWidth    = 1.0 / 6.0
)

const (
	panicScalingInvalid  = "pulsegen: WithScaling: scaling must be finite"
	panicOffsetInvalid   = "pulsegen: WithOffset: offset must be finite"
	panicNumWavesInvalid = "pulsegen: WithNumWaves: waves must be finite and > 0"
	panicBoundsInvalid   = "pulsegen: WithBounds: need lower <= upper (NaN not allowed)"
	panicWidthInvalid    = "pulsegen: WithWidth: width must be finite and > 0"
	panicPhaseInvalid    = "pulsegen: WithPhase: phase must be finite"
)

// Option configures a Generate call.
type Option func(*config)

type config struct {
	scaling  float64
	offset   float64
	numWaves float64
	phase    float64 // start phase in radians for periodic shapes
	width    float64 // Gaussian σ as a fraction of the evolution
	lower    float64
	upper    float64
}

func newConfig(opts ...Option) config {
	c := config{
		scaling:  DefaultScaling,
		offset:   DefaultOffset,
		numWaves: DefaultNumWaves,
		width:    DefaultWidth,
		lower:    math.Inf(-1),
		upper:    math.Inf(1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}

// WithScaling sets the amplitude multiplier of the shape.
func WithScaling(s float64) Option {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		panic(panicScalingInvalid)
	}

	return func(c *config) { c.scaling = s }
}

// WithOffset adds a constant to every sample.
func WithOffset(off float64) Option {
	if math.IsNaN(off) || math.IsInf(off, 0) {
		panic(panicOffsetInvalid)
	}

	return func(c *config) { c.offset = off }
}

// WithNumWaves sets the number of periods across the evolution (periodic shapes).
func WithNumWaves(w float64) Option {
	if !(w > 0) || math.IsInf(w, 0) {
		panic(panicNumWavesInvalid)
	}

	return func(c *config) { c.numWaves = w }
}

// WithPhase sets the start phase (radians) of periodic shapes.
func WithPhase(phi float64) Option {
	if math.IsNaN(phi) || math.IsInf(phi, 0) {
		panic(panicPhaseInvalid)
	}

	return func(c *config) { c.phase = phi }
}

// WithWidth sets the Gaussian standard deviation as a fraction of the evolution time.
func WithWidth(w float64) Option {
	if !(w > 0) || math.IsInf(w, 0) {
		panic(panicWidthInvalid)
	}

	return func(c *config) { c.width = w }
}

// WithBounds clips every sample into [lower, upper]. Infinite bounds are allowed.
func WithBounds(lower, upper float64) Option {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		panic(panicBoundsInvalid)
	}

	return func(c *config) { c.lower, c.upper = lower, upper }
}
