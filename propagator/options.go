// SPDX-License-Identifier: MIT

package propagator

// Option configures an Engine.
type Option func(*options)

type options struct {
	gradient     bool
	recomputeAll bool
}

func gatherOptions(opts ...Option) options {
	o := options{gradient: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithoutGradient skips Fréchet derivatives; Update only computes propagators
// and evolution chains.
func WithoutGradient() Option {
	return func(o *options) { o.gradient = false }
}

// WithRecomputeAll disables dirty-slot tracking: every Update recomputes every
// timeslot. Results are identical to the cached mode.
func WithRecomputeAll() Option {
	return func(o *options) { o.recomputeAll = true }
}
