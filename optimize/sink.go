// SPDX-License-Identifier: MIT

package optimize

// Sink receives driver diagnostics. *github.com/charmbracelet/log.Logger
// satisfies it directly.
type Sink interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

// NopSink discards everything.
type NopSink struct{}

// Debug implements Sink.
func (NopSink) Debug(any, ...any) {}

// Info implements Sink.
func (NopSink) Info(any, ...any) {}

// Warn implements Sink.
func (NopSink) Warn(any, ...any) {}
