// SPDX-License-Identifier: MIT

package pulsegen

import (
	"fmt"
	"strings"
)

// Policy names an initial-pulse generator.
type Policy string

// Supported policies.
const (
	Zero     Policy = "ZERO"
	Random   Policy = "RND"
	Linear   Policy = "LIN"
	Sine     Policy = "SINE"
	Square   Policy = "SQUARE"
	Saw      Policy = "SAW"
	Triangle Policy = "TRIANGLE"
	Gaussian Policy = "GAUSSIAN"
)

// policyAliases maps accepted spellings onto canonical policies.
var policyAliases = map[string]Policy{
	"ZERO":           Zero,
	"RND":            Random,
	"RANDOM":         Random,
	"RANDOM-UNIFORM": Random,
	"LIN":            Linear,
	"LINEAR":         Linear,
	"LINEAR-RAMP":    Linear,
	"SINE":           Sine,
	"SQUARE":         Square,
	"SQUARE-WAVE":    Square,
	"SAW":            Saw,
	"SAWTOOTH":       Saw,
	"TRIANGLE":       Triangle,
	"GAUSSIAN":       Gaussian,
}

// Policies returns the canonical policies in a stable order.
func Policies() []Policy {
	return []Policy{Zero, Random, Linear, Sine, Square, Saw, Triangle, Gaussian}
}

// ParsePolicy resolves a case-insensitive policy name, accepting the long
// spellings (RANDOM-UNIFORM, LINEAR-RAMP, SQUARE-WAVE, SAWTOOTH).
func ParsePolicy(name string) (Policy, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "_", "-")
	if p, ok := policyAliases[key]; ok {
		return p, nil
	}

	return "", fmt.Errorf("%q: %w", name, ErrUnknownPolicy)
}

// String implements fmt.Stringer.
func (p Policy) String() string { return string(p) }

// Valid reports whether p is a canonical policy.
func (p Policy) Valid() bool {
	q, ok := policyAliases[string(p)]

	return ok && q == p
}
