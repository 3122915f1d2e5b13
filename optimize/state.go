// SPDX-License-Identifier: MIT

package optimize

import (
	"fmt"
	"strings"
)

// State is the driver lifecycle state.
type State int

const (
	// Initialized: constructed, nothing evaluated yet.
	Initialized State = iota
	// Running: at least one evaluation done, iterating.
	Running
	// Converged: fidelity error reached the target.
	Converged
	// IterationLimit: iteration or function-call budget exhausted.
	IterationLimit
	// TimeLimit: wall-time budget exhausted.
	TimeLimit
	// Failed: local minimum, line-search stagnation or numerical failure.
	Failed
)

var stateNames = [...]string{
	Initialized:    "INITIALIZED",
	Running:        "RUNNING",
	Converged:      "CONVERGED",
	IterationLimit: "ITERATION_LIMIT",
	TimeLimit:      "TIME_LIMIT",
	Failed:         "FAILED",
}

// transitions lists the permitted edges. Terminal states have none.
var transitions = map[State][]State{
	Initialized: {Running},
	Running:     {Converged, IterationLimit, TimeLimit, Failed},
}

// String returns the upper-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	switch s {
	case Converged, IterationLimit, TimeLimit, Failed:
		return true
	default:
		return false
	}
}

// CanTransition reports whether s → to is a permitted edge.
func (s State) CanTransition(to State) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}

	return false
}

// ParseState is the inverse of String (case-insensitive).
func ParseState(name string) (State, error) {
	up := strings.ToUpper(strings.TrimSpace(name))
	for s, n := range stateNames {
		if n == up {
			return State(s), nil
		}
	}

	return 0, fmt.Errorf("state %q: %w", name, ErrInvalidTransition)
}

// machine guards the lifecycle of one Driver.
type machine struct {
	state State
}

func (m *machine) transition(to State) error {
	if !m.state.CanTransition(to) {
		return fmt.Errorf("%s -> %s: %w", m.state, to, ErrInvalidTransition)
	}
	m.state = to

	return nil
}
