// SPDX-License-Identifier: MIT

package pulsegen

import "errors"

var (
	// ErrUnknownPolicy is returned for an unrecognized policy name or value.
	ErrUnknownPolicy = errors.New("pulsegen: unknown pulse policy")

	// ErrBadShape is returned when the timeslot or control count is < 1.
	ErrBadShape = errors.New("pulsegen: timeslot and control counts must be >= 1")
)
