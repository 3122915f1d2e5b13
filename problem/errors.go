// SPDX-License-Identifier: MIT

package problem

import "errors"

var (
	// ErrUnknownOperator is returned for an operator name that cannot be built
	// at the requested dimension.
	ErrUnknownOperator = errors.New("problem: unknown operator")

	// ErrUnknownPreset is returned by Preset for an unregistered name.
	ErrUnknownPreset = errors.New("problem: unknown preset")

	// ErrInvalidSpec is returned when a Problem or its YAML form is inconsistent.
	ErrInvalidSpec = errors.New("problem: invalid problem definition")
)
