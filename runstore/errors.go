// SPDX-License-Identifier: MIT

package runstore

import "errors"

var (
	// ErrNotFound is returned by Get for an unknown run id.
	ErrNotFound = errors.New("runstore: run not found")

	// ErrAlreadyExists is returned by Save when the run id is taken.
	ErrAlreadyExists = errors.New("runstore: run already exists")

	// ErrInvalidRecord is returned for a record missing its id, problem or state.
	ErrInvalidRecord = errors.New("runstore: invalid record")

	// ErrClosed is returned by every method of a nil or closed store.
	ErrClosed = errors.New("runstore: store is not open")
)
