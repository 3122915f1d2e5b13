// SPDX-License-Identifier: MIT

// Package migrations embeds the run store schema.
package migrations

import "embed"

// FS contains the SQLite migrations applied by runstore.Open.
//
//go:embed *.sql
var FS embed.FS
