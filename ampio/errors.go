// SPDX-License-Identifier: MIT

package ampio

import "errors"

// ErrMalformedTable is returned for tables that cannot be written or parsed:
// ragged rows, non-numeric or non-finite cells, bad header values, no rows.
var ErrMalformedTable = errors.New("ampio: malformed amplitude table")
