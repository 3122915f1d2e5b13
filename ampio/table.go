// SPDX-License-Identifier: MIT

// Package ampio reads and writes amplitude tables as plain text.
//
// Layout:
//
//	# qoc amplitude table
//	# dt: 0.2
//	# units: time=arb amplitude=arb
//	# controls: sigmaz	sigmax
//	0.1	-0.25
//	...
//
// One line per timeslot, one tab-separated column per control. Header lines
// start with '#' and carry "key: value" pairs; unknown keys are kept in
// Header.Extra. Numbers are written in the shortest form that parses back to
// the same float64, so Write followed by Read reproduces the table exactly.
package ampio

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const (
	banner    = "qoc amplitude table"
	keyDt     = "dt"
	keyUnits  = "units"
	keyLabels = "controls"
)

// Header documents a table.
type Header struct {
	Dt     float64           // timeslot duration (0 when unknown)
	Units  string            // free text, e.g. "time=ns amplitude=GHz"
	Labels []string          // one per column, optional
	Extra  map[string]string // other header keys, written in sorted order
}

// Table is an amplitude table with its header.
type Table struct {
	Header
	Amps [][]float64 // [timeslot][control]
}

// Write serializes t to w.
//
// Errors: ErrMalformedTable for an empty or ragged table, non-finite values,
// a label count that differs from the column count, or a header value that
// Read would not return unchanged (surrounding whitespace, line breaks).
func Write(w io.Writer, t Table) error {
	cols, err := validate(t)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", banner)
	if t.Dt != 0 {
		fmt.Fprintf(bw, "# %s: %s\n", keyDt, strconv.FormatFloat(t.Dt, 'g', -1, 64))
	}
	if t.Units != "" {
		fmt.Fprintf(bw, "# %s: %s\n", keyUnits, t.Units)
	}
	if len(t.Labels) > 0 {
		fmt.Fprintf(bw, "# %s: %s\n", keyLabels, strings.Join(t.Labels, "\t"))
	}
	keys := make([]string, 0, len(t.Extra))
	for k := range t.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "# %s: %s\n", k, t.Extra[k])
	}

	line := make([]byte, 0, 24*cols)
	for _, row := range t.Amps {
		line = line[:0]
		for j, v := range row {
			if j > 0 {
				line = append(line, '\t')
			}
			line = strconv.AppendFloat(line, v, 'g', -1, 64)
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Read parses a table written by Write (or by hand in the same layout).
// Blank lines are skipped.
//
// Errors: ErrMalformedTable with the offending line number.
func Read(r io.Reader) (Table, error) {
	var (
		t      Table
		cols   = -1
		lineNo int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if err := parseHeader(&t.Header, strings.TrimSpace(line[1:])); err != nil {
				return Table{}, fmt.Errorf("line %d: %w", lineNo, err)
			}

			continue
		}
		fields := strings.Fields(line)
		if cols >= 0 && len(fields) != cols {
			return Table{}, fmt.Errorf("line %d: %d columns, want %d: %w", lineNo, len(fields), cols, ErrMalformedTable)
		}
		cols = len(fields)
		row := make([]float64, cols)
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return Table{}, fmt.Errorf("line %d column %d: %q: %w", lineNo, j+1, f, ErrMalformedTable)
			}
			row[j] = v
		}
		t.Amps = append(t.Amps, row)
	}
	if err := sc.Err(); err != nil {
		return Table{}, err
	}
	if len(t.Amps) == 0 {
		return Table{}, fmt.Errorf("no rows: %w", ErrMalformedTable)
	}
	if len(t.Labels) > 0 && len(t.Labels) != cols {
		return Table{}, fmt.Errorf("%d labels for %d columns: %w", len(t.Labels), cols, ErrMalformedTable)
	}

	return t, nil
}

// WriteFile writes t to path, replacing any existing file.
func WriteFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, t); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// ReadFile reads a table from path.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	return Read(f)
}

func parseHeader(h *Header, body string) error {
	key, value, ok := strings.Cut(body, ":")
	if !ok {
		// Free comment (the banner included).
		return nil
	}
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	switch key {
	case keyDt:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("dt %q: %w", value, ErrMalformedTable)
		}
		h.Dt = v
	case keyUnits:
		h.Units = value
	case keyLabels:
		h.Labels = strings.Fields(value)
	default:
		if h.Extra == nil {
			h.Extra = make(map[string]string)
		}
		h.Extra[key] = value
	}

	return nil
}

func validate(t Table) (int, error) {
	if len(t.Amps) == 0 {
		return 0, fmt.Errorf("no rows: %w", ErrMalformedTable)
	}
	cols := len(t.Amps[0])
	if cols == 0 {
		return 0, fmt.Errorf("no columns: %w", ErrMalformedTable)
	}
	for i, row := range t.Amps {
		if len(row) != cols {
			return 0, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrMalformedTable)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, fmt.Errorf("amps[%d][%d]=%v: %w", i, j, v, ErrMalformedTable)
			}
		}
	}
	if len(t.Labels) > 0 && len(t.Labels) != cols {
		return 0, fmt.Errorf("%d labels for %d columns: %w", len(t.Labels), cols, ErrMalformedTable)
	}
	for _, l := range t.Labels {
		if !ValidLabel(l) {
			return 0, fmt.Errorf("label %q: %w", l, ErrMalformedTable)
		}
	}
	if math.IsNaN(t.Dt) || math.IsInf(t.Dt, 0) || t.Dt < 0 {
		return 0, fmt.Errorf("dt=%v: %w", t.Dt, ErrMalformedTable)
	}
	if !exactValue(t.Units) {
		return 0, fmt.Errorf("units %q: %w", t.Units, ErrMalformedTable)
	}
	for k, v := range t.Extra {
		reserved := k == keyDt || k == keyUnits || k == keyLabels
		if reserved || k != strings.ToLower(strings.TrimSpace(k)) || k == "" ||
			strings.ContainsAny(k, ":\n") || !exactValue(v) {
			return 0, fmt.Errorf("extra header %q: %w", k, ErrMalformedTable)
		}
	}

	return cols, nil
}

// ValidLabel reports whether l can name a column: non-empty, no whitespace.
func ValidLabel(l string) bool {
	return l != "" && strings.IndexFunc(l, unicode.IsSpace) < 0
}

// exactValue reports whether a header value survives the trimming Read applies.
func exactValue(v string) bool {
	return v == strings.TrimSpace(v) && !strings.ContainsAny(v, "\r\n")
}
