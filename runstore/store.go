// SPDX-License-Identifier: MIT

// Package runstore persists finished optimization runs in SQLite: the
// outcome, counters, timing and both amplitude tables as ampio text.
package runstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/runstore/migrations"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store is a SQLite-backed run store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("runstore: storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err = applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil

	return err
}

// Save inserts r.
func (s *Store) Save(ctx context.Context, r Record) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if err := r.validate(); err != nil {
		return err
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
		   id, problem, backend, measure, state, reason, error_text,
		   initial_error, final_error, grad_norm,
		   iterations, function_evals, gradient_evals, memory_resets, wall_time_ns,
		   initial_amps, final_amps, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Problem, r.Backend, r.Measure, r.State.String(), r.Reason, r.Error,
		nullable(r.InitialError), nullable(r.FinalError), nullable(r.GradNorm),
		r.Iterations, r.FunctionEvals, r.GradientEvals, r.MemoryResets, int64(r.WallTime),
		r.InitialAmps, r.FinalAmps, created.UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", r.ID, ErrAlreadyExists)
		}

		return fmt.Errorf("save run: %w", err)
	}

	return nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	if s == nil || s.db == nil {
		return Record{}, ErrClosed
	}
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, strings.TrimSpace(id))
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	return r, err
}

// ListOptions filters List.
type ListOptions struct {
	Problem string // exact problem name; empty lists all
	Limit   int    // non-positive selects DefaultListLimit
}

// List returns runs newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	query := selectRuns
	args := []any{}
	if opts.Problem != "" {
		query += ` WHERE problem = ?`
		args = append(args, opts.Problem)
	}
	query += ` ORDER BY created_at DESC, id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return out, nil
}

// Delete removes a run; deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	return nil
}

const selectRuns = `SELECT id, problem, backend, measure, state, reason, error_text,
        initial_error, final_error, grad_norm,
        iterations, function_evals, gradient_evals, memory_resets, wall_time_ns,
        initial_amps, final_amps, created_at
   FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r                        Record
		state                    string
		initErr, finalErr, gnorm sql.NullFloat64
		wallNs, createdMs        int64
	)
	err := sc.Scan(
		&r.ID, &r.Problem, &r.Backend, &r.Measure, &state, &r.Reason, &r.Error,
		&initErr, &finalErr, &gnorm,
		&r.Iterations, &r.FunctionEvals, &r.GradientEvals, &r.MemoryResets, &wallNs,
		&r.InitialAmps, &r.FinalAmps, &createdMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}

		return Record{}, fmt.Errorf("scan run: %w", err)
	}
	if r.State, err = optimize.ParseState(state); err != nil {
		return Record{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	r.InitialError = fromNullable(initErr)
	r.FinalError = fromNullable(finalErr)
	r.GradNorm = fromNullable(gnorm)
	r.WallTime = time.Duration(wallNs)
	r.CreatedAt = time.UnixMilli(createdMs).UTC()

	return r, nil
}

// nullable maps non-finite values to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return v
}

func fromNullable(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
