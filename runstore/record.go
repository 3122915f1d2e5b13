// SPDX-License-Identifier: MIT

package runstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/qoc/ampio"
	"github.com/katalvlaran/qoc/fidelity"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
)

// Record is one persisted optimization run. Error values that were never
// computed are NaN.
type Record struct {
	ID      string
	Problem string
	Backend string
	Measure string

	State  optimize.State
	Reason string
	Error  string // text of Result.Err, empty on success

	InitialError float64
	FinalError   float64
	GradNorm     float64

	Iterations    int
	FunctionEvals int
	GradientEvals int
	MemoryResets  int
	WallTime      time.Duration

	// InitialAmps and FinalAmps hold ampio text; empty for a control-free problem.
	InitialAmps string
	FinalAmps   string

	CreatedAt time.Time
}

// NewRecord captures res for problem p under a fresh random id.
func NewRecord(p *problem.Problem, backend string, res *optimize.Result) (Record, error) {
	if p == nil || res == nil {
		return Record{}, fmt.Errorf("nil problem or result: %w", ErrInvalidRecord)
	}
	m, err := fidelity.MeasureByName(p.Measure)
	if err != nil {
		return Record{}, err
	}
	initial, err := encodeAmps(p, res.InitialAmps)
	if err != nil {
		return Record{}, fmt.Errorf("initial amplitudes: %w", err)
	}
	final, err := encodeAmps(p, res.FinalAmps)
	if err != nil {
		return Record{}, fmt.Errorf("final amplitudes: %w", err)
	}
	name := p.Name
	if name == "" {
		name = "unnamed"
	}
	r := Record{
		ID:            uuid.NewString(),
		Problem:       name,
		Backend:       backend,
		Measure:       m.Name(),
		State:         res.State,
		Reason:        res.Reason,
		InitialError:  res.InitialError,
		FinalError:    res.FinalError,
		GradNorm:      res.GradNorm,
		Iterations:    res.Iterations,
		FunctionEvals: res.FunctionEvals,
		GradientEvals: res.GradientEvals,
		MemoryResets:  res.MemoryResets,
		WallTime:      res.WallTime,
		InitialAmps:   initial,
		FinalAmps:     final,
		CreatedAt:     time.Now().UTC(),
	}
	if res.Err != nil {
		r.Error = res.Err.Error()
	}

	return r, nil
}

// Tables decodes the stored amplitude tables.
func (r Record) Tables() (initial, final ampio.Table, err error) {
	if initial, err = decodeAmps(r.InitialAmps); err != nil {
		return ampio.Table{}, ampio.Table{}, fmt.Errorf("initial amplitudes: %w", err)
	}
	if final, err = decodeAmps(r.FinalAmps); err != nil {
		return ampio.Table{}, ampio.Table{}, fmt.Errorf("final amplitudes: %w", err)
	}

	return initial, final, nil
}

func encodeAmps(p *problem.Problem, amps [][]float64) (string, error) {
	if len(amps) == 0 || len(amps[0]) == 0 {
		return "", nil
	}
	var sb strings.Builder
	if err := ampio.Write(&sb, p.AmplitudeTable(amps)); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func decodeAmps(text string) (ampio.Table, error) {
	if text == "" {
		return ampio.Table{}, nil
	}

	return ampio.Read(strings.NewReader(text))
}

func (r Record) validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("id is required: %w", ErrInvalidRecord)
	case strings.TrimSpace(r.Problem) == "":
		return fmt.Errorf("problem is required: %w", ErrInvalidRecord)
	case r.State < optimize.Initialized || r.State > optimize.Failed:
		return fmt.Errorf("state %d: %w", int(r.State), ErrInvalidRecord)
	}

	return nil
}
