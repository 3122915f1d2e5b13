// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/runstore"
	"github.com/katalvlaran/qoc/sweep"
)

func cmdSweep(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("sweep", stderr)
	gammas := []float64{0, 0.05, 0.1}
	seeds := []int64{1, 2, 3}
	var (
		maxIter int
		maxWall time.Duration
	)
	fs.Float64SliceVar(&gammas, "gammas", gammas, "damping rates")
	fs.Int64SliceVar(&seeds, "seeds", seeds, "pulse seeds")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel runs (0 uses GOMAXPROCS)")
	fs.IntVar(&maxIter, "max-iter", 0, "iteration limit per run (0 keeps the preset's)")
	fs.DurationVar(&maxWall, "max-wall", 0, "wall-time limit per run (0 keeps the preset's)")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers=%d: %w", cfg.Workers, ErrUsage)
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	jobs, err := sweep.DampingGrid(gammas, seeds)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("empty grid: %w", ErrUsage)
	}
	for _, j := range jobs {
		if maxIter > 0 {
			j.Problem.Optimizer.MaxIterations = maxIter
		}
		if maxWall > 0 {
			j.Problem.Optimizer.MaxWallTime = maxWall
		}
	}
	backend, err := linalg.ByName(cfg.Backend)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}
	logger.Info("sweep started", "jobs", len(jobs), "workers", workers, "backend", backend.Name())

	outs, err := sweep.Run(ctx, jobs,
		sweep.WithWorkers(workers),
		sweep.WithBackend(backend),
		sweep.WithSinks(func(j sweep.Job) optimize.Sink { return logger.With("job", j.Name) }),
	)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, renderSweep(outs))

	if cfg.Store == "" {
		return nil
	}
	store, err := runstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	for i, o := range outs {
		if o.Err != nil {
			continue
		}
		rec, err := runstore.NewRecord(jobs[i].Problem, backend.Name(), o.Result)
		if err != nil {
			return err
		}
		if err = store.Save(ctx, rec); err != nil {
			return err
		}
	}
	logger.Info("sweep stored", "path", cfg.Store)

	return nil
}
