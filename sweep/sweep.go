// SPDX-License-Identifier: MIT

// Package sweep runs independent optimizations in parallel on a bounded
// worker pool. Each job owns its engine, evaluator and driver; outcomes come
// back in job order regardless of completion order.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
)

// ErrNoJobs is returned by Run for an empty job list.
var ErrNoJobs = errors.New("sweep: no jobs")

// Job is one independent run. A nil Initial table uses the problem's pulse policy.
type Job struct {
	Name    string
	Problem *problem.Problem
	Initial [][]float64
}

// Outcome pairs a job with its result. Err holds setup failures and
// cancellation; optimizer failures are reported through Result.State.
type Outcome struct {
	Index  int
	Job    string
	Result *optimize.Result
	Err    error
}

// SinkFunc returns the diagnostics sink for one job (nil for none).
type SinkFunc func(job Job) optimize.Sink

type config struct {
	workers int
	backend linalg.Backend
	sinks   SinkFunc
}

// Option configures Run.
type Option func(*config)

// WithWorkers bounds concurrent runs. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic(fmt.Sprintf("sweep: WithWorkers(%d): need at least one worker", n))
	}

	return func(c *config) { c.workers = n }
}

// WithBackend selects the linear-algebra backend shared by all jobs.
func WithBackend(b linalg.Backend) Option {
	return func(c *config) { c.backend = b }
}

// WithSinks attaches a per-job diagnostics sink.
func WithSinks(f SinkFunc) Option {
	return func(c *config) { c.sinks = f }
}

// Run executes jobs with at most GOMAXPROCS (or WithWorkers) in flight.
// It returns ctx.Err() if the context ends first; jobs that never started
// carry that error in their Outcome.
func Run(ctx context.Context, jobs []Job, opts ...Option) ([]Outcome, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	cfg := config{workers: runtime.GOMAXPROCS(0), backend: linalg.NewNative()}
	for _, o := range opts {
		o(&cfg)
	}

	out := make([]Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)
	for i, job := range jobs {
		out[i] = Outcome{Index: i, Job: jobName(job, i)}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			var sink optimize.Sink
			if cfg.sinks != nil {
				sink = cfg.sinks(job)
			}
			out[i].Result, out[i].Err = runOne(job, cfg.backend, sink)

			return nil
		})
	}
	_ = g.Wait()

	return out, ctx.Err()
}

func runOne(job Job, backend linalg.Backend, sink optimize.Sink) (*optimize.Result, error) {
	p := job.Problem
	if p == nil {
		return nil, fmt.Errorf("nil problem: %w", problem.ErrInvalidSpec)
	}
	amps := job.Initial
	if amps == nil {
		var err error
		if amps, err = p.InitialPulse(); err != nil {
			return nil, err
		}
	}
	ev, err := p.Evaluator(backend)
	if err != nil {
		return nil, err
	}
	d, err := optimize.New(ev, p.Optimizer, sink)
	if err != nil {
		return nil, err
	}

	return d.Run(amps)
}

func jobName(j Job, i int) string {
	if j.Name != "" {
		return j.Name
	}
	if j.Problem != nil && j.Problem.Name != "" {
		return j.Problem.Name + "#" + strconv.Itoa(i)
	}

	return "job#" + strconv.Itoa(i)
}

// DampingGrid builds one amplitude-damping job per (gamma, seed) pair,
// gamma-major.
func DampingGrid(gammas []float64, seeds []int64) ([]Job, error) {
	jobs := make([]Job, 0, len(gammas)*len(seeds))
	for _, g := range gammas {
		for _, s := range seeds {
			p, err := problem.AmplitudeDampingHadamard(g)
			if err != nil {
				return nil, err
			}
			p.Pulse.Seed = s
			jobs = append(jobs, Job{
				Name:    "gamma=" + strconv.FormatFloat(g, 'g', -1, 64) + " seed=" + strconv.FormatInt(s, 10),
				Problem: p,
			})
		}
	}

	return jobs, nil
}

// Best returns the index of the successful outcome with the lowest final
// error, or -1 if none finished.
func Best(outs []Outcome) int {
	best, bestErr := -1, math.Inf(1)
	for i, o := range outs {
		if o.Err != nil || o.Result == nil || math.IsNaN(o.Result.FinalError) {
			continue
		}
		if o.Result.FinalError < bestErr {
			best, bestErr = i, o.Result.FinalError
		}
	}

	return best
}

// Summary counts outcomes by final state.
type Summary struct {
	Jobs   int
	Errors int
	States map[optimize.State]int
}

// Summarize tallies outs.
func Summarize(outs []Outcome) Summary {
	s := Summary{Jobs: len(outs), States: make(map[optimize.State]int)}
	for _, o := range outs {
		if o.Err != nil || o.Result == nil {
			s.Errors++
			continue
		}
		s.States[o.Result.State]++
	}

	return s
}
