// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/qoc"
	"github.com/katalvlaran/qoc/ampio"
	"github.com/katalvlaran/qoc/linalg"
	"github.com/katalvlaran/qoc/optimize"
	"github.com/katalvlaran/qoc/problem"
	"github.com/katalvlaran/qoc/pulsegen"
	"github.com/katalvlaran/qoc/runstore"
)

type runFlags struct {
	preset, problemFile string
	initialFile         string
	outFile             string
	policy, measure     string
	seed                int64
	maxIter             int
	fidErrTarg          float64
	maxWall             time.Duration
}

func cmdRun(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("run", stderr)
	var f runFlags
	fs.StringVar(&f.preset, "preset", problem.PresetAmpDampingHadamard, "built-in problem name")
	fs.StringVar(&f.problemFile, "problem", "", "YAML problem file (overrides --preset)")
	fs.StringVar(&f.initialFile, "initial", "", "amplitude table to start from")
	fs.StringVar(&f.outFile, "out", "", "write the final amplitude table here")
	fs.StringVar(&f.policy, "policy", "", "initial pulse policy (RND, LIN, SINE, ...)")
	fs.StringVar(&f.measure, "measure", "", "fidelity measure: TRACEDIFF, OVERLAP")
	fs.Int64Var(&f.seed, "seed", 0, "pulse generator seed")
	fs.IntVar(&f.maxIter, "max-iter", 0, "iteration limit")
	fs.Float64Var(&f.fidErrTarg, "fid-err-targ", 0, "fidelity error target")
	fs.DurationVar(&f.maxWall, "max-wall", 0, "wall-time limit (0 disables)")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := loadProblem(f.preset, f.problemFile)
	if err != nil {
		return err
	}
	if err = f.apply(fs.Changed, p); err != nil {
		return err
	}
	backend, err := linalg.ByName(cfg.Backend)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	logger, err := cfg.logger(stderr)
	if err != nil {
		return err
	}
	logger.Info("problem loaded", "name", p.Name, "dim", p.Dim(), "timeslots", p.NumTimeslots,
		"evo_time", p.EvoTime, "backend", backend.Name())
	if ev, err := p.DriftSpectrum(backend); err == nil {
		logger.Debug("drift spectrum", "eigenvalues", ev)
	}

	var amps [][]float64
	if f.initialFile != "" {
		tab, err := ampio.ReadFile(f.initialFile)
		if err != nil {
			return err
		}
		amps = tab.Amps
	} else if amps, err = p.InitialPulse(); err != nil {
		return err
	}

	res, err := qoc.OptimizeFrom(p, backend, logger, amps)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, renderResult(p, backend.Name(), res))

	if f.outFile != "" && len(res.FinalAmps) > 0 && len(res.FinalAmps[0]) > 0 {
		if err = ampio.WriteFile(f.outFile, p.AmplitudeTable(res.FinalAmps)); err != nil {
			return err
		}
		logger.Info("final amplitudes written", "path", f.outFile)
	}
	if cfg.Store != "" {
		id, err := saveRun(ctx, cfg.Store, p, backend.Name(), res)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "run id: %s\n", id)
	}
	if res.State == optimize.Failed {
		return fmt.Errorf("%w: %s: %v", ErrRunFailed, res.Reason, res.Err)
	}

	return nil
}

func loadProblem(preset, file string) (*problem.Problem, error) {
	if file != "" {
		return problem.LoadFile(file)
	}

	return problem.Preset(preset)
}

// apply overlays the explicitly set flags on p.
func (f runFlags) apply(changed func(string) bool, p *problem.Problem) error {
	if changed("policy") {
		pol, err := pulsegen.ParsePolicy(f.policy)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
		p.Pulse.Policy = pol
	}
	if changed("measure") {
		p.Measure = f.measure
	}
	if changed("seed") {
		p.Pulse.Seed = f.seed
	}
	if changed("max-iter") {
		p.Optimizer.MaxIterations = f.maxIter
	}
	if changed("fid-err-targ") {
		p.Optimizer.FidErrTarget = f.fidErrTarg
	}
	if changed("max-wall") {
		p.Optimizer.MaxWallTime = f.maxWall
	}

	return p.Validate()
}

func saveRun(ctx context.Context, path string, p *problem.Problem, backend string, res *optimize.Result) (string, error) {
	store, err := runstore.Open(ctx, path)
	if err != nil {
		return "", err
	}
	defer store.Close()

	rec, err := runstore.NewRecord(p, backend, res)
	if err != nil {
		return "", err
	}
	if err = store.Save(ctx, rec); err != nil {
		return "", err
	}

	return rec.ID, nil
}

var _ optimize.Sink = (*log.Logger)(nil)
