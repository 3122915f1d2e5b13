// SPDX-License-Identifier: MIT

// Package cli implements the qoc command: run, sweep, runs and presets.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/katalvlaran/qoc/problem"
)

var (
	// ErrUsage is returned for unknown subcommands and bad flag values.
	ErrUsage = errors.New("usage error")

	// ErrRunFailed is returned after a run that ended in the FAILED state.
	ErrRunFailed = errors.New("optimization failed")
)

type command struct {
	summary string
	run     func(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error
}

var commands = map[string]command{
	"run":     {"optimize one problem (preset or YAML file)", cmdRun},
	"sweep":   {"optimize the amplitude-damping preset over damping rates and seeds", cmdSweep},
	"runs":    {"list, show or delete stored runs", cmdRuns},
	"presets": {"list the built-in problems", cmdPresets},
}

// Main runs the subcommand named by args[0] with cfg as the environment
// baseline. A help request prints usage and returns nil.
func Main(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("missing command: %w", ErrUsage)
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		usage(stdout)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		usage(stderr)
		return fmt.Errorf("unknown command %q: %w", name, ErrUsage)
	}
	err := cmd.run(ctx, cfg, args[1:], stdout, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}

	return err
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	var sb strings.Builder
	sb.WriteString("usage: qoc <command> [flags]\n\ncommands:\n")
	for _, n := range names {
		fmt.Fprintf(&sb, "  %-8s %s\n", n, commands[n].summary)
	}
	sb.WriteString("\nenvironment: QOC_LOG_LEVEL, QOC_BACKEND, QOC_STORE, QOC_WORKERS\n")
	_, _ = io.WriteString(w, sb.String())
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	return fs
}

func cmdPresets(_ context.Context, _ Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("presets", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, n := range problem.Presets() {
		p, err := problem.Preset(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%-22s d=%d controls=%s timeslots=%d evo_time=%g\n",
			n, p.Dim(), strings.Join(p.Labels(), ","), p.NumTimeslots, p.EvoTime)
	}

	return nil
}
