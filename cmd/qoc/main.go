// SPDX-License-Identifier: MIT

// Command qoc optimizes control pulses for open quantum systems.
//
//	qoc run --preset amp-damping-hadamard --out final.amps
//	qoc run --problem damped.yaml --backend gonum --store runs.db
//	qoc sweep --gammas 0,0.05,0.1 --seeds 1,2,3 --workers 4
//	qoc runs --store runs.db
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/qoc/internal/cli"
)

func main() {
	cfg, err := cli.ParseEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "qoc: %v\n", err)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cli.Main(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(os.Stderr, "qoc: %v\n", err)
		stop()
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "qoc: %v\n", err)
		stop()
		os.Exit(1)
	}
}
