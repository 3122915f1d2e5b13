// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/katalvlaran/qoc/ampio"
	"github.com/katalvlaran/qoc/runstore"
)

func cmdRuns(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("runs", stderr)
	var (
		problemName, show, del, export string
		limit                          int
	)
	fs.StringVar(&problemName, "problem", "", "only runs of this problem")
	fs.IntVar(&limit, "limit", runstore.DefaultListLimit, "maximum runs listed")
	fs.StringVar(&show, "show", "", "print one run by id")
	fs.StringVar(&export, "export", "", "with --show: write the final amplitude table here")
	fs.StringVar(&del, "delete", "", "delete one run by id")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Store == "" {
		return fmt.Errorf("runs needs --store or QOC_STORE: %w", ErrUsage)
	}
	store, err := runstore.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	switch {
	case del != "":
		if err = store.Delete(ctx, del); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", del)
	case show != "":
		rec, err := store.Get(ctx, show)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderRecord(rec))
		if export == "" {
			return nil
		}
		_, final, err := rec.Tables()
		if err != nil {
			return err
		}
		if len(final.Amps) == 0 {
			return fmt.Errorf("run %s has no amplitude table: %w", rec.ID, ErrUsage)
		}

		return ampio.WriteFile(export, final)
	default:
		recs, err := store.List(ctx, runstore.ListOptions{Problem: problemName, Limit: limit})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, renderRuns(recs))
	}

	return nil
}
