package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ArthurGuilherms/Projeto-Banese-Labs/internal/ingest"
	"github.com/spf13/cobra"
)

func newIngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest FILE...",
		Short: "Load company files into the database",
		Long: `Loads each file (.csv, .xml, .json or .parquet), maps its columns onto
company records and upserts them by name. Rows that cannot be read are
reported by line and skipped; the remaining rows are still written.
Files are processed in order and a failing file does not stop the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			st, closeStore, err := a.openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			locks, closeCache, err := a.openCache(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer closeCache()

			pipeline := ingest.NewPipeline(ingest.NewWriter(st), locks, a.cfg.Ingest.LockTTL)
			out := cmd.OutOrStdout()

			var errs []error
			for _, path := range args {
				report, err := pipeline.IngestFile(ctx, path)
				if err != nil {
					slog.Error("ingest failed", "file", path, "error", err)
					fmt.Fprintf(out, "%s: failed: %v\n", path, err)
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
					continue
				}

				fmt.Fprintf(out, "%s: %d rows, %d inserted, %d updated, %d failed\n",
					report.File, report.Rows, report.Inserted, report.Updated, len(report.Failed))
				for _, f := range report.Failed {
					fmt.Fprintf(out, "  %v\n", f)
				}
			}

			if len(errs) > 0 {
				return fmt.Errorf("%d of %d files failed: %w", len(errs), len(args), errors.Join(errs...))
			}
			return nil
		},
	}
}
