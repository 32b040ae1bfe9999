package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bookprog/internal/pipeline"
	"bookprog/internal/progress"
	"bookprog/internal/util/deps"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "batch <plan.yaml>",
		Short:         "Convert a batch of books with ffmpeg, several at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE:          runBatch,
	}
	fs := cmd.Flags()
	fs.Int("workers", 2, "Books converted concurrently")
	fs.String("ffmpeg", "", "Path to ffmpeg")
	fs.StringP("out-dir", "o", "", "Output directory (overrides the plan)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	fs := cmd.Flags()

	plan, err := pipeline.LoadPlan(afero.NewOsFs(), args[0])
	if err != nil {
		return &ExitError{Code: ExitSourceError, Err: err}
	}
	if out, _ := fs.GetString("out-dir"); out != "" {
		plan.OutDir = out
	}
	custom, _ := fs.GetString("ffmpeg")
	ff, err := deps.FindFFmpeg(custom)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}
	workers, _ := fs.GetInt("workers")
	parts, tracks := plan.Totals()
	a.log.Info("batch starting", "plan", args[0], "books", len(plan.Books), "parts", parts, "tracks", tracks)

	err = present(cmd, filepath.Base(args[0]), func(ctx context.Context, rep progress.Reporter) error {
		svc := pipeline.NewService(
			pipeline.WithFFmpegPath(ff),
			pipeline.WithReporter(rep),
			pipeline.WithWorkers(workers),
			pipeline.WithVerbose(a.cfg.Verbose),
			pipeline.WithLogger(a.log),
		)
		_, err := svc.Run(ctx, plan)
		return err
	})
	return commandError(ExitCommandError, err)
}
