package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"bookprog/internal/encoder"
	"bookprog/internal/progress"
	"bookprog/internal/util/deps"
)

func newExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "exec --title <book> [flags] -- <ffmpeg args...>",
		Short:         "Run ffmpeg and show its progress as one track of a book",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runExec,
	}
	fs := cmd.Flags()
	fs.String("title", "", "Book the track belongs to (default: output file name)")
	fs.Float64("duration", 0, "Track length in seconds, for percentage progress")
	fs.String("ffmpeg", "", "Path to ffmpeg")
	fs.String("output", "", "Output file, removed on failure (default: last argument)")
	return cmd
}

func runExec(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	fs := cmd.Flags()
	custom, _ := fs.GetString("ffmpeg")
	ff, err := deps.FindFFmpeg(custom)
	if err != nil {
		return &ExitError{Code: ExitMissingDep, Err: err}
	}

	output, _ := fs.GetString("output")
	if output == "" {
		output = args[len(args)-1]
	}
	title, _ := fs.GetString("title")
	if title == "" {
		title = filepath.Base(output)
	}
	duration, _ := fs.GetFloat64("duration")
	if duration < 0 {
		return &ExitError{Code: ExitCLIError, Err: errors.New("--duration must not be negative")}
	}

	var out encoder.Output
	err = present(cmd, title, func(ctx context.Context, rep progress.Reporter) error {
		var err error
		out, err = encoder.Encode(ctx, encoder.Options{
			FFmpegPath:  ff,
			Args:        args,
			Title:       title,
			DurationSec: duration,
			OutputPath:  output,
			Verbose:     a.cfg.Verbose,
			Reporter:    rep,
			Log:         a.log,
		})
		return err
	})
	if err != nil {
		return commandError(ExitCommandError, err)
	}
	a.log.Info("done", "title", out.Title, "output", out.OutputPath, "bytes", out.Bytes)
	return nil
}
