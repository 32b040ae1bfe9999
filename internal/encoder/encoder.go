// Package encoder runs ffmpeg and reports its progress as track progress
// for one book.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"bookprog/internal/progress"
	"bookprog/internal/util"
	"bookprog/internal/util/format"
)

// Options control ffmpeg execution.
type Options struct {
	FFmpegPath  string
	Args        []string // ffmpeg arguments, output file last
	Title       string   // book the run belongs to
	DurationSec float64  // track length; <= 0 if unknown
	OutputPath  string   // optional, stat'ed after a successful run
	Verbose     bool
	Nested      bool // the caller owns the book record and track totals

	Reporter progress.Reporter
	Runner   util.CmdRunner
	Log      *slog.Logger
}

// Output describes a finished run.
type Output struct {
	Title      string
	OutputPath string
	Bytes      int64
}

// Encode runs ffmpeg, reporting one track of progress for opts.Title.
func Encode(ctx context.Context, opts Options) (Output, error) {
	if opts.FFmpegPath == "" {
		return Output{}, errors.New("ffmpeg path is required")
	}
	if opts.Title == "" {
		return Output{}, errors.New("title is required")
	}
	if len(opts.Args) == 0 {
		return Output{}, errors.New("ffmpeg arguments are required")
	}
	runner := opts.Runner
	if runner == nil {
		runner = util.NewDefaultRunner()
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.ReporterFunc(func(*progress.Message) {})
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	ps := NewProgressState(opts.Title, opts.DurationSec)
	ps.Nested = opts.Nested
	rep.Report(ps.Begin())

	_, runErr := runner.Run(ctx, util.CmdSpec{
		Path:    opts.FFmpegPath,
		Args:    ProgressArgs(opts.Args),
		Log:     log,
		Verbose: opts.Verbose,
		StdoutLine: func(line string) {
			if msg, ok := ps.UpdateFromLine(line); ok {
				rep.Report(msg)
			}
		},
	})
	if runErr != nil {
		if !ps.Done() {
			rep.Report(ps.Abort())
		}
		if opts.OutputPath != "" {
			_ = util.RemoveIfExists(opts.OutputPath)
		}
		return Output{}, fmt.Errorf("ffmpeg failed: %w", runErr)
	}
	if !ps.Done() {
		rep.Report(ps.Finish())
	}

	out := Output{Title: opts.Title, OutputPath: opts.OutputPath, Bytes: ps.TotalSize}
	if opts.OutputPath != "" {
		fi, err := os.Stat(opts.OutputPath)
		if err != nil {
			return out, fmt.Errorf("stat output: %w", err)
		}
		out.Bytes = fi.Size()
	}
	log.Info("track converted", "title", opts.Title, "length", format.Duration(opts.DurationSec), "size", format.HumanizeBytes(out.Bytes))
	return out, nil
}
