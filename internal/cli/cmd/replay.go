package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bookprog/internal/progress"
	"bookprog/internal/script"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "replay <script.yaml>",
		Short:         "Replay a recorded progress script",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE:          runReplay,
	}
	cmd.Flags().Float64("speed", 0, "Playback speed factor (0: as recorded)")
	return cmd
}

func runReplay(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	f, err := script.Load(afero.NewOsFs(), args[0])
	if err != nil {
		return &ExitError{Code: ExitSourceError, Err: err}
	}
	switch speed, _ := cmd.Flags().GetFloat64("speed"); {
	case speed < 0:
		return &ExitError{Code: ExitCLIError, Err: errors.New("--speed must not be negative")}
	case speed > 0:
		f.Speed = speed
	}
	a.log.Info("replaying", "script", args[0], "steps", len(f.Steps))

	err = present(cmd, filepath.Base(args[0]), func(ctx context.Context, rep progress.Reporter) error {
		return script.Play(ctx, f, rep)
	})
	return commandError(ExitSourceError, err)
}
