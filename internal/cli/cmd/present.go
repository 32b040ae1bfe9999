package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bookprog/internal/plain"
	"bookprog/internal/progress"
	"bookprog/internal/ui"
)

// present runs produce while showing its progress, in the full-screen UI
// when stdout is a terminal and as plain status lines otherwise.
func present(cmd *cobra.Command, title string, produce ui.Producer) error {
	a := appFrom(cmd)
	if a.tui {
		return ui.Run(cmd.Context(), produce, cmd.OutOrStdout(), ui.Options{
			Title:        title,
			BarWidth:     a.cfg.UI.BarWidth,
			MeasureCache: a.cfg.MeasureCache,
			Captions:     a.captions,
			Logger:       a.log,
		})
	}
	return presentPlain(cmd.Context(), cmd, a, produce)
}

func presentPlain(ctx context.Context, cmd *cobra.Command, a *app, produce ui.Producer) error {
	d, err := plain.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), plain.Options{
		Width:        a.width,
		BarWidth:     a.cfg.UI.BarWidth,
		MeasureCache: a.cfg.MeasureCache,
		Captions:     a.captions,
		Logger:       a.log,
	})
	if err != nil {
		return err
	}

	ch := make(chan *progress.Message, 64)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(ch)
		return produce(gctx, progress.NewChan(gctx, ch))
	})
	g.Go(func() error {
		return d.Run(gctx, ch)
	})
	return g.Wait()
}
