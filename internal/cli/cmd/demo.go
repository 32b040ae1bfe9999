package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"bookprog/internal/demo"
	"bookprog/internal/progress"
	"bookprog/internal/script"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "demo",
		Short:         "Simulate several books converting at once",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runDemo,
	}
	fs := cmd.Flags()
	fs.Int("books", 0, "Number of simulated books (default from config)")
	fs.Int("workers", 0, "Books converted concurrently (default from config)")
	fs.Duration("tick", 0, "Pause between progress reports (default from config)")
	fs.Uint("parts", 2, "Parts per book")
	fs.Uint("tracks", 3, "Tracks per part")
	fs.Uint("chapters", 2, "Chapters per track")
	fs.String("record", "", "Also save the message stream as a replay script")
	return cmd
}

func demoOptions(cmd *cobra.Command, a *app) demo.Options {
	o := demo.DefaultOptions()
	fs := cmd.Flags()

	books := a.cfg.Demo.Books
	if v, _ := fs.GetInt("books"); v > 0 {
		books = v
	}
	if books > 0 {
		titles := make([]string, 0, books)
		for i := 0; i < books; i++ {
			if i < len(o.Titles) {
				titles = append(titles, o.Titles[i])
			} else {
				titles = append(titles, fmt.Sprintf("Book %d", i+1))
			}
		}
		o.Titles = titles
	}

	if a.cfg.Demo.Workers > 0 {
		o.Workers = a.cfg.Demo.Workers
	}
	if v, _ := fs.GetInt("workers"); v > 0 {
		o.Workers = v
	}
	if a.cfg.Demo.Tick > 0 {
		o.Tick = a.cfg.Demo.Tick
	}
	if v, _ := fs.GetDuration("tick"); v > 0 {
		o.Tick = v
	}
	o.Parts, _ = fs.GetUint("parts")
	o.Tracks, _ = fs.GetUint("tracks")
	o.Chapters, _ = fs.GetUint("chapters")
	return o
}

func runDemo(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	o := demoOptions(cmd, a)
	record, _ := cmd.Flags().GetString("record")

	var rec *script.Recorder
	if record != "" {
		rec = script.NewRecorder()
	}
	a.log.Info("demo starting", "books", len(o.Titles), "workers", o.Workers, "tick", o.Tick)

	err := present(cmd, "bookprog demo", func(ctx context.Context, rep progress.Reporter) error {
		if rec != nil {
			rep = tee(rep, rec)
		}
		return demo.Run(ctx, rep, o)
	})
	if err != nil {
		return commandError(ExitCommandError, err)
	}

	if rec != nil {
		if err := script.Save(afero.NewOsFs(), record, rec.File()); err != nil {
			return &ExitError{Code: ExitCommandError, Err: err}
		}
		a.log.Info("script recorded", "path", record)
	}
	return nil
}

func tee(reps ...progress.Reporter) progress.Reporter {
	return progress.ReporterFunc(func(m *progress.Message) {
		for _, r := range reps {
			r.Report(m)
		}
	})
}
