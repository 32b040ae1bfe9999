// Package demo simulates several audiobook conversions running at once,
// each reporting its progress independently.
package demo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
)

// Options describes the simulated workload.
type Options struct {
	Titles   []string
	Parts    uint // parts per book
	Tracks   uint // tracks per part
	Chapters uint // chapters per track
	Workers  int
	Tick     time.Duration // pause between progress reports
	Steps    uint          // per-mille reports per track
}

// DefaultOptions returns a small workload that finishes in a few seconds.
func DefaultOptions() Options {
	return Options{
		Titles:   []string{"A Tale of Two Cities", "Moby-Dick", "Pride and Prejudice", "The Time Machine"},
		Parts:    2,
		Tracks:   3,
		Chapters: 2,
		Workers:  2,
		Tick:     40 * time.Millisecond,
		Steps:    10,
	}
}

func (o Options) validate() error {
	if len(o.Titles) == 0 {
		return errors.New("demo: no titles")
	}
	if o.Parts == 0 || o.Tracks == 0 {
		return errors.New("demo: parts and tracks must be positive")
	}
	if o.Steps == 0 || o.Steps > counter.PerMille {
		return fmt.Errorf("demo: steps must be in 1..%d", counter.PerMille)
	}
	return nil
}

// Run resets the display, announces the totals and converts every title on
// a pool of o.Workers goroutines.
func Run(ctx context.Context, rep progress.Reporter, o Options) error {
	if err := o.validate(); err != nil {
		return err
	}
	workers := o.Workers
	if workers <= 0 {
		workers = 1
	}

	n := uint(len(o.Titles))
	rep.Report(&progress.Message{Reset: true})
	rep.Report(&progress.Message{
		AddTotalParts:  progress.Uint(n * o.Parts),
		AddTotalTracks: progress.Uint(n * o.Parts * o.Tracks),
	})

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError()
	for _, title := range o.Titles {
		title := title
		p.Go(func(ctx context.Context) error {
			return convert(ctx, rep, title, o)
		})
	}
	return p.Wait()
}

func convert(ctx context.Context, rep progress.Reporter, title string, o Options) error {
	name := func() progress.Entry[string] { return *progress.Assert(title) }

	rep.Report(&progress.Message{Item: &progress.ItemUpdate{
		Name:         name(),
		Phase:        progress.PhaseAnalysing,
		ChapterCount: progress.Uint(o.Parts * o.Tracks * o.Chapters),
		TrackCount:   progress.Uint(o.Parts * o.Tracks),
	}})
	if err := sleep(ctx, o.Tick); err != nil {
		return err
	}

	chapter := uint(0)
	for part := uint(1); part <= o.Parts; part++ {
		rep.Report(&progress.Message{Item: &progress.ItemUpdate{
			Name:       name(),
			Phase:      progress.PhaseDecrypting,
			PartNumber: progress.Uint(part),
			Part:       progress.Assert(part),
		}})
		if err := sleep(ctx, o.Tick); err != nil {
			return err
		}

		for track := uint(0); track < o.Tracks; track++ {
			first := chapter + 1
			for c := uint(0); c < o.Chapters; c++ {
				chapter++
				rep.Report(&progress.Message{Item: &progress.ItemUpdate{
					Name:    name(),
					Phase:   progress.PhaseEncoding,
					Chapter: progress.Assert(chapter),
				}})
			}
			if err := encodeTrack(ctx, rep, o); err != nil {
				return err
			}
			for c := first; c <= chapter; c++ {
				rep.Report(&progress.Message{Item: &progress.ItemUpdate{
					Name:    name(),
					Chapter: progress.Retract(c),
				}})
			}
		}

		rep.Report(&progress.Message{
			IncParts: progress.Uint(1),
			Item: &progress.ItemUpdate{
				Name:  name(),
				Phase: progress.PhaseTagging,
				Part:  progress.Retract(part),
			},
		})
	}

	rep.Report(&progress.Message{Item: &progress.ItemUpdate{Name: *progress.Retract(title)}})
	return nil
}

// encodeTrack reports one track as o.Steps per-mille increments summing to
// exactly one unit.
func encodeTrack(ctx context.Context, rep progress.Reporter, o Options) error {
	var sent uint
	for i := uint(1); i <= o.Steps; i++ {
		if err := sleep(ctx, o.Tick); err != nil {
			return err
		}
		target := counter.PerMille * i / o.Steps
		rep.Report(&progress.Message{IncTracksPerMille: progress.Uint(target - sent)})
		sent = target
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
