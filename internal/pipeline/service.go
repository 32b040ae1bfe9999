// Package pipeline converts a batch of books with ffmpeg, several at a
// time, reporting per-book progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"bookprog/internal/encoder"
	"bookprog/internal/progress"
	"bookprog/internal/util"
	"bookprog/internal/util/format"
)

// Service runs plans.
type Service struct {
	ffmpegPath string
	runner     util.CmdRunner
	reporter   progress.Reporter
	workers    int
	verbose    bool
	log        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithFFmpegPath sets the ffmpeg binary path.
func WithFFmpegPath(p string) Option {
	return func(s *Service) {
		s.ffmpegPath = p
	}
}

// WithRunner injects a custom command runner (useful for testing).
func WithRunner(r util.CmdRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithReporter attaches the progress reporter. It must be safe for
// concurrent use.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithWorkers sets how many books are converted at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithVerbose logs ffmpeg output at debug level.
func WithVerbose(v bool) Option {
	return func(s *Service) {
		s.verbose = v
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService constructs a new Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.runner == nil {
		s.runner = util.NewDefaultRunner()
	}
	if s.reporter == nil {
		s.reporter = progress.ReporterFunc(func(*progress.Message) {})
	}
	if s.workers <= 0 {
		s.workers = 2
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// Result is the outcome of one book.
type Result struct {
	Title   string
	Outputs []encoder.Output
	Err     error
}

// Run converts every book in p. A failing book does not stop the others;
// the returned error joins all book errors.
func (s *Service) Run(ctx context.Context, p Plan) ([]Result, error) {
	if s.ffmpegPath == "" {
		return nil, errors.New("ffmpeg path is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.OutDir != "" {
		if err := util.EnsureDir(p.OutDir); err != nil {
			return nil, fmt.Errorf("output dir: %w", err)
		}
	}

	parts, tracks := p.Totals()
	s.reporter.Report(&progress.Message{
		AddTotalParts:  progress.Uint(parts),
		AddTotalTracks: progress.Uint(tracks),
	})

	results := make([]Result, len(p.Books))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, b := range p.Books {
		i, b := i, b
		g.Go(func() error {
			results[i] = s.runBook(ctx, p, b)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Title, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (s *Service) runBook(ctx context.Context, p Plan, b Book) Result {
	res := Result{Title: b.Title}
	name := func() progress.Entry[string] { return *progress.Assert(b.Title) }
	defer s.reporter.Report(&progress.Message{Item: &progress.ItemUpdate{Name: *progress.Retract(b.Title)}})

	_, tracks := b.Totals()
	first := &progress.ItemUpdate{
		Name:       name(),
		Phase:      progress.PhaseAnalysing,
		TrackCount: progress.Uint(tracks),
	}
	if n := b.Chapters(); n > 0 {
		first.ChapterCount = progress.Uint(n)
	}
	s.reporter.Report(&progress.Message{Item: first})

	var total int64
	for pi, part := range b.Parts {
		s.reporter.Report(&progress.Message{Item: &progress.ItemUpdate{
			Name:       name(),
			PartNumber: progress.Uint(uint(pi + 1)),
			Part:       progress.Assert(uint(pi + 1)),
		}})

		for ti, t := range part.Tracks {
			for _, c := range t.Chapters {
				s.reporter.Report(&progress.Message{Item: &progress.ItemUpdate{Name: name(), Chapter: progress.Assert(c)}})
			}

			args, output := p.TrackArgs(b, pi, ti)
			out, err := encoder.Encode(ctx, encoder.Options{
				FFmpegPath:  s.ffmpegPath,
				Args:        args,
				Title:       b.Title,
				DurationSec: t.Duration,
				OutputPath:  output,
				Verbose:     s.verbose,
				Nested:      true,
				Reporter:    s.reporter,
				Runner:      s.runner,
				Log:         s.log.With("part", pi+1, "track", ti+1),
			})
			if err != nil {
				res.Err = fmt.Errorf("part %d track %d: %w", pi+1, ti+1, err)
				s.log.Error("book failed", "title", b.Title, "err", err)
				return res
			}
			res.Outputs = append(res.Outputs, out)
			total += out.Bytes

			for _, c := range t.Chapters {
				s.reporter.Report(&progress.Message{Item: &progress.ItemUpdate{Name: name(), Chapter: progress.Retract(c)}})
			}
		}

		s.reporter.Report(&progress.Message{
			IncParts: progress.Uint(1),
			Item: &progress.ItemUpdate{
				Name:  name(),
				Phase: progress.PhaseTagging,
				Part:  progress.Retract(uint(pi + 1)),
			},
		})
	}

	s.log.Info("book converted", "title", b.Title, "tracks", len(res.Outputs), "size", format.HumanizeBytes(total))
	return res
}
