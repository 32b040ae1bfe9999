package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
	"bookprog/internal/status"
	"bookprog/internal/tracker"
	"bookprog/internal/util"
)

// fakeRunner simulates ffmpeg: it emits a finished -progress block and
// writes the output file, or fails for inputs listed in fail.
type fakeRunner struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls int
}

func (f *fakeRunner) Run(_ context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	for i, a := range spec.Args {
		if a == "-i" && f.fail[spec.Args[i+1]] {
			err := errors.New("exit status 1")
			return util.CmdResult{Code: 1, Err: err}, err
		}
	}
	for _, l := range []string{"out_time_us=250000", "progress=continue", "total_size=100", "progress=end"} {
		spec.StdoutLine(l)
	}
	out := spec.Args[len(spec.Args)-1]
	if err := os.WriteFile(out, make([]byte, 512), 0o644); err != nil {
		return util.CmdResult{}, err
	}
	return util.CmdResult{}, nil
}

type label struct{ text string }

func (l *label) SetText(s string) { l.text = s }
func (l *label) Text() string     { return l.text }
func (l *label) Width() int       { return 200 }

// syncCoordinator applies reports from concurrent books one at a time.
type syncCoordinator struct {
	mu sync.Mutex
	c  *tracker.Coordinator
}

func (s *syncCoordinator) Report(m *progress.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Apply(m)
}

func newSyncCoordinator() (*syncCoordinator, *counter.Gauge, *counter.Gauge) {
	parts, tracks := &counter.Gauge{}, &counter.Gauge{}
	c := tracker.New(parts, tracks, &label{}, status.MeasureFunc(func(s string) (int, int) { return len(s), 1 }))
	return &syncCoordinator{c: c}, parts, tracks
}

func testPlan(dir string) Plan {
	return Plan{
		OutDir: filepath.Join(dir, "out"),
		Books: []Book{
			{Title: "Alpha", Parts: []Part{
				{Tracks: []Track{{Input: "a1", Duration: 1, Chapters: []uint{1}}, {Input: "a2", Duration: 1, Chapters: []uint{2, 3}}}},
				{Tracks: []Track{{Input: "a3"}}},
			}},
			{Title: "Beta", Parts: []Part{
				{Tracks: []Track{{Input: "b1", Duration: 2}}},
			}},
		},
	}
}

func TestService_RunConvertsEveryBook(t *testing.T) {
	rep, parts, tracks := newSyncCoordinator()
	runner := &fakeRunner{}
	svc := NewService(WithFFmpegPath("ffmpeg"), WithRunner(runner), WithReporter(rep), WithWorkers(2))

	results, err := svc.Run(context.Background(), testPlan(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	if runner.calls != 4 {
		t.Errorf("ffmpeg runs = %d, want 4", runner.calls)
	}
	if len(results) != 2 || len(results[0].Outputs) != 3 || len(results[1].Outputs) != 1 {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Outputs[0].Bytes != 512 {
		t.Errorf("output bytes = %d, want 512", results[0].Outputs[0].Bytes)
	}

	if parts.Value() != 3 || parts.Maximum() != 3 {
		t.Errorf("parts = %d/%d, want 3/3", parts.Value(), parts.Maximum())
	}
	if tracks.Value() != 4000 || tracks.Maximum() != 4000 {
		t.Errorf("tracks = %d/%d, want 4000/4000", tracks.Value(), tracks.Maximum())
	}
	if n := rep.c.Books().Len(); n != 0 {
		t.Errorf("%d books still shown", n)
	}
	if got := rep.c.Books().Text(); got != "step 4/4" {
		t.Errorf("status = %q", got)
	}
}

func TestService_FailedBookDoesNotStopOthers(t *testing.T) {
	rep, parts, _ := newSyncCoordinator()
	runner := &fakeRunner{fail: map[string]bool{"a2": true}}
	svc := NewService(WithFFmpegPath("ffmpeg"), WithRunner(runner), WithReporter(rep), WithWorkers(1))

	results, err := svc.Run(context.Background(), testPlan(t.TempDir()))
	if err == nil {
		t.Fatal("expected error")
	}
	if results[0].Err == nil || len(results[0].Outputs) != 1 {
		t.Errorf("Alpha = %+v", results[0])
	}
	if results[1].Err != nil || len(results[1].Outputs) != 1 {
		t.Errorf("Beta = %+v", results[1])
	}
	if parts.Value() != 1 {
		t.Errorf("parts done = %d, want 1", parts.Value())
	}
	if n := rep.c.Books().Len(); n != 0 {
		t.Errorf("failed book still shown: %d", n)
	}
}

func TestService_RequiresFFmpeg(t *testing.T) {
	if _, err := NewService().Run(context.Background(), testPlan(t.TempDir())); err == nil {
		t.Fatal("expected error without ffmpeg path")
	}
}
