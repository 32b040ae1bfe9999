package script

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookprog/internal/progress"
)

const sample = `
speed: 1000
steps:
  - message:
      reset: true
  - message:
      add_total_parts: 2
      add_total_tracks: 12
  - delay: 100ms
    message:
      inc_tracks_per_mille: 400
      item:
        name: Book A
        phase: decoding
        part: 1
  - delay: 50ms
    message:
      item:
        name: {value: Book A, cancel: true}
`

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/scripts/run.yaml", []byte(sample), 0o644))

	f, err := Load(fs, "/scripts/run.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1000.0, f.Speed)
	require.Len(t, f.Steps, 4)
	assert.True(t, f.Steps[0].Message.Reset)
	assert.Equal(t, 100*time.Millisecond, f.Steps[2].Delay)
	it := f.Steps[2].Message.Item
	require.NotNil(t, it)
	assert.Equal(t, progress.PhaseDecoding, it.Phase)
	require.NotNil(t, it.Part)
	assert.Equal(t, uint(1), it.Part.Value())
	assert.True(t, f.Steps[3].Message.Item.Name.Retracted())
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope.yaml")
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "negative speed", src: "speed: -1\nsteps: []\n"},
		{name: "negative delay", src: "steps:\n  - delay: -1s\n    message: {}\n"},
		{name: "unknown phase", src: "steps:\n  - message:\n      item: {name: A, phase: mixing}\n"},
		{name: "not yaml", src: "steps: [\n"},
		{name: "item without name", src: "steps: [{message: {add_total_tracks: 2}}, {message: {item: {phase: decoding}}}]\n"},
		{name: "item with empty name", src: "steps:\n  - message:\n      item: {name: {value: \"\", cancel: true}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestPlay_ReportsInOrder(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	var got []*progress.Message
	err = Play(context.Background(), f, progress.ReporterFunc(func(m *progress.Message) {
		got = append(got, m)
	}))
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[0].Reset)
	assert.Equal(t, uint(12), *got[1].AddTotalTracks)
	assert.Equal(t, "Book A", got[3].Item.Name.Value())
}

func TestPlay_Cancelled(t *testing.T) {
	f := File{Steps: []Step{
		{Message: progress.Message{IncParts: progress.Uint(1)}},
		{Delay: time.Hour, Message: progress.Message{IncParts: progress.Uint(1)}},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	done := make(chan error, 1)
	go func() {
		done <- Play(ctx, f, progress.ReporterFunc(func(*progress.Message) { n++ }))
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Play did not return after cancel")
	}
	assert.LessOrEqual(t, n, 1)
}

func TestRecorder_SaveAndLoad(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := start
	r := NewRecorder()
	r.now = func() time.Time { return clock }

	r.Report(&progress.Message{AddTotalTracks: progress.Uint(3)})
	clock = clock.Add(250 * time.Millisecond)
	r.Report(&progress.Message{Item: &progress.ItemUpdate{Name: *progress.Assert("Book A"), Phase: progress.PhaseEncoding}})
	r.Report(nil)

	fs := afero.NewMemMapFs()
	require.NoError(t, Save(fs, "/out.yaml", r.File()))

	back, err := Load(fs, "/out.yaml")
	require.NoError(t, err)
	require.Len(t, back.Steps, 2)
	assert.Zero(t, back.Steps[0].Delay)
	assert.Equal(t, 250*time.Millisecond, back.Steps[1].Delay)
	assert.Equal(t, progress.PhaseEncoding, back.Steps[1].Message.Item.Phase)
	assert.Equal(t, "Book A", back.Steps[1].Message.Item.Name.Value())
}
