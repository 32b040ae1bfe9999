package plain

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookprog/internal/progress"
)

func TestMeasure(t *testing.T) {
	tests := []struct {
		in   string
		w, h int
	}{
		{"", 0, 1},
		{"step 1/2", 8, 1},
		{"日本語", 6, 1},
		{"ab\nabcd", 4, 2},
	}
	for _, tt := range tests {
		w, h := Measure(tt.in)
		assert.Equal(t, tt.w, w, "width of %q", tt.in)
		assert.Equal(t, tt.h, h, "height of %q", tt.in)
	}
}

func TestLabel_PrintsOnlyChanges(t *testing.T) {
	var out bytes.Buffer
	l := NewLabel(&out, 40)
	cleared := 0
	l.before = func() { cleared++ }

	l.SetText("a")
	l.SetText("a")
	l.SetText("")
	l.SetText("b")

	assert.Equal(t, "a\nb\n", out.String())
	assert.Equal(t, 2, cleared)
	assert.Equal(t, "b", l.Text())
	assert.Equal(t, 40, l.Width())
}

func TestBar_TracksValueAndMaximum(t *testing.T) {
	b := NewBar(&bytes.Buffer{}, "tracks", 10)
	assert.Equal(t, 1, b.Maximum())
	assert.Equal(t, 0, b.Value())

	b.SetMaximum(3000)
	b.SetValue(1500)
	assert.Equal(t, 3000, b.Maximum())
	assert.Equal(t, 1500, b.Value())

	b.SetValue(3000)
	b.SetMaximum(5000)
	assert.Equal(t, 5000, b.Maximum())
	assert.Equal(t, 3000, b.Value())
}

func TestDisplay_Run(t *testing.T) {
	var out, bars bytes.Buffer
	d, err := New(&out, &bars, Options{Width: 80, MeasureCache: 16})
	require.NoError(t, err)

	ch := make(chan *progress.Message, 8)
	ch <- &progress.Message{AddTotalTracks: progress.Uint(2), AddTotalParts: progress.Uint(1)}
	ch <- &progress.Message{Item: &progress.ItemUpdate{Name: *progress.Assert("Alpha"), Phase: progress.PhaseDecoding}}
	ch <- &progress.Message{IncTracks: progress.Uint(1)}
	ch <- &progress.Message{Item: &progress.ItemUpdate{Name: *progress.Retract("Alpha")}}
	close(ch)

	require.NoError(t, d.Run(context.Background(), ch))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"step 1/2",
		`step 1/2; "Alpha", decoding`,
		`step 2/2; "Alpha", decoding`,
		"step 2/2",
	}, lines)
	assert.Equal(t, 2000, d.tracks.Maximum())
	assert.Equal(t, 1000, d.tracks.Value())
	assert.Equal(t, 1, d.parts.Maximum())
}

func TestDisplay_RunCancelled(t *testing.T) {
	d, err := New(&bytes.Buffer{}, &bytes.Buffer{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.Run(ctx, make(chan *progress.Message))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_NegativeCacheDisablesCaching(t *testing.T) {
	_, err := New(&bytes.Buffer{}, &bytes.Buffer{}, Options{MeasureCache: -1})
	assert.NoError(t, err, "negative sizes disable the cache")
}
