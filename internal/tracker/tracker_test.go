package tracker

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
	"bookprog/internal/status"
)

type recordingLabel struct {
	width int
	texts []string
}

func (l *recordingLabel) SetText(s string) { l.texts = append(l.texts, s) }
func (l *recordingLabel) Width() int       { return l.width }
func (l *recordingLabel) Text() string {
	if len(l.texts) == 0 {
		return ""
	}
	return l.texts[len(l.texts)-1]
}

var runes = status.MeasureFunc(func(s string) (int, int) {
	return utf8.RuneCountInString(s), 1
})

type fixture struct {
	parts, tracks *counter.Gauge
	label         *recordingLabel
	c             *Coordinator
}

func newFixture(width int) fixture {
	f := fixture{parts: &counter.Gauge{}, tracks: &counter.Gauge{}, label: &recordingLabel{width: width}}
	f.c = New(f.parts, f.tracks, f.label, runes)
	return f
}

func TestCoordinator_NilMessage(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(nil)
	assert.Empty(t, f.label.texts)
	assert.Equal(t, 1, f.tracks.Maximum())
}

func TestCoordinator_RoutesCounters(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{
		AddTotalParts:  progress.Uint(4),
		IncParts:       progress.Uint(1),
		AddTotalTracks: progress.Uint(10),
	})

	assert.Equal(t, 4, f.parts.Maximum())
	assert.Equal(t, 1, f.parts.Value())
	assert.Equal(t, uint(2), f.c.Parts().Value())
	assert.Equal(t, 10000, f.tracks.Maximum())
	assert.Equal(t, uint(10), f.c.Tracks().Maximum())
}

func TestCoordinator_WholeTracksWinOverPerMille(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{AddTotalTracks: progress.Uint(5)})
	f.c.Apply(&progress.Message{IncTracks: progress.Uint(2), IncTracksPerMille: progress.Uint(400)})
	assert.Equal(t, 2000, f.tracks.Value())

	f.c.Apply(&progress.Message{IncTracksPerMille: progress.Uint(400)})
	assert.Equal(t, 2400, f.tracks.Value())
}

func TestCoordinator_CounterChangeRendersWithoutItem(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{AddTotalTracks: progress.Uint(3)})
	require.NotEmpty(t, f.label.texts)
	assert.Equal(t, "step 1/3", f.label.Text())

	f.c.Apply(&progress.Message{IncTracks: progress.Uint(1)})
	assert.Equal(t, "step 2/3", f.label.Text())
}

func TestCoordinator_NamelessItemAddsNoBook(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{AddTotalTracks: progress.Uint(2)})
	f.c.Apply(&progress.Message{Item: &progress.ItemUpdate{Phase: progress.PhaseDecoding}})

	assert.Zero(t, f.c.Books().Len())
	assert.Equal(t, "step 1/2", f.label.Text())
}

func TestCoordinator_PartsCounterDoesNotRender(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{AddTotalParts: progress.Uint(3), IncParts: progress.Uint(1)})
	assert.Empty(t, f.label.texts)
}

func TestCoordinator_ResetMessageIgnoresOtherFields(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{
		AddTotalParts:  progress.Uint(2),
		AddTotalTracks: progress.Uint(2),
		Item:           &progress.ItemUpdate{Name: *progress.Assert("Book A")},
	})
	require.Equal(t, 1, f.c.Books().Len())

	f.c.Apply(&progress.Message{
		Reset:          true,
		AddTotalTracks: progress.Uint(9),
		Item:           &progress.ItemUpdate{Name: *progress.Assert("Book B")},
	})

	assert.Equal(t, 1, f.parts.Maximum())
	assert.Equal(t, 0, f.parts.Value())
	assert.Equal(t, 1, f.tracks.Maximum())
	assert.Equal(t, 0, f.tracks.Value())
	assert.Equal(t, uint(0), f.c.Tracks().Maximum())
	assert.Zero(t, f.c.Books().Len())
	assert.Empty(t, f.label.Text())
}

func TestCoordinator_EndToEndTwoBooks(t *testing.T) {
	probe := newFixture(1000)
	msgs := []*progress.Message{
		{AddTotalTracks: progress.Uint(20)},
		{IncTracksPerMille: progress.Uint(2500)},
		{Item: &progress.ItemUpdate{
			Name:       *progress.Assert("Alpha"),
			Phase:      progress.PhaseDecoding,
			TrackCount: progress.Uint(10),
			Chapter:    progress.Assert[uint](4),
		}},
		{Item: &progress.ItemUpdate{
			Name:       *progress.Assert("Beta"),
			Phase:      progress.PhaseEncoding,
			PartNumber: progress.Uint(2),
			Part:       progress.Assert[uint](2),
		}},
	}
	for _, m := range msgs {
		probe.c.Apply(m)
	}
	full := probe.c.Books().Line(status.DetailFull)
	phase := probe.c.Books().Line(status.DetailPhaseCounters)
	require.Greater(t, utf8.RuneCountInString(full), utf8.RuneCountInString(phase))

	// A label one rune short of the full line falls back to phase+counters.
	f := newFixture(utf8.RuneCountInString(full) - 1)
	for _, m := range msgs {
		f.c.Apply(m)
	}
	assert.Equal(t, `step 3/20; "Alpha", 10 tr., decoding; "Beta", part 2, encoding`, f.label.Text())
}

func TestCoordinator_RetractBookOnlyRemovesThatBook(t *testing.T) {
	f := newFixture(200)
	f.c.Apply(&progress.Message{Item: &progress.ItemUpdate{Name: *progress.Assert("Alpha")}})
	f.c.Apply(&progress.Message{Item: &progress.ItemUpdate{Name: *progress.Assert("Beta")}})
	f.c.Apply(&progress.Message{IncTracks: progress.Uint(0), Item: &progress.ItemUpdate{Name: *progress.Retract("Alpha")}})

	items := f.c.Books().Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Beta", items[0].Name)
	assert.Equal(t, `step 0/0; "Beta"`, f.label.Text())
}

func TestCoordinator_CustomCaptions(t *testing.T) {
	label := &recordingLabel{width: 200}
	c := New(&counter.Gauge{}, &counter.Gauge{}, label, runes,
		WithCaptions(status.Captions{Step: "Titel"}))
	c.Apply(&progress.Message{AddTotalTracks: progress.Uint(1)})
	assert.Equal(t, "Titel 1/1", label.Text())
}
