package encoder

import (
	"strconv"
	"strings"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
)

// ProgressState folds ffmpeg's -progress key=value output for one track
// into per-mille track progress messages for the book it belongs to.
type ProgressState struct {
	Title       string
	DurationSec float64

	OutTimeUs int64
	SpeedStr  string
	TotalSize int64

	// Nested marks a track whose book record and totals are owned by a
	// caller running several tracks: Begin announces nothing and neither
	// Finish nor Abort removes the book.
	Nested bool

	reported uint // per-mille already reported
	done     bool
}

// NewProgressState tracks one ffmpeg run converting part of title.
// durationSec <= 0 means the length is unknown; progress then only moves
// when the run ends.
func NewProgressState(title string, durationSec float64) *ProgressState {
	return &ProgressState{Title: title, DurationSec: durationSec}
}

// Begin announces one more track and marks the book as encoding.
func (ps *ProgressState) Begin() *progress.Message {
	msg := &progress.Message{
		Item: &progress.ItemUpdate{
			Name:  *progress.Assert(ps.Title),
			Phase: progress.PhaseEncoding,
		},
	}
	if !ps.Nested {
		msg.AddTotalTracks = progress.Uint(1)
	}
	return msg
}

// UpdateFromLine updates the state from a progress line and returns a
// message when the line closes a progress block.
func (ps *ProgressState) UpdateFromLine(line string) (*progress.Message, bool) {
	if ps.done {
		return nil, false
	}
	kv := strings.SplitN(line, "=", 2)
	if len(kv) != 2 {
		return nil, false
	}

	key := strings.TrimSpace(kv[0])
	val := strings.TrimSpace(kv[1])

	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds.
		if v, err := strconv.ParseInt(val, 10, 64); err == nil && v >= 0 {
			ps.OutTimeUs = v
		}
	case "speed":
		ps.SpeedStr = val
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		if val == "end" {
			return ps.Finish(), true
		}
		msg := &progress.Message{
			Item: &progress.ItemUpdate{
				Name:  *progress.Assert(ps.Title),
				Phase: progress.PhaseEncoding,
			},
		}
		if d := ps.advance(ps.PerMille()); d > 0 {
			msg.IncTracksPerMille = progress.Uint(d)
		}
		return msg, true
	}
	return nil, false
}

// PerMille is the completed share of the track in 0..1000, or what has
// been reported so far when the duration is unknown.
func (ps *ProgressState) PerMille() uint {
	if ps.DurationSec <= 0 {
		return ps.reported
	}
	den := ps.DurationSec * 1_000_000
	pm := float64(ps.OutTimeUs) / den * counter.PerMille
	if pm >= counter.PerMille {
		return counter.PerMille
	}
	return uint(pm)
}

// Finish tops the track up to a full unit and removes the book.
func (ps *ProgressState) Finish() *progress.Message {
	msg := ps.Abort()
	if d := ps.advance(counter.PerMille); d > 0 {
		msg.IncTracksPerMille = progress.Uint(d)
	}
	return msg
}

// Abort removes the book without completing the track. A nested track
// only stops reporting; its message is empty.
func (ps *ProgressState) Abort() *progress.Message {
	ps.done = true
	if ps.Nested {
		return &progress.Message{}
	}
	return &progress.Message{
		Item: &progress.ItemUpdate{Name: *progress.Retract(ps.Title)},
	}
}

// Done reports whether Finish or Abort has been emitted.
func (ps *ProgressState) Done() bool {
	return ps.done
}

func (ps *ProgressState) advance(pm uint) uint {
	if pm <= ps.reported {
		return 0
	}
	d := pm - ps.reported
	ps.reported = pm
	return d
}
