// Package plain shows progress as a single terminal bar followed by status
// lines, for output that is not driven by the full-screen UI.
package plain

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
	"bookprog/internal/status"
	"bookprog/internal/tracker"
)

// Options configures a Display.
type Options struct {
	Width        int // label width in cells
	BarWidth     int
	MeasureCache int // 0 disables caching
	Captions     status.Captions
	Logger       *slog.Logger
}

// Display owns a coordinator whose tracks counter drives a progress bar on
// barOut and whose status line is printed to out.
type Display struct {
	coord  *tracker.Coordinator
	parts  *counter.Gauge
	tracks *Bar
	label  *Label
	caps   status.Captions
	log    *slog.Logger
}

// New builds a Display.
func New(out, barOut io.Writer, o Options) (*Display, error) {
	if o.Width <= 0 {
		o.Width = 80
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	caps := status.DefaultCaptions().Merge(o.Captions)

	var measure status.Measurer = status.MeasureFunc(Measure)
	if o.MeasureCache > 0 {
		cm, err := status.NewCachedMeasurer(measure, o.MeasureCache)
		if err != nil {
			return nil, fmt.Errorf("measure cache: %w", err)
		}
		measure = cm
	}

	d := &Display{
		parts:  &counter.Gauge{},
		tracks: NewBar(barOut, "", o.BarWidth),
		label:  NewLabel(out, o.Width),
		caps:   caps,
		log:    o.Logger,
	}
	d.label.before = d.tracks.Clear
	d.coord = tracker.New(d.parts, d.tracks, d.label, measure,
		tracker.WithCaptions(caps),
		tracker.WithLogger(o.Logger),
	)
	return d, nil
}

// Apply hands msg to the coordinator and refreshes the bar description.
func (d *Display) Apply(msg *progress.Message) {
	d.coord.Apply(msg)
	d.tracks.Describe(fmt.Sprintf("%s %d/%d", d.caps.Part, d.coord.Parts().Value(), d.coord.Parts().Maximum()))
}

// Run applies messages from ch until it is closed or ctx is done.
func (d *Display) Run(ctx context.Context, ch <-chan *progress.Message) error {
	for {
		select {
		case <-ctx.Done():
			d.tracks.Clear()
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				d.tracks.Finish()
				d.log.Debug("progress stream closed", "status", d.label.Text())
				return nil
			}
			d.Apply(msg)
		}
	}
}

// Coordinator returns the coordinator behind the display.
func (d *Display) Coordinator() *tracker.Coordinator {
	return d.coord
}
