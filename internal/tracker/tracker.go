// Package tracker routes progress messages to the parts and tracks counters
// and to the per-book status line.
package tracker

import (
	"io"
	"log/slog"

	"bookprog/internal/counter"
	"bookprog/internal/progress"
	"bookprog/internal/status"
)

// Coordinator is the single consumer of progress messages. It performs no
// locking: callers must serialise Apply and Reset.
type Coordinator struct {
	parts  *counter.Counter
	tracks *counter.Counter
	books  *status.Aggregator
	log    *slog.Logger
}

type options struct {
	captions *status.Captions
	log      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*options)

// WithCaptions sets the caption table for the status line.
func WithCaptions(c status.Captions) Option {
	return func(o *options) {
		o.captions = &c
	}
}

// WithLogger sets the logger used by the coordinator and its aggregator.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// New wires a parts counter (whole units) onto parts, a tracks counter
// (per-mille) onto tracks, and an aggregator writing to label. Every
// change of the tracks counter re-renders the label.
func New(parts, tracks counter.Indicator, label status.Label, measure status.Measurer, opts ...Option) *Coordinator {
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}
	if o.log == nil {
		o.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Coordinator{
		parts:  counter.New(parts),
		tracks: counter.New(tracks, counter.WithPerMille()),
		log:    o.log,
	}

	aggOpts := []status.Option{status.WithLogger(o.log)}
	if o.captions != nil {
		aggOpts = append(aggOpts, status.WithCaptions(*o.captions))
	}
	c.books = status.New(label, measure, c.tracks, aggOpts...)
	c.tracks.SetNotify(func() { c.books.Render() })
	return c
}

// Reset clears both counters and all books.
func (c *Coordinator) Reset() {
	c.parts.Reset()
	c.tracks.Reset()
	c.books.Reset()
	c.log.Debug("progress reset")
}

// Apply dispatches msg field by field. A reset message ignores every other
// field.
func (c *Coordinator) Apply(msg *progress.Message) {
	if msg == nil {
		return
	}
	if msg.Reset {
		c.Reset()
		return
	}

	if msg.AddTotalParts != nil {
		c.parts.IncreaseMaximum(*msg.AddTotalParts)
	}
	if msg.IncParts != nil {
		c.parts.IncreaseValue(*msg.IncParts)
	}

	if msg.AddTotalTracks != nil {
		c.tracks.IncreaseMaximum(*msg.AddTotalTracks)
	}
	if msg.IncTracks != nil {
		c.tracks.IncreaseValue(*msg.IncTracks)
	} else if msg.IncTracksPerMille != nil {
		c.tracks.IncreaseValuePerMille(*msg.IncTracksPerMille)
	}

	c.books.Update(msg.Item)
}

// Parts returns the parts counter.
func (c *Coordinator) Parts() *counter.Counter { return c.parts }

// Tracks returns the tracks counter.
func (c *Coordinator) Tracks() *counter.Counter { return c.tracks }

// Books returns the status aggregator.
func (c *Coordinator) Books() *status.Aggregator { return c.books }
