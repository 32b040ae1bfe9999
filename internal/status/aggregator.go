// Package status folds per-book progress updates into a single status line
// that fits the width of a label.
package status

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"

	"bookprog/internal/progress"
)

// Detail selects how much per-book information a status line carries.
type Detail int

const (
	showPhase Detail = 1 << iota
	showCounters
	showIndices
)

const (
	// DetailMinimal lists the step counter and book titles only.
	DetailMinimal Detail = 0
	// DetailCounters adds part number, chapter and track totals.
	DetailCounters Detail = showCounters
	// DetailPhaseCounters adds the phase caption.
	DetailPhaseCounters Detail = showCounters | showPhase
	// DetailFull adds the part and chapter index lists.
	DetailFull Detail = showCounters | showPhase | showIndices
)

func (d Detail) String() string {
	switch d {
	case DetailMinimal:
		return "minimal"
	case DetailCounters:
		return "counters"
	case DetailPhaseCounters:
		return "phase+counters"
	case DetailFull:
		return "full"
	}
	return fmt.Sprintf("detail(%d)", int(d))
}

// fallbacks are tried in order; DetailMinimal is applied when none fits.
var fallbacks = []Detail{DetailFull, DetailPhaseCounters, DetailCounters}

// Stepper exposes the overall step counter shown at the start of the line.
type Stepper interface {
	Step() (value, maximum uint)
}

// ItemState is the accumulated progress of one book.
type ItemState struct {
	Name         string
	Phase        progress.Phase
	PartNumber   *uint
	ChapterCount *uint
	TrackCount   *uint
	// Parts and Chapters hold the indices seen so far in ascending order.
	// Duplicates are kept.
	Parts    []uint
	Chapters []uint
}

// Aggregator owns the per-book states and renders them onto a label.
// It is not safe for concurrent use.
type Aggregator struct {
	items    map[string]*ItemState
	label    Label
	measure  Measurer
	steps    Stepper
	captions Captions
	log      *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCaptions overrides the default caption table.
func WithCaptions(c Captions) Option {
	return func(a *Aggregator) {
		a.captions = c
	}
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// New returns an empty Aggregator writing to label.
func New(label Label, measure Measurer, steps Stepper, opts ...Option) *Aggregator {
	a := &Aggregator{
		items:    make(map[string]*ItemState),
		label:    label,
		measure:  measure,
		steps:    steps,
		captions: DefaultCaptions(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Reset drops all books and clears the label.
func (a *Aggregator) Reset() {
	clear(a.items)
	a.label.SetText("")
}

// Update applies u and re-renders the label. A nil update is ignored.
func (a *Aggregator) Update(u *progress.ItemUpdate) {
	if u == nil {
		return
	}
	a.Apply(u)
	a.Render()
}

// Apply merges u into the book it names without rendering.
//
// A retracted name removes the whole record and ignores the other fields.
// An update without a name is ignored.
func (a *Aggregator) Apply(u *progress.ItemUpdate) {
	if u == nil || u.Name.Value() == "" {
		return
	}
	name := u.Name.Value()
	if u.Name.Retracted() {
		if _, ok := a.items[name]; ok {
			delete(a.items, name)
			a.log.Debug("book removed", "title", name)
		}
		return
	}

	it, ok := a.items[name]
	if !ok {
		it = &ItemState{Name: name}
		a.items[name] = it
		a.log.Debug("book added", "title", name)
	}

	if u.Phase != progress.PhaseNone {
		it.Phase = u.Phase
	}
	if u.PartNumber != nil {
		it.PartNumber = copyUint(u.PartNumber)
	}
	if u.ChapterCount != nil {
		it.ChapterCount = copyUint(u.ChapterCount)
	}
	if u.TrackCount != nil {
		it.TrackCount = copyUint(u.TrackCount)
	}
	it.Parts = applyIndex(it.Parts, u.Part)
	it.Chapters = applyIndex(it.Chapters, u.Chapter)
}

// applyIndex adds or removes one index. A retraction removes only the first
// matching occurrence.
func applyIndex(list []uint, e *progress.Entry[uint]) []uint {
	if e == nil {
		return list
	}
	v := e.Value()
	if e.Retracted() {
		if i := slices.Index(list, v); i >= 0 {
			list = slices.Delete(list, i, i+1)
		}
		return list
	}
	list = append(list, v)
	slices.Sort(list)
	return list
}

// Render writes the most detailed line that fits the label and returns the
// level used. The minimal line is written even when it does not fit.
func (a *Aggregator) Render() Detail {
	for _, d := range fallbacks {
		text := a.Line(d)
		if w, _ := a.measure.Measure(text); w <= a.label.Width() {
			a.label.SetText(text)
			return d
		}
	}
	a.label.SetText(a.Line(DetailMinimal))
	return DetailMinimal
}

// Line builds the status line at detail level d.
func (a *Aggregator) Line(d Detail) string {
	var b strings.Builder
	v, m := a.steps.Step()
	fmt.Fprintf(&b, "%s %d/%d", a.captions.Step, v, m)

	for _, name := range a.names() {
		it := a.items[name]
		b.WriteString("; \"")
		b.WriteString(it.Name)
		b.WriteByte('"')

		if d&showCounters != 0 {
			if it.PartNumber != nil {
				fmt.Fprintf(&b, ", %s %d", a.captions.Part, *it.PartNumber)
			}
			if it.ChapterCount != nil {
				fmt.Fprintf(&b, ", %d %s", *it.ChapterCount, a.captions.Chapter)
			}
			if it.TrackCount != nil {
				fmt.Fprintf(&b, ", %d %s", *it.TrackCount, a.captions.Track)
			}
		}
		if d&showPhase != 0 && it.Phase != progress.PhaseNone {
			b.WriteString(", ")
			b.WriteString(a.captions.Phase(it.Phase))
		}
		if d&showIndices != 0 {
			writeIndices(&b, it.Parts, a.captions.Part)
			writeIndices(&b, it.Chapters, a.captions.Chapter)
		}
	}
	return b.String()
}

// writeIndices appends ", <caption> 1,2,3...9". Lists starting at 0 have
// not started and are skipped.
func writeIndices(b *strings.Builder, list []uint, caption string) {
	if len(list) == 0 || list[0] == 0 {
		return
	}
	b.WriteString(", ")
	b.WriteString(caption)
	b.WriteByte(' ')
	b.WriteString(CompactIndices(list))
}

// CompactIndices joins up to five indices with commas; longer lists show
// the first three, an ellipsis and the last one.
func CompactIndices(list []uint) string {
	show := list
	if len(list) > 5 {
		show = list[:3]
	}
	parts := make([]string, 0, len(show)+1)
	for _, v := range show {
		parts = append(parts, strconv.FormatUint(uint64(v), 10))
	}
	s := strings.Join(parts, ",")
	if len(list) > 5 {
		s += "..." + strconv.FormatUint(uint64(list[len(list)-1]), 10)
	}
	return s
}

func (a *Aggregator) names() []string {
	names := make([]string, 0, len(a.items))
	for n := range a.items {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Items returns a snapshot of all books in display order.
func (a *Aggregator) Items() []ItemState {
	names := a.names()
	out := make([]ItemState, 0, len(names))
	for _, n := range names {
		it := *a.items[n]
		it.Parts = slices.Clone(it.Parts)
		it.Chapters = slices.Clone(it.Chapters)
		out = append(out, it)
	}
	return out
}

// Len returns the number of books being tracked.
func (a *Aggregator) Len() int {
	return len(a.items)
}

// Text returns the label's current text.
func (a *Aggregator) Text() string {
	return a.label.Text()
}

func copyUint(p *uint) *uint {
	v := *p
	return &v
}
