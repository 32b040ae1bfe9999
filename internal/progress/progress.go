package progress

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Phase identifies the processing stage of a single book.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseAnalysing
	PhaseDecrypting
	PhaseDecoding
	PhaseEncoding
	PhaseSplitting
	PhaseTagging
	PhaseCopying
)

var phaseNames = [...]string{
	PhaseNone:       "none",
	PhaseAnalysing:  "analysing",
	PhaseDecrypting: "decrypting",
	PhaseDecoding:   "decoding",
	PhaseEncoding:   "encoding",
	PhaseSplitting:  "splitting",
	PhaseTagging:    "tagging",
	PhaseCopying:    "copying",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// ParsePhase maps a phase name back to its value. Matching is case-insensitive.
func ParsePhase(s string) (Phase, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PhaseNone, nil
	}
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return PhaseNone, fmt.Errorf("unknown phase %q", s)
}

func (p Phase) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Phase) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParsePhase(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Entry is a value that is either asserted (added/updated) or retracted
// (removed) from the set it belongs to. A nil *Entry means "absent".
type Entry[T any] struct {
	value   T
	retract bool
}

// Assert returns an entry adding v.
func Assert[T any](v T) *Entry[T] {
	return &Entry[T]{value: v}
}

// Retract returns an entry removing v.
func Retract[T any](v T) *Entry[T] {
	return &Entry[T]{value: v, retract: true}
}

func (e Entry[T]) Value() T        { return e.value }
func (e Entry[T]) Retracted() bool { return e.retract }

type entryYAML[T any] struct {
	Value  T    `yaml:"value"`
	Cancel bool `yaml:"cancel,omitempty"`
}

func (e Entry[T]) MarshalYAML() (interface{}, error) {
	return entryYAML[T]{Value: e.value, Cancel: e.retract}, nil
}

// UnmarshalYAML accepts either the long form {value: X, cancel: true} or a
// bare scalar, which is read as an assertion.
func (e *Entry[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v T
		if err := node.Decode(&v); err != nil {
			return err
		}
		*e = Entry[T]{value: v}
		return nil
	}
	var raw entryYAML[T]
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = Entry[T]{value: raw.Value, retract: raw.Cancel}
	return nil
}

// ItemUpdate carries partial progress info for one book, keyed by name.
// Nil pointer fields and PhaseNone leave the stored value untouched.
type ItemUpdate struct {
	Name         Entry[string] `yaml:"name"`
	Phase        Phase         `yaml:"phase,omitempty"`
	PartNumber   *uint         `yaml:"part_number,omitempty"`
	ChapterCount *uint         `yaml:"chapters,omitempty"`
	TrackCount   *uint         `yaml:"tracks,omitempty"`
	Part         *Entry[uint]  `yaml:"part,omitempty"`
	Chapter      *Entry[uint]  `yaml:"chapter,omitempty"`
}

// Message is the single update type producers emit. Every field is
// optional; IncTracks wins over IncTracksPerMille when both are set.
type Message struct {
	Reset             bool        `yaml:"reset,omitempty"`
	AddTotalParts     *uint       `yaml:"add_total_parts,omitempty"`
	IncParts          *uint       `yaml:"inc_parts,omitempty"`
	AddTotalTracks    *uint       `yaml:"add_total_tracks,omitempty"`
	IncTracks         *uint       `yaml:"inc_tracks,omitempty"`
	IncTracksPerMille *uint       `yaml:"inc_tracks_per_mille,omitempty"`
	Item              *ItemUpdate `yaml:"item,omitempty"`
}

// Uint returns a pointer to n.
func Uint(n uint) *uint {
	return &n
}

// Reporter is implemented by anything that accepts progress messages from producers.
type Reporter interface {
	Report(msg *Message)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(msg *Message)

func (f ReporterFunc) Report(msg *Message) { f(msg) }
