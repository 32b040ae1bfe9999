package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"bookprog/internal/util/bitrate"
	"bookprog/internal/util/media"
)

const defaultBitrateKbps = 64

// Track is one ffmpeg run. Without Args, Input is converted with the
// plan's format and bitrate.
type Track struct {
	Input    string   `yaml:"input,omitempty"`
	Output   string   `yaml:"output,omitempty"`
	Duration float64  `yaml:"duration,omitempty"` // seconds
	Args     []string `yaml:"args,omitempty"`     // full ffmpeg arguments, output last
	Chapters []uint   `yaml:"chapters,omitempty"` // chapter numbers contained in the track
}

type Part struct {
	Tracks []Track `yaml:"tracks"`
}

type Book struct {
	Title string `yaml:"title"`
	Parts []Part `yaml:"parts"`
}

// Plan is a batch of books to convert.
type Plan struct {
	OutDir    string `yaml:"out_dir,omitempty"`
	Format    string `yaml:"format,omitempty"`      // output extension, default m4a
	Bitrate   int    `yaml:"bitrate,omitempty"`     // kbps
	MaxSizeMB int    `yaml:"max_size_mb,omitempty"` // per track; needs a duration
	Books     []Book `yaml:"books"`
}

// LoadPlan reads and validates a plan file.
func LoadPlan(fs afero.Fs, path string) (Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	p, err := ParsePlan(data)
	if err != nil {
		return Plan{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes and validates a YAML plan.
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// Validate checks that every book has a unique title and that every track
// can be run.
func (p Plan) Validate() error {
	if len(p.Books) == 0 {
		return errors.New("plan has no books")
	}
	seen := make(map[string]bool, len(p.Books))
	for _, b := range p.Books {
		if b.Title == "" {
			return errors.New("book without title")
		}
		if seen[b.Title] {
			return fmt.Errorf("duplicate book %q", b.Title)
		}
		seen[b.Title] = true
		if len(b.Parts) == 0 {
			return fmt.Errorf("book %q has no parts", b.Title)
		}
		for pi, part := range b.Parts {
			if len(part.Tracks) == 0 {
				return fmt.Errorf("book %q part %d has no tracks", b.Title, pi+1)
			}
			for ti, t := range part.Tracks {
				if t.Input == "" && len(t.Args) == 0 {
					return fmt.Errorf("book %q part %d track %d: input or args required", b.Title, pi+1, ti+1)
				}
				if t.Duration < 0 {
					return fmt.Errorf("book %q part %d track %d: negative duration", b.Title, pi+1, ti+1)
				}
			}
		}
	}
	if p.Bitrate < 0 || p.MaxSizeMB < 0 {
		return errors.New("bitrate and max_size_mb must not be negative")
	}
	return nil
}

// Totals returns the number of parts and tracks in the plan.
func (p Plan) Totals() (parts, tracks uint) {
	for _, b := range p.Books {
		bp, bt := b.Totals()
		parts += bp
		tracks += bt
	}
	return parts, tracks
}

// Totals returns the number of parts and tracks in the book.
func (b Book) Totals() (parts, tracks uint) {
	for _, part := range b.Parts {
		parts++
		tracks += uint(len(part.Tracks))
	}
	return parts, tracks
}

// Chapters returns the number of chapters listed across the book, or 0 if
// none are listed.
func (b Book) Chapters() uint {
	var n uint
	for _, part := range b.Parts {
		for _, t := range part.Tracks {
			n += uint(len(t.Chapters))
		}
	}
	return n
}

// TrackArgs returns the ffmpeg arguments and output path for one track.
// part and track are 0-based.
func (p Plan) TrackArgs(b Book, part, track int) (args []string, output string) {
	t := b.Parts[part].Tracks[track]
	if len(t.Args) > 0 {
		output = t.Output
		if output == "" {
			output = t.Args[len(t.Args)-1]
		}
		return t.Args, output
	}

	output = t.Output
	if output == "" {
		base := media.TrackBasename(b.Title, part+1, track+1, len(b.Parts))
		output = filepath.Join(p.OutDir, base+media.Extension(p.Format))
	}
	fallback := p.Bitrate
	if fallback == 0 {
		fallback = defaultBitrateKbps
	}
	kbps := bitrate.AudioKbps(p.MaxSizeMB, t.Duration, fallback)
	return []string{
		"-hide_banner", "-y",
		"-i", t.Input,
		"-vn",
		"-b:a", strconv.Itoa(kbps) + "k",
		output,
	}, output
}
