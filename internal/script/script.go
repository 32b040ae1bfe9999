// Package script loads recorded progress message streams and replays them.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"bookprog/internal/progress"
)

// Step is one recorded message and the pause before it is reported.
type Step struct {
	Delay   time.Duration    `yaml:"delay,omitempty"`
	Message progress.Message `yaml:"message"`
}

// File is the on-disk layout of a replay script.
type File struct {
	// Speed scales every delay; 2 plays twice as fast. Zero means 1.
	Speed float64 `yaml:"speed,omitempty"`
	Steps []Step  `yaml:"steps"`
}

// Load reads a replay script from fs.
func Load(fs afero.Fs, path string) (File, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return File{}, fmt.Errorf("read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a replay script.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse script: %w", err)
	}
	if f.Speed < 0 {
		return File{}, errors.New("parse script: speed must not be negative")
	}
	for i, s := range f.Steps {
		if s.Delay < 0 {
			return File{}, fmt.Errorf("parse script: step %d: negative delay", i)
		}
		if s.Message.Item != nil && s.Message.Item.Name.Value() == "" {
			return File{}, fmt.Errorf("parse script: step %d: item without a name", i)
		}
	}
	return f, nil
}

// Save writes f to path on fs.
func Save(fs afero.Fs, path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0o644)
}

// Play reports every step in order, waiting each step's delay first.
// It returns ctx.Err() if cancelled part way.
func Play(ctx context.Context, f File, rep progress.Reporter) error {
	speed := f.Speed
	if speed == 0 {
		speed = 1
	}
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.Delay > 0 {
			t := time.NewTimer(time.Duration(float64(s.Delay) / speed))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		rep.Report(&s.Message)
	}
	return nil
}

// Recorder collects reported messages into a script, keeping the gaps
// between them. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	now   func() time.Time
	last  time.Time
	steps []Step
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Report(msg *progress.Message) {
	if msg == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var d time.Duration
	if !r.last.IsZero() {
		d = now.Sub(r.last).Round(time.Millisecond)
	}
	r.last = now
	r.steps = append(r.steps, Step{Delay: d, Message: *msg})
}

// File returns the recorded script.
func (r *Recorder) File() File {
	r.mu.Lock()
	defer r.mu.Unlock()
	return File{Steps: append([]Step(nil), r.steps...)}
}
