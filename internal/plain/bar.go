package plain

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar is a counter.Indicator drawn with a terminal progress bar. It keeps
// its own copy of value and maximum so reads never depend on the renderer.
type Bar struct {
	pb      *progressbar.ProgressBar
	value   int
	maximum int
}

// NewBar returns a bar of the given width writing to w.
func NewBar(w io.Writer, description string, width int) *Bar {
	if width <= 0 {
		width = 30
	}
	pb := progressbar.NewOptions(1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(width),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(50*time.Millisecond),
	)
	return &Bar{pb: pb, maximum: 1}
}

func (b *Bar) SetValue(v int) {
	if v == b.value {
		return
	}
	b.value = v
	_ = b.pb.Set(v)
}

func (b *Bar) SetMaximum(m int) {
	if m == b.maximum {
		return
	}
	// The renderer stops drawing once it reached its maximum, so a bar that
	// grows again after completing is restarted.
	if b.maximum > 0 && b.value >= b.maximum && m > b.value {
		b.pb.Reset()
	}
	b.maximum = m
	b.pb.ChangeMax(m)
	_ = b.pb.Set(b.value)
}

func (b *Bar) Value() int   { return b.value }
func (b *Bar) Maximum() int { return b.maximum }

// Describe replaces the text shown in front of the bar.
func (b *Bar) Describe(s string) {
	b.pb.Describe(s)
}

// Clear erases the bar from the current line.
func (b *Bar) Clear() {
	_ = b.pb.Clear()
}

// Finish draws the bar at its final state and moves to a new line.
func (b *Bar) Finish() {
	_ = b.pb.Finish()
}
