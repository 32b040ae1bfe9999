package plain

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Measure returns the width in terminal cells of the widest line of text
// and the number of lines.
func Measure(text string) (width, height int) {
	lines := strings.Split(text, "\n")
	for _, l := range lines {
		width = max(width, runewidth.StringWidth(l))
	}
	return width, len(lines)
}

// Label prints the status line to w each time it changes.
type Label struct {
	w     io.Writer
	width int
	text  string

	// before runs ahead of every write, e.g. to clear a bar sharing the line.
	before func()
}

// NewLabel returns a label width cells wide.
func NewLabel(w io.Writer, width int) *Label {
	return &Label{w: w, width: width}
}

func (l *Label) SetText(s string) {
	if s == l.text {
		return
	}
	l.text = s
	if s == "" {
		return
	}
	if l.before != nil {
		l.before()
	}
	fmt.Fprintln(l.w, s)
}

func (l *Label) Text() string { return l.text }
func (l *Label) Width() int   { return l.width }
