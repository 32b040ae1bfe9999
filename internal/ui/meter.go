package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"bookprog/internal/counter"
)

// meter pairs a counter display with the bar that draws it.
type meter struct {
	title string
	gauge *counter.Gauge
	bar   bubblesprogress.Model
}

func newMeter(title string, width int) meter {
	return meter{
		title: title,
		gauge: &counter.Gauge{},
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(width),
		),
	}
}

func (m meter) view(s Styles, titleWidth int) string {
	title := s.MeterTitle.Width(titleWidth).Render(m.title)
	return title + " " + m.bar.ViewAs(m.gauge.Percent())
}

// statusLabel is the status line widget. Its width is the window width less
// a fixed padding.
type statusLabel struct {
	text  string
	width int
}

func (l *statusLabel) SetText(s string) { l.text = s }
func (l *statusLabel) Text() string     { return l.text }
func (l *statusLabel) Width() int       { return l.width }

// measure reports the printed size of text in terminal cells.
func measure(text string) (int, int) {
	return lipgloss.Width(text), lipgloss.Height(text)
}
