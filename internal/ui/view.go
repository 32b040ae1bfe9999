package ui

import (
	"fmt"
)

func (m Model) viewHeader() string {
	parts := m.coord.Parts()
	title := m.styles.Title.Render(m.title)
	sub := m.styles.Subtitle.Render(fmt.Sprintf("Books: %d • Parts: %d/%d • q: quit",
		m.coord.Books().Len(), parts.Value(), parts.Maximum()))
	return title + "\n" + sub
}

func (m Model) viewMeters() string {
	return m.styles.Box.Render(
		m.parts.view(m.styles, meterTitleWidth) + "\n" + m.tracks.view(m.styles, meterTitleWidth),
	)
}

func (m Model) viewStatus() string {
	var line string
	switch {
	case m.done && m.err != nil:
		line = m.styles.Error.Render("✗ " + m.err.Error())
	case m.done:
		line = m.styles.Success.Render("✓ done")
	case m.label.Text() == "":
		line = m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("waiting")
	default:
		line = m.styles.Status.Render(m.label.Text())
	}
	return m.styles.Box.Render(line)
}
