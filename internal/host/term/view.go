// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package term

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.h.canvas.Render())
	b.WriteString("\n")

	s := m.h.State()
	title := m.h.opts.Title
	if title == "" {
		title = "sketch"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString(statusStyle.Render(fmt.Sprintf("  frame %d  %.0f fps  mouse %d,%d  esc: exit  ctrl+c: close",
		s.FrameCount, s.FrameRate, s.MouseX, s.MouseY)))
	b.WriteString("\n")

	if m.h.prompt != nil {
		b.WriteString(m.h.prompt.view())
		return b.String()
	}
	if m.lastError != nil {
		b.WriteString(errorStyle.Render(m.lastError.Error()))
		b.WriteString("\n")
	}
	for _, line := range m.h.outputTail() {
		b.WriteString(outputStyle.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
