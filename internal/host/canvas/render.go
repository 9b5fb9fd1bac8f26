// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package canvas

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Render returns the canvas as styled terminal text. Runs of cells that
// share a style are rendered together.
func (c *Canvas) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := make([]string, c.height)
	var line strings.Builder
	for y := 0; y < c.height; y++ {
		line.Reset()
		row := c.cells[y*c.width : (y+1)*c.width]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && sameStyle(row[start], row[end]) {
				end++
			}
			runes := make([]rune, 0, end-start)
			for _, cl := range row[start:end] {
				runes = append(runes, cl.ch)
			}
			line.WriteString(styleOf(row[start]).Render(string(runes)))
			start = end
		}
		rows[y] = line.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func sameStyle(a, b cell) bool {
	if a.bg != b.bg || (a.kind == kindStroke || a.kind == kindText) != (b.kind == kindStroke || b.kind == kindText) {
		return false
	}
	return a.kind == kindBackground || a.kind == kindFill || a.fg == b.fg
}

func styleOf(cl cell) lipgloss.Style {
	style := lipgloss.NewStyle().Background(lipgloss.Color(cl.bg.Hex()))
	if cl.kind == kindStroke || cl.kind == kindText {
		style = style.Foreground(lipgloss.Color(cl.fg.Hex()))
	}
	return style
}
