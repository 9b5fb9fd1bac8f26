// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package term

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// filePrompt is the inline path entry shown for selectInput and friends.
type filePrompt struct {
	label string
	input textinput.Model
	done  func(path string, ok bool)
}

func newFilePrompt(label string, done func(path string, ok bool)) *filePrompt {
	in := textinput.New()
	in.Placeholder = "path"
	in.CharLimit = 4096
	in.Focus()
	return &filePrompt{label: label, input: in, done: done}
}

// update feeds a key to the prompt. It reports whether the prompt closed.
func (p *filePrompt) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		p.done(p.input.Value(), p.input.Value() != "")
		return true, nil
	case tea.KeyEsc, tea.KeyCtrlC:
		p.done("", false)
		return true, nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return false, cmd
}

func (p *filePrompt) view() string {
	return promptStyle.Render(p.label) + "\n" + p.input.View()
}
