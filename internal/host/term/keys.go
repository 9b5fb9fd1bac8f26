// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package term

import (
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Stefterv/processing.py/internal/host"
)

// translateKey maps a terminal key to a key value and key code. typed
// reports whether the key produces a character (and so a keyTyped event).
func translateKey(msg tea.KeyMsg) (key rune, code int, typed bool, ok bool) {
	switch msg.Type {
	case tea.KeyUp:
		return host.Coded, host.KeyUp, false, true
	case tea.KeyDown:
		return host.Coded, host.KeyDown, false, true
	case tea.KeyLeft:
		return host.Coded, host.KeyLeft, false, true
	case tea.KeyRight:
		return host.Coded, host.KeyRight, false, true
	case tea.KeyEnter:
		return '\n', host.KeyEnter, true, true
	case tea.KeyTab:
		return '\t', host.KeyTab, true, true
	case tea.KeyBackspace:
		return '\b', host.KeyBackspace, true, true
	case tea.KeyDelete:
		return 0x7F, host.KeyDelete, true, true
	case tea.KeySpace:
		return ' ', ' ', true, true
	case tea.KeyEsc:
		return 0x1B, host.KeyEsc, true, true
	case tea.KeyRunes:
		if len(msg.Runes) != 1 {
			return 0, 0, false, false
		}
		r := msg.Runes[0]
		return r, keyCodeOf(r), true, true
	}
	return 0, 0, false, false
}

// keyCodeOf follows the AWT virtual key codes: letters report their upper
// case, digits themselves, everything else zero.
func keyCodeOf(r rune) int {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return int(unicode.ToUpper(r))
	case r >= '0' && r <= '9':
		return int(r)
	}
	return 0
}
