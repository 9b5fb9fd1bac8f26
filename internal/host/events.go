// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package host

// Event actions, matching the script callback names they trigger.
const (
	MousePressed  = "mousePressed"
	MouseReleased = "mouseReleased"
	MouseClicked  = "mouseClicked"
	MouseMoved    = "mouseMoved"
	MouseDragged  = "mouseDragged"
	MouseWheel    = "mouseWheel"

	KeyPressed  = "keyPressed"
	KeyReleased = "keyReleased"
	KeyTyped    = "keyTyped"
)

// MouseEvent is a pointer event.
type MouseEvent struct {
	Action string
	X, Y   int
	Button int

	// Count is the click count, or the wheel rotation for mouseWheel.
	Count int
}

// Attrs exposes the event to scripts.
func (e MouseEvent) Attrs() map[string]any {
	return map[string]any{
		"action": e.Action,
		"x":      e.X,
		"y":      e.Y,
		"button": e.Button,
		"count":  e.Count,
	}
}

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Action  string
	Key     rune
	KeyCode int
}

// Attrs exposes the event to scripts. key follows the namespace convention:
// a one-character string, or the integer CODED.
func (e KeyEvent) Attrs() map[string]any {
	return map[string]any{
		"action":  e.Action,
		"key":     KeyValue(e.Key),
		"keyCode": e.KeyCode,
	}
}

// FocusEvent reports the surface gaining or losing focus.
type FocusEvent struct {
	Gained bool
}

// KeyValue converts a key to the value scripts compare against: a
// one-character string for printable keys, the integer code for CODED.
func KeyValue(key rune) any {
	if key == Coded {
		return int(key)
	}
	return string(key)
}
