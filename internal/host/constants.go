// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package host

import "math"

// Coded is the key value of non-printable keys; KeyCode then tells which.
const Coded rune = 0xFFFF

// Key codes.
const (
	KeyBackspace = 8
	KeyTab       = 9
	KeyEnter     = 10
	KeyReturn    = 13
	KeyEsc       = 27
	KeyDelete    = 127
	KeyShift     = 16
	KeyControl   = 17
	KeyAlt       = 18
	KeyLeft      = 37
	KeyUp        = 38
	KeyRight     = 39
	KeyDown      = 40
)

// Mouse buttons share their values with the LEFT/CENTER/RIGHT constants.
const (
	ButtonNone   = 0
	ButtonLeft   = 37
	ButtonCenter = 3
	ButtonRight  = 39
)

// Shape and alignment modes.
const (
	AlignLeft     = 37
	AlignCenter   = 3
	AlignRight    = 39
	AlignTop      = 101
	AlignBottom   = 102
	AlignBaseline = 0

	ModeCorner  = 0
	ModeCorners = 1
	ModeRadius  = 2
)

// Constants returns the names every host exposes to scripts.
func Constants() map[string]any {
	return map[string]any{
		"CODED":     int(Coded),
		"BACKSPACE": KeyBackspace,
		"TAB":       KeyTab,
		"ENTER":     KeyEnter,
		"RETURN":    KeyReturn,
		"ESC":       KeyEsc,
		"DELETE":    KeyDelete,
		"SHIFT":     KeyShift,
		"CONTROL":   KeyControl,
		"ALT":       KeyAlt,
		"UP":        KeyUp,
		"DOWN":      KeyDown,
		"LEFT":      AlignLeft,
		"RIGHT":     AlignRight,
		"CENTER":    AlignCenter,
		"TOP":       AlignTop,
		"BOTTOM":    AlignBottom,
		"BASELINE":  AlignBaseline,
		"CORNER":    ModeCorner,
		"CORNERS":   ModeCorners,
		"RADIUS":    ModeRadius,

		"PI":         math.Pi,
		"HALF_PI":    math.Pi / 2,
		"QUARTER_PI": math.Pi / 4,
		"TWO_PI":     2 * math.Pi,
		"TAU":        2 * math.Pi,
	}
}
