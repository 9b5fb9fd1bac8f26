// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package sketch

import "fmt"

// Mode classifies how a sketch is driven.
type Mode int

const (
	// Static sketches have no lifecycle functions; the whole body runs once
	// as the setup phase.
	Static Mode = iota
	// Active sketches define lifecycle functions that are harvested and
	// invoked per event.
	Active
	// Mixed sketches declare lifecycle functions and also contain top-level
	// executable statements. Always an error.
	Mixed
)

var modeNames = [...]string{
	Static: "STATIC",
	Active: "ACTIVE",
	Mixed:  "MIXED",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return Static, fmt.Errorf("unknown sketch mode %q", s)
}
