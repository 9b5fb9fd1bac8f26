// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"path/filepath"

	"github.com/Stefterv/processing.py/internal/sketch"
)

// Detection rules, shared by every backend:
//   - a top-level function named in sketch.CallbackNames makes a sketch ACTIVE
//   - declarations (functions, classes, variables, loads) are never executable
//   - any other top-level statement is executable
//   - ACTIVE plus an executable statement is MIXED

func (d *Detection) noteFunction(name string) {
	if sketch.IsCallback(name) {
		d.Callbacks = append(d.Callbacks, name)
	}
}

func (d *Detection) noteExecutable(f Frame, source string) {
	if d.Executable != nil {
		return
	}
	d.Executable = &f
	d.Statement = sourceLine(source, f.Line)
}

func (d *Detection) finish() {
	switch {
	case len(d.Callbacks) == 0:
		d.Mode = sketch.Static
	case d.Executable != nil:
		d.Mode = sketch.Mixed
	default:
		d.Mode = sketch.Active
	}
}

// Err returns a *MixedModeError for MIXED sketches and nil otherwise.
func (d Detection) Err() error {
	if d.Mode != sketch.Mixed || d.Executable == nil {
		return nil
	}
	return &MixedModeError{
		File:      filepath.Base(d.Executable.File),
		Line:      d.Executable.Line,
		Statement: d.Statement,
	}
}
