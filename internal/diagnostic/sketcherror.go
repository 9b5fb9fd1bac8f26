// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package diagnostic turns interpreter failures into positioned sketch
// diagnostics for whatever launched the sketch.
package diagnostic

import (
	"errors"
	"fmt"
)

// ErrSketch matches every *SketchError via errors.Is.
var ErrSketch = errors.New("sketch error")

// NoPosition marks an unknown line or column.
const NoPosition = -1

// SketchError is the diagnostic reported when a sketch fails.
type SketchError struct {
	// Message is always present and human readable.
	Message string

	// File is the bare file name, or empty when no user frame was found.
	File string

	// Line is 0-based, NoPosition when unknown.
	Line int

	// Column is the interpreter's 1-based column, NoPosition when unknown.
	Column int

	// Err is the raw failure this diagnostic was translated from.
	Err error
}

// New returns a diagnostic with a message and no position.
func New(message string) *SketchError {
	return &SketchError{Message: message, Line: NoPosition, Column: NoPosition}
}

// At returns a diagnostic positioned at a 0-based line and a column.
func At(message, file string, line, column int) *SketchError {
	return &SketchError{Message: message, File: file, Line: line, Column: column}
}

// HasLine reports whether the diagnostic carries a line number.
func (e *SketchError) HasLine() bool { return e.Line >= 0 }

// HasColumn reports whether the diagnostic carries a column.
func (e *SketchError) HasColumn() bool { return e.Column >= 0 }

// Error renders "file:line:col: message" with a 1-based line.
func (e *SketchError) Error() string {
	switch {
	case e.File == "":
		return e.Message
	case !e.HasLine():
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	case !e.HasColumn():
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line+1, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line+1, e.Column, e.Message)
}

func (e *SketchError) Unwrap() error { return e.Err }

// Is reports whether this error matches the target.
func (e *SketchError) Is(target error) bool {
	return target == ErrSketch
}
