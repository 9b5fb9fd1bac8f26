// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedLanguage indicates no backend handles the sketch's file type
	ErrUnsupportedLanguage = errors.New("unsupported sketch language")

	// ErrInterrupted indicates the script was stopped by Interrupt
	ErrInterrupted = errors.New("script interrupted")

	// ErrNotCallable indicates a namespace value cannot be invoked
	ErrNotCallable = errors.New("value is not callable")
)

// InterruptedType is the RuntimeError.Type of interrupted executions.
const InterruptedType = "KeyboardInterrupt"

// ImportErrorType is the RuntimeError.Type of failed module loads.
const ImportErrorType = "ImportError"

// SyntaxError is a compile-time failure reported by the interpreter's own
// parser or resolver. Line and Col are 1-based as the interpreter reports
// them.
type SyntaxError struct {
	Msg         string
	File        string
	Line        int
	Col         int
	Indentation bool
	Cause       error
}

func (e *SyntaxError) Error() string {
	kind := "SyntaxError"
	if e.Indentation {
		kind = "IndentationError"
	}
	if e.File == "" {
		return fmt.Sprintf("%s: %s", kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s (%s, line %d, col %d)", kind, e.Msg, e.File, e.Line, e.Col)
}

func (e *SyntaxError) Unwrap() error { return e.Cause }

// Frame is one entry of a script stack trace.
type Frame struct {
	File string
	Line int // 1-based
	Col  int // 1-based, 0 when unknown
	Func string

	// Internal marks frames from harness code, native functions or
	// in-memory buffers. They never identify the user's line.
	Internal bool
}

func (f Frame) String() string {
	return fmt.Sprintf("File %q, line %d, in %s", f.File, f.Line, f.Func)
}

// RuntimeError is an exception raised while script code was running.
type RuntimeError struct {
	// Type is the exception class name when the interpreter has one
	// (TypeError, ReferenceError, ImportError...).
	Type string
	Msg  string

	// Trace is the interpreter's own rendering of the exception.
	Trace string

	// Frames are ordered innermost first.
	Frames []Frame

	Cause error
}

func (e *RuntimeError) Error() string {
	if e.Type == "" {
		return e.Msg
	}
	return e.Type + ": " + e.Msg
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrInterrupted) match interrupted executions.
func (e *RuntimeError) Is(target error) bool {
	return target == ErrInterrupted && e.Type == InterruptedType
}

// MixedModeError reports a sketch that declares lifecycle functions and
// also runs statements at top level.
type MixedModeError struct {
	File      string
	Line      int // 1-based line of the first top-level statement
	Statement string
}

// MixedModeMessage is the user-facing explanation of a MixedModeError.
const MixedModeMessage = "It looks like you're mixing \"active\" and \"static\" modes."

func (e *MixedModeError) Error() string {
	return fmt.Sprintf("%s (%s, line %d: %s)", MixedModeMessage, e.File, e.Line, e.Statement)
}

func isInternalSource(name string) bool {
	switch name {
	case "", InMemorySource, "<native>", "<builtin>", "<eval>":
		return true
	}
	return false
}

// sourceLine returns the trimmed 1-based line of src, for messages.
func sourceLine(src string, line int) string {
	lines := strings.Split(src, "\n")
	if line < 1 || line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[line-1])
}
