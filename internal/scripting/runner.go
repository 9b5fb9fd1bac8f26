// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package scripting provides the embedded interpreter a sketch runs in.
// It abstracts the underlying VM (Goja, Starlark) behind a common interface.
package scripting

import "github.com/Stefterv/processing.py/internal/sketch"

// Reserved namespace slots.
const (
	// ModeSlot receives the detected sketch mode ("STATIC", "ACTIVE", "MIXED").
	ModeSlot = "__mode__"
	// FileSlot holds the bare file name of the running sketch.
	FileSlot = "__file__"
	// SourceSlot holds the full program text.
	SourceSlot = "__processing_source__"
)

// InMemorySource is the origin name given to code the harness executes
// from memory. Stack frames carrying it never point at user code.
const InMemorySource = "<string>"

// Builtin is a host function exposed to scripts. Arguments arrive converted
// to Go values (nil, bool, int64, float64, string, []any, map[string]any).
// A returned error is raised as an exception inside the script.
type Builtin func(args []any) (any, error)

// Callable is a function value found in a session namespace.
type Callable interface {
	// Arity is the number of positional parameters the function declares,
	// or -1 when the value is callable but its signature is unknown.
	Arity() int

	// Call invokes the function synchronously. Script exceptions are
	// returned as *RuntimeError.
	Call(args ...any) error
}

// Attributed values cross into the interpreter as objects whose fields
// are the returned attributes.
type Attributed interface {
	Attrs() map[string]any
}

// Detection is the outcome of classifying a program before it runs.
type Detection struct {
	Mode sketch.Mode

	// Callbacks lists the lifecycle/event functions declared at top level.
	Callbacks []string

	// Executable is the first top-level executable statement, if any.
	Executable *Frame

	// Statement is the source text of Executable's line.
	Statement string
}

// Session owns one interpreter instance and its global namespace.
//
// A Session is not safe for concurrent use: every method except Interrupt
// must be called from the goroutine that drives the sketch.
type Session interface {
	// Name identifies the backend ("goja", "starlark").
	Name() string

	// DetectMode parses source without running it, classifies it, and
	// writes the result into ModeSlot. Parse failures are *SyntaxError.
	DetectMode(source, originPath string) (Detection, error)

	// Exec compiles source under originPath and runs it in the global
	// namespace. Failures are *SyntaxError or *RuntimeError.
	Exec(source, originPath string) error

	// Get returns the exported value bound to name.
	Get(name string) (any, bool)

	// Set binds name to value, overwriting any previous host-written value.
	// Names the sketch declared itself are never overwritten.
	Set(name string, value any) error

	// Lookup returns the function bound to name, if the value is callable.
	Lookup(name string) (Callable, bool)

	// Register exposes a host function under name.
	Register(name string, fn Builtin) error

	// SetOutput sets the function used for print() output.
	SetOutput(fn func(string))

	// Interrupt stops the currently running script.
	// Safe to call from another goroutine.
	Interrupt(reason string)
}
