// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package host defines the framework a sketch runs inside: the event sink
// it drives, the observable state it exposes, and the shared default
// behavior of the concrete hosts.
package host

import (
	"errors"
	"io"

	"github.com/Stefterv/processing.py/internal/scripting"
)

var (
	// ErrNotTerminal indicates an interactive host was started without a tty
	ErrNotTerminal = errors.New("not a terminal")

	// ErrAlreadyStarted indicates Start was called twice
	ErrAlreadyStarted = errors.New("host already started")
)

// Platform names reported by Host.Platform.
const (
	PlatformMacOS   = "darwin"
	PlatformLinux   = "linux"
	PlatformWindows = "windows"
)

// FullScreenArg in the run arguments asks the host for a full-screen surface.
const FullScreenArg = "fullScreen"

// Sketch is the event sink a host drives. A host calls every method from
// its single loop goroutine, never concurrently.
type Sketch interface {
	Settings() error
	Setup() error
	Draw() error
	Pause() error
	Resume() error
	Stop() error

	// MouseEvent and KeyEvent carry the event payload. Mouse and Key are
	// the payload-less variants of the same events.
	MouseEvent(e MouseEvent) error
	Mouse(action string) error
	KeyEvent(e KeyEvent) error
	Key(action string) error

	FocusGained() error
	FocusLost() error
	FrameMoved(x, y int)

	// ExitActual is the last call of an orderly shutdown.
	ExitActual()
}

// ErrorBoundary receives failures raised outside any Sketch call, such as
// a panic on a host goroutine. Hosts look for it on the Sketch they run.
type ErrorBoundary interface {
	ReportFatal(err error)
}

// Host is the framework a sketch runs inside.
type Host interface {
	// Start begins the run sequence (settings, setup, then the frame loop)
	// on the host's own goroutine and returns immediately.
	Start(args []string, sketch Sketch) error

	// State returns a snapshot of the host-observable variables.
	State() State

	// Defaults returns the host's own behavior for every Sketch method.
	Defaults() Sketch

	Surface() Surface

	// Exit asks the loop to stop. The host then calls Stop and ExitActual.
	Exit()

	// Builtins are the drawing and math functions exposed to scripts.
	Builtins() map[string]scripting.Builtin

	// Constants are exposed to scripts as read-only names.
	Constants() map[string]any

	Platform() string

	// File selection. done runs on the loop goroutine with the chosen path,
	// or ok=false when the selection was cancelled.
	SelectInput(prompt string, done func(path string, ok bool))
	SelectOutput(prompt string, done func(path string, ok bool))
	SelectFolder(prompt string, done func(path string, ok bool))
}

// Surface is the window a host draws into.
type Surface interface {
	// OnClose registers fn to run once when the user closes the surface.
	OnClose(fn func())
	SetVisible(visible bool)
}

// FullscreenToggler is implemented by surfaces that stay full screen until
// told otherwise.
type FullscreenToggler interface {
	ToggleFullscreen()
}

// DiagnosticWriter is implemented by hosts whose builtins print directly
// (printMatrix). SetDiagnosticOutput returns the previous writer.
type DiagnosticWriter interface {
	SetDiagnosticOutput(w io.Writer) io.Writer
}

// State is the host-observable state mirrored into the script namespace.
type State struct {
	MouseX, MouseY   int
	PMouseX, PMouseY int
	MouseButton      int
	MousePressed     bool

	// Key is the last key character, or Coded for non-printable keys.
	Key        rune
	KeyCode    int
	KeyPressed bool

	Focused       bool
	Width, Height int
	DisplayWidth  int
	DisplayHeight int
	FrameCount    int
	FrameRate     float64
}
