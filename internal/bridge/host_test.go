// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/sketch"
)

// fakeHost records every host default that runs and lets tests drive the
// driver's methods directly.
type fakeHost struct {
	*host.Base

	mu       sync.Mutex
	log      []string
	diag     io.Writer
	selected []func(path string, ok bool)
}

func newFakeHost() *fakeHost {
	return &fakeHost{Base: host.NewBase(100, 80, 1920, 1080)}
}

func (h *fakeHost) record(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.log = append(h.log, fmt.Sprintf(format, args...))
}

func (h *fakeHost) Log() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.log...)
}

func (h *fakeHost) Start(args []string, sk host.Sketch) error { return h.Bind(sk) }

func (h *fakeHost) Defaults() host.Sketch {
	return recordingDefaults{Sketch: h.Base.Defaults(), h: h}
}

func (h *fakeHost) Builtins() map[string]scripting.Builtin {
	return map[string]scripting.Builtin{
		"size": func(args []any) (any, error) {
			w, _ := host.ToInt(args[0])
			ht, _ := host.ToInt(args[1])
			h.Update(func(s *host.State) { s.Width, s.Height = w, ht })
			return nil, nil
		},
		"printMatrix": func([]any) (any, error) {
			if h.diag != nil {
				fmt.Fprint(h.diag, "1 0 0\n0 1 0\n")
			}
			return nil, nil
		},
	}
}

func (h *fakeHost) Constants() map[string]any { return host.Constants() }

func (h *fakeHost) SetDiagnosticOutput(w io.Writer) io.Writer {
	prev := h.diag
	h.diag = w
	return prev
}

func (h *fakeHost) SelectInput(prompt string, done func(path string, ok bool)) {
	h.selected = append(h.selected, done)
}

func (h *fakeHost) SelectOutput(prompt string, done func(path string, ok bool)) {
	h.selected = append(h.selected, done)
}

func (h *fakeHost) SelectFolder(prompt string, done func(path string, ok bool)) {
	h.selected = append(h.selected, done)
}

type recordingDefaults struct {
	host.Sketch
	h *fakeHost
}

func (r recordingDefaults) Settings() error { r.h.record("default settings"); return nil }
func (r recordingDefaults) Setup() error    { r.h.record("default setup"); return nil }
func (r recordingDefaults) Draw() error     { r.h.record("default draw"); return nil }
func (r recordingDefaults) Stop() error     { r.h.record("default stop"); return nil }
func (r recordingDefaults) Pause() error    { r.h.record("default pause"); return r.Sketch.Pause() }
func (r recordingDefaults) Resume() error   { r.h.record("default resume"); return r.Sketch.Resume() }
func (r recordingDefaults) MouseEvent(e host.MouseEvent) error {
	r.h.record("default mouseEvent %s", e.Action)
	return r.Sketch.MouseEvent(e)
}
func (r recordingDefaults) Mouse(action string) error {
	r.h.record("default mouse %s", action)
	return nil
}
func (r recordingDefaults) KeyEvent(e host.KeyEvent) error {
	r.h.record("default keyEvent %s", e.Action)
	return r.Sketch.KeyEvent(e)
}
func (r recordingDefaults) Key(action string) error {
	r.h.record("default key %s", action)
	return nil
}

// recorder is a script builtin that logs its arguments.
type recorder struct {
	mu     sync.Mutex
	calls  []string
	onCall func(args []any)
}

func (r *recorder) builtin(args []any) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, strings.TrimSpace(fmt.Sprintln(args...)))
	hook := r.onCall
	r.mu.Unlock()
	if hook != nil {
		hook(args)
	}
	return nil, nil
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// newDriver builds a harvested driver for a starlark sketch with a
// record() builtin.
func newDriver(t *testing.T, h host.Host, src string) (*Driver, *recorder, scripting.Session) {
	t.Helper()
	return newDriverAt(t, h, src, "/sketches/test.pyde")
}

func newDriverAt(t *testing.T, h host.Host, src, path string, opts ...Option) (*Driver, *recorder, scripting.Session) {
	t.Helper()
	session, err := scripting.NewSession(path)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	rec := &recorder{}
	if err := session.Register("record", rec.builtin); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	opts = append([]Option{WithPrinter(func(string) {})}, opts...)
	d, err := New(session, sketch.NewProgram(src, path), h, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.FindSketchMethods(); err != nil {
		t.Fatalf("FindSketchMethods failed: %v", err)
	}
	if fh, ok := h.(*fakeHost); ok {
		if err := fh.Bind(d); err != nil {
			t.Fatalf("Bind failed: %v", err)
		}
	}
	return d, rec, session
}
