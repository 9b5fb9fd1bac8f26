// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package host

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Base carries what every concrete host shares: the observable state, the
// surface, the exit flag, work posted to the loop, and the default
// behavior of each Sketch method.
type Base struct {
	mu      sync.Mutex
	state   State
	sink    Sketch
	pending []func()

	surface  *BasicSurface
	exit     atomic.Bool
	paused   atomic.Bool
	platform string
}

// NewBase returns a Base for a surface of the given size on a display of
// the given size.
func NewBase(width, height, displayWidth, displayHeight int) *Base {
	return &Base{
		state: State{
			Width:         width,
			Height:        height,
			DisplayWidth:  displayWidth,
			DisplayHeight: displayHeight,
			Focused:       true,
			FrameRate:     60,
		},
		surface:  &BasicSurface{visible: true},
		platform: runtime.GOOS,
	}
}

// Bind records the sketch the loop drives. Defaults forward payload
// events to it.
func (b *Base) Bind(sk Sketch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sink != nil {
		return ErrAlreadyStarted
	}
	b.sink = sk
	return nil
}

// Sink returns the bound sketch, or nil before Start.
func (b *Base) Sink() Sketch {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sink
}

// State implements Host.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Update mutates the state under the lock.
func (b *Base) Update(fn func(s *State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.state)
}

// SetPlatform overrides the reported platform.
func (b *Base) SetPlatform(p string) { b.platform = p }

// Platform implements Host.
func (b *Base) Platform() string { return b.platform }

// Surface implements Host.
func (b *Base) Surface() Surface { return b.surface }

// BasicSurface returns the concrete surface.
func (b *Base) BasicSurface() *BasicSurface { return b.surface }

// Exit implements Host.
func (b *Base) Exit() { b.exit.Store(true) }

// ExitRequested reports whether Exit was called.
func (b *Base) ExitRequested() bool { return b.exit.Load() }

// Paused reports whether the default Pause ran more recently than Resume.
func (b *Base) Paused() bool { return b.paused.Load() }

// Post queues fn to run on the loop goroutine.
func (b *Base) Post(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, fn)
}

// RunPending runs the work queued by Post. Call it from the loop goroutine.
func (b *Base) RunPending() {
	b.mu.Lock()
	work := b.pending
	b.pending = nil
	b.mu.Unlock()
	for _, fn := range work {
		fn()
	}
}

// DeliverMouse updates the pointer state and dispatches e.
func (b *Base) DeliverMouse(e MouseEvent) error {
	b.Update(func(s *State) {
		s.PMouseX, s.PMouseY = s.MouseX, s.MouseY
		s.MouseX, s.MouseY = e.X, e.Y
		switch e.Action {
		case MousePressed:
			s.MousePressed = true
			s.MouseButton = e.Button
		case MouseReleased:
			s.MousePressed = false
		case MouseDragged:
			s.MouseButton = e.Button
		}
	})
	return b.Sink().MouseEvent(e)
}

// DeliverKey updates the key state and dispatches e.
func (b *Base) DeliverKey(e KeyEvent) error {
	b.Update(func(s *State) {
		s.Key = e.Key
		s.KeyCode = e.KeyCode
		switch e.Action {
		case KeyPressed:
			s.KeyPressed = true
		case KeyReleased:
			s.KeyPressed = false
		}
	})
	return b.Sink().KeyEvent(e)
}

// DeliverFocus updates the focus flag and dispatches the change.
func (b *Base) DeliverFocus(gained bool) error {
	b.Update(func(s *State) { s.Focused = gained })
	if gained {
		return b.Sink().FocusGained()
	}
	return b.Sink().FocusLost()
}

// Recover turns a panic on a host goroutine into a fatal error reported
// to the sketch's boundary. Use it directly in a defer statement.
func (b *Base) Recover() {
	r := recover()
	if r == nil {
		return
	}
	err := fmt.Errorf("host panic: %v\n%s", r, debug.Stack())
	if boundary, ok := b.Sink().(ErrorBoundary); ok {
		boundary.ReportFatal(err)
		return
	}
	panic(r)
}

// Defaults implements Host.
func (b *Base) Defaults() Sketch { return defaults{b} }

// defaults is the host's own behavior: bookkeeping only, and payload
// events fall through to their payload-less variants.
type defaults struct{ b *Base }

func (d defaults) Settings() error { return nil }
func (d defaults) Setup() error    { return nil }
func (d defaults) Draw() error     { return nil }
func (d defaults) Stop() error     { return nil }

func (d defaults) Pause() error {
	d.b.paused.Store(true)
	return nil
}

func (d defaults) Resume() error {
	d.b.paused.Store(false)
	return nil
}

func (d defaults) MouseEvent(e MouseEvent) error {
	if sk := d.b.Sink(); sk != nil {
		return sk.Mouse(e.Action)
	}
	return nil
}

func (d defaults) KeyEvent(e KeyEvent) error {
	if sk := d.b.Sink(); sk != nil {
		return sk.Key(e.Action)
	}
	return nil
}

func (d defaults) Mouse(string) error  { return nil }
func (d defaults) Key(string) error    { return nil }
func (d defaults) FocusGained() error  { return nil }
func (d defaults) FocusLost() error    { return nil }
func (d defaults) FrameMoved(int, int) {}
func (d defaults) ExitActual()         {}

// BasicSurface is a surface with close listeners and a visibility flag.
type BasicSurface struct {
	mu         sync.Mutex
	listeners  []func()
	closed     bool
	visible    bool
	fullscreen bool

	// OnVisible, when set, runs after every SetVisible call.
	OnVisible func(visible bool)
}

// OnClose implements Surface.
func (s *BasicSurface) OnClose(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SetVisible implements Surface.
func (s *BasicSurface) SetVisible(visible bool) {
	s.mu.Lock()
	s.visible = visible
	hook := s.OnVisible
	s.mu.Unlock()
	if hook != nil {
		hook(visible)
	}
}

// Visible reports the last SetVisible value.
func (s *BasicSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Close notifies the close listeners, once.
func (s *BasicSurface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// Closed reports whether Close ran.
func (s *BasicSurface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// SetFullscreen records that the surface went full screen.
func (s *BasicSurface) SetFullscreen(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = on
}

// ToggleFullscreen implements FullscreenToggler.
func (s *BasicSurface) ToggleFullscreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreen = !s.fullscreen
}

// Fullscreen reports the full-screen flag.
func (s *BasicSurface) Fullscreen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreen
}
