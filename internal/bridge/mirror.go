// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"github.com/Stefterv/processing.py/internal/host"
)

// RefreshKind selects which family of variables a refresh writes.
type RefreshKind int

const (
	RefreshAll RefreshKind = iota
	RefreshMouse
	RefreshKey

	// refreshNone skips the mirror, for hooks that observe no state.
	refreshNone RefreshKind = -1
)

// Namespace is where mirrored variables are written.
type Namespace interface {
	Set(name string, value any) error
}

// Mirror copies host state into the script namespace before dispatch.
type Mirror struct {
	ns    Namespace
	state func() host.State

	lastKey rune

	// mousePressedBound is set when the sketch defines a mousePressed
	// function, which the boolean must not replace.
	mousePressedBound bool
}

// NewMirror creates a mirror reading state from the given snapshot func.
func NewMirror(ns Namespace, state func() host.State) *Mirror {
	return &Mirror{ns: ns, state: state}
}

// Init makes key and keyCode resolve before the sketch runs, then writes
// the full snapshot.
func (m *Mirror) Init() error {
	m.lastKey = 0
	if err := m.ns.Set("key", host.KeyValue(0)); err != nil {
		return err
	}
	if err := m.ns.Set("keyCode", 0); err != nil {
		return err
	}
	return m.Refresh(RefreshAll)
}

// SetMousePressedBound records whether mousePressed names a function.
func (m *Mirror) SetMousePressedBound(bound bool) { m.mousePressedBound = bound }

// Refresh writes one family of variables.
func (m *Mirror) Refresh(kind RefreshKind) error {
	if kind == refreshNone {
		return nil
	}
	s := m.state()
	switch kind {
	case RefreshMouse:
		return m.mouse(s)
	case RefreshKey:
		return m.key(s)
	}

	if err := m.mouse(s); err != nil {
		return err
	}
	if err := m.key(s); err != nil {
		return err
	}
	return m.set(map[string]any{
		"width":         s.Width,
		"height":        s.Height,
		"displayWidth":  s.DisplayWidth,
		"displayHeight": s.DisplayHeight,
		"focused":       s.Focused,
		"keyPressed":    s.KeyPressed,
		"frameCount":    s.FrameCount,
	})
}

// WriteDimensions re-writes width and height, after size().
func (m *Mirror) WriteDimensions() error {
	s := m.state()
	return m.set(map[string]any{"width": s.Width, "height": s.Height})
}

// WriteFocus re-writes focused, after a focus change.
func (m *Mirror) WriteFocus() error {
	return m.ns.Set("focused", m.state().Focused)
}

func (m *Mirror) mouse(s host.State) error {
	vars := map[string]any{
		"mouseX":      s.MouseX,
		"mouseY":      s.MouseY,
		"pmouseX":     s.PMouseX,
		"pmouseY":     s.PMouseY,
		"mouseButton": s.MouseButton,
	}
	if !m.mousePressedBound {
		vars["mousePressed"] = s.MousePressed
	}
	return m.set(vars)
}

// key writes the key value only when it changed; the code is always written.
func (m *Mirror) key(s host.State) error {
	if s.Key != m.lastKey {
		if err := m.ns.Set("key", host.KeyValue(s.Key)); err != nil {
			return err
		}
		m.lastKey = s.Key
	}
	return m.ns.Set("keyCode", s.KeyCode)
}

func (m *Mirror) set(vars map[string]any) error {
	for name, v := range vars {
		if err := m.ns.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}
