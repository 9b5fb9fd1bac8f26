// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/sketch"
)

// MouseEvent implements host.Sketch.
func (d *Driver) MouseEvent(e host.MouseEvent) error {
	return d.event(RefreshMouse, e.Action, e, func() error {
		return d.defaults.MouseEvent(e)
	})
}

// Mouse implements host.Sketch.
func (d *Driver) Mouse(action string) error {
	return d.dispatch(RefreshMouse, func() error {
		return d.zeroArg(action, func() error { return d.defaults.Mouse(action) })
	})
}

// KeyEvent implements host.Sketch.
func (d *Driver) KeyEvent(e host.KeyEvent) error {
	return d.event(RefreshKey, e.Action, e, func() error {
		return d.defaults.KeyEvent(e)
	})
}

// Key implements host.Sketch.
func (d *Driver) Key(action string) error {
	return d.dispatch(RefreshKey, func() error {
		return d.zeroArg(action, func() error { return d.defaults.Key(action) })
	})
}

// CaptureEvent is called by the video library when a camera frame is
// ready. Nothing happens unless the sketch defines captureEvent.
func (d *Driver) CaptureEvent(capture any) error {
	return d.library(sketch.FuncCaptureEvent, capture)
}

// MovieEvent is called by the video library when a movie frame is ready.
func (d *Driver) MovieEvent(movie any) error {
	return d.library(sketch.FuncMovieEvent, movie)
}

// event dispatches a payload-carrying event. A zero-arg function is
// called and the payload dropped; a one-arg function receives it; any
// other shape gets the host default.
func (d *Driver) event(kind RefreshKind, name string, payload any, fallback func() error) error {
	return d.dispatch(kind, func() error {
		b := d.registry.Get(name)
		switch b.Kind {
		case ZeroArg:
			return b.Call()
		case OneArg:
			return b.Call(payload)
		}
		return fallback()
	})
}

func (d *Driver) library(name string, payload any) error {
	return d.dispatch(refreshNone, func() error {
		b := d.registry.Get(name)
		switch b.Kind {
		case ZeroArg:
			return b.Call()
		case OneArg:
			return b.Call(payload)
		}
		return nil
	})
}
