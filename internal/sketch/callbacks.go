// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package sketch

// Lifecycle and event function names a sketch may define. The host calls
// into the sketch only through these names.
const (
	FuncSetup    = "setup"
	FuncSettings = "settings"
	FuncDraw     = "draw"
	FuncStop     = "stop"
	FuncPause    = "pause"
	FuncResume   = "resume"

	FuncMousePressed  = "mousePressed"
	FuncMouseReleased = "mouseReleased"
	FuncMouseClicked  = "mouseClicked"
	FuncMouseMoved    = "mouseMoved"
	FuncMouseDragged  = "mouseDragged"
	FuncMouseWheel    = "mouseWheel"

	FuncKeyPressed  = "keyPressed"
	FuncKeyReleased = "keyReleased"
	FuncKeyTyped    = "keyTyped"

	// Video library callbacks.
	FuncCaptureEvent = "captureEvent"
	FuncMovieEvent   = "movieEvent"
)

// CallbackNames is the fixed, ordered set of names harvested from a sketch.
var CallbackNames = []string{
	FuncSetup, FuncSettings, FuncDraw, FuncStop, FuncPause, FuncResume,
	FuncMousePressed, FuncMouseReleased, FuncMouseClicked,
	FuncMouseMoved, FuncMouseDragged, FuncMouseWheel,
	FuncKeyPressed, FuncKeyReleased, FuncKeyTyped,
	FuncCaptureEvent, FuncMovieEvent,
}

var callbackSet = func() map[string]bool {
	m := make(map[string]bool, len(CallbackNames))
	for _, name := range CallbackNames {
		m[name] = true
	}
	return m
}()

// IsCallback reports whether name is one of CallbackNames.
func IsCallback(name string) bool {
	return callbackSet[name]
}
