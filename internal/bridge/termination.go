// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Stefterv/processing.py/internal/diagnostic"
)

// Termination is the single-release gate the launching goroutine waits on,
// plus the slot holding the error that ended the run.
//
// ReportFatal may be called from any goroutine. It takes no lock the host
// loop could hold: the slot is written once by compare-and-swap and the
// gate is a channel closed once.
type Termination struct {
	done     chan struct{}
	release  sync.Once
	disposed sync.Once
	err      atomic.Pointer[diagnostic.SketchError]

	translate func(error) *diagnostic.SketchError
	dispose   func()
}

// NewTermination creates an unreleased gate. translate converts reported
// failures; dispose is the best-effort notification run on fatal errors.
func NewTermination(translate func(error) *diagnostic.SketchError, dispose func()) *Termination {
	if translate == nil {
		translate = diagnostic.Translate
	}
	return &Termination{
		done:      make(chan struct{}),
		translate: translate,
		dispose:   dispose,
	}
}

// Release opens the gate. Later calls do nothing.
func (t *Termination) Release() {
	t.release.Do(func() { close(t.done) })
}

// Released reports whether the gate is open.
func (t *Termination) Released() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// ReportFatal records err as the terminal error unless one is already
// recorded, runs dispose and opens the gate.
func (t *Termination) ReportFatal(err error) {
	if err == nil {
		return
	}
	if se := t.translate(err); se != nil {
		t.err.CompareAndSwap(nil, se)
	}
	t.runDispose()
	t.Release()
}

// runDispose runs dispose at most once and swallows every failure; the
// run is already ending.
func (t *Termination) runDispose() {
	if t.dispose == nil {
		return
	}
	t.disposed.Do(func() {
		defer func() { _ = recover() }()
		t.dispose()
	})
}

// Err returns the recorded terminal error, or nil.
func (t *Termination) Err() error {
	if se := t.err.Load(); se != nil {
		return se
	}
	return nil
}

// Await blocks until the gate opens. Cancelling ctx is a shutdown
// request: onInterrupt runs once and Await keeps waiting on the same gate,
// so cleanup still goes through the normal path.
func (t *Termination) Await(ctx context.Context, onInterrupt func()) error {
	select {
	case <-t.done:
	case <-ctx.Done():
		if onInterrupt != nil {
			onInterrupt()
		}
		<-t.done
	}
	return t.Err()
}
