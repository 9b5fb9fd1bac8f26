// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Stefterv/processing.py/internal/diagnostic"
)

func TestTerminationFirstWriteWins(t *testing.T) {
	term := NewTermination(nil, nil)

	var wg sync.WaitGroup
	term.ReportFatal(errors.New("first"))
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			term.ReportFatal(errors.New("later"))
		}()
	}
	wg.Wait()

	var se *diagnostic.SketchError
	if !errors.As(term.Err(), &se) {
		t.Fatalf("Err() = %v, want *SketchError", term.Err())
	}
	if se.Message != "first" {
		t.Errorf("Message = %q, want first", se.Message)
	}
	if !term.Released() {
		t.Error("ReportFatal should open the gate")
	}
}

func TestTerminationDisposeBestEffort(t *testing.T) {
	var calls atomic.Int32
	term := NewTermination(nil, func() {
		calls.Add(1)
		panic("dispose failed")
	})

	term.ReportFatal(errors.New("boom"))
	term.ReportFatal(errors.New("again"))

	if calls.Load() != 1 {
		t.Errorf("dispose ran %d times, want 1", calls.Load())
	}
	if !term.Released() {
		t.Error("a failing dispose must not keep the gate closed")
	}
}

func TestTerminationReleaseWithoutError(t *testing.T) {
	term := NewTermination(nil, nil)
	term.Release()
	term.Release()
	if err := term.Await(context.Background(), nil); err != nil {
		t.Errorf("Await() = %v, want nil", err)
	}
}

func TestTerminationAwaitInterrupt(t *testing.T) {
	term := NewTermination(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var interrupts atomic.Int32
	result := make(chan error, 1)
	go func() {
		result <- term.Await(ctx, func() {
			interrupts.Add(1)
			// The interrupt handler ends the run through the normal path.
			go term.ReportFatal(errors.New("stopped"))
		})
	}()

	select {
	case err := <-result:
		if err == nil || err.Error() != "stopped" {
			t.Errorf("Await() = %v, want the error reported during shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return")
	}
	if interrupts.Load() != 1 {
		t.Errorf("onInterrupt ran %d times, want 1", interrupts.Load())
	}
}

func TestTerminationAwaitKeepsWaiting(t *testing.T) {
	term := NewTermination(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := make(chan error, 1)
	go func() { result <- term.Await(ctx, func() {}) }()

	select {
	case <-result:
		t.Fatal("Await returned before the gate opened")
	case <-time.After(50 * time.Millisecond):
	}
	term.Release()
	select {
	case <-result:
	case <-time.After(5 * time.Second):
		t.Fatal("Await did not return after release")
	}
}

func TestLifecycle(t *testing.T) {
	var l lifecycle
	if l.Load() != StateConstructed {
		t.Fatalf("initial state = %v", l.Load())
	}
	if err := l.advance(StateConstructed, StateModeDetected); err != nil {
		t.Fatal(err)
	}
	if err := l.advance(StateConstructed, StateModeDetected); !errors.Is(err, ErrInvalidState) {
		t.Errorf("repeated advance error = %v, want ErrInvalidState", err)
	}
	if !l.terminate() || l.terminate() {
		t.Error("terminate should succeed exactly once")
	}
	if !l.terminating() {
		t.Error("terminating() = false after terminate")
	}
	if s := State(42).String(); s != "State(42)" {
		t.Errorf("String() = %q", s)
	}
	if StateMethodsHarvested.String() != "METHODS_HARVESTED" {
		t.Errorf("String() = %q", StateMethodsHarvested.String())
	}
}
