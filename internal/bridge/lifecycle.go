// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"fmt"
	"sync/atomic"
)

// State is a stage of one sketch run.
type State int32

const (
	StateConstructed State = iota
	StateModeDetected
	StateMethodsHarvested
	StateRunning
	StateTerminating
	StateTerminated
)

var stateNames = [...]string{
	StateConstructed:      "CONSTRUCTED",
	StateModeDetected:     "MODE_DETECTED",
	StateMethodsHarvested: "METHODS_HARVESTED",
	StateRunning:          "RUNNING",
	StateTerminating:      "TERMINATING",
	StateTerminated:       "TERMINATED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int32(s))
	}
	return stateNames[s]
}

// lifecycle holds the run state. Transitions are atomic so the error
// boundary can move a run to TERMINATING from any goroutine.
type lifecycle struct {
	state atomic.Int32
}

func (l *lifecycle) Load() State {
	return State(l.state.Load())
}

// advance moves from one state to the next, failing when the run is
// elsewhere.
func (l *lifecycle) advance(from, to State) error {
	if !l.state.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: cannot move to %s from %s", ErrInvalidState, to, l.Load())
	}
	return nil
}

// terminate moves any live run to TERMINATING. It reports whether this
// call made the move.
func (l *lifecycle) terminate() bool {
	for {
		cur := l.state.Load()
		if State(cur) >= StateTerminating {
			return false
		}
		if l.state.CompareAndSwap(cur, int32(StateTerminating)) {
			return true
		}
	}
}

// terminating reports whether dispatch must be skipped.
func (l *lifecycle) terminating() bool {
	return l.Load() >= StateTerminating
}

func (l *lifecycle) Store(s State) {
	l.state.Store(int32(s))
}
