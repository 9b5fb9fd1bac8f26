// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"errors"
	"testing"
)

func TestNewSession(t *testing.T) {
	tests := []struct {
		path    string
		backend string
		wantErr error
	}{
		{"sketch.js", "goja", nil},
		{"SKETCH.JS", "goja", nil},
		{"sketch.pyde", "starlark", nil},
		{"sketch.py", "starlark", nil},
		{"sketch.star", "starlark", nil},
		{"sketch.rb", "", ErrUnsupportedLanguage},
		{"sketch", "", ErrUnsupportedLanguage},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s, err := NewSession(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewSession() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSession() error = %v", err)
			}
			if s.Name() != tt.backend {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.backend)
			}
		})
	}
}

func TestRegisterBackend(t *testing.T) {
	RegisterBackend(".test", func() Session { return NewGojaSession() })
	defer func() {
		registryMu.Lock()
		delete(registry, ".test")
		registryMu.Unlock()
	}()

	found := false
	for _, ext := range Extensions() {
		if ext == ".test" {
			found = true
		}
	}
	if !found {
		t.Errorf("Extensions() = %v, want .test registered", Extensions())
	}
	if _, err := NewSession("x.test"); err != nil {
		t.Errorf("NewSession() error = %v", err)
	}
}
