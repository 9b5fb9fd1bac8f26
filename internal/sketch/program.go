// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package sketch holds the user's program as loaded from disk and the
// sketch mode classification shared by the interpreter and the bridge.
package sketch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Program is the immutable source text of a sketch together with the path
// it was loaded from. It is created once at launch and never modified.
type Program struct {
	source string
	path   string
}

// NewProgram creates a Program from in-memory source. The path is used for
// diagnostics and to pick the interpreter; it does not have to exist.
func NewProgram(source, path string) *Program {
	return &Program{source: source, path: path}
}

// Load reads a sketch from disk.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sketch: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return NewProgram(string(data), abs), nil
}

// Source returns the program text.
func (p *Program) Source() string { return p.source }

// Path returns the originating file path.
func (p *Program) Path() string { return p.path }

// Name returns the bare file name of the sketch, e.g. "sketch.pyde".
func (p *Program) Name() string { return filepath.Base(p.path) }

// Dir returns the directory containing the sketch. Sibling files loaded by
// the sketch are resolved relative to it.
func (p *Program) Dir() string { return filepath.Dir(p.path) }

// Ext returns the lower-cased file extension including the dot.
func (p *Program) Ext() string { return strings.ToLower(filepath.Ext(p.path)) }
