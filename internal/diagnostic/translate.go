// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package diagnostic

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Stefterv/processing.py/internal/scripting"
)

// Translator converts raw interpreter failures into SketchErrors.
type Translator struct {
	// ReadFile loads the file named by a syntax error, for the color
	// literal scan.
	ReadFile func(path string) ([]byte, error)

	// Exists reports whether a stack frame's file is on disk. Such paths
	// are reduced to their base name.
	Exists func(path string) bool
}

// NewTranslator returns a Translator backed by the filesystem.
func NewTranslator() *Translator {
	return &Translator{
		ReadFile: os.ReadFile,
		Exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}
}

var defaultTranslator = NewTranslator()

// Translate converts err using the filesystem-backed translator.
func Translate(err error) *SketchError {
	return defaultTranslator.Translate(err)
}

// Translate peels wrappers off err down to the innermost recognized cause
// and converts it. It returns nil for a nil error.
func (t *Translator) Translate(err error) *SketchError {
	if err == nil {
		return nil
	}

	var sketchErr *SketchError
	if errors.As(err, &sketchErr) {
		return sketchErr
	}
	var mixed *scripting.MixedModeError
	if errors.As(err, &mixed) {
		return &SketchError{
			Message: scripting.MixedModeMessage,
			File:    filepath.Base(mixed.File),
			Line:    zeroBased(mixed.Line),
			Column:  NoPosition,
			Err:     err,
		}
	}
	var syntaxErr *scripting.SyntaxError
	if errors.As(err, &syntaxErr) {
		se := t.syntax(syntaxErr)
		se.Err = err
		return se
	}
	var runtimeErr *scripting.RuntimeError
	if errors.As(err, &runtimeErr) {
		se := t.runtime(runtimeErr)
		se.Err = err
		return se
	}

	se := New(err.Error())
	se.Err = err
	return se
}

func (t *Translator) syntax(e *scripting.SyntaxError) *SketchError {
	file := ""
	if e.File != "" {
		file = filepath.Base(e.File)
	}
	line, col := zeroBased(e.Line), column(e.Col)

	if msg, ok := operatorMessage(e.Msg); ok {
		return At(msg, file, line, col)
	}
	if unbalanced(e.Msg) {
		if t.ReadFile != nil && e.File != "" {
			if src, err := t.ReadFile(e.File); err == nil {
				if hint, hintLine, hintCol, found := colorHint(src); found {
					return At(hint, file, hintLine, hintCol)
				}
			}
		}
		return At(UnclosedMessage, file, line, col)
	}
	return At(friendlyMessage(e.Msg), file, line, col)
}

func (t *Translator) runtime(e *scripting.RuntimeError) *SketchError {
	file, line, col := "", NoPosition, NoPosition
	for _, f := range e.Frames {
		if f.Internal || f.File == "" {
			continue
		}
		file = f.File
		if t.Exists != nil && t.Exists(file) {
			file = filepath.Base(file)
		}
		line, col = zeroBased(f.Line), column(f.Col)
		break
	}

	if e.Type == scripting.ImportErrorType && importStar.MatchString(e.Trace) {
		return At(ImportStarMessage, file, line, col)
	}
	return At(e.Error(), file, line, col)
}

func zeroBased(line int) int {
	if line <= 0 {
		return NoPosition
	}
	return line - 1
}

func column(col int) int {
	if col <= 0 {
		return NoPosition
	}
	return col
}
