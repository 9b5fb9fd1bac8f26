// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"bytes"
	"io"
	"sync"

	"github.com/Stefterv/processing.py/internal/host"
)

// lineWriter forwards complete lines to a print function. Host builtins
// that write directly (printMatrix) end up in the sketch's output this way.
type lineWriter struct {
	mu    sync.Mutex
	print func(string)
	buf   bytes.Buffer
}

func newLineWriter(print func(string)) *lineWriter {
	return &lineWriter{print: print}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.print(line[:len(line)-1])
	}
	return len(p), nil
}

// Flush prints a trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.print(w.buf.String())
		w.buf.Reset()
	}
}

// pushStdout points the host's diagnostic output at w until the returned
// restore func runs. Hosts without diagnostic output get a no-op.
func pushStdout(h host.Host, w io.Writer) (restore func()) {
	dw, ok := h.(host.DiagnosticWriter)
	if !ok {
		return func() {}
	}
	prev := dw.SetDiagnosticOutput(w)
	return func() { dw.SetDiagnosticOutput(prev) }
}

// withStdout runs fn with the host's diagnostic output redirected to the
// sketch output. The redirect is undone on every exit path.
func (d *Driver) withStdout(fn func() error) error {
	w := newLineWriter(d.print)
	restore := pushStdout(d.host, w)
	defer func() {
		restore()
		w.Flush()
	}()
	return fn()
}
