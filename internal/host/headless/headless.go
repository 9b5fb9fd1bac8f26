// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package headless runs sketches without a terminal: a fixed number of
// frames, scripted input, and canned file selections. It backs CI runs,
// -dump and the bridge tests.
package headless

import (
	"io"
	"time"

	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/host/canvas"
	"github.com/Stefterv/processing.py/internal/scripting"
)

// Options configures a headless run.
type Options struct {
	Width, Height int

	// Display defaults to the surface size.
	DisplayWidth, DisplayHeight int

	// Frames is the number of draw calls before the surface closes.
	// Zero runs until Exit.
	Frames int

	// FrameRate throttles the loop when positive. Zero runs unthrottled.
	FrameRate float64

	// Events are delivered just before the draw of the given frame
	// (1-based). Values are host.MouseEvent, host.KeyEvent or
	// host.FocusEvent.
	Events map[int][]any

	// Selections answer file prompts by prompt text. Unknown prompts are
	// cancelled.
	Selections map[string]string

	// Platform overrides the reported platform.
	Platform string
}

// Host is a deterministic host.Host.
type Host struct {
	*host.Base
	opts   Options
	canvas *canvas.Canvas
	done   chan struct{}
}

// New creates a headless host.
func New(opts Options) *Host {
	if opts.Width <= 0 {
		opts.Width = 100
	}
	if opts.Height <= 0 {
		opts.Height = 100
	}
	if opts.DisplayWidth <= 0 {
		opts.DisplayWidth = opts.Width
	}
	if opts.DisplayHeight <= 0 {
		opts.DisplayHeight = opts.Height
	}
	h := &Host{
		Base:   host.NewBase(opts.Width, opts.Height, opts.DisplayWidth, opts.DisplayHeight),
		opts:   opts,
		canvas: canvas.New(opts.Width, opts.Height),
		done:   make(chan struct{}),
	}
	if opts.Platform != "" {
		h.SetPlatform(opts.Platform)
	}
	if opts.FrameRate > 0 {
		h.Update(func(s *host.State) { s.FrameRate = opts.FrameRate })
	}
	return h
}

// Canvas returns the drawing surface.
func (h *Host) Canvas() *canvas.Canvas { return h.canvas }

// Done is closed when the loop goroutine returns.
func (h *Host) Done() <-chan struct{} { return h.done }

// Start implements host.Host.
func (h *Host) Start(args []string, sk host.Sketch) error {
	if err := h.Bind(sk); err != nil {
		return err
	}
	for _, a := range args {
		if a == host.FullScreenArg {
			h.BasicSurface().SetFullscreen(true)
		}
	}
	go h.loop(sk)
	return nil
}

func (h *Host) loop(sk host.Sketch) {
	defer close(h.done)
	defer h.Recover()

	if h.step(sk.Settings) || h.step(sk.Setup) {
		h.finish(sk)
		return
	}

	var ticker *time.Ticker
	if h.opts.FrameRate > 0 {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / h.opts.FrameRate))
		defer ticker.Stop()
	}

	for frame := 1; h.opts.Frames == 0 || frame <= h.opts.Frames; frame++ {
		h.RunPending()
		if h.ExitRequested() {
			h.finish(sk)
			return
		}
		for _, ev := range h.opts.Events[frame] {
			if h.deliver(ev) {
				h.finish(sk)
				return
			}
		}
		h.Update(func(s *host.State) { s.FrameCount = frame })
		h.canvas.ResetMatrix()
		if h.step(sk.Draw) {
			h.finish(sk)
			return
		}
		if ticker != nil {
			<-ticker.C
		}
	}

	h.RunPending()
	h.BasicSurface().Close()
}

// step runs one sketch call and reports whether the loop must stop.
func (h *Host) step(call func() error) bool {
	if err := call(); err != nil {
		h.Exit()
	}
	return h.ExitRequested()
}

func (h *Host) deliver(ev any) bool {
	var err error
	switch e := ev.(type) {
	case host.MouseEvent:
		err = h.DeliverMouse(e)
	case host.KeyEvent:
		err = h.DeliverKey(e)
	case host.FocusEvent:
		err = h.DeliverFocus(e.Gained)
	}
	if err != nil {
		h.Exit()
	}
	return h.ExitRequested()
}

// finish is the orderly shutdown after Exit.
func (h *Host) finish(sk host.Sketch) {
	_ = sk.Stop()
	sk.ExitActual()
}

// Builtins implements host.Host.
func (h *Host) Builtins() map[string]scripting.Builtin {
	b := canvas.Builtins(h.canvas, canvas.Hooks{
		Resized: func(w, ht int) {
			h.Update(func(s *host.State) { s.Width, s.Height = w, ht })
		},
		FrameRate: func(fps float64) {
			h.Update(func(s *host.State) { s.FrameRate = fps })
		},
	})
	for name, fn := range host.CoreBuiltins() {
		b[name] = fn
	}
	return b
}

// Constants implements host.Host.
func (h *Host) Constants() map[string]any { return host.Constants() }

// SetDiagnosticOutput implements host.DiagnosticWriter.
func (h *Host) SetDiagnosticOutput(w io.Writer) io.Writer {
	return h.canvas.SetDiagnosticOutput(w)
}

// SelectInput implements host.Host.
func (h *Host) SelectInput(prompt string, done func(path string, ok bool)) {
	h.answer(prompt, done)
}

// SelectOutput implements host.Host.
func (h *Host) SelectOutput(prompt string, done func(path string, ok bool)) {
	h.answer(prompt, done)
}

// SelectFolder implements host.Host.
func (h *Host) SelectFolder(prompt string, done func(path string, ok bool)) {
	h.answer(prompt, done)
}

// answer delivers the canned selection on the loop before the next frame.
func (h *Host) answer(prompt string, done func(path string, ok bool)) {
	path, ok := h.opts.Selections[prompt]
	h.Post(func() { done(path, ok) })
}

// Compile-time interface checks
var (
	_ host.Host             = (*Host)(nil)
	_ host.DiagnosticWriter = (*Host)(nil)
)
