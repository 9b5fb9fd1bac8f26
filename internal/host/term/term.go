// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package term runs sketches interactively in the terminal. The canvas is
// drawn with one character cell per unit; mouse, keyboard and focus come
// from the terminal.
package term

import (
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	xterm "golang.org/x/term"

	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/host/canvas"
	"github.com/Stefterv/processing.py/internal/scripting"
)

// outputLines is how many lines of sketch output stay on screen.
const outputLines = 4

// chromeLines is the room the status line and output take below the canvas.
const chromeLines = outputLines + 2

// Options configures the terminal host.
type Options struct {
	// Title is shown in the status line.
	Title string

	// Width and Height default to the terminal size minus the status area.
	Width, Height int

	FrameRate float64

	// Input and Output default to the process's stdin and stdout, which
	// must then be a terminal.
	Input  io.Reader
	Output io.Writer
}

// Host is an interactive host.Host built on bubbletea.
type Host struct {
	*host.Base
	opts   Options
	canvas *canvas.Canvas

	program *tea.Program
	done    chan struct{}

	outMu  sync.Mutex
	output []string

	// prompt is only touched from the loop goroutine.
	prompt *filePrompt
}

// New creates a terminal host sized to the terminal.
func New(opts Options) (*Host, error) {
	displayW, displayH := 80, 24
	if opts.Output == nil {
		fd := int(os.Stdout.Fd())
		if !xterm.IsTerminal(fd) {
			return nil, fmt.Errorf("terminal host: stdout: %w", host.ErrNotTerminal)
		}
		if w, h, err := xterm.GetSize(fd); err == nil {
			displayW, displayH = w, h
		}
	}
	if opts.Width <= 0 {
		opts.Width = displayW
	}
	if opts.Height <= 0 {
		opts.Height = max(displayH-chromeLines, 1)
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 30
	}

	h := &Host{
		Base:   host.NewBase(opts.Width, opts.Height, displayW, displayH),
		opts:   opts,
		canvas: canvas.New(opts.Width, opts.Height),
		done:   make(chan struct{}),
	}
	h.Update(func(s *host.State) { s.FrameRate = opts.FrameRate })
	h.BasicSurface().OnVisible = h.visibilityChanged
	return h, nil
}

// Canvas returns the drawing surface.
func (h *Host) Canvas() *canvas.Canvas { return h.canvas }

// Start implements host.Host.
func (h *Host) Start(args []string, sk host.Sketch) error {
	if err := h.Bind(sk); err != nil {
		return err
	}

	opts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		// Interrupts arrive through the launcher's context.
		tea.WithoutSignalHandler(),
	}
	if h.opts.Input != nil {
		opts = append(opts, tea.WithInput(h.opts.Input))
	}
	if h.opts.Output != nil {
		opts = append(opts, tea.WithOutput(h.opts.Output))
	}
	for _, a := range args {
		if a == host.FullScreenArg {
			h.BasicSurface().SetFullscreen(true)
		}
	}

	h.program = tea.NewProgram(newModel(h, sk), opts...)
	go h.run()
	return nil
}

func (h *Host) run() {
	defer close(h.done)
	defer h.Recover()
	if _, err := h.program.Run(); err != nil {
		if boundary, ok := h.Sink().(host.ErrorBoundary); ok {
			boundary.ReportFatal(fmt.Errorf("terminal host: %w", err))
		}
	}
}

// visibilityChanged quits the program when the surface is hidden and
// waits until the terminal is restored.
func (h *Host) visibilityChanged(visible bool) {
	if visible || h.program == nil {
		return
	}
	h.program.Quit()
	<-h.done
}

// Print shows a line of sketch output below the canvas.
func (h *Host) Print(line string) {
	h.outMu.Lock()
	defer h.outMu.Unlock()
	h.output = append(h.output, line)
	if len(h.output) > outputLines {
		h.output = h.output[len(h.output)-outputLines:]
	}
}

func (h *Host) outputTail() []string {
	h.outMu.Lock()
	defer h.outMu.Unlock()
	return append([]string(nil), h.output...)
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
	h.ask("Open: "+prompt, done)
}

// SelectOutput implements host.Host.
func (h *Host) SelectOutput(prompt string, done func(path string, ok bool)) {
	h.ask("Save: "+prompt, done)
}

// SelectFolder implements host.Host.
func (h *Host) SelectFolder(prompt string, done func(path string, ok bool)) {
	h.ask("Folder: "+prompt, done)
}

// ask opens the inline prompt. Only one prompt is open at a time; a second
// request is cancelled.
func (h *Host) ask(label string, done func(path string, ok bool)) {
	if h.prompt != nil {
		h.Post(func() { done("", false) })
		return
	}
	h.prompt = newFilePrompt(label, done)
}

// Compile-time interface checks
var (
	_ host.Host             = (*Host)(nil)
	_ host.DiagnosticWriter = (*Host)(nil)
)
