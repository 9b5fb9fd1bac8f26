// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package bridge drives a script through the lifecycle of a host. It
// detects the sketch mode, harvests the optional callbacks, mirrors host
// state into the script namespace before each dispatch, and turns script
// failures into a terminal diagnostic for whoever launched the run.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Stefterv/processing.py/internal/diagnostic"
	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/sketch"
)

var (
	// ErrInvalidState indicates a driver method was called out of order
	ErrInvalidState = errors.New("invalid driver state")

	// ErrTerminated is returned by dispatch once the run is terminating
	ErrTerminated = errors.New("sketch terminated")

	// ErrCallbackNotFound indicates a file selection named an undefined function
	ErrCallbackNotFound = errors.New("callback not found")
)

// DefaultInterruptGrace is how long an interrupt waits for the host to
// exit before stopping the interpreter mid-call.
const DefaultInterruptGrace = 2 * time.Second

// Option configures a Driver.
type Option func(*Driver)

// WithPrinter sets where print() output goes. Defaults to stdout.
func WithPrinter(fn func(line string)) Option {
	return func(d *Driver) { d.print = fn }
}

// WithLogger sets the driver's logger. Defaults to discarding.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithTranslator sets the error translator.
func WithTranslator(t *diagnostic.Translator) Option {
	return func(d *Driver) { d.translate = t.Translate }
}

// WithPositionListener is told whenever the host surface moves.
func WithPositionListener(fn func(x, y int)) Option {
	return func(d *Driver) { d.moved = fn }
}

// WithInterruptGrace overrides DefaultInterruptGrace.
func WithInterruptGrace(grace time.Duration) Option {
	return func(d *Driver) { d.grace = grace }
}

// Driver is the lifecycle adapter. It implements host.Sketch and is
// registered with the host; every method runs on the host loop goroutine
// except ReportFatal, Exit and RunAndBlock.
type Driver struct {
	session  scripting.Session
	program  *sketch.Program
	host     host.Host
	defaults host.Sketch

	mode     sketch.Mode
	registry *Registry
	mirror   *Mirror
	term     *Termination
	life     lifecycle

	print     func(string)
	logger    *slog.Logger
	translate func(error) *diagnostic.SketchError
	moved     func(x, y int)
	grace     time.Duration

	exitRequested atomic.Bool

	disposeMu sync.Mutex
	disposers []func()
}

// New constructs a driver for program and detects its mode. MIXED sketches
// and sketches that do not parse fail here, before anything is rendered.
func New(session scripting.Session, program *sketch.Program, h host.Host, opts ...Option) (*Driver, error) {
	d := &Driver{
		session:   session,
		program:   program,
		host:      h,
		defaults:  h.Defaults(),
		registry:  NewRegistry(),
		print:     func(line string) { fmt.Fprintln(os.Stdout, line) },
		logger:    slog.New(slog.DiscardHandler),
		translate: diagnostic.Translate,
		grace:     DefaultInterruptGrace,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.term = NewTermination(d.translate, d.dispose)
	d.mirror = NewMirror(session, h.State)
	session.SetOutput(d.print)

	if err := session.Set(scripting.FileSlot, program.Name()); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", scripting.FileSlot, err)
	}
	if err := session.Set(scripting.SourceSlot, program.Source()); err != nil {
		return nil, fmt.Errorf("failed to set %s: %w", scripting.SourceSlot, err)
	}

	det, err := session.DetectMode(program.Source(), program.Path())
	if err != nil {
		return nil, d.translate(err)
	}
	d.mode = det.Mode
	d.logger.Debug("Mode detected", "sketch", program.Name(), "mode", det.Mode, "backend", session.Name())
	if err := det.Err(); err != nil {
		return nil, d.translate(err)
	}
	if err := d.life.advance(StateConstructed, StateModeDetected); err != nil {
		return nil, err
	}

	if err := d.registerBuiltins(); err != nil {
		return nil, err
	}
	if err := d.mirror.Init(); err != nil {
		return nil, fmt.Errorf("failed to mirror host state: %w", err)
	}
	return d, nil
}

// Mode returns the detected sketch mode.
func (d *Driver) Mode() sketch.Mode { return d.mode }

// State returns the lifecycle state.
func (d *Driver) State() State { return d.life.Load() }

// Registry returns the harvested callbacks.
func (d *Driver) Registry() *Registry { return d.registry }

// OnDispose registers fn to run, best effort, when the run ends in error.
func (d *Driver) OnDispose(fn func()) {
	d.disposeMu.Lock()
	defer d.disposeMu.Unlock()
	d.disposers = append(d.disposers, fn)
}

func (d *Driver) dispose() {
	d.disposeMu.Lock()
	fns := slices.Clone(d.disposers)
	d.disposeMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// FindSketchMethods runs an ACTIVE sketch once so its functions are bound,
// then harvests the callbacks. STATIC sketches have nothing to harvest;
// their body runs later as setup.
func (d *Driver) FindSketchMethods() error {
	if err := d.life.advance(StateModeDetected, StateMethodsHarvested); err != nil {
		return err
	}
	if d.mode != sketch.Active {
		return nil
	}
	if err := d.session.Exec(d.program.Source(), d.program.Path()); err != nil {
		return d.translate(err)
	}
	if err := d.registry.Harvest(d.session); err != nil {
		return err
	}
	d.mirror.SetMousePressedBound(d.registry.Get(sketch.FuncMousePressed).Defined())
	d.logger.Debug("Callbacks harvested", "defined", d.registry.Defined())
	return nil
}

// RunAndBlock starts the host and blocks until the run ends: the surface
// closes, the sketch exits, or a failure is reported. Cancelling ctx asks
// the sketch to exit and keeps waiting for it. The terminal error, if
// any, is returned as a *diagnostic.SketchError.
func (d *Driver) RunAndBlock(ctx context.Context, args []string) error {
	if err := d.life.advance(StateMethodsHarvested, StateRunning); err != nil {
		return err
	}

	surface := d.host.Surface()
	surface.OnClose(func() {
		d.logger.Debug("Surface closed")
		d.term.Release()
	})

	if err := d.host.Start(args, d); err != nil {
		d.life.Store(StateTerminated)
		return fmt.Errorf("failed to start host: %w", err)
	}

	err := d.term.Await(ctx, d.interrupt)
	d.life.terminate()

	if d.host.Platform() == host.PlatformMacOS && slices.Contains(args, host.FullScreenArg) {
		if toggler, ok := surface.(host.FullscreenToggler); ok {
			d.logger.Debug("Disabling fullscreen")
			toggler.ToggleFullscreen()
		}
	}
	surface.SetVisible(false)
	d.life.Store(StateTerminated)
	return err
}

// Exit asks the host to end the run. Safe from any goroutine.
func (d *Driver) Exit() {
	d.exitRequested.Store(true)
	d.host.Exit()
}

// interrupt is an external shutdown request. A script stuck in a call
// gets stopped after the grace period.
func (d *Driver) interrupt() {
	d.logger.Info("Interrupted, stopping sketch")
	d.Exit()
	time.AfterFunc(d.grace, func() {
		if !d.term.Released() {
			d.session.Interrupt("sketch interrupted")
		}
	})
}

// ReportFatal implements host.ErrorBoundary. The first reported error
// wins; the run terminates.
func (d *Driver) ReportFatal(err error) {
	d.life.terminate()
	d.logger.Debug("Fatal error reported", "error", err)
	d.term.ReportFatal(err)
	d.host.Exit()
}

// dispatch refreshes the mirror and runs one sketch call. A failure or a
// panic ends the run.
func (d *Driver) dispatch(kind RefreshKind, call func() error) (err error) {
	if d.life.terminating() {
		return ErrTerminated
	}
	defer func() {
		if r := recover(); r != nil {
			err = d.fail(fmt.Errorf("panic in sketch call: %v", r))
		}
	}()
	if err := d.mirror.Refresh(kind); err != nil {
		return d.fail(err)
	}
	if err := call(); err != nil {
		return d.fail(err)
	}
	return nil
}

// fail routes a dispatch error to the boundary. An interruption after an
// exit request is a clean stop.
func (d *Driver) fail(err error) error {
	if d.exitRequested.Load() && errors.Is(err, scripting.ErrInterrupted) {
		d.logger.Debug("Sketch interrupted after exit request")
		d.term.Release()
		return err
	}
	d.ReportFatal(err)
	return err
}

// zeroArg calls the named callback when it takes no parameters, and the
// fallback otherwise.
func (d *Driver) zeroArg(name string, fallback func() error) error {
	if b := d.registry.Get(name); b.Kind == ZeroArg {
		return b.Call()
	}
	return fallback()
}

// Settings implements host.Sketch.
func (d *Driver) Settings() error {
	return d.dispatch(refreshNone, func() error {
		return d.zeroArg(sketch.FuncSettings, d.defaults.Settings)
	})
}

// Setup implements host.Sketch. A STATIC sketch runs its whole body here,
// once.
func (d *Driver) Setup() error {
	return d.dispatch(RefreshAll, func() error {
		if d.mode == sketch.Static {
			d.logger.Debug("Interpreting static-mode sketch")
			return d.session.Exec(d.program.Source(), d.program.Path())
		}
		return d.zeroArg(sketch.FuncSetup, d.defaults.Setup)
	})
}

// Draw implements host.Sketch.
func (d *Driver) Draw() error {
	return d.dispatch(RefreshAll, func() error {
		return d.zeroArg(sketch.FuncDraw, d.defaults.Draw)
	})
}

// Stop implements host.Sketch. The host default always runs afterwards.
func (d *Driver) Stop() error {
	return d.hook(sketch.FuncStop, d.defaults.Stop)
}

// Pause implements host.Sketch.
func (d *Driver) Pause() error {
	return d.hook(sketch.FuncPause, d.defaults.Pause)
}

// Resume implements host.Sketch.
func (d *Driver) Resume() error {
	return d.hook(sketch.FuncResume, d.defaults.Resume)
}

func (d *Driver) hook(name string, hostDefault func() error) error {
	err := d.dispatch(refreshNone, func() error {
		return d.zeroArg(name, func() error { return nil })
	})
	if derr := hostDefault(); err == nil {
		err = derr
	}
	return err
}

// FocusGained implements host.Sketch.
func (d *Driver) FocusGained() error {
	return d.dispatch(refreshNone, func() error {
		if err := d.defaults.FocusGained(); err != nil {
			return err
		}
		return d.mirror.WriteFocus()
	})
}

// FocusLost implements host.Sketch.
func (d *Driver) FocusLost() error {
	return d.dispatch(refreshNone, func() error {
		if err := d.defaults.FocusLost(); err != nil {
			return err
		}
		return d.mirror.WriteFocus()
	})
}

// FrameMoved implements host.Sketch.
func (d *Driver) FrameMoved(x, y int) {
	if d.moved != nil {
		d.moved(x, y)
	}
}

// ExitActual implements host.Sketch. It opens the termination gate.
func (d *Driver) ExitActual() {
	d.logger.Debug("Exit", "sketch", d.program.Name())
	d.term.Release()
}

// Compile-time interface checks
var (
	_ host.Sketch        = (*Driver)(nil)
	_ host.ErrorBoundary = (*Driver)(nil)
)
