// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Stefterv/processing.py/internal/diagnostic"
	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/host/headless"
	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/sketch"
	"github.com/Stefterv/processing.py/internal/testutil"
)

func TestZeroArgEventDropsPayload(t *testing.T) {
	h := newFakeHost()
	src := "def draw():\n    pass\n\ndef mousePressed():\n    record('pressed', mouseX)\n"
	d, rec, _ := newDriver(t, h, src)

	h.Update(func(s *host.State) { s.MouseX = 12 })
	if err := d.MouseEvent(host.MouseEvent{Action: host.MousePressed, X: 12, Y: 3}); err != nil {
		t.Fatalf("MouseEvent failed: %v", err)
	}

	if got, want := rec.Calls(), []string{"pressed 12"}; !reflect.DeepEqual(got, want) {
		t.Errorf("script calls = %v, want %v", got, want)
	}
	if log := h.Log(); len(log) != 0 {
		t.Errorf("host default ran: %v", log)
	}
}

func TestOneArgSkippedForZeroArgDispatch(t *testing.T) {
	h := newFakeHost()
	src := "def draw():\n    pass\n\ndef mousePressed(e):\n    record('event', e.x, e.action)\n"
	d, rec, _ := newDriver(t, h, src)

	if err := d.Mouse(host.MousePressed); err != nil {
		t.Fatalf("Mouse failed: %v", err)
	}
	if calls := rec.Calls(); len(calls) != 0 {
		t.Errorf("script function ran: %v", calls)
	}
	if got, want := h.Log(), []string{"default mouse mousePressed"}; !reflect.DeepEqual(got, want) {
		t.Errorf("host log = %v, want %v", got, want)
	}

	if err := d.MouseEvent(host.MouseEvent{Action: host.MousePressed, X: 7}); err != nil {
		t.Fatalf("MouseEvent failed: %v", err)
	}
	if got, want := rec.Calls(), []string{"event 7 mousePressed"}; !reflect.DeepEqual(got, want) {
		t.Errorf("script calls = %v, want %v", got, want)
	}
}

func TestPayloadEventFallsThroughToDefault(t *testing.T) {
	h := newFakeHost()
	d, rec, _ := newDriver(t, h, "def draw():\n    pass\n\ndef keyTyped():\n    record('typed', key)\n")

	// No keyPressed: the host default forwards to the payload-less variant.
	if err := d.KeyEvent(host.KeyEvent{Action: host.KeyPressed, Key: 'x', KeyCode: 88}); err != nil {
		t.Fatal(err)
	}
	want := []string{"default keyEvent keyPressed", "default key keyPressed"}
	if got := h.Log(); !reflect.DeepEqual(got, want) {
		t.Errorf("host log = %v, want %v", got, want)
	}

	h.Update(func(s *host.State) { s.Key = 'x' })
	if err := d.KeyEvent(host.KeyEvent{Action: host.KeyTyped, Key: 'x', KeyCode: 88}); err != nil {
		t.Fatal(err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"typed x"}) {
		t.Errorf("script calls = %v", got)
	}
}

// dispatchers fire every variant of the host call belonging to a name.
var dispatchers = map[string]func(d *Driver) error{
	sketch.FuncSetup:    (*Driver).Setup,
	sketch.FuncSettings: (*Driver).Settings,
	sketch.FuncDraw:     (*Driver).Draw,
	sketch.FuncStop:     (*Driver).Stop,
	sketch.FuncPause:    (*Driver).Pause,
	sketch.FuncResume:   (*Driver).Resume,
	sketch.FuncCaptureEvent: func(d *Driver) error {
		return d.CaptureEvent(map[string]any{"name": "camera"})
	},
	sketch.FuncMovieEvent: func(d *Driver) error {
		return d.MovieEvent(map[string]any{"name": "movie"})
	},
}

func dispatcherFor(name string) func(d *Driver) error {
	if fn, ok := dispatchers[name]; ok {
		return fn
	}
	if strings.HasPrefix(name, "mouse") {
		return func(d *Driver) error {
			if err := d.MouseEvent(host.MouseEvent{Action: name, X: 1, Y: 2}); err != nil {
				return err
			}
			return d.Mouse(name)
		}
	}
	return func(d *Driver) error {
		if err := d.KeyEvent(host.KeyEvent{Action: name, Key: 'k', KeyCode: 75}); err != nil {
			return err
		}
		return d.Key(name)
	}
}

func TestUnsupportedArityBehavesAsUndefined(t *testing.T) {
	for _, name := range sketch.CallbackNames {
		t.Run(name, func(t *testing.T) {
			anchor := "def settings():\n    pass\n"
			if name == sketch.FuncSettings {
				anchor = "def setup():\n    pass\n"
			}
			dispatch := dispatcherFor(name)

			undefinedHost := newFakeHost()
			d, _, _ := newDriver(t, undefinedHost, anchor)
			if err := dispatch(d); err != nil {
				t.Fatalf("dispatch without %s failed: %v", name, err)
			}

			boundHost := newFakeHost()
			src := anchor + "\ndef " + name + "(a, b):\n    record('called')\n"
			d, rec, _ := newDriver(t, boundHost, src)
			if got := d.Registry().Get(name).Kind; got != OtherArity {
				t.Fatalf("binding = %v, want other-arity", got)
			}
			if err := dispatch(d); err != nil {
				t.Fatalf("dispatch with two-arg %s failed: %v", name, err)
			}

			if calls := rec.Calls(); len(calls) != 0 {
				t.Errorf("two-arg %s was called: %v", name, calls)
			}
			if got, want := boundHost.Log(), undefinedHost.Log(); !reflect.DeepEqual(got, want) {
				t.Errorf("host log = %v, want %v", got, want)
			}
		})
	}
}

func TestModeDetection(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want sketch.Mode
	}{
		{"active", "def setup():\n    pass\n\ndef draw():\n    pass\n", sketch.Active},
		{"static", "size(200, 200)\nrecord('hello')\n", sketch.Static},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, _ := newDriver(t, newFakeHost(), tt.src)
			if d.Mode() != tt.want {
				t.Errorf("Mode() = %v, want %v", d.Mode(), tt.want)
			}
		})
	}
}

func TestMixedModeFailsConstruction(t *testing.T) {
	h := newFakeHost()
	session := scripting.NewStarlarkSession()
	src := "x = 1\nprint(x)\n\ndef draw():\n    pass\n"

	_, err := New(session, sketch.NewProgram(src, "/sketches/mixed.pyde"), h)
	var mixed *scripting.MixedModeError
	if !errors.As(err, &mixed) {
		t.Fatalf("New() error = %v, want MixedModeError", err)
	}
	var se *diagnostic.SketchError
	if !errors.As(err, &se) || se.Message != scripting.MixedModeMessage || se.Line != 1 {
		t.Errorf("diagnostic = %+v", se)
	}
	if h.Sink() != nil {
		t.Error("host must not be started for a mixed sketch")
	}
}

func TestSyntaxErrorFailsConstruction(t *testing.T) {
	session := scripting.NewStarlarkSession()
	_, err := New(session, sketch.NewProgram("def draw(:\n    pass\n", "/sketches/bad.pyde"), newFakeHost())
	var se *diagnostic.SketchError
	if !errors.As(err, &se) {
		t.Fatalf("New() error = %v, want *SketchError", err)
	}
	if se.Line != 0 || se.File != "bad.pyde" {
		t.Errorf("diagnostic = %+v, want bad.pyde line 0", se)
	}
}

func TestStaticSketchRunsAsSetup(t *testing.T) {
	h := newFakeHost()
	d, rec, _ := newDriver(t, h, "record('body', width)\n")
	if calls := rec.Calls(); len(calls) != 0 {
		t.Fatalf("static body ran before setup: %v", calls)
	}
	if err := d.Setup(); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := d.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"body 100"}) {
		t.Errorf("calls = %v", got)
	}
	if got := h.Log(); !reflect.DeepEqual(got, []string{"default draw"}) {
		t.Errorf("host log = %v, want only the default draw", got)
	}
}

func TestDrawWithoutDefinitionRunsDefault(t *testing.T) {
	h := newFakeHost()
	d, _, _ := newDriver(t, h, "def setup():\n    pass\n")
	if err := d.Draw(); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if got := h.Log(); !reflect.DeepEqual(got, []string{"default draw"}) {
		t.Errorf("host log = %v", got)
	}
}

func TestLifecycleHooksRunHostDefault(t *testing.T) {
	h := newFakeHost()
	src := "def draw():\n    pass\n\ndef pause():\n    record('pause')\n\ndef stop():\n    record('stop')\n"
	d, rec, _ := newDriver(t, h, src)

	for _, call := range []func() error{d.Pause, d.Resume, d.Stop} {
		if err := call(); err != nil {
			t.Fatal(err)
		}
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"pause", "stop"}) {
		t.Errorf("script calls = %v", got)
	}
	want := []string{"default pause", "default resume", "default stop"}
	if got := h.Log(); !reflect.DeepEqual(got, want) {
		t.Errorf("host log = %v, want %v", got, want)
	}
}

func TestMirrorBeforeDispatch(t *testing.T) {
	h := newFakeHost()
	src := "def draw():\n    record(frameCount, mouseX, key, keyCode)\n"
	d, rec, _ := newDriver(t, h, src)

	h.Update(func(s *host.State) {
		s.FrameCount = 5
		s.MouseX = 40
		s.Key, s.KeyCode = host.Coded, host.KeyLeft
	})
	if err := d.Draw(); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.Calls(), []string{"5 40 65535 37"}; !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSizeRewritesDimensions(t *testing.T) {
	h := newFakeHost()
	d, rec, _ := newDriver(t, h, "def setup():\n    size(300, 200)\n    record(width, height)\n")
	if err := d.Setup(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"300 200"}) {
		t.Errorf("calls = %v", got)
	}
}

func TestPrintMatrixRedirected(t *testing.T) {
	h := newFakeHost()
	var lines []string
	src := "def setup():\n    printMatrix()\n"
	d, _, _ := newDriverAt(t, h, src, "/sketches/m.pyde", WithPrinter(func(line string) {
		lines = append(lines, line)
	}))
	if err := d.Setup(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"1 0 0", "0 1 0"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if h.diag != nil {
		t.Error("diagnostic output was not restored")
	}
}

func TestFileSelection(t *testing.T) {
	h := newFakeHost()
	src := "def setup():\n    selectInput('pick a file', 'chosen')\n\ndef chosen(path):\n    record('chose', path)\n"
	d, rec, _ := newDriver(t, h, src)
	if err := d.Setup(); err != nil {
		t.Fatal(err)
	}
	if len(h.selected) != 1 {
		t.Fatalf("host got %d selections, want 1", len(h.selected))
	}
	h.selected[0]("/data/a.txt", true)
	h.selected[0]("", false)

	want := []string{"chose /data/a.txt", "chose <nil>"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestFileSelectionUnknownCallback(t *testing.T) {
	h := newFakeHost()
	d, _, _ := newDriver(t, h, "def setup():\n    selectFolder('where', 'nope')\n")
	if err := d.Setup(); err == nil {
		t.Fatal("Setup should fail for an unknown callback")
	}
	testutil.AssertError(t, d.term.Err(), true, `I can't find a callback function named "nope"`)
	if !h.ExitRequested() {
		t.Error("a failed dispatch should ask the host to exit")
	}
}

func TestExitBuiltin(t *testing.T) {
	h := newFakeHost()
	d, _, _ := newDriver(t, h, "def draw():\n    exit()\n")
	if err := d.Draw(); err != nil {
		t.Fatal(err)
	}
	if !h.ExitRequested() {
		t.Error("exit() should request host exit")
	}
	if d.term.Err() != nil {
		t.Errorf("exit() is not an error: %v", d.term.Err())
	}
}

func TestFailureTerminatesAndSkipsLaterDispatch(t *testing.T) {
	h := newFakeHost()
	src := "def draw():\n    record('draw')\n    fail('broken')\n\ndef stop():\n    record('stop')\n"
	d, rec, _ := newDriver(t, h, src)

	var disposed int
	d.OnDispose(func() { disposed++ })

	if err := d.Draw(); err == nil {
		t.Fatal("Draw should fail")
	}
	if d.State() != StateTerminating {
		t.Errorf("State() = %v, want TERMINATING", d.State())
	}
	if err := d.Draw(); !errors.Is(err, ErrTerminated) {
		t.Errorf("second Draw error = %v, want ErrTerminated", err)
	}
	if err := d.Stop(); !errors.Is(err, ErrTerminated) {
		t.Errorf("Stop error = %v, want ErrTerminated", err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"draw"}) {
		t.Errorf("calls = %v", got)
	}
	if disposed != 1 {
		t.Errorf("dispose ran %d times, want 1", disposed)
	}
	if got := h.Log(); !reflect.DeepEqual(got, []string{"default stop"}) {
		t.Errorf("host log = %v, want the host stop to still run", got)
	}
}

func TestPanicInCallbackIsFatal(t *testing.T) {
	h := newFakeHost()
	d, rec, _ := newDriver(t, h, "def draw():\n    record('go')\n")
	rec.onCall = func([]any) { panic("kaboom") }

	if err := d.Draw(); err == nil {
		t.Fatal("Draw should fail on panic")
	}
	if err := d.term.Err(); err == nil || !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("terminal error = %v", err)
	}
}

func TestReportFatalFirstWins(t *testing.T) {
	h := newFakeHost()
	d, _, _ := newDriver(t, h, "def draw():\n    pass\n")
	d.ReportFatal(errors.New("loader failed"))
	d.ReportFatal(errors.New("second"))
	if err := d.term.Err(); err == nil || err.Error() != "loader failed" {
		t.Errorf("terminal error = %v", err)
	}
	if !h.ExitRequested() {
		t.Error("ReportFatal should request host exit")
	}
}

func TestFocusAndFrameMoved(t *testing.T) {
	h := newFakeHost()
	var moved []int
	d, rec, _ := newDriverAt(t, h, "def draw():\n    record(focused)\n", "/s/f.pyde",
		WithPositionListener(func(x, y int) { moved = append(moved, x, y) }))

	if err := h.DeliverFocus(false); err != nil {
		t.Fatal(err)
	}
	d.FrameMoved(10, 20)
	if err := d.Draw(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"false"}) {
		t.Errorf("calls = %v", got)
	}
	if !reflect.DeepEqual(moved, []int{10, 20}) {
		t.Errorf("moved = %v", moved)
	}
}

func TestCallOrderEnforced(t *testing.T) {
	h := newFakeHost()
	d, _, _ := newDriver(t, h, "def draw():\n    pass\n")
	if err := d.FindSketchMethods(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second FindSketchMethods error = %v", err)
	}

	session := scripting.NewStarlarkSession()
	fresh, err := New(session, sketch.NewProgram("def draw():\n    pass\n", "/s/a.pyde"), newFakeHost())
	if err != nil {
		t.Fatal(err)
	}
	if err := fresh.RunAndBlock(context.Background(), nil); !errors.Is(err, ErrInvalidState) {
		t.Errorf("RunAndBlock before harvest error = %v", err)
	}
}

// End to end through the headless host.

func runHeadless(t *testing.T, ctx context.Context, p *sketch.Program, opts headless.Options, dopts ...Option) (*Driver, *recorder, *headless.Host, error) {
	t.Helper()
	return runHeadlessArgs(t, ctx, p, opts, nil, dopts...)
}

func runHeadlessArgs(t *testing.T, ctx context.Context, p *sketch.Program, opts headless.Options, args []string, dopts ...Option) (*Driver, *recorder, *headless.Host, error) {
	t.Helper()
	session, err := scripting.NewSession(p.Path())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	if err := session.Register("record", rec.builtin); err != nil {
		t.Fatal(err)
	}
	h := headless.New(opts)
	dopts = append([]Option{WithPrinter(func(string) {})}, dopts...)
	d, err := New(session, p, h, dopts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := d.FindSketchMethods(); err != nil {
		t.Fatalf("FindSketchMethods failed: %v", err)
	}

	result := make(chan error, 1)
	go func() { result <- d.RunAndBlock(ctx, args) }()
	select {
	case err = <-result:
	case <-time.After(10 * time.Second):
		t.Fatal("RunAndBlock did not return")
	}
	select {
	case <-h.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("host loop did not finish")
	}
	return d, rec, h, err
}

func TestEndToEndDrawFailsOnThirdCall(t *testing.T) {
	src := `def setup():
    size(40, 20)

def draw():
    record(frameCount)
    if frameCount == 3:
        fail("third frame")
`
	p := testutil.WriteSketch(t, "sketch.pyde", src)
	d, rec, h, err := runHeadless(t, context.Background(), p, headless.Options{Frames: 10})

	var se *diagnostic.SketchError
	if !errors.As(err, &se) {
		t.Fatalf("RunAndBlock() = %v, want *SketchError", err)
	}
	if se.File != "sketch.pyde" || se.Line != 6 {
		t.Errorf("diagnostic at %s line %d, want sketch.pyde line 6", se.File, se.Line)
	}
	if !strings.Contains(se.Message, "third frame") {
		t.Errorf("Message = %q", se.Message)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("draw calls = %v, want three", got)
	}
	if d.State() != StateTerminated {
		t.Errorf("State() = %v, want TERMINATED", d.State())
	}
	if h.BasicSurface().Visible() {
		t.Error("surface should be hidden after the run")
	}
}

func TestEndToEndCleanRun(t *testing.T) {
	src := `function setup() { size(20, 10); }
function draw() {
  background(0);
  rect(2, 2, 4, 4);
  record(frameCount);
}
`
	p := testutil.WriteSketch(t, "sketch.js", src)
	d, rec, h, err := runHeadless(t, context.Background(), p, headless.Options{Frames: 4})
	if err != nil {
		t.Fatalf("RunAndBlock() = %v", err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
		t.Errorf("draw calls = %v", got)
	}
	if w, ht := h.Canvas().Size(); w != 20 || ht != 10 {
		t.Errorf("canvas = %dx%d, want 20x10", w, ht)
	}
	if d.State() != StateTerminated {
		t.Errorf("State() = %v", d.State())
	}
}

func TestEndToEndEvents(t *testing.T) {
	src := `def draw():
    pass

def mouseClicked(e):
    record('clicked', e.x, e.y, mouseX)

def keyPressed():
    record('key', key, keyCode)
`
	p := testutil.WriteSketch(t, "events.pyde", src)
	events := map[int][]any{
		2: {host.MouseEvent{Action: host.MouseClicked, X: 5, Y: 6, Button: host.ButtonLeft, Count: 1}},
		3: {host.KeyEvent{Action: host.KeyPressed, Key: 'w', KeyCode: 87}},
	}
	_, rec, _, err := runHeadless(t, context.Background(), p, headless.Options{Frames: 4, Events: events})
	if err != nil {
		t.Fatalf("RunAndBlock() = %v", err)
	}
	want := []string{"clicked 5 6 5", "key w 87"}
	if got := rec.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestEndToEndExitCallsStop(t *testing.T) {
	src := `def draw():
    if frameCount == 2:
        exit()

def stop():
    record('stop', frameCount)
`
	p := testutil.WriteSketch(t, "exit.pyde", src)
	_, rec, _, err := runHeadless(t, context.Background(), p, headless.Options{})
	if err != nil {
		t.Fatalf("RunAndBlock() = %v", err)
	}
	if got := rec.Calls(); !reflect.DeepEqual(got, []string{"stop 2"}) {
		t.Errorf("calls = %v", got)
	}
}

func TestEndToEndInterrupt(t *testing.T) {
	src := `def draw():
    record('spin')
    while True:
        pass
`
	p := testutil.WriteSketch(t, "spin.pyde", src)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := scripting.NewSession(p.Path())
	if err != nil {
		t.Fatal(err)
	}
	var once sync.Once
	rec := &recorder{onCall: func([]any) { once.Do(cancel) }}
	if err := session.Register("record", rec.builtin); err != nil {
		t.Fatal(err)
	}
	h := headless.New(headless.Options{})
	d, err := New(session, p, h, WithPrinter(func(string) {}), WithInterruptGrace(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.FindSketchMethods(); err != nil {
		t.Fatal(err)
	}

	result := make(chan error, 1)
	go func() { result <- d.RunAndBlock(ctx, nil) }()
	select {
	case err := <-result:
		if err != nil {
			t.Errorf("interrupted run = %v, want a clean stop", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("interrupt did not stop the sketch")
	}
}

func TestEndToEndSurfaceClose(t *testing.T) {
	p := testutil.WriteSketch(t, "frames.pyde", "def draw():\n    record(frameCount)\n")
	d, rec, h, err := runHeadless(t, context.Background(), p, headless.Options{Frames: 2})
	if err != nil {
		t.Fatalf("RunAndBlock() = %v", err)
	}
	if !h.BasicSurface().Closed() {
		t.Error("surface should be closed after the last frame")
	}
	if len(rec.Calls()) != 2 {
		t.Errorf("calls = %v", rec.Calls())
	}
	if d.State() != StateTerminated {
		t.Errorf("State() = %v", d.State())
	}
}

func TestEndToEndFullscreenOff(t *testing.T) {
	tests := []struct {
		platform string
		want     bool
	}{
		{host.PlatformMacOS, false},
		{host.PlatformLinux, true},
	}
	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			p := testutil.WriteSketch(t, "full.pyde", "def draw():\n    pass\n")
			opts := headless.Options{Frames: 2, Platform: tt.platform}
			_, _, h, err := runHeadlessArgs(t, context.Background(), p, opts, []string{host.FullScreenArg})
			if err != nil {
				t.Fatalf("RunAndBlock() = %v", err)
			}
			if got := h.BasicSurface().Fullscreen(); got != tt.want {
				t.Errorf("Fullscreen() = %v, want %v", got, tt.want)
			}
			if h.BasicSurface().Visible() {
				t.Error("surface should be hidden after the run")
			}
		})
	}
}
