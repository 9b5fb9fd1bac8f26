// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

// Sketches are written for a Python-like language, so the dialect is
// relaxed: top-level if/for, while loops, recursion and global
// reassignment are all allowed.
var starlarkFileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// StarlarkSession implements Session using the Starlark interpreter, a
// Python dialect. Host-written names live in the predeclared dictionary,
// which the sketch's own globals shadow.
type StarlarkSession struct {
	thread      *starlark.Thread
	predeclared starlark.StringDict
	globals     starlark.StringDict
	output      func(string)

	// dir resolves load() of sibling sketch files.
	dir     string
	modules map[string]*loadedModule

	interrupted atomic.Bool
}

type loadedModule struct {
	globals starlark.StringDict
	err     error
}

// NewStarlarkSession creates a new Starlark-based session.
func NewStarlarkSession() *StarlarkSession {
	s := &StarlarkSession{
		predeclared: starlark.StringDict{},
		globals:     starlark.StringDict{},
		output:      func(string) {}, // Default: discard output
		modules:     make(map[string]*loadedModule),
	}
	s.thread = &starlark.Thread{
		Name:  "sketch",
		Print: func(_ *starlark.Thread, msg string) { s.output(msg) },
		Load:  s.load,
	}
	s.predeclared["println"] = starlark.NewBuiltin("println", s.println)
	s.predeclared["struct"] = starlark.NewBuiltin("struct", starlarkstruct.Make)
	return s
}

// Name implements Session.
func (s *StarlarkSession) Name() string { return "starlark" }

// DetectMode implements Session.
func (s *StarlarkSession) DetectMode(source, originPath string) (Detection, error) {
	f, err := starlarkFileOptions.Parse(originPath, source, 0)
	if err != nil {
		return Detection{}, starlarkCompileError(err)
	}

	var det Detection
	for _, stmt := range f.Stmts {
		switch st := stmt.(type) {
		case *syntax.DefStmt:
			det.noteFunction(st.Name.Name)
		case *syntax.AssignStmt, *syntax.LoadStmt:
			// declarations
		case *syntax.BranchStmt:
			if st.Token != syntax.PASS {
				det.noteExecutable(starlarkFrame(stmt, originPath), source)
			}
		case *syntax.ExprStmt:
			if lit, ok := st.X.(*syntax.Literal); ok && lit.Token == syntax.STRING {
				continue // docstring
			}
			det.noteExecutable(starlarkFrame(stmt, originPath), source)
		default:
			det.noteExecutable(starlarkFrame(stmt, originPath), source)
		}
	}
	det.finish()

	s.predeclared[ModeSlot] = starlark.String(det.Mode.String())
	return det, nil
}

// Exec implements Session.
func (s *StarlarkSession) Exec(source, originPath string) error {
	if s.dir == "" {
		s.dir = filepath.Dir(originPath)
	}
	f, err := starlarkFileOptions.Parse(originPath, source, 0)
	if err != nil {
		return starlarkCompileError(err)
	}
	if err := wildcardLoad(f, originPath); err != nil {
		return err
	}
	prog, err := starlark.FileProgram(f, s.isPredeclared)
	if err != nil {
		return starlarkCompileError(err)
	}

	globals, err := prog.Init(s.thread, s.predeclared)
	for name, v := range globals {
		s.globals[name] = v
	}
	if err != nil {
		return s.wrapError(err)
	}
	return nil
}

// Get implements Session.
func (s *StarlarkSession) Get(name string) (any, bool) {
	v, ok := s.lookupValue(name)
	if !ok {
		return nil, false
	}
	return fromStarlark(v), true
}

// Set implements Session.
func (s *StarlarkSession) Set(name string, value any) error {
	v, err := s.toStarlark(value)
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	s.predeclared[name] = v
	return nil
}

// Lookup implements Session.
func (s *StarlarkSession) Lookup(name string) (Callable, bool) {
	v, ok := s.lookupValue(name)
	if !ok {
		return nil, false
	}
	switch fn := v.(type) {
	case *starlark.Function:
		// Keyword-only parameters cannot be filled positionally.
		arity := fn.NumParams() - fn.NumKwonlyParams()
		if fn.HasVarargs() {
			arity--
		}
		if fn.HasKwargs() {
			arity--
		}
		return &starlarkCallable{session: s, fn: fn, arity: arity}, true
	case starlark.Callable:
		return &starlarkCallable{session: s, fn: fn, arity: -1}, true
	}
	return nil, false
}

// Register implements Session.
func (s *StarlarkSession) Register(name string, fn Builtin) error {
	s.predeclared[name] = starlark.NewBuiltin(name, s.wrapBuiltin(fn))
	return nil
}

// SetOutput implements Session.
func (s *StarlarkSession) SetOutput(fn func(string)) {
	if fn == nil {
		s.output = func(string) {}
	} else {
		s.output = fn
	}
}

// Interrupt cancels the running computation. Safe to call from another
// goroutine; the thread stays cancelled afterwards.
func (s *StarlarkSession) Interrupt(reason string) {
	s.interrupted.Store(true)
	s.thread.Cancel(reason)
}

func (s *StarlarkSession) isPredeclared(name string) bool {
	_, ok := s.predeclared[name]
	return ok
}

func (s *StarlarkSession) lookupValue(name string) (starlark.Value, bool) {
	if v, ok := s.globals[name]; ok && v != nil {
		return v, true
	}
	if v, ok := s.predeclared[name]; ok && v != nil {
		return v, true
	}
	if v, ok := starlark.Universe[name]; ok {
		return v, true
	}
	return nil, false
}

func (s *StarlarkSession) println(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("println: unexpected keyword arguments")
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		if str, ok := arg.(starlark.String); ok {
			parts[i] = string(str)
		} else {
			parts[i] = arg.String()
		}
	}
	s.output(strings.Join(parts, " "))
	return starlark.None, nil
}

// load executes a sibling sketch file once and caches its globals.
func (s *StarlarkSession) load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	path := module
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, module)
	}
	if m, ok := s.modules[path]; ok {
		if m == nil {
			return nil, fmt.Errorf("cycle in load graph")
		}
		return m.globals, m.err
	}
	s.modules[path] = nil

	globals, err := s.execModule(thread, path)
	s.modules[path] = &loadedModule{globals: globals, err: err}
	return globals, err
}

func (s *StarlarkSession) execModule(thread *starlark.Thread, path string) (starlark.StringDict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := starlarkFileOptions.Parse(path, data, 0)
	if err != nil {
		return nil, err
	}
	if err := wildcardLoad(f, path); err != nil {
		return nil, err
	}
	prog, err := starlark.FileProgram(f, s.isPredeclared)
	if err != nil {
		return nil, err
	}
	return prog.Init(thread, s.predeclared)
}

func (s *StarlarkSession) wrapError(err error) error {
	var evalErr *starlark.EvalError
	if !errors.As(err, &evalErr) {
		return starlarkCompileError(err)
	}
	re := &RuntimeError{
		Msg:    evalErr.Msg,
		Trace:  evalErr.Backtrace(),
		Frames: starlarkFrames(evalErr.CallStack),
		Cause:  err,
	}
	var wildcard *RuntimeError
	switch {
	case s.interrupted.Load():
		re.Type = InterruptedType
	case errors.As(evalErr.Unwrap(), &wildcard):
		return wildcard
	case strings.HasPrefix(evalErr.Msg, "cannot load"):
		re.Type = ImportErrorType
	}
	return re
}

// wildcardLoad rejects load("module", "*"), the Starlark spelling of a
// star import.
func wildcardLoad(f *syntax.File, originPath string) error {
	for _, stmt := range f.Stmts {
		load, ok := stmt.(*syntax.LoadStmt)
		if !ok {
			continue
		}
		for _, from := range load.From {
			if from.Name != "*" {
				continue
			}
			line, col := int(load.Load.Line), int(load.Load.Col)
			return &RuntimeError{
				Type:   ImportErrorType,
				Msg:    fmt.Sprintf("cannot import * from %s", load.ModuleName()),
				Trace:  fmt.Sprintf("File %q, line %d\n  import * from %s", originPath, line, load.ModuleName()),
				Frames: []Frame{{File: originPath, Line: line, Col: col, Func: "<toplevel>"}},
			}
		}
	}
	return nil
}

func starlarkCompileError(err error) error {
	var se syntax.Error
	if errors.As(err, &se) {
		return &SyntaxError{
			Msg:         se.Msg,
			File:        se.Pos.Filename(),
			Line:        int(se.Pos.Line),
			Col:         int(se.Pos.Col),
			Indentation: strings.Contains(se.Msg, "indent"),
			Cause:       err,
		}
	}
	var list resolve.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &SyntaxError{
			Msg:   first.Msg,
			File:  first.Pos.Filename(),
			Line:  int(first.Pos.Line),
			Col:   int(first.Pos.Col),
			Cause: err,
		}
	}
	return err
}

// starlarkFrames converts a call stack (innermost last) to frames ordered
// innermost first.
func starlarkFrames(stack starlark.CallStack) []Frame {
	frames := make([]Frame, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		cf := stack[i]
		name := cf.Pos.Filename()
		frames = append(frames, Frame{
			File:     name,
			Line:     int(cf.Pos.Line),
			Col:      int(cf.Pos.Col),
			Func:     cf.Name,
			Internal: isInternalSource(name),
		})
	}
	return frames
}

func starlarkFrame(stmt syntax.Stmt, originPath string) Frame {
	start, _ := stmt.Span()
	return Frame{File: originPath, Line: int(start.Line), Col: int(start.Col)}
}

func (s *StarlarkSession) wrapBuiltin(fn Builtin) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		goArgs := make([]any, len(args))
		for i, arg := range args {
			goArgs[i] = fromStarlark(arg)
		}
		result, err := fn(goArgs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return s.toStarlark(result)
	}
}

func (s *StarlarkSession) toStarlark(v any) (starlark.Value, error) {
	switch x := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return x, nil
	case Attributed:
		attrs := x.Attrs()
		fields := make(starlark.StringDict, len(attrs))
		for k, val := range attrs {
			sv, err := s.toStarlark(val)
			if err != nil {
				return nil, err
			}
			fields[k] = sv
		}
		return starlarkstruct.FromStringDict(starlarkstruct.Default, fields), nil
	case Builtin:
		return starlark.NewBuiltin("builtin", s.wrapBuiltin(x)), nil
	case bool:
		return starlark.Bool(x), nil
	case int:
		return starlark.MakeInt(x), nil
	case int32:
		return starlark.MakeInt(int(x)), nil
	case int64:
		return starlark.MakeInt64(x), nil
	case uint32:
		return starlark.MakeUint64(uint64(x)), nil
	case uint64:
		return starlark.MakeUint64(x), nil
	case float32:
		return starlark.Float(x), nil
	case float64:
		return starlark.Float(x), nil
	case string:
		return starlark.String(x), nil
	case []string:
		elems := make([]starlark.Value, len(x))
		for i, e := range x {
			elems[i] = starlark.String(e)
		}
		return starlark.NewList(elems), nil
	case []any:
		elems := make([]starlark.Value, len(x))
		for i, e := range x {
			sv, err := s.toStarlark(e)
			if err != nil {
				return nil, err
			}
			elems[i] = sv
		}
		return starlark.NewList(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dict := starlark.NewDict(len(x))
		for _, k := range keys {
			sv, err := s.toStarlark(x[k])
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case error:
		return starlark.String(x.Error()), nil
	}
	return nil, fmt.Errorf("cannot convert %T to a starlark value", v)
}

func fromStarlark(v starlark.Value) any {
	switch x := v.(type) {
	case nil, starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(x)
	case starlark.Int:
		if i, ok := x.Int64(); ok {
			return i
		}
		return float64(x.Float())
	case starlark.Float:
		return float64(x)
	case starlark.String:
		return string(x)
	case *starlark.List:
		out := make([]any, x.Len())
		for i := range out {
			out[i] = fromStarlark(x.Index(i))
		}
		return out
	case starlark.Tuple:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = fromStarlark(e)
		}
		return out
	case *starlark.Dict:
		out := make(map[string]any, x.Len())
		for _, item := range x.Items() {
			key := item[0].String()
			if str, ok := item[0].(starlark.String); ok {
				key = string(str)
			}
			out[key] = fromStarlark(item[1])
		}
		return out
	}
	return v
}

type starlarkCallable struct {
	session *StarlarkSession
	fn      starlark.Callable
	arity   int
}

func (c *starlarkCallable) Arity() int { return c.arity }

func (c *starlarkCallable) Call(args ...any) error {
	tuple := make(starlark.Tuple, len(args))
	for i, arg := range args {
		v, err := c.session.toStarlark(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", c.fn.Name(), err)
		}
		tuple[i] = v
	}
	if _, err := starlark.Call(c.session.thread, c.fn, tuple, nil); err != nil {
		return c.session.wrapError(err)
	}
	return nil
}

// Compile-time interface check
var _ Session = (*StarlarkSession)(nil)
