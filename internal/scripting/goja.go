// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

// GojaSession implements Session using the Goja JavaScript interpreter.
type GojaSession struct {
	vm     *goja.Runtime
	output func(string)

	// Names the sketch declares at top level. Host writes never replace
	// them, mirroring how user globals shadow builtins.
	shadowed map[string]bool
}

// NewGojaSession creates a new Goja-based session.
func NewGojaSession() *GojaSession {
	s := &GojaSession{
		output:   func(string) {}, // Default: discard output
		shadowed: make(map[string]bool),
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	s.vm = vm

	printFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		s.output(strings.Join(parts, " "))
		return goja.Undefined()
	}
	console := vm.NewObject()
	_ = console.Set("log", printFn)
	for name, v := range map[string]any{"print": printFn, "println": printFn, "console": console} {
		if err := vm.Set(name, v); err != nil {
			// Registration errors are programming bugs, not runtime errors
			panic("failed to register " + name + ": " + err.Error())
		}
	}
	return s
}

// Name implements Session.
func (s *GojaSession) Name() string { return "goja" }

// DetectMode implements Session.
func (s *GojaSession) DetectMode(source, originPath string) (Detection, error) {
	prg, err := s.parse(source, originPath)
	if err != nil {
		return Detection{}, err
	}
	s.collectShadowed(prg)

	var det Detection
	for _, stmt := range prg.Body {
		switch st := stmt.(type) {
		case *ast.FunctionDeclaration:
			if st.Function.Name != nil {
				det.noteFunction(st.Function.Name.Name.String())
			}
		case *ast.VariableStatement, *ast.LexicalDeclaration, *ast.ClassDeclaration, *ast.EmptyStatement:
			// declarations
		case *ast.ExpressionStatement:
			if _, directive := st.Expression.(*ast.StringLiteral); directive {
				continue
			}
			det.noteExecutable(gojaFrame(prg, stmt.Idx0(), originPath), source)
		default:
			det.noteExecutable(gojaFrame(prg, stmt.Idx0(), originPath), source)
		}
	}
	det.finish()

	if err := s.vm.Set(ModeSlot, det.Mode.String()); err != nil {
		return det, fmt.Errorf("failed to set %s: %w", ModeSlot, err)
	}
	return det, nil
}

// Exec implements Session.
func (s *GojaSession) Exec(source, originPath string) error {
	prg, err := s.parse(source, originPath)
	if err != nil {
		return err
	}
	s.collectShadowed(prg)

	code, err := goja.CompileAST(prg, false)
	if err != nil {
		return s.wrapError(err)
	}
	if _, err := s.vm.RunProgram(code); err != nil {
		return s.wrapError(err)
	}
	return nil
}

// Get implements Session.
func (s *GojaSession) Get(name string) (any, bool) {
	v := s.vm.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return nil, false
	}
	return v.Export(), true
}

// Set implements Session.
func (s *GojaSession) Set(name string, value any) error {
	if s.shadowed[name] {
		return nil
	}
	return s.vm.Set(name, s.toValue(value))
}

// Lookup implements Session.
func (s *GojaSession) Lookup(name string) (Callable, bool) {
	v := s.vm.Get(name)
	if v == nil {
		return nil, false
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, false
	}
	arity := int(v.ToObject(s.vm).Get("length").ToInteger())
	return &gojaCallable{session: s, fn: fn, arity: arity}, true
}

// Register implements Session.
func (s *GojaSession) Register(name string, fn Builtin) error {
	if s.shadowed[name] {
		return nil
	}
	if err := s.vm.Set(name, s.wrapBuiltin(fn)); err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}
	return nil
}

// SetOutput implements Session.
func (s *GojaSession) SetOutput(fn func(string)) {
	if fn == nil {
		s.output = func(string) {}
	} else {
		s.output = fn
	}
}

// Interrupt stops the currently running script.
// Safe to call from another goroutine (e.g., for shutdown enforcement).
func (s *GojaSession) Interrupt(reason string) {
	s.vm.Interrupt(reason)
}

func (s *GojaSession) parse(source, originPath string) (*ast.Program, error) {
	prg, err := parser.ParseFile(nil, originPath, source, 0)
	if err == nil {
		return prg, nil
	}
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		name := first.Position.Filename
		if name == "" {
			name = originPath
		}
		return nil, &SyntaxError{
			Msg:   first.Message,
			File:  name,
			Line:  first.Position.Line,
			Col:   first.Position.Column,
			Cause: err,
		}
	}
	return nil, &SyntaxError{Msg: err.Error(), File: originPath, Cause: err}
}

func (s *GojaSession) collectShadowed(prg *ast.Program) {
	addTarget := func(target ast.BindingTarget) {
		if id, ok := target.(*ast.Identifier); ok {
			s.shadowed[id.Name.String()] = true
		}
	}
	for _, stmt := range prg.Body {
		switch st := stmt.(type) {
		case *ast.FunctionDeclaration:
			if st.Function.Name != nil {
				s.shadowed[st.Function.Name.Name.String()] = true
			}
		case *ast.ClassDeclaration:
			if st.Class.Name != nil {
				s.shadowed[st.Class.Name.Name.String()] = true
			}
		case *ast.VariableStatement:
			for _, b := range st.List {
				addTarget(b.Target)
			}
		case *ast.LexicalDeclaration:
			for _, b := range st.List {
				addTarget(b.Target)
			}
		}
	}
}

// wrapError converts Goja failures into *SyntaxError or *RuntimeError.
func (s *GojaSession) wrapError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return &RuntimeError{
			Type:   InterruptedType,
			Msg:    fmt.Sprint(interrupted.Value()),
			Trace:  interrupted.String(),
			Frames: gojaFrames(interrupted.Stack()),
			Cause:  err,
		}
	}

	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return compilerError(syntaxErr.CompilerError, err)
	}
	var refErr *goja.CompilerReferenceError
	if errors.As(err, &refErr) {
		return compilerError(refErr.CompilerError, err)
	}

	var ex *goja.Exception
	if errors.As(err, &ex) {
		re := &RuntimeError{
			Trace:  ex.String(),
			Frames: gojaFrames(ex.Stack()),
			Cause:  err,
		}
		re.Type, re.Msg = describeGojaValue(ex.Value())
		if re.Msg == "" {
			re.Msg = ex.Error()
		}
		return re
	}
	return err
}

func compilerError(ce goja.CompilerError, cause error) *SyntaxError {
	se := &SyntaxError{Msg: ce.Message, Cause: cause}
	if ce.File != nil {
		pos := ce.File.Position(ce.Offset)
		se.File = pos.Filename
		se.Line = pos.Line
		se.Col = pos.Column
	}
	return se
}

// describeGojaValue splits a thrown value into exception name and message.
func describeGojaValue(v goja.Value) (string, string) {
	if v == nil {
		return "", ""
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return "", v.String()
	}
	name, msg := obj.Get("name"), obj.Get("message")
	if name == nil || goja.IsUndefined(name) || msg == nil || goja.IsUndefined(msg) {
		return "", v.String()
	}
	return name.String(), msg.String()
}

func gojaFrames(stack []goja.StackFrame) []Frame {
	frames := make([]Frame, 0, len(stack))
	for i := range stack {
		f := &stack[i]
		pos := f.Position()
		name := f.SrcName()
		frames = append(frames, Frame{
			File:     name,
			Line:     pos.Line,
			Col:      pos.Column,
			Func:     f.FuncName(),
			Internal: isInternalSource(name),
		})
	}
	return frames
}

func gojaFrame(prg *ast.Program, idx file.Idx, originPath string) Frame {
	f := Frame{File: originPath}
	if prg.File == nil {
		return f
	}
	pos := prg.File.Position(int(idx) - prg.File.Base())
	f.Line = pos.Line
	f.Col = pos.Column
	return f
}

func (s *GojaSession) toValue(v any) any {
	switch x := v.(type) {
	case Attributed:
		attrs := x.Attrs()
		out := make(map[string]any, len(attrs))
		for k, val := range attrs {
			out[k] = s.toValue(val)
		}
		return out
	case Builtin:
		return s.wrapBuiltin(x)
	}
	return v
}

func (s *GojaSession) wrapBuiltin(fn Builtin) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		args := make([]any, len(call.Arguments))
		for i, arg := range call.Arguments {
			if arg != nil {
				args[i] = arg.Export()
			}
		}
		result, err := fn(args)
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		if result == nil {
			return goja.Undefined()
		}
		return s.vm.ToValue(s.toValue(result))
	}
}

type gojaCallable struct {
	session *GojaSession
	fn      goja.Callable
	arity   int
}

func (c *gojaCallable) Arity() int { return c.arity }

func (c *gojaCallable) Call(args ...any) error {
	vals := make([]goja.Value, len(args))
	for i, arg := range args {
		vals[i] = c.session.vm.ToValue(c.session.toValue(arg))
	}
	if _, err := c.fn(goja.Undefined(), vals...); err != nil {
		return c.session.wrapError(err)
	}
	return nil
}

// Compile-time interface check
var _ Session = (*GojaSession)(nil)
