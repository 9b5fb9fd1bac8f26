// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"fmt"

	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/sketch"
)

// BindingKind tells how a callback may be called.
type BindingKind int

const (
	// Absent means the sketch does not define the name.
	Absent BindingKind = iota
	// ZeroArg functions are called without the event payload.
	ZeroArg
	// OneArg functions receive the event payload.
	OneArg
	// OtherArity functions accept neither shape; the host default runs.
	OtherArity
)

func (k BindingKind) String() string {
	switch k {
	case Absent:
		return "absent"
	case ZeroArg:
		return "zero-arg"
	case OneArg:
		return "one-arg"
	case OtherArity:
		return "other-arity"
	}
	return fmt.Sprintf("BindingKind(%d)", int(k))
}

// Binding is one harvested callback.
type Binding struct {
	Name string
	Kind BindingKind
	fn   scripting.Callable
}

// Bind looks name up in the session namespace and classifies it by the
// number of parameters it declares.
func Bind(session scripting.Session, name string) Binding {
	fn, ok := session.Lookup(name)
	if !ok {
		return Binding{Name: name}
	}
	b := Binding{Name: name, fn: fn}
	switch fn.Arity() {
	case 0:
		b.Kind = ZeroArg
	case 1:
		b.Kind = OneArg
	default:
		b.Kind = OtherArity
	}
	return b
}

// Defined reports whether the sketch defines the name at all.
func (b Binding) Defined() bool { return b.Kind != Absent }

// Call invokes the function. Callers pick the argument count from Kind.
func (b Binding) Call(args ...any) error {
	if b.fn == nil {
		return fmt.Errorf("%w: %s", scripting.ErrNotCallable, b.Name)
	}
	return b.fn.Call(args...)
}

// Registry holds one binding per callback name, populated once.
type Registry struct {
	bindings  map[string]Binding
	harvested bool
}

// NewRegistry returns a registry in which every name is Absent.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Binding, len(sketch.CallbackNames))}
}

// Harvest binds every callback name from the session. It runs once.
func (r *Registry) Harvest(session scripting.Session) error {
	if r.harvested {
		return fmt.Errorf("%w: callbacks already harvested", ErrInvalidState)
	}
	for _, name := range sketch.CallbackNames {
		r.bindings[name] = Bind(session, name)
	}
	r.harvested = true
	return nil
}

// Get returns the binding for name; unknown or unharvested names are
// Absent.
func (r *Registry) Get(name string) Binding {
	if b, ok := r.bindings[name]; ok {
		return b
	}
	return Binding{Name: name}
}

// Defined lists the names the sketch defines, in harvest order.
func (r *Registry) Defined() []string {
	var names []string
	for _, name := range sketch.CallbackNames {
		if r.Get(name).Defined() {
			names = append(names, name)
		}
	}
	return names
}
