// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package bridge

import (
	"fmt"

	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/scripting"
)

// CallbackNotFoundError reports a file selection naming a function the
// sketch does not define.
type CallbackNotFoundError struct {
	Name string
}

func (e *CallbackNotFoundError) Error() string {
	return fmt.Sprintf("I can't find a callback function named %q", e.Name)
}

// Is lets errors.Is(err, ErrCallbackNotFound) match.
func (e *CallbackNotFoundError) Is(target error) bool {
	return target == ErrCallbackNotFound
}

// registerBuiltins exposes the host's builtins and constants, plus the
// functions the driver itself owns.
func (d *Driver) registerBuiltins() error {
	for name, fn := range d.host.Builtins() {
		switch name {
		case "size":
			fn = d.afterSize(fn)
		case "printMatrix":
			fn = d.redirected(fn)
		}
		if err := d.session.Register(name, fn); err != nil {
			return err
		}
	}
	for name, v := range d.host.Constants() {
		if err := d.session.Set(name, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	own := map[string]scripting.Builtin{
		"exit": func([]any) (any, error) {
			d.Exit()
			return nil, nil
		},
		"selectInput":  d.selectBuiltin("selectInput", d.host.SelectInput),
		"selectOutput": d.selectBuiltin("selectOutput", d.host.SelectOutput),
		"selectFolder": d.selectBuiltin("selectFolder", d.host.SelectFolder),
	}
	for name, fn := range own {
		if err := d.session.Register(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// afterSize re-mirrors width and height once size() changed them.
func (d *Driver) afterSize(size scripting.Builtin) scripting.Builtin {
	return func(args []any) (any, error) {
		result, err := size(args)
		if err != nil {
			return nil, err
		}
		return result, d.mirror.WriteDimensions()
	}
}

// redirected runs a builtin that prints directly with its output sent to
// the sketch's output.
func (d *Driver) redirected(fn scripting.Builtin) scripting.Builtin {
	return func(args []any) (result any, err error) {
		err = d.withStdout(func() error {
			var callErr error
			result, callErr = fn(args)
			return callErr
		})
		return result, err
	}
}

type selector func(prompt string, done func(path string, ok bool))

// selectBuiltin implements selectInput(prompt, callbackName) and friends.
// The callback is resolved immediately and later called on the host loop
// with the chosen path, or None when the selection was cancelled.
func (d *Driver) selectBuiltin(name string, open selector) scripting.Builtin {
	return func(args []any) (any, error) {
		if err := host.CheckArgs(name, args, 2, 3); err != nil {
			return nil, err
		}
		prompt, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s() prompt must be a string", name)
		}
		callbackName, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("%s() callback must be a function name", name)
		}
		callback, found := d.session.Lookup(callbackName)
		if !found {
			return nil, &CallbackNotFoundError{Name: callbackName}
		}

		d.logger.Debug("File selection", "kind", name, "prompt", prompt, "callback", callbackName)
		open(prompt, func(path string, ok bool) {
			var selection any
			if ok {
				selection = path
			}
			_ = d.dispatch(refreshNone, func() error { return callback.Call(selection) })
		})
		return nil, nil
	}
}
