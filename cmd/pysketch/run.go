// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Stefterv/processing.py/internal/bridge"
	"github.com/Stefterv/processing.py/internal/diagnostic"
	"github.com/Stefterv/processing.py/internal/host"
	"github.com/Stefterv/processing.py/internal/host/headless"
	"github.com/Stefterv/processing.py/internal/host/term"
	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/sketch"
	"github.com/Stefterv/processing.py/internal/util"
)

// sketchHost is a host plus what the launcher does around it.
type sketchHost struct {
	host.Host
	print func(line string)

	// finish runs after the sketch ended, before the launcher returns.
	finish func()
}

// runSketch loads and runs one sketch until it ends.
func runSketch(ctx context.Context, path string, config util.Config) error {
	program, err := sketch.Load(path)
	if err != nil {
		return err
	}
	session, err := scripting.NewSession(program.Path())
	if err != nil {
		return err
	}
	h, err := newHost(config, program, os.Stdout)
	if err != nil {
		return err
	}

	d, err := bridge.New(session, program, h.Host,
		bridge.WithPrinter(h.print),
		bridge.WithLogger(util.Logger),
	)
	if err != nil {
		return err
	}
	d.OnDispose(func() {
		util.Debug("Sketch failed, disposing", "sketch", program.Name(), "frame", h.State().FrameCount)
	})
	if err := d.FindSketchMethods(); err != nil {
		return err
	}
	util.Debug("Running sketch", "sketch", program.Name(), "mode", d.Mode(), "host", config.Host)

	var args []string
	if config.FullScreen {
		args = append(args, host.FullScreenArg)
	}
	err = d.RunAndBlock(ctx, args)
	if h.finish != nil {
		h.finish()
	}
	return err
}

func newHost(config util.Config, program *sketch.Program, out io.Writer) (*sketchHost, error) {
	printLine := func(line string) { fmt.Fprintln(out, line) }

	switch config.Host {
	case util.HostHeadless:
		h := headless.New(headless.Options{
			Width:     config.Width,
			Height:    config.Height,
			Frames:    config.Frames,
			FrameRate: config.FrameRate,
		})
		sh := &sketchHost{Host: h, print: printLine}
		sh.finish = func() {
			<-h.Done()
			if config.Dump {
				fmt.Fprint(out, h.Canvas().Plain())
			}
		}
		return sh, nil

	case util.HostTerm:
		h, err := term.New(term.Options{
			Title:     program.Name(),
			Width:     config.Width,
			Height:    config.Height,
			FrameRate: config.FrameRate,
		})
		if err != nil {
			return nil, fmt.Errorf("%w (try -host %s)", err, util.HostHeadless)
		}
		return &sketchHost{Host: h, print: h.Print}, nil
	}
	return nil, fmt.Errorf("%w: unknown host %q", util.ErrInvalidConfig, config.Host)
}

// reportError prints err to w. Sketch diagnostics get a source excerpt
// when they point into the sketch file.
func reportError(w io.Writer, sketchPath string, err error) {
	var se *diagnostic.SketchError
	if !errors.As(err, &se) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	src := ""
	if se.File == filepath.Base(sketchPath) {
		if data, readErr := os.ReadFile(sketchPath); readErr == nil {
			src = string(data)
		}
	}
	fmt.Fprint(w, "Error: ", se.Snippet(src))
}
