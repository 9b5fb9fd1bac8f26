// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/util"
)

// debounceDelay collapses the burst of events an editor save produces.
const debounceDelay = 300 * time.Millisecond

// runFunc runs one sketch to completion.
type runFunc func(ctx context.Context, path string, config util.Config) error

// watchSketch runs the sketch and re-runs it whenever a sketch file or
// sketch.yaml in its directory changes, until ctx is cancelled. reload
// provides the configuration for every rerun.
func watchSketch(ctx context.Context, path string, config util.Config, reload func() (util.Config, error), run runFunc) error {
	changes, err := startSketchWatcher(ctx, filepath.Dir(path))
	if err != nil {
		return err
	}

	// waitForChange blocks until the next change and reloads the config.
	// It reports false when ctx ends first.
	waitForChange := func() bool {
		for {
			select {
			case <-ctx.Done():
				return false
			case <-changes:
			}
			next, err := reload()
			if err == nil {
				config = next
				return true
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Waiting for changes...")
		}
	}

	for {
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() { done <- run(runCtx, path, config) }()

		select {
		case <-ctx.Done():
			cancel()
			<-done
			return nil

		case err := <-done:
			cancel()
			if err != nil {
				reportError(os.Stderr, path, err)
			}
			fmt.Fprintln(os.Stderr, "Waiting for changes...")
			if !waitForChange() {
				return nil
			}

		case <-changes:
			util.Debug("Sketch changed, restarting", "sketch", path)
			cancel()
			if err := <-done; err != nil {
				reportError(os.Stderr, path, err)
			}
			next, err := reload()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				fmt.Fprintln(os.Stderr, "Waiting for changes...")
				if !waitForChange() {
					return nil
				}
				continue
			}
			config = next
		}
	}
}

// startSketchWatcher reports debounced changes to sketch sources in dir.
func startSketchWatcher(ctx context.Context, dir string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch sketch directory: %w", err)
	}

	changes := make(chan struct{}, 1)
	notify := func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isSketchFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					if debounce != nil {
						debounce.Stop()
					}
					debounce = time.AfterFunc(debounceDelay, notify)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				util.Logger.Warn("File watcher error", "error", err)
			}
		}
	}()

	return changes, nil
}

// isSketchFile reports whether a change to name should restart the sketch.
func isSketchFile(name string) bool {
	base := filepath.Base(name)
	if base == util.ConfigFileName {
		return true
	}
	return slices.Contains(scripting.Extensions(), strings.ToLower(filepath.Ext(base)))
}
