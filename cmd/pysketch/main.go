// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// pysketch runs a sketch written in Python (Starlark dialect) or JavaScript
// in the terminal or headless.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Stefterv/processing.py/internal/scripting"
	"github.com/Stefterv/processing.py/internal/util"
	"github.com/Stefterv/processing.py/internal/version"
)

func main() {
	// Define all flags upfront before parsing
	printVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Path to sketch.yaml (default: next to the sketch)")
	hostName := flag.String("host", "", "Host to run in: term or headless (default from config)")
	frames := flag.Int("frames", 0, "Frames to draw before closing (headless)")
	fps := flag.Float64("fps", 0, "Target frames per second")
	watch := flag.Bool("watch", false, "Re-run the sketch when files in its directory change")
	dump := flag.Bool("dump", false, "Print the final canvas after a headless run")
	fullScreen := flag.Bool("fullscreen", false, "Run full screen")
	debug := flag.Bool("debug", false, "Enable debug logging (also "+util.DebugEnv+")")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pysketch [flags] <sketch%s>\n\n", "{"+strings.Join(scripting.Extensions(), ",")+"}")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Handle early-exit flags
	if *printVersion {
		fmt.Printf("pysketch %s\n", version.String())
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	sketchPath := flag.Arg(0)

	// Load config: -config > sketch.yaml next to the sketch > defaults.
	// Flags given on the command line override the config file.
	loader := configLoader{
		sketchPath: sketchPath,
		configPath: *configPath,
		override: func(config *util.Config) {
			flag.Visit(func(f *flag.Flag) {
				switch f.Name {
				case "host":
					config.Host = *hostName
				case "frames":
					config.Frames = *frames
				case "fps":
					config.FrameRate = *fps
				case "watch":
					config.Watch = *watch
				case "dump":
					config.Dump = *dump
				case "fullscreen":
					config.FullScreen = *fullScreen
				case "debug":
					config.Debug = *debug
				}
			})
		},
	}
	config, err := loader.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger (supports PYSKETCH_DEBUG environment variable)
	util.InitLogger(config.Debug)

	// SIGINT/SIGTERM ask the running sketch to exit
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Watch {
		err = watchSketch(ctx, sketchPath, config, loader.load, runSketch)
	} else {
		err = runSketch(ctx, sketchPath, config)
	}
	if err != nil {
		reportError(os.Stderr, sketchPath, err)
		os.Exit(1)
	}
}
