// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package main

import (
	"fmt"

	"github.com/Stefterv/processing.py/internal/util"
)

// configLoader reads the sketch configuration and reapplies the flags
// given on the command line. Watch mode calls it before every run so
// edits to sketch.yaml take effect.
type configLoader struct {
	sketchPath string

	// configPath replaces sketch.yaml beside the sketch when set.
	configPath string

	// override applies explicit flags on top of the file.
	override func(*util.Config)
}

func (l configLoader) load() (util.Config, error) {
	var config util.Config
	var err error
	if l.configPath != "" {
		config, err = util.LoadConfigFromPath(l.configPath)
	} else {
		config, err = util.LoadConfig(l.sketchPath)
	}
	if err != nil {
		return util.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if l.override != nil {
		l.override(&config)
	}
	if err := config.Validate(); err != nil {
		return util.Config{}, err
	}
	return config, nil
}
