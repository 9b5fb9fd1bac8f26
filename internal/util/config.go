// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a sketch.yaml value out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigFileName is the per-sketch configuration file, read from the
// sketch's directory.
const ConfigFileName = "sketch.yaml"

// Host names accepted by Config.Host.
const (
	HostTerm     = "term"
	HostHeadless = "headless"
)

// Config holds per-sketch run settings
type Config struct {
	Host       string  `yaml:"host" description:"Host to run the sketch in (term, headless)" default:"term"`
	FrameRate  float64 `yaml:"frame_rate" description:"Target frames per second" default:"30"`
	Frames     int     `yaml:"frames" description:"Frames to draw before closing (0 = until exit; headless only)" default:"0"`
	Width      int     `yaml:"width" description:"Surface width in cells (0 = host default)" default:"0"`
	Height     int     `yaml:"height" description:"Surface height in cells (0 = host default)" default:"0"`
	FullScreen bool    `yaml:"full_screen" description:"Pass fullScreen to the host" default:"false"`
	Watch      bool    `yaml:"watch" description:"Re-run the sketch when files in its directory change" default:"false"`
	Debug      bool    `yaml:"debug" description:"Enable debug logging" default:"false"`
	Dump       bool    `yaml:"dump" description:"Print the final canvas after a headless run" default:"false"`
}

// DefaultConfig returns the settings used when no sketch.yaml exists.
func DefaultConfig() Config {
	return Config{
		Host:      HostTerm,
		FrameRate: 30,
	}
}

// GetConfigPath returns the sketch.yaml path for a sketch file.
func GetConfigPath(sketchPath string) string {
	return filepath.Join(filepath.Dir(sketchPath), ConfigFileName)
}

// LoadConfig loads the sketch.yaml next to the sketch.
func LoadConfig(sketchPath string) (Config, error) {
	return LoadConfigFromPath(GetConfigPath(sketchPath))
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay config file values
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks every value for range.
func (c *Config) Validate() error {
	switch c.Host {
	case HostTerm, HostHeadless:
	default:
		return fmt.Errorf("%w: host '%s' (must be %s or %s)", ErrInvalidConfig, c.Host, HostTerm, HostHeadless)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("%w: frame_rate must be positive, got %v", ErrInvalidConfig, c.FrameRate)
	}
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalidConfig, c.Frames)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: size must not be negative, got %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	return nil
}
