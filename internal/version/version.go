// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

// Package version provides build version information for the pysketch launcher.
// Values are injected at build time via -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set at build time via -ldflags.
// Example: go build -ldflags "-X github.com/Stefterv/processing.py/internal/version.Version=1.0.0"
var (
	// Version is the semantic version (e.g., "3.4.0" or "3.4.0-dev")
	Version = "dev"

	// GitCommit is the git commit hash (short form)
	GitCommit = "unknown"

	// BuildTime is the build timestamp in RFC3339 format
	BuildTime = "unknown"
)

// String returns a formatted version string suitable for -version output.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, %s/%s, engines: %s)",
		Version, GitCommit, BuildTime, runtime.GOOS, runtime.GOARCH, engines)
}

// engines lists the interpreter backends compiled into the launcher.
const engines = "goja, starlark"
