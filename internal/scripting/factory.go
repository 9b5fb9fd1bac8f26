// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package scripting

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Constructor creates a fresh session.
type Constructor func() Session

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// RegisterBackend associates a file extension (".js", ".pyde") with a
// session constructor. Later registrations replace earlier ones.
func RegisterBackend(ext string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(ext)] = ctor
}

// NewSession creates the session that runs sketches stored at path.
func NewSession(path string) (Session, error) {
	ext := strings.ToLower(filepath.Ext(path))
	registryMu.RLock()
	ctor, ok := registry[ext]
	registryMu.RUnlock()
	if !ok || ctor == nil {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, ext, strings.Join(Extensions(), ", "))
	}
	return ctor(), nil
}

// Extensions returns the registered sketch file extensions, sorted.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func init() {
	RegisterBackend(".js", func() Session { return NewGojaSession() })
	for _, ext := range []string{".pyde", ".py", ".star"} {
		RegisterBackend(ext, func() Session { return NewStarlarkSession() })
	}
}
