// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package diagnostic

import (
	"fmt"
	"strings"
)

// Snippet renders the diagnostic followed by an excerpt of src, the text of
// e.File, with one line of context on each side and a caret under the
// column:
//
//	sketch.pyde:3:12: Did you maybe use "&&" instead of "and"?
//
//	   2 | def draw():
//	   3 |     if a && b:
//	     |            ^
//	   4 |         rect(0, 0, 10, 10)
//
// Without a known line only the first line is produced.
func (e *SketchError) Snippet(src string) string {
	if !e.HasLine() || src == "" {
		return e.Error() + "\n"
	}
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	line := e.Line + 1
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", e.Error())
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	if e.HasColumn() {
		fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", max(e.Column-1, 0)))
	}
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
