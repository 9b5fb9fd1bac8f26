// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 processing.py Authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Messages substituted for cryptic parser output.
const (
	IndentMessage     = "This line probably needs to be indented."
	CommentMessage    = "Did you mean to make a comment? Comments in Python use the # character, not the double-slash."
	AndMessage        = `Did you maybe use "&&" instead of "and"?`
	OrMessage         = `Did you maybe use "||" instead of "or"?`
	UnclosedMessage   = "Maybe there's an unclosed paren or quote mark somewhere before this line?"
	ImportStarMessage = "import * does not work in this environment."
)

const noViableAlternative = "no viable alternative"

// nakedColor finds a Java-style color literal such as fill(#FFAA55), which
// a Python parser reads as an open paren followed by a comment.
var nakedColor = regexp.MustCompile(`[(,]\s*#([0-9a-fA-F]{6})\b`)

var importStar = regexp.MustCompile(`import\s+\*`)

// rewrite is one entry of the closed rewrite table.
type rewrite struct {
	match   func(msg string) bool
	message string
}

// rewrites apply to every syntax message. Both the ANTLR wording and the
// Starlark parser's wording of the same mistake are listed.
var rewrites = []rewrite{
	{
		match: func(msg string) bool {
			return strings.Contains(msg, "expecting INDENT") || strings.Contains(msg, "want indent")
		},
		message: IndentMessage,
	},
	{
		match: func(msg string) bool {
			return strings.Contains(msg, "mismatched input '//'") || strings.Contains(msg, "got '//'")
		},
		message: CommentMessage,
	},
}

// operatorRewrites resolve a "no viable alternative" message caused by a
// C-style logical operator.
var operatorRewrites = []rewrite{
	{
		match: func(msg string) bool {
			return msg == noViableAlternative+" at input '&'" || strings.HasPrefix(msg, "got '&', want primary expression")
		},
		message: AndMessage,
	},
	{
		match: func(msg string) bool {
			return msg == noViableAlternative+" at input '|'" || strings.HasPrefix(msg, "got '|', want primary expression")
		},
		message: OrMessage,
	},
}

// friendlyMessage returns the rewritten message, or msg unchanged.
func friendlyMessage(msg string) string {
	for _, r := range rewrites {
		if r.match(msg) {
			return r.message
		}
	}
	return msg
}

// operatorMessage returns the logical-operator hint for msg, if any.
func operatorMessage(msg string) (string, bool) {
	for _, r := range operatorRewrites {
		if r.match(msg) {
			return r.message, true
		}
	}
	return "", false
}

// unbalanced reports whether msg is the parser's way of saying it lost
// track of brackets.
func unbalanced(msg string) bool {
	return strings.HasPrefix(msg, noViableAlternative) || strings.Contains(msg, "got end of file")
}

// colorHint scans source for a naked color literal. It returns the hint
// with the 0-based line and 1-based column of the hex digits.
func colorHint(source []byte) (string, int, int, bool) {
	sc := bufio.NewScanner(bytes.NewReader(source))
	for line := 0; sc.Scan(); line++ {
		m := nakedColor.FindStringSubmatchIndex(sc.Text())
		if m == nil {
			continue
		}
		color := sc.Text()[m[2]:m[3]]
		msg := fmt.Sprintf("Did you try to name a color here? Colors in Python mode are either strings, like '#%s', or large hex integers, like 0xFF%s.",
			color, strings.ToUpper(color))
		return msg, line, m[2] + 1, true
	}
	return "", 0, 0, false
}
