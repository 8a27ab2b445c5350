// Package testdiff is a small comparison harness for diffing emitted
// fixtures against reference output. The compiler itself does not use
// it, and no other package's tests import it; its own tests are its
// only callers in this module.
package testdiff

import (
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Lines splits s on "\n", dropping a single trailing empty element
// produced by a final newline, so line-oriented fixtures (VM output,
// tree output) diff one instruction/line per cmp.Diff entry instead of
// as one indivisible string.
func Lines(s string) []string {
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// Diff reports whether got and want are identical line-for-line, and if
// not, returns a unified-style diff produced by go-cmp for use in a test
// failure message.
func Diff(got, want string) (equal bool, diff string) {
	gotLines, wantLines := Lines(got), Lines(want)
	if d := cmp.Diff(wantLines, gotLines); d != "" {
		return false, d
	}
	return true, ""
}
