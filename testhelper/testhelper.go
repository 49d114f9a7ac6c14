package testhelper

import (
	"strings"
	"testing"
)

// Dedent turns an indented raw string literal into source text. The first
// line (the one after the opening backquote) is dropped and the indentation
// of the second line is removed from every line, so Python blocks keep their
// relative indentation.
func Dedent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")
	if len(lines) < 2 {
		return src
	}

	first := lines[1]
	indent := first[:len(first)-len(strings.TrimLeft(first, " \t"))]

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	return strings.Join(lines[1:], "\n")
}
