// Package stacktrace trims goroutine dumps down to this module's own frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame in
// stack that points into an internal package. Runtime and dependency frames
// are dropped.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		// File lines look like "/abs/path/file.go:42 +0x1d".
		loc, _, _ := strings.Cut(line, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}

		idx := strings.Index(loc, marker)
		if idx < 0 {
			continue
		}
		paths = append(paths, loc[idx+1:])
	}

	return paths
}
