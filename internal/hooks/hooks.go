// Package hooks implements the built-in fast-path hook set: native
// reimplementations of the pre-commit-hooks repository's checks and
// fixers, used both directly (a "builtin" repo entry) and transparently
// in place of a subprocess when the scheduler sees a remote hook whose
// repo URL matches the canonical upstream.
package hooks

import (
	"fmt"
	"os"
)

// FileResult is the outcome of running one built-in check/fixer against
// a single file.
type FileResult struct {
	// Modified reports whether the fixer rewrote the file. Checks never
	// set this.
	Modified bool
	// Failed reports whether the file violates the check (for a
	// checker) or required a fix (for a fixer, mirroring Modified).
	Failed bool
	// Message is the human-readable line to append to the hook's
	// output for this file, empty when nothing is worth reporting.
	Message string
}

// FileFunc checks or fixes one file, addressed by both its absolute path
// (for I/O) and its path relative to the project root (for messages,
// matching pre-commit-hooks' own output format).
type FileFunc func(absPath, relPath string) (FileResult, error)

// RunFiles applies fn to every file, concatenating messages and
// reporting overall failure if any file failed. Errors reading a file
// abort the whole hook, matching the fast-path's "pure function over a
// file stream" contract: I/O errors are not a per-file check failure.
func RunFiles(base string, relFiles []string, fn FileFunc) (output string, failed bool, err error) {
	var out []byte
	for _, rel := range relFiles {
		abs := rel
		if base != "" {
			abs = base + "/" + rel
		}
		res, err := fn(abs, rel)
		if err != nil {
			return string(out), false, fmt.Errorf("hooks: %s: %w", rel, err)
		}
		if res.Failed {
			failed = true
		}
		if res.Message != "" {
			out = append(out, res.Message...)
		}
	}
	return string(out), failed, nil
}

// readFile is a thin indirection point kept for the fixers that need to
// distinguish "file does not exist" from other I/O errors without
// importing os directly in every fixer file.
func readFile(path string) ([]byte, error) { return os.ReadFile(path) }
