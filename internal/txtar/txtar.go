// Package txtar implements a trivial text-based file archive format, used
// by tests to describe a small directory tree — a config file, a hook
// manifest, a couple of scripts — as a single literal string.
//
// The format: a leading free-form comment, then a sequence of files, each
// introduced by a "-- name --" marker line. It is the format used by Go's
// own txtar package; this is a from-scratch reimplementation so prek
// doesn't need to depend on golang.org/x/tools for it.
package txtar

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a single named file within an [Archive].
type File struct {
	Name string
	Data []byte
}

// Archive is a collection of files with a leading comment.
type Archive struct {
	Comment []byte
	Files   []File
}

// Parse parses data as a txtar archive.
func Parse(data []byte) *Archive {
	a := &Archive{
		Comment: []byte{},
		Files:   []File{},
	}

	var name string
	a.Comment, name, data = findFileMarker(data)
	for name != "" {
		var content []byte
		curName := name
		content, name, data = findFileMarker(data)
		if len(content) > 0 && !bytes.HasSuffix(content, []byte("\n")) {
			content = append(content, '\n')
		}
		a.Files = append(a.Files, File{Name: curName, Data: content})
	}
	return a
}

// ParseFile reads and parses the named file as a txtar archive.
func ParseFile(name string) (*Archive, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return Parse(data), nil
}

// Format serializes a into the txtar text format.
func Format(a *Archive) []byte {
	var buf bytes.Buffer
	buf.Write(a.Comment)
	for _, f := range a.Files {
		fmt.Fprintf(&buf, "-- %s --\n", f.Name)
		buf.Write(f.Data)
		if len(f.Data) > 0 && !bytes.HasSuffix(f.Data, []byte("\n")) {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Extract writes each file in a to dir, creating parent directories as
// needed.
func Extract(a *Archive, dir string) error {
	for _, f := range a.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("txtar: creating directory for %s: %w", f.Name, err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("txtar: writing %s: %w", f.Name, err)
		}
	}
	return nil
}

// FromDir builds an Archive from every regular file under dir, walked
// recursively. File names use forward slashes and are relative to dir.
func FromDir(dir string) (*Archive, error) {
	a := &Archive{Comment: []byte{}, Files: []File{}}

	var names []string
	entries := map[string][]byte{}
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		names = append(names, rel)
		entries[rel] = data
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("txtar: walking %s: %w", dir, err)
	}

	sort.Strings(names)
	for _, name := range names {
		a.Files = append(a.Files, File{Name: name, Data: entries[name]})
	}
	return a, nil
}

// findFileMarker splits data at the next "-- name --" marker line,
// returning everything before the marker, the marker's name, and
// everything after it. If no marker is found, name is empty and after is
// nil.
func findFileMarker(data []byte) (before []byte, name string, after []byte) {
	before = []byte{}
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i+1], data[i+1:]
		} else {
			line, data = data, nil
		}
		if nm, ok := parseMarker(line); ok {
			return before, nm, data
		}
		before = append(before, line...)
	}
	return before, "", nil
}

// parseMarker reports whether line (including its trailing newline, if
// any) is a "-- name --" marker line, and if so returns the trimmed name.
func parseMarker(line []byte) (string, bool) {
	s := strings.TrimRight(string(line), "\n")
	s = strings.TrimRight(s, "\r")
	if !strings.HasPrefix(s, "--") || !strings.HasSuffix(s, "--") || len(s) < 4 {
		return "", false
	}
	name := strings.TrimSpace(s[2 : len(s)-2])
	if name == "" {
		return "", false
	}
	return name, true
}
