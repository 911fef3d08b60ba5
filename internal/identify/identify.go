// Package identify classifies a file path into a set of semantic tags —
// structural (file, symlink, executable, text, binary), extension-derived
// (python, yaml, ...), and shebang-derived — used to match a hook's
// types/types_or/exclude_types filters.
package identify

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go4org/hashtriemap"
)

// TagSet is an immutable set of tags. The zero value is the empty set.
type TagSet map[string]struct{}

// Has reports whether t contains tag.
func (t TagSet) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// HasAll reports whether t contains every tag in tags.
func (t TagSet) HasAll(tags []string) bool {
	for _, tag := range tags {
		if !t.Has(tag) {
			return false
		}
	}
	return true
}

// HasAny reports whether t contains at least one tag in tags. An empty
// tags list is vacuously true, matching the "unset types_or" default.
func (t TagSet) HasAny(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		if t.Has(tag) {
			return true
		}
	}
	return false
}

// HasNone reports whether t contains none of tags.
func (t TagSet) HasNone(tags []string) bool {
	for _, tag := range tags {
		if t.Has(tag) {
			return false
		}
	}
	return true
}

func newTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, tag := range tags {
		s[tag] = struct{}{}
	}
	return s
}

func (t TagSet) add(tags ...string) {
	for _, tag := range tags {
		t[tag] = struct{}{}
	}
}

// extTags maps a lowercased file extension (without the dot) to the tags
// it implies. This is a closed vocabulary; it doesn't aim for parity with
// any reference implementation's full extension table.
var extTags = map[string][]string{
	"py":         {"python"},
	"pyi":        {"python"},
	"pyc":        {"python", "binary"},
	"rs":         {"rust"},
	"go":         {"go"},
	"rb":         {"ruby"},
	"js":         {"javascript"},
	"mjs":        {"javascript"},
	"cjs":        {"javascript"},
	"jsx":        {"javascript", "jsx"},
	"ts":         {"typescript"},
	"tsx":        {"typescript", "jsx"},
	"lua":        {"lua"},
	"yaml":       {"yaml"},
	"yml":        {"yaml"},
	"toml":       {"toml"},
	"json":       {"json"},
	"json5":      {"json5"},
	"jsonc":      {"json"},
	"xml":        {"xml"},
	"md":         {"markdown"},
	"markdown":   {"markdown"},
	"sh":         {"shell"},
	"bash":       {"shell", "bash"},
	"zsh":        {"shell", "zsh"},
	"dockerfile": {"dockerfile"},
	"html":       {"html"},
	"htm":        {"html"},
	"css":        {"css"},
	"scss":       {"scss", "css"},
	"sql":        {"sql"},
	"proto":      {"proto"},
	"c":          {"c"},
	"h":          {"c", "header"},
	"cpp":        {"c++"},
	"cc":         {"c++"},
	"hpp":        {"c++", "header"},
	"java":       {"java"},
	"kt":         {"kotlin"},
	"swift":      {"swift"},
	"exe":        {"binary"},
	"png":        {"image", "binary"},
	"jpg":        {"image", "binary"},
	"jpeg":       {"image", "binary"},
	"gif":        {"image", "binary"},
	"pdf":        {"binary"},
	"zip":        {"archive", "binary"},
	"tar":        {"archive", "binary"},
	"gz":         {"archive", "binary"},
}

// nameTags maps an exact, case-sensitive base filename to the tags it
// implies, for files without a distinguishing extension.
var nameTags = map[string][]string{
	"Dockerfile":       {"dockerfile"},
	"Makefile":         {"makefile"},
	"Gemfile":          {"ruby"},
	"Rakefile":         {"ruby"},
	"go.mod":           {"go", "toml"},
	"go.sum":           {"go"},
	"Cargo.toml":       {"rust", "toml"},
	"package.json":     {"javascript", "json"},
	"pyproject.toml":   {"python", "toml"},
	"requirements.txt": {"python", "text"},
}

// interpreterTags maps the basename of a shebang's interpreter (after
// resolving an `env` indirection) to the tags it implies.
var interpreterTags = map[string][]string{
	"python":  {"python"},
	"python3": {"python"},
	"python2": {"python"},
	"ruby":    {"ruby"},
	"node":    {"javascript"},
	"bash":    {"shell", "bash"},
	"sh":      {"shell"},
	"zsh":     {"shell", "zsh"},
	"perl":    {"perl"},
	"lua":     {"lua"},
}

var cache hashtriemap.HashTrieMap[string, TagSet]

// Identify classifies the file at path, returning its tag set. Results
// are cached per absolute path for the lifetime of the process, since the
// scheduler consults the same path repeatedly across hooks.
func Identify(path string) (TagSet, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if tags, ok := cache.Load(abs); ok {
		return tags, nil
	}

	tags, err := identify(path)
	if err != nil {
		return nil, err
	}
	cache.LoadOrStore(abs, tags)
	return tags, nil
}

func identify(path string) (TagSet, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}

	tags := newTagSet()

	if info.Mode()&os.ModeSymlink != 0 {
		tags.add("symlink")
		return tags, nil
	}
	if info.IsDir() {
		tags.add("directory")
		return tags, nil
	}
	tags.add("file")

	if isExecutable(info) {
		tags.add("executable")
	}

	base := filepath.Base(path)
	matched := false
	if nt, ok := nameTags[base]; ok {
		tags.add(nt...)
		matched = true
	}
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if et, ok := extTags[strings.ToLower(ext)]; ok {
		tags.add(et...)
		matched = true
	}

	if !matched {
		// No extension/name match: fall back to a shebang.
		if interp, ok := parseShebang(path); ok {
			if it, ok := interpreterTags[interp]; ok {
				tags.add(it...)
			}
		}
	}

	if tags.Has("binary") {
		return tags, nil
	}
	binary, err := looksBinary(path)
	if err != nil {
		return tags, nil // best-effort; treat unreadable as text
	}
	if binary {
		tags.add("binary")
	} else {
		tags.add("text")
	}
	return tags, nil
}

// parseShebang reads the first line of path and, if it's a shebang line,
// returns the basename of the interpreter it names. `#!/usr/bin/env foo`
// and `#!/usr/bin/env -S foo bar` both resolve to "foo". A nix-shell
// shebang (`#!/usr/bin/env nix-shell`) resolves to "nix-shell".
func parseShebang(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 256)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "#!") {
		return "", false
	}
	fields := strings.Fields(strings.TrimPrefix(line, "#!"))
	if len(fields) == 0 {
		return "", false
	}

	interp := filepath.Base(fields[0])
	if interp != "env" {
		return interp, true
	}
	for _, f := range fields[1:] {
		if f == "-S" || strings.HasPrefix(f, "-") {
			continue
		}
		return filepath.Base(f), true
	}
	return "", false
}

// looksBinary reads a prefix of path and reports whether it looks like
// binary data: a NUL byte, or more than 30% non-printable bytes.
func looksBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 8000)
	n, err := f.Read(buf)
	if n == 0 {
		return false, nil
	}
	buf = buf[:n]

	nonPrintable := 0
	for _, b := range buf {
		if b == 0 {
			return true, nil
		}
		if !printableBytes[b] {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(buf)) > 0.3, nil
}

var printableBytes = buildPrintableTable()

func buildPrintableTable() [256]bool {
	var t [256]bool
	for b := 0x20; b < 0x7f; b++ {
		t[b] = true
	}
	for _, b := range []byte{'\t', '\n', '\r', '\v', '\f', 0x1b} {
		t[b] = true
	}
	// Treat the high half as printable too (UTF-8 continuation bytes,
	// Latin-1 text); only control bytes below 0x20 count against a file.
	for b := 0x80; b < 0x100; b++ {
		t[b] = true
	}
	return t
}
