package identify

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIdentifyExtension(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "a.py", "print(1)\n", 0o644)

	tags, err := Identify(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"file", "python", "text"} {
		if !tags.Has(want) {
			t.Errorf("tags %v missing %q", tags, want)
		}
	}
	if tags.Has("binary") {
		t.Errorf("tags %v should not include binary", tags)
	}
}

func TestIdentifyShebang(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "script", "#!/usr/bin/env python3\nprint(1)\n", 0o755)

	tags, err := Identify(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tags.Has("python") {
		t.Errorf("tags %v missing python from shebang", tags)
	}
	if !tags.Has("executable") {
		t.Errorf("tags %v missing executable", tags)
	}
}

func TestIdentifyBinary(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "blob.bin", "\x00\x01\x02\x03binary stuff", 0o644)

	tags, err := Identify(path)
	if err != nil {
		t.Fatal(err)
	}
	if !tags.Has("binary") {
		t.Errorf("tags %v should include binary", tags)
	}
	if tags.Has("text") {
		t.Errorf("tags %v should not include text", tags)
	}
}

func TestTagSetMatching(t *testing.T) {
	tags := newTagSet("file", "python", "text")

	if !tags.HasAll([]string{"file", "python"}) {
		t.Error("HasAll should match subset")
	}
	if tags.HasAll([]string{"file", "rust"}) {
		t.Error("HasAll should not match missing tag")
	}
	if !tags.HasAny(nil) {
		t.Error("HasAny with empty list should be vacuously true")
	}
	if !tags.HasAny([]string{"rust", "python"}) {
		t.Error("HasAny should match if any tag present")
	}
	if !tags.HasNone([]string{"rust", "go"}) {
		t.Error("HasNone should be true when none present")
	}
	if tags.HasNone([]string{"python"}) {
		t.Error("HasNone should be false when a tag is present")
	}
}

func TestParseShebangEnvWithFlag(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "script2", "#!/usr/bin/env -S node --experimental\nconsole.log(1)\n", 0o755)

	interp, ok := parseShebang(path)
	if !ok || interp != "node" {
		t.Errorf("parseShebang() = %q, %v, want %q, true", interp, ok, "node")
	}
}
