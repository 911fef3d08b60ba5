package config

import (
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	return writeConfig(t, dir, ManifestFileName, content)
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
- id: trailing-whitespace
  name: Trim Trailing Whitespace
  entry: trailing-whitespace-fixer
  language: python
  types: [text]
- id: check-yaml
  entry: check-yaml
  language: python
`)

	hooks, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(hooks) != 2 {
		t.Fatalf("hooks = %+v, want 2", hooks)
	}
	if hooks[0].ID != "trailing-whitespace" || hooks[0].Entry != "trailing-whitespace-fixer" {
		t.Fatalf("hooks[0] = %+v", hooks[0])
	}
	if len(hooks[1].Types) != 1 || hooks[1].Types[0] != "file" {
		t.Fatalf("hooks[1].Types = %v, want default [file]", hooks[1].Types)
	}
}

func TestResolveRemoteHookMergesManifestDefaultsWithOverride(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
- id: check-yaml
  name: Check YAML
  entry: check-yaml
  language: python
`)

	override := Hook{ID: "check-yaml", Args: []string{"--allow-multiple-documents"}}
	resolved, err := ResolveRemoteHook(dir, override)
	if err != nil {
		t.Fatalf("ResolveRemoteHook: %v", err)
	}
	if resolved.Entry != "check-yaml" || resolved.Language != "python" {
		t.Fatalf("resolved = %+v, want manifest's entry/language to survive the merge", resolved)
	}
	if len(resolved.Args) != 1 || resolved.Args[0] != "--allow-multiple-documents" {
		t.Fatalf("resolved.Args = %v, want the override's args to win", resolved.Args)
	}
}

func TestResolveRemoteHookMissingFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
- id: check-yaml
  entry: check-yaml
  language: python
`)

	if _, err := ResolveRemoteHook(dir, Hook{ID: "nonexistent"}); err == nil {
		t.Fatal("expected an error for a hook id absent from the manifest")
	}
}

func TestManifestFileNameJoinsCleanly(t *testing.T) {
	if filepath.Base(ManifestFileName) != ManifestFileName {
		t.Fatalf("ManifestFileName = %q, want a bare filename", ManifestFileName)
	}
}
