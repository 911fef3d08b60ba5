package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astrophena/prek/internal/cli/clitest"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ".pre-commit-hooks.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateManifestAcceptsWellFormedManifest(t *testing.T) {
	dir := t.TempDir()
	okPath := writeManifest(t, dir, `
- id: check-yaml
  name: Check YAML
  entry: check-yaml
  language: python
`)

	setup := func(t *testing.T) *validateManifestApp { return &validateManifestApp{} }

	clitest.Run(t, setup, map[string]clitest.Case[*validateManifestApp]{
		"valid manifest": {
			Args:         []string{okPath},
			WantInStdout: "ok",
		},
	})
}

func TestValidateManifestRejectsDuplicateID(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
- id: check-yaml
  entry: check-yaml
  language: python
- id: check-yaml
  entry: check-yaml
  language: python
`)
	if err := validateManifest(path); err == nil {
		t.Fatal("expected an error for a manifest with a duplicate id")
	}
}

func TestValidateManifestRejectsMissingEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
- id: check-yaml
  language: python
`)
	if err := validateManifest(path); err == nil {
		t.Fatal("expected an error for a manifest missing an entry")
	}
}
