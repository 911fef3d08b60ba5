package autoupdate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRewriteFileYAMLPreservesCommentsAndOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pre-commit-config.yaml")
	original := "" +
		"# top-level comment\n" +
		"repos:\n" +
		"  - repo: https://example.com/a\n" +
		"    rev: v1.0.0 # pinned\n" +
		"    hooks:\n" +
		"      - id: a-hook\n" +
		"  - repo: https://example.com/b\n" +
		"    rev: v2.0.0\n" +
		"    hooks:\n" +
		"      - id: b-hook\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	updates := map[string]RepoUpdate{
		"https://example.com/a": {URL: "https://example.com/a", OldRev: "v1.0.0", NewRev: "v1.5.0", Changed: true},
	}
	written, err := RewriteFile(path, updates)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("expected a write")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(got)
	if !strings.Contains(s, "top-level comment") {
		t.Fatal("expected top-level comment to survive")
	}
	if !strings.Contains(s, "v1.5.0") {
		t.Fatalf("expected rewritten rev, got %s", s)
	}
	if !strings.Contains(s, "v2.0.0") {
		t.Fatalf("expected untouched repo's rev preserved, got %s", s)
	}
	if strings.Index(s, "example.com/a") > strings.Index(s, "example.com/b") {
		t.Fatal("expected repo order preserved")
	}
}

func TestRewriteFileYAMLNoopWhenNothingChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".pre-commit-config.yaml")
	original := "repos:\n  - repo: https://example.com/a\n    rev: v1.0.0\n    hooks:\n      - id: a\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}
	updates := map[string]RepoUpdate{
		"https://example.com/a": {URL: "https://example.com/a", OldRev: "v1.0.0", NewRev: "v1.0.0", Changed: false},
	}
	written, err := RewriteFile(path, updates)
	if err != nil {
		t.Fatal(err)
	}
	if written {
		t.Fatal("expected no write when nothing changed")
	}
}

func TestRewriteFileTOMLTouchesOnlyMatchedValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".prek.toml")
	original := "" +
		"[[repos]]\n" +
		"repo = \"https://example.com/a\" # comment survives\n" +
		"rev = \"v1.0.0\"\n" +
		"\n" +
		"[[repos]]\n" +
		"repo = \"https://example.com/b\"\n" +
		"rev = \"v2.0.0\"\n"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}
	updates := map[string]RepoUpdate{
		"https://example.com/a": {URL: "https://example.com/a", OldRev: "v1.0.0", NewRev: "v1.9.0", Changed: true},
	}
	written, err := RewriteFile(path, updates)
	if err != nil {
		t.Fatal(err)
	}
	if !written {
		t.Fatal("expected a write")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	s := string(got)
	if !strings.Contains(s, `rev = "v1.9.0"`) {
		t.Fatalf("expected updated rev, got %s", s)
	}
	if !strings.Contains(s, `rev = "v2.0.0"`) {
		t.Fatalf("expected untouched repo's rev preserved, got %s", s)
	}
	if !strings.Contains(s, "comment survives") {
		t.Fatal("expected trailing comment preserved")
	}
}
