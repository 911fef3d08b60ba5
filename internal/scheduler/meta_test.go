package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/workspace"
)

// projectOnDisk builds a project rooted at a temp directory containing
// the named files (empty content), so identify.Identify resolves real
// tags for them instead of erroring on a nonexistent path.
func projectOnDisk(t *testing.T, files []string, hooks ...config.Hook) *workspace.Project {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &workspace.Project{
		Path: dir,
		Config: &config.Config{
			Repos: []config.Repo{{Kind: config.RepoLocal, Hooks: hooks}},
		},
	}
}

func TestCheckHooksApplyReportsHookWithNoMatches(t *testing.T) {
	project := projectOnDisk(t, []string{"a.txt"},
		config.Hook{ID: "py-only", Types: []string{"python"}},
	)
	r := &Runner{}
	result, err := r.checkHooksApply(project, []string{"a.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != Failed {
		t.Fatalf("status = %v, want Failed", result.Status)
	}
}

func TestCheckHooksApplyPassesWhenAlwaysRun(t *testing.T) {
	project := projectOnDisk(t, []string{"a.txt"},
		config.Hook{ID: "always", Types: []string{"python"}, AlwaysRun: true},
	)
	r := &Runner{}
	result, err := r.checkHooksApply(project, []string{"a.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != Passed {
		t.Fatalf("status = %v, want Passed", result.Status)
	}
}

func TestCheckUselessExcludesFlagsNoOpExclude(t *testing.T) {
	project := projectOnDisk(t, []string{"a.txt", "b.txt"},
		config.Hook{ID: "h", Exclude: config.FilePattern{Regex: "nomatch-anywhere-xyz"}},
	)
	r := &Runner{}
	result, err := r.checkUselessExcludes(project, []string{"a.txt", "b.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != Failed {
		t.Fatalf("status = %v, want Failed (exclude matches nothing)", result.Status)
	}
}

func TestCheckUselessExcludesPassesWhenExcludeNarrowsSet(t *testing.T) {
	project := projectOnDisk(t, []string{"a.txt", "b.txt"},
		config.Hook{ID: "h", Exclude: config.FilePattern{Regex: "a\\.txt"}},
	)
	r := &Runner{}
	result, err := r.checkUselessExcludes(project, []string{"a.txt", "b.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != Passed {
		t.Fatalf("status = %v, want Passed (exclude removes a.txt)", result.Status)
	}
}
