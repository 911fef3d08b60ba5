package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir string) {
	t.Helper()
	writeConfigContents(t, dir, "repos = []\n")
}

func writeConfigContents(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, ".prek.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverAndOwnership(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root)
	writeConfig(t, filepath.Join(root, "sub"))

	if err := os.MkdirAll(filepath.Join(root, "sub", "pkg"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "top.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := Discover(root, root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ws.Projects) != 2 {
		t.Fatalf("Projects = %v, want 2", ws.Projects)
	}
	// Deepest-first: sub before root.
	if ws.Projects[0].RelPath != "sub" || ws.Projects[1].RelPath != "" {
		t.Fatalf("order = %q, %q, want sub then root", ws.Projects[0].RelPath, ws.Projects[1].RelPath)
	}

	owned := ws.PartitionFiles([]string{"top.txt", "sub/a.py", "sub/pkg/b.py"})
	root0 := ws.Projects[1]
	sub := ws.Projects[0]

	// sub isn't an orphan, so its files stay visible to root too.
	if got := owned[root0]; len(got) != 3 {
		t.Errorf("root sees %v, want all 3 files", got)
	}
	if got := owned[sub]; len(got) != 2 {
		t.Errorf("sub owns %v, want 2 files", got)
	}
}

func TestPartitionFilesOrphanHidesFromAncestors(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root)
	writeConfigContents(t, filepath.Join(root, "sub"), "orphan = true\nrepos = []\n")

	if err := os.WriteFile(filepath.Join(root, "top.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := Discover(root, root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	var root0, sub *Project
	for _, p := range ws.Projects {
		if p.RelPath == "" {
			root0 = p
		} else {
			sub = p
		}
	}
	if !sub.Orphan {
		t.Fatalf("sub project didn't pick up orphan = true from its config")
	}

	owned := ws.PartitionFiles([]string{"top.txt", "sub/a.py"})

	if got := owned[sub]; len(got) != 1 || got[0] != "sub/a.py" {
		t.Errorf("sub owns %v, want [sub/a.py]", got)
	}
	if got := owned[root0]; len(got) != 1 || got[0] != "top.txt" {
		t.Errorf("root sees %v, want only [top.txt] — orphan sub/a.py must stay hidden", got)
	}
}

func TestDiscoverSkipsDotDirs(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root)
	writeConfig(t, filepath.Join(root, ".hidden"))

	ws, err := Discover(root, root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(ws.Projects) != 1 {
		t.Fatalf("Projects = %v, want only the root project", ws.Projects)
	}
}

func TestDiscoverNoConfig(t *testing.T) {
	root := t.TempDir()
	if _, err := Discover(root, root, nil); err == nil {
		t.Fatal("expected error when no config exists")
	}
}
