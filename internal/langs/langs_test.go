package langs

import (
	"os"
	"testing"
)

func TestSplitEntry(t *testing.T) {
	cases := []struct {
		entry string
		want  []string
	}{
		{"python3 -m flake8", []string{"python3", "-m", "flake8"}},
		{`sh -c "echo hello world"`, []string{"sh", "-c", "echo hello world"}},
		{"single 'quoted arg' here", []string{"single", "quoted arg", "here"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitEntry(c.entry)
		if len(got) != len(c.want) {
			t.Fatalf("splitEntry(%q) = %v, want %v", c.entry, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("splitEntry(%q) = %v, want %v", c.entry, got, c.want)
			}
		}
	}
}

func TestSystemBackendBuildCommand(t *testing.T) {
	b := systemBackend{}
	hook := Hook{Entry: "flake8", Args: []string{"--max-line-length=100"}, RepoPath: "/repo"}
	cmd := b.BuildCommand(EnvHandle{}, hook, []string{"a.py", "b.py"})
	want := []string{"flake8", "--max-line-length=100", "a.py", "b.py"}
	if len(cmd.Argv) != len(want) {
		t.Fatalf("Argv = %v, want %v", cmd.Argv, want)
	}
	for i := range want {
		if cmd.Argv[i] != want[i] {
			t.Fatalf("Argv = %v, want %v", cmd.Argv, want)
		}
	}
	if cmd.Dir != "/repo" {
		t.Fatalf("Dir = %q, want /repo", cmd.Dir)
	}
}

func TestScriptBackendJoinsRelativeEntry(t *testing.T) {
	b := scriptBackend{}
	hook := Hook{Entry: "bin/check.sh", RepoPath: "/repo"}
	cmd := b.BuildCommand(EnvHandle{}, hook, nil)
	if cmd.Argv[0] != "/repo/bin/check.sh" {
		t.Fatalf("Argv[0] = %q, want /repo/bin/check.sh", cmd.Argv[0])
	}
}

func TestFailBackendAlwaysFails(t *testing.T) {
	b := failBackend{}
	cmd := b.BuildCommand(EnvHandle{}, Hook{Entry: "branch protected"}, nil)
	if len(cmd.Argv) != 1 || cmd.Argv[0] != "false" {
		t.Fatalf("Argv = %v, want [false]", cmd.Argv)
	}
}

func TestPygrepRunMatchesLines(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.py"
	if err := os.WriteFile(path, []byte("import pdb\npdb.set_trace()\nprint('ok')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	hook := Hook{Entry: `pdb\.set_trace\(\)`}
	out, failed, err := Run(hook, []string{path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !failed {
		t.Fatalf("expected a match, got none; output=%q", out)
	}
}

func TestPygrepRunNoMatch(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/a.py"
	if err := os.WriteFile(path, []byte("print('ok')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	hook := Hook{Entry: `pdb\.set_trace\(\)`}
	_, failed, err := Run(hook, []string{path})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if failed {
		t.Fatal("expected no match")
	}
}

func TestNormalizeVersion(t *testing.T) {
	cases := map[string]string{
		"":       "default",
		"system": "system",
		"1.2":    "v1.2.0",
		"v1.2.0": "v1.2.0",
	}
	for in, want := range cases {
		if got := NormalizeVersion(in); got != want {
			t.Errorf("NormalizeVersion(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBestBySimilarityPicksNewest(t *testing.T) {
	got := BestBySimilarity("v1.0.0", []string{"v1.0.0", "v1.2.0", "v1.1.0"})
	if got != "v1.2.0" {
		t.Fatalf("BestBySimilarity = %q, want v1.2.0", got)
	}
}

func TestLookupRegistersAllBackends(t *testing.T) {
	for _, name := range []string{
		"system", "script", "fail", "pygrep",
		"python", "node", "golang", "rust", "ruby", "lua",
		"docker", "docker_image",
	} {
		if Lookup(name) == nil {
			t.Errorf("Lookup(%q) = nil, want a registered backend", name)
		}
	}
	if Lookup("nonexistent") != nil {
		t.Fatal("Lookup(nonexistent) should be nil")
	}
}
