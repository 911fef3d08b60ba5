package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "prek-home")
	_, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{"repos", "envs", "toolchains", "patches", "scratch", "locks"} {
		if _, err := os.Stat(filepath.Join(root, dir)); err != nil {
			t.Errorf("expected %s to exist: %v", dir, err)
		}
	}
}

func TestRepoKeyAndEnvKeyDeterministic(t *testing.T) {
	k1 := RepoKey("https://example.com/hooks", "v1.0.0")
	k2 := RepoKey("https://example.com/hooks", "v1.0.0")
	k3 := RepoKey("https://example.com/hooks", "v2.0.0")
	if k1 != k2 {
		t.Error("RepoKey should be deterministic")
	}
	if k1 == k3 {
		t.Error("RepoKey should differ by rev")
	}

	e1 := EnvKey("python", "default", "abc", []string{"pytest", "black"})
	e2 := EnvKey("python", "default", "abc", []string{"black", "pytest"})
	if e1 != e2 {
		t.Error("EnvKey should be order-independent over deps")
	}
}

func TestLockExclusive(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	l1, err := s.LockExclusive(KindEnv, "abc123")
	if err != nil {
		t.Fatalf("LockExclusive: %v", err)
	}
	if err := l1.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	l2, err := s.LockExclusive(KindEnv, "abc123")
	if err != nil {
		t.Fatalf("re-acquiring released lock: %v", err)
	}
	l2.Unlock()
}

func TestEnvRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := EnvRecord{Language: "python", Version: "3.12", HealthOK: true, InstalledAt: time.Now().Truncate(time.Second)}
	if err := WriteEnvRecord(dir, rec); err != nil {
		t.Fatal(err)
	}
	got, err := ReadEnvRecord(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Language != rec.Language || got.Version != rec.Version || !got.HealthOK {
		t.Errorf("got %+v, want %+v", got, rec)
	}
}

func TestPromote(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	scratch, err := s.ScratchDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scratch, "marker"), []byte("ok"), 0o644); err != nil {
		t.Fatal(err)
	}

	dest := s.PathFor(KindEnv, "envkey")
	if err := s.Promote(scratch, dest); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "marker")); err != nil {
		t.Errorf("promoted content missing: %v", err)
	}
}

func TestGarbageCollect(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	live := filepath.Join(s.envsDir(), "live")
	stale := filepath.Join(s.envsDir(), "stale")
	if err := os.MkdirAll(live, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := s.GarbageCollect(nil, map[string]bool{"live": true}, time.Hour, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.RemovedEnvs != 1 {
		t.Errorf("RemovedEnvs = %d, want 1", result.RemovedEnvs)
	}
	if _, err := os.Stat(live); err != nil {
		t.Error("live env should survive GC")
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale env should be removed by GC")
	}
}
