package envmanager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/astrophena/prek/internal/langs"
	"github.com/astrophena/prek/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(s)
}

func TestEnsureUnmanagedBackendIsNoop(t *testing.T) {
	m := newTestManager(t)
	handle, err := m.Ensure(context.Background(), langs.Hook{ID: "noop", Language: "system", Entry: "true"})
	if err != nil {
		t.Fatal(err)
	}
	if handle.Dir != "" {
		t.Fatalf("expected empty handle for unmanaged backend, got %+v", handle)
	}
}

func TestEnsureUnknownLanguage(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Ensure(context.Background(), langs.Hook{ID: "x", Language: "cobol"}); err == nil {
		t.Fatal("expected an error for an unknown language")
	}
}

func TestEnsureIdempotentForSameKey(t *testing.T) {
	m := newTestManager(t)
	hook := langs.Hook{ID: "pygrep-hook", Language: "pygrep", Entry: "TODO"}

	first, err := m.Ensure(context.Background(), hook)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Ensure(context.Background(), hook)
	if err != nil {
		t.Fatal(err)
	}
	if first.Dir != second.Dir {
		t.Fatalf("expected the same env dir across calls, got %q and %q", first.Dir, second.Dir)
	}
}

func TestEnsureConcurrentDisjointKeysDontBlock(t *testing.T) {
	m := newTestManager(t)
	var wg sync.WaitGroup
	var failures int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hook := langs.Hook{ID: fmt.Sprintf("pygrep-hook-%d", i), Language: "pygrep", Entry: "TODO", RepoPath: fmt.Sprintf("/repo-%d", i)}
			if _, err := m.Ensure(context.Background(), hook); err != nil {
				atomic.AddInt64(&failures, 1)
			}
		}(i)
	}
	wg.Wait()
	if failures != 0 {
		t.Fatalf("%d concurrent Ensure calls failed", failures)
	}
}
