// Package envmanager implements ensure_env: resolving a hook to a
// provisioned, health-checked environment, sharing installs across
// concurrent invocations via the store's per-key lock.
package envmanager

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/astrophena/prek/internal/langs"
	"github.com/astrophena/prek/internal/store"
)

// Manager resolves hooks to ready-to-use environments.
type Manager struct {
	Store *store.Store
}

// New returns a Manager backed by s.
func New(s *store.Store) *Manager {
	return &Manager{Store: s}
}

// Error reports a failure to provision a hook's environment.
type Error struct {
	HookID string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("envmanager: provisioning env for hook %q: %v", e.HookID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// installSourceHash identifies the content backing a hook's environment
// (a cloned repo revision, or a project-local path) so that unrelated
// hooks with identical language/version/deps never collide on the same
// env key.
func installSourceHash(hook langs.Hook) string {
	if hook.RepoPath == "" {
		return "local"
	}
	return hook.RepoPath
}

// Ensure resolves hook to a ready environment: reusing a previously
// installed one if it exists and passes the backend's health check,
// otherwise provisioning a fresh one under the store's lock for this env
// key. Concurrent Ensure calls for disjoint hooks (distinct env keys)
// proceed in parallel; calls for the same key serialize on the lock, and
// only the first to acquire it performs the install.
func (m *Manager) Ensure(ctx context.Context, hook langs.Hook) (langs.EnvHandle, error) {
	backend := langs.Lookup(hook.Language)
	if backend == nil {
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: fmt.Errorf("unknown language %q", hook.Language)}
	}
	if !backend.Managed() {
		return langs.EnvHandle{}, nil
	}

	version := langs.NormalizeVersion(hook.LanguageVersion)
	key := store.EnvKey(hook.Language, version, installSourceHash(hook), hook.AdditionalDependencies)
	envDir := m.Store.PathFor(store.KindEnv, key)

	lock, err := m.Store.LockExclusive(store.KindEnv, key)
	if err != nil {
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: err}
	}
	defer lock.Unlock()

	if rec, err := store.ReadEnvRecord(envDir); err == nil && rec.HealthOK {
		handle := langs.EnvHandle{Dir: envDir}
		if backend.HealthCheck(ctx, handle) {
			m.Store.RecordLastUsed(envDir)
			return handle, nil
		}
	}

	if err := os.RemoveAll(envDir); err != nil {
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: fmt.Errorf("clearing partial env: %w", err)}
	}

	toolchain, err := m.resolveToolchain(ctx, backend, hook.Language, version)
	if err != nil {
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: err}
	}

	if err := backend.ProvisionEnv(ctx, envDir, hook, toolchain); err != nil {
		os.RemoveAll(envDir)
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: err}
	}

	rec := store.EnvRecord{
		Language:    hook.Language,
		Version:     version,
		Deps:        hook.AdditionalDependencies,
		InstallHash: installSourceHash(hook),
		InstalledAt: time.Now(),
		HealthOK:    true,
	}
	if err := store.WriteEnvRecord(envDir, rec); err != nil {
		os.RemoveAll(envDir)
		return langs.EnvHandle{}, &Error{HookID: hook.ID, Err: err}
	}
	m.Store.RecordLastUsed(envDir)

	return langs.EnvHandle{Dir: envDir, Toolchain: toolchain}, nil
}

// resolveToolchain tries Discover first (a toolchain already on PATH or
// in a well-known location); only when nothing is found does it fall
// back to a downloaded install via the store's scratch area, atomically
// promoted into the toolchain bucket keyed by (language, version).
func (m *Manager) resolveToolchain(ctx context.Context, backend langs.Backend, language, version string) (langs.ToolchainHandle, error) {
	if version == "system" {
		found, err := backend.Discover(ctx, version)
		if err != nil {
			return langs.ToolchainHandle{}, err
		}
		if found == nil {
			return langs.ToolchainHandle{}, fmt.Errorf("%s: system toolchain requested but none found on PATH", language)
		}
		return *found, nil
	}

	found, err := backend.Discover(ctx, version)
	if err != nil {
		return langs.ToolchainHandle{}, err
	}
	if found != nil {
		return *found, nil
	}

	toolchainKey := store.EnvKey(language, version, "toolchain", nil)
	toolchainDir := m.Store.PathFor(store.KindToolchain, toolchainKey)

	lock, err := m.Store.LockExclusive(store.KindToolchain, toolchainKey)
	if err != nil {
		return langs.ToolchainHandle{}, err
	}
	defer lock.Unlock()

	if info, err := os.Stat(toolchainDir); err == nil && info.IsDir() {
		if again, err := backend.Discover(ctx, version); err == nil && again != nil {
			return *again, nil
		}
	}

	scratch, err := m.Store.ScratchDir()
	if err != nil {
		return langs.ToolchainHandle{}, err
	}
	handle, err := backend.Install(ctx, version, scratch)
	if err != nil {
		os.RemoveAll(scratch)
		return langs.ToolchainHandle{}, err
	}
	if err := m.Store.Promote(scratch, toolchainDir); err != nil {
		return langs.ToolchainHandle{}, err
	}
	if handle != nil {
		handle.Root = toolchainDir
	}
	if handle == nil {
		return langs.ToolchainHandle{Root: toolchainDir}, nil
	}
	return *handle, nil
}
