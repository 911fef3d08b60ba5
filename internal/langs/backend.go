// Package langs implements the per-language install/run contract: each
// backend knows how to discover or install a toolchain, provision an
// isolated per-hook environment, health-check a previously provisioned
// one, and produce the argv/env for one invocation.
package langs

import (
	"context"
	"fmt"
)

// ToolchainHandle identifies a discovered or installed language
// toolchain: an interpreter, compiler, or runtime.
type ToolchainHandle struct {
	// Version is the toolchain's resolved, concrete version.
	Version string
	// Root is the toolchain's installation root (empty for a bare
	// system PATH lookup).
	Root string
	// Bin is the path to the primary executable (python, node, go, ...).
	Bin string
}

// EnvHandle identifies a provisioned, ready-to-use hook environment.
type EnvHandle struct {
	// Dir is the environment's directory in the store.
	Dir       string
	Toolchain ToolchainHandle
}

// CommandSpec is the argv and environment overlay for one hook
// invocation.
type CommandSpec struct {
	Argv []string
	// Dir is the working directory for the invocation.
	Dir string
	// Env is applied on top of the child process's inherited
	// environment.
	Env map[string]string
}

// InstallError reports a failed toolchain discovery/install or
// environment provisioning: the entry that failed, and (when a
// subprocess was involved) its argv and stderr.
type InstallError struct {
	Language string
	Message  string
	Argv     []string
	Stderr   string
	Err      error
}

func (e *InstallError) Error() string {
	msg := fmt.Sprintf("langs: %s: %s", e.Language, e.Message)
	if len(e.Argv) > 0 {
		msg += fmt.Sprintf(" (command: %v)", e.Argv)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *InstallError) Unwrap() error { return e.Err }

// Hook is the subset of a resolved hook a backend needs to build a
// command or provision an environment. It mirrors config.Hook without
// importing internal/config, so backend.go has no dependency on the
// config package's wire concerns.
type Hook struct {
	ID                     string
	Entry                  string
	Args                   []string
	Language               string
	LanguageVersion        string
	AdditionalDependencies []string
	Env                    map[string]string
	// RepoPath is the root of the cloned hook repository for a remote
	// hook, or the workspace project root for a local hook.
	RepoPath string
}

// Backend is the uniform interface every supported language implements.
type Backend interface {
	// Name is the backend's identifier, matching a hook's `language`
	// field (e.g. "python", "node", "system").
	Name() string

	// Discover finds a matching toolchain already available on PATH or
	// in a well-known version-manager location. It returns
	// (nil, nil) when nothing matches, reserving errors for
	// unexpected failures (not "not found").
	Discover(ctx context.Context, versionRequest string) (*ToolchainHandle, error)

	// Install downloads and unpacks a toolchain satisfying
	// versionRequest into scratchDir. Backends that don't support
	// downloads (Ruby, Lua, System, Script, Fail, Pygrep) always
	// return an InstallError.
	Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error)

	// ProvisionEnv creates envDir's contents: installs the hook
	// (cloned repo or local entry) and AdditionalDependencies using
	// toolchain. Must be safe to call only while the caller holds the
	// store's env lock for this env key.
	ProvisionEnv(ctx context.Context, envDir string, hook Hook, toolchain ToolchainHandle) error

	// HealthCheck is a cheap sanity check run before reusing a
	// previously provisioned environment.
	HealthCheck(ctx context.Context, env EnvHandle) bool

	// BuildCommand produces the argv/env for one invocation of hook
	// against files, using env (the zero EnvHandle for backends with no
	// managed environment).
	BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec

	// Managed reports whether this backend provisions an isolated
	// environment at all. System, Script, Fail, Pygrep, Meta, and
	// Builtin are unmanaged.
	Managed() bool
}

// registry maps a hook's `language` field to its Backend.
var registry = map[string]Backend{}

func register(b Backend) { registry[b.Name()] = b }

// Lookup returns the Backend registered for name, or nil if unknown.
func Lookup(name string) Backend { return registry[name] }

func init() {
	register(systemBackend{})
	register(scriptBackend{})
	register(failBackend{})
	register(pygrepBackend{})
	register(newPythonBackend())
	register(newNodeBackend())
	register(newGoBackend())
	register(newRustBackend())
	register(newRubyBackend())
	register(newLuaBackend())
	register(newDockerBackend())
	register(newDockerImageBackend())
}
