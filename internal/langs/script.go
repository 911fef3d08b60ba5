package langs

import (
	"context"
	"path/filepath"
)

// scriptBackend runs a path relative to the hook's source: the cloned
// repo root for a remote hook, cwd for a local hook. No managed
// environment.
type scriptBackend struct{}

func (scriptBackend) Name() string { return "script" }

func (scriptBackend) Discover(context.Context, string) (*ToolchainHandle, error) {
	return &ToolchainHandle{}, nil
}

func (scriptBackend) Install(context.Context, string, string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "script", Message: "the script backend never downloads a toolchain"}
}

func (scriptBackend) ProvisionEnv(context.Context, string, Hook, ToolchainHandle) error { return nil }

func (scriptBackend) HealthCheck(context.Context, EnvHandle) bool { return true }

func (scriptBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	argv := splitEntry(hook.Entry)
	if len(argv) > 0 && !filepath.IsAbs(argv[0]) {
		argv[0] = filepath.Join(hook.RepoPath, argv[0])
	}
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)
	return CommandSpec{Argv: argv, Dir: hook.RepoPath, Env: hook.Env}
}

func (scriptBackend) Managed() bool { return false }
