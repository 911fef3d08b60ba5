package langs

import "context"

// failBackend always fails: it prints hook.Entry and matches every
// candidate file, used for hooks whose sole purpose is to reject files
// matching a pattern (e.g. "don't commit to this branch").
type failBackend struct{}

func (failBackend) Name() string { return "fail" }

func (failBackend) Discover(context.Context, string) (*ToolchainHandle, error) {
	return &ToolchainHandle{}, nil
}

func (failBackend) Install(context.Context, string, string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "fail", Message: "the fail backend never downloads a toolchain"}
}

func (failBackend) ProvisionEnv(context.Context, string, Hook, ToolchainHandle) error { return nil }

func (failBackend) HealthCheck(context.Context, EnvHandle) bool { return true }

// BuildCommand returns a command that always exits non-zero: `false`
// itself doesn't print anything, so the runner prints hook.Entry as the
// failure body instead of relying on a subprocess for the message.
func (failBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	return CommandSpec{Argv: []string{"false"}, Dir: hook.RepoPath, Env: hook.Env}
}

func (failBackend) Managed() bool { return false }
