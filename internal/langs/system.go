package langs

import "context"

// systemBackend runs the hook's entry as-is, with no managed
// environment: the "system passthrough" required for Meta and Builtin
// hooks and used directly by hooks that just want to invoke an
// already-installed tool.
type systemBackend struct{}

func (systemBackend) Name() string { return "system" }

func (systemBackend) Discover(context.Context, string) (*ToolchainHandle, error) {
	return &ToolchainHandle{}, nil
}

func (systemBackend) Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "system", Message: "the system backend never downloads a toolchain"}
}

func (systemBackend) ProvisionEnv(context.Context, string, Hook, ToolchainHandle) error { return nil }

func (systemBackend) HealthCheck(context.Context, EnvHandle) bool { return true }

func (systemBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	return CommandSpec{
		Argv: buildArgv(hook, files),
		Dir:  hook.RepoPath,
		Env:  hook.Env,
	}
}

func (systemBackend) Managed() bool { return false }

// buildArgv assembles entry + args + files, splitting entry on
// whitespace the way a shell would for a bare command line (pre-commit's
// `entry` field is a shell-lexed string, not a single executable path).
func buildArgv(hook Hook, files []string) []string {
	argv := splitEntry(hook.Entry)
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)
	return argv
}

// splitEntry does a minimal shell-word split: whitespace-separated,
// with single/double quoted spans kept intact. It doesn't implement full
// shell semantics: no globbing, no variable expansion.
func splitEntry(entry string) []string {
	var (
		words []string
		cur   []rune
		quote rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for _, r := range entry {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur = append(cur, r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t':
			flush()
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}
