package langs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// nodeBackend provisions a per-hook node_modules tree via npm, with
// toolchain download delegated to a version manager binary if present.
type nodeBackend struct{}

func newNodeBackend() *nodeBackend { return &nodeBackend{} }

func (nodeBackend) Name() string { return "node" }

func (nodeBackend) Discover(ctx context.Context, versionRequest string) (*ToolchainHandle, error) {
	path, err := exec.LookPath("node")
	if err != nil {
		return nil, nil
	}
	return &ToolchainHandle{Bin: path, Version: versionRequest}, nil
}

func (nodeBackend) Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error) {
	if _, err := exec.LookPath("fnm"); err != nil {
		return nil, &InstallError{Language: "node", Message: fmt.Sprintf("no matching toolchain found for request %q and no node version manager (fnm) is available to download one", versionRequest)}
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "fnm", "install", "--install-dir", scratchDir, versionRequest)
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := withBackoff(ctx, 30*time.Second, cmd.Run); err != nil {
		return nil, &InstallError{Language: "node", Message: "fnm install failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
	}
	return &ToolchainHandle{Root: scratchDir, Bin: filepath.Join(scratchDir, "bin", "node"), Version: versionRequest}, nil
}

func (nodeBackend) ProvisionEnv(ctx context.Context, envDir string, hook Hook, toolchain ToolchainHandle) error {
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return err
	}
	deps := append([]string{}, hook.AdditionalDependencies...)
	if hook.RepoPath != "" {
		if _, err := os.Stat(filepath.Join(hook.RepoPath, "package.json")); err == nil {
			deps = append(deps, hook.RepoPath)
		}
	}
	if len(deps) == 0 {
		return nil
	}

	npm := "npm"
	if toolchain.Root != "" {
		npm = filepath.Join(toolchain.Root, "bin", "npm")
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, npm, append([]string{"install", "--prefix", envDir}, deps...)...)
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := withBackoff(ctx, time.Minute, cmd.Run); err != nil {
		return &InstallError{Language: "node", Message: "npm install failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
	}
	return nil
}

func (nodeBackend) HealthCheck(ctx context.Context, env EnvHandle) bool {
	_, err := os.Stat(env.Dir)
	return err == nil
}

func (nodeBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	argv := splitEntry(hook.Entry)
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)

	overlay := map[string]string{}
	for k, v := range hook.Env {
		overlay[k] = v
	}
	if env.Dir != "" {
		binDir := filepath.Join(env.Dir, "node_modules", ".bin")
		overlay["PATH"] = binDir + string(os.PathListSeparator) + os.Getenv("PATH")
	}
	return CommandSpec{Argv: argv, Dir: hook.RepoPath, Env: overlay}
}

func (nodeBackend) Managed() bool { return true }
