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

// pythonBackend provisions a venv per hook, installing the hook's own
// package (for a remote/local hook backed by a Python project) plus
// AdditionalDependencies via the configured installer. It supports
// toolchain download through the installer's own Python-fetching
// capability.
type pythonBackend struct {
	// installer is the name of the Python package installer binary
	// (defaults to "uv", matching pre-commit's modern default; falls
	// back to "pip" if uv isn't on PATH).
	installer string
}

func newPythonBackend() *pythonBackend { return &pythonBackend{installer: "uv"} }

func (b *pythonBackend) Name() string { return "python" }

func (b *pythonBackend) resolveInstaller() string {
	if _, err := exec.LookPath(b.installer); err == nil {
		return b.installer
	}
	return "pip"
}

func (b *pythonBackend) Discover(ctx context.Context, versionRequest string) (*ToolchainHandle, error) {
	candidates := []string{"python3", "python"}
	if versionRequest != "" && versionRequest != string(VersionDefault) && versionRequest != string(VersionSystem) {
		candidates = append([]string{"python" + versionRequest}, candidates...)
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return &ToolchainHandle{Bin: path, Version: versionRequest}, nil
		}
	}
	return nil, nil
}

func (b *pythonBackend) Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error) {
	installer := b.resolveInstaller()
	if installer != "uv" {
		return nil, &InstallError{Language: "python", Message: fmt.Sprintf("no matching toolchain found for request %q and uv is unavailable to download one", versionRequest)}
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, "uv", "python", "install", "--install-dir", scratchDir, pyVersionArg(versionRequest))
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := withBackoff(ctx, 30*time.Second, cmd.Run); err != nil {
		return nil, &InstallError{Language: "python", Message: "uv python install failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
	}
	bin := filepath.Join(scratchDir, "bin", "python3")
	return &ToolchainHandle{Root: scratchDir, Bin: bin, Version: versionRequest}, nil
}

func pyVersionArg(v string) string {
	if v == "" || v == string(VersionDefault) {
		return "3"
	}
	return v
}

func (b *pythonBackend) ProvisionEnv(ctx context.Context, envDir string, hook Hook, toolchain ToolchainHandle) error {
	pythonBin := toolchain.Bin
	if pythonBin == "" {
		pythonBin = "python3"
	}

	installer := b.resolveInstaller()
	if installer == "uv" {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "uv", "venv", "--python", pythonBin, envDir)
		cmd.Stdout, cmd.Stderr = &out, &out
		if err := cmd.Run(); err != nil {
			return &InstallError{Language: "python", Message: "uv venv failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
		}
	} else {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, pythonBin, "-m", "venv", envDir)
		cmd.Stdout, cmd.Stderr = &out, &out
		if err := cmd.Run(); err != nil {
			return &InstallError{Language: "python", Message: "venv creation failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
		}
	}

	venvPython := filepath.Join(envDir, "bin", "python3")
	deps := append([]string{}, hook.AdditionalDependencies...)
	if hook.RepoPath != "" {
		deps = append(deps, hook.RepoPath)
	}
	if len(deps) == 0 {
		return nil
	}

	var cmd *exec.Cmd
	if installer == "uv" {
		cmd = exec.CommandContext(ctx, "uv", append([]string{"pip", "install", "--python", venvPython}, deps...)...)
	} else {
		cmd = exec.CommandContext(ctx, venvPython, append([]string{"-m", "pip", "install"}, deps...)...)
	}
	var out bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &out
	if err := withBackoff(ctx, time.Minute, cmd.Run); err != nil {
		return &InstallError{Language: "python", Message: "dependency install failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
	}
	return nil
}

func (b *pythonBackend) HealthCheck(ctx context.Context, env EnvHandle) bool {
	bin := filepath.Join(env.Dir, "bin", "python3")
	if _, err := os.Stat(bin); err != nil {
		return false
	}
	return exec.CommandContext(ctx, bin, "--version").Run() == nil
}

func (b *pythonBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	argv := splitEntry(hook.Entry)
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)

	envOverlay := map[string]string{}
	for k, v := range hook.Env {
		envOverlay[k] = v
	}
	if env.Dir != "" {
		envOverlay["VIRTUAL_ENV"] = env.Dir
		envOverlay["PATH"] = filepath.Join(env.Dir, "bin") + string(os.PathListSeparator) + os.Getenv("PATH")
	}
	return CommandSpec{Argv: argv, Dir: hook.RepoPath, Env: envOverlay}
}

func (b *pythonBackend) Managed() bool { return true }
