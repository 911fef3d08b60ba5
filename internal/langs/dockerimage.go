package langs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// dockerImageBackend runs a pre-built image (no build step): hook.Entry
// is "<image-ref> <command...>", the same convention pre-commit uses for
// the docker_image language.
type dockerImageBackend struct{}

func newDockerImageBackend() *dockerImageBackend { return &dockerImageBackend{} }

func (dockerImageBackend) Name() string { return "docker_image" }

func (dockerImageBackend) Discover(ctx context.Context, versionRequest string) (*ToolchainHandle, error) {
	path, err := exec.LookPath(containerRuntime())
	if err != nil {
		return nil, nil
	}
	return &ToolchainHandle{Bin: path, Version: versionRequest}, nil
}

func (dockerImageBackend) Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "docker_image", Message: "prek does not install the container engine; it must already be on PATH"}
}

func (dockerImageBackend) ProvisionEnv(ctx context.Context, envDir string, hook Hook, toolchain ToolchainHandle) error {
	return nil
}

func (dockerImageBackend) HealthCheck(ctx context.Context, env EnvHandle) bool {
	return exec.CommandContext(ctx, containerRuntime(), "version").Run() == nil
}

func (dockerImageBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	cwd, _ := os.Getwd()
	entry := splitEntry(hook.Entry)

	argv := []string{containerRuntime(), "run", "--rm", "-v", cwd + ":/src", "-w", "/src"}
	for k, v := range hook.Env {
		argv = append(argv, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	argv = append(argv, entry...)
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)
	return CommandSpec{Argv: argv, Dir: hook.RepoPath}
}

func (dockerImageBackend) Managed() bool { return false }
