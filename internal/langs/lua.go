package langs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// luaBackend is system-only: dependencies are installed with luarocks
// into a per-hook tree, against whatever lua is already on PATH.
type luaBackend struct{}

func newLuaBackend() *luaBackend { return &luaBackend{} }

func (luaBackend) Name() string { return "lua" }

func (luaBackend) Discover(ctx context.Context, versionRequest string) (*ToolchainHandle, error) {
	path, err := exec.LookPath("lua")
	if err != nil {
		return nil, nil
	}
	return &ToolchainHandle{Bin: path, Version: versionRequest}, nil
}

func (luaBackend) Install(ctx context.Context, versionRequest, scratchDir string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "lua", Message: "lua is system-only; prek does not download lua toolchains"}
}

func (luaBackend) ProvisionEnv(ctx context.Context, envDir string, hook Hook, toolchain ToolchainHandle) error {
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return err
	}
	deps := append([]string{}, hook.AdditionalDependencies...)
	if hook.RepoPath != "" {
		matches, _ := filepath.Glob(filepath.Join(hook.RepoPath, "*.rockspec"))
		if len(matches) > 0 {
			deps = append(deps, matches[0])
		}
	}
	if len(deps) == 0 {
		return nil
	}
	for _, dep := range deps {
		var out bytes.Buffer
		cmd := exec.CommandContext(ctx, "luarocks", "install", "--tree", envDir, dep)
		cmd.Stdout, cmd.Stderr = &out, &out
		if err := withBackoff(ctx, time.Minute, cmd.Run); err != nil {
			return &InstallError{Language: "lua", Message: "luarocks install failed", Argv: cmd.Args, Stderr: out.String(), Err: err}
		}
	}
	return nil
}

func (luaBackend) HealthCheck(ctx context.Context, env EnvHandle) bool {
	_, err := os.Stat(env.Dir)
	return err == nil
}

func (luaBackend) BuildCommand(env EnvHandle, hook Hook, files []string) CommandSpec {
	argv := splitEntry(hook.Entry)
	argv = append(argv, hook.Args...)
	argv = append(argv, files...)

	overlay := map[string]string{}
	for k, v := range hook.Env {
		overlay[k] = v
	}
	if env.Dir != "" {
		overlay["LUA_PATH"] = filepath.Join(env.Dir, "share", "lua", "5.4", "?.lua") + ";;"
		overlay["LUA_CPATH"] = filepath.Join(env.Dir, "lib", "lua", "5.4", "?.so") + ";;"
		overlay["PATH"] = filepath.Join(env.Dir, "bin") + string(os.PathListSeparator) + os.Getenv("PATH")
	}
	return CommandSpec{Argv: argv, Dir: hook.RepoPath, Env: overlay}
}

func (luaBackend) Managed() bool { return true }
