package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/envmanager"
	"github.com/astrophena/prek/internal/langs"
	"github.com/astrophena/prek/internal/workspace"
)

// installApp is `prek install`: it writes a shim into .git/hooks for
// each requested lifecycle stage.
type installApp struct {
	hookTypes stringList
}

func (a *installApp) Flags(fs *flag.FlagSet) {
	fs.Var(&a.hookTypes, "hook-type", "Git hook type to install a shim for (repeatable; defaults to the config's default_install_hook_types, or pre-commit).")
}

func (a *installApp) Run(ctx context.Context) error {
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}

	stages := a.hookTypes.values
	if len(stages) == 0 {
		if ws, err := openWorkspace(ctx, repo); err == nil {
			stages = stageStrings(rootDefaultInstallStages(ws))
		}
	}
	if len(stages) == 0 {
		stages = []string{string(config.StageCommit)}
	}

	self, err := os.Executable()
	if err != nil {
		return err
	}

	if err := repo.InstallHookScript(ctx, stages, self); err != nil {
		return err
	}

	env := cli.GetEnv(ctx)
	for _, stage := range stages {
		fmt.Fprintf(env.Stdout, "installed shim for %s\n", stage)
	}
	return nil
}

func rootDefaultInstallStages(ws *workspace.Workspace) []config.Stage {
	for _, p := range ws.Projects {
		if p.IsRoot() {
			return p.Config.DefaultInstallHookTypes
		}
	}
	return nil
}

func stageStrings(stages []config.Stage) []string {
	out := make([]string, len(stages))
	for i, s := range stages {
		out[i] = string(s)
	}
	return out
}

// uninstallApp is `prek uninstall`: it removes shims InstallHookScript
// previously wrote.
type uninstallApp struct {
	hookTypes stringList
}

func (a *uninstallApp) Flags(fs *flag.FlagSet) {
	fs.Var(&a.hookTypes, "hook-type", "Git hook type to remove (repeatable; defaults to every recognized stage).")
}

func (a *uninstallApp) Run(ctx context.Context) error {
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	stages := a.hookTypes.values
	if len(stages) == 0 {
		stages = allStageNames()
	}
	if err := repo.UninstallHookScript(ctx, stages); err != nil {
		return err
	}
	env := cli.GetEnv(ctx)
	fmt.Fprintln(env.Stdout, "uninstalled hook shims")
	return nil
}

func allStageNames() []string {
	stages := []config.Stage{
		config.StageCommit, config.StageMergeCommit, config.StagePush,
		config.StagePrepareMsg, config.StageCommitMsg, config.StagePostCheckout,
		config.StagePostCommit, config.StagePostMerge, config.StagePostRewrite,
	}
	return stageStrings(stages)
}

// installHooksApp is `prek install-hooks`: it pre-warms every
// configured hook's language environment without running any hook,
// so the first real `run` isn't slowed down by toolchain provisioning.
type installHooksApp struct{}

func (a *installHooksApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(ctx, repo)
	if err != nil {
		return err
	}
	s, err := openStore(env)
	if err != nil {
		return err
	}
	mgr := envmanager.New(s)
	resolve := resolveRepo(s)

	for _, project := range ws.Projects {
		for _, r := range project.Config.Repos {
			for _, h := range r.Hooks {
				repoPath, err := resolve(ctx, r, project.Path)
				if err != nil {
					return err
				}
				if r.Kind == config.RepoRemote {
					h, err = config.ResolveRemoteHook(repoPath, h)
					if err != nil {
						return fmt.Errorf("prek install-hooks: %w", err)
					}
				}
				lhook := langs.Hook{
					ID:                     h.ID,
					Entry:                  h.Entry,
					Args:                   h.Args,
					Language:               h.Language,
					LanguageVersion:        string(h.LanguageVersion),
					AdditionalDependencies: h.AdditionalDependencies,
					Env:                    h.Env,
					RepoPath:               repoPath,
				}
				if _, err := mgr.Ensure(ctx, lhook); err != nil {
					return fmt.Errorf("prek install-hooks: %s: %w", h.ID, err)
				}
				fmt.Fprintf(env.Stdout, "environment ready: %s\n", h.ID)
			}
		}
	}
	return nil
}
