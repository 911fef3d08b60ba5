package main

import (
	"context"
	"flag"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/reporter"
)

// hookImplApp is `prek hook-impl`: the target of the shim scripts
// InstallHookScript writes into .git/hooks. Git invokes it with the
// hook's own positional arguments (a commit message file path, a
// remote name and URL, and so on, depending on --hook-type); none of
// prek's fast-path or language hooks currently consume those, so
// they're accepted and ignored beyond selecting the run's stage.
type hookImplApp struct {
	hookType string
	hookDir  string
}

func (a *hookImplApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.hookType, "hook-type", "", "The git hook type that invoked this shim.")
	fs.StringVar(&a.hookDir, "hook-dir", "", "The .git/hooks directory the shim was installed into (unused; kept for shim compatibility).")
}

func (a *hookImplApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	stage := config.Stage(a.hookType)
	if stage == "" {
		stage = config.StageCommit
	}

	return runHooks(ctx, env, runRequest{
		stage:     stage,
		verbosity: reporter.Normal,
	})
}
