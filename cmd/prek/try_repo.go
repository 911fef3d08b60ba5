package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/envmanager"
	"github.com/astrophena/prek/internal/gitutil"
	"github.com/astrophena/prek/internal/reporter"
	"github.com/astrophena/prek/internal/scheduler"
	"github.com/astrophena/prek/internal/workspace"
	"github.com/astrophena/prek/internal/worktree"
)

// tryRepoApp is `prek try-repo <url>`: it runs every hook a remote
// repo's manifest declares against the current workspace's changed
// files, without adding the repo to any config file.
type tryRepoApp struct {
	rev      string
	allFiles bool
	verbose  bool
}

func (a *tryRepoApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.rev, "rev", "HEAD", "Revision of the repo to try.")
	fs.BoolVar(&a.allFiles, "all-files", false, "Run against every tracked file.")
	fs.BoolVar(&a.verbose, "v", false, "Print every hook's output.")
}

func (a *tryRepoApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) == 0 {
		return fmt.Errorf("prek try-repo: expected a repo URL")
	}
	url := env.Args[0]

	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	s, err := openStore(env)
	if err != nil {
		return err
	}

	scratch, err := s.ScratchDir()
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	clone, err := gitutil.CloneAtRev(ctx, url, a.rev, scratch)
	if err != nil {
		return err
	}
	rev, err := clone.RevParse(ctx, "HEAD")
	if err != nil {
		return err
	}

	manifestHooks, err := config.LoadManifest(scratch + "/" + config.ManifestFileName)
	if err != nil {
		return err
	}
	if len(manifestHooks) == 0 {
		return fmt.Errorf("prek try-repo: %s has no hooks", url)
	}

	cfg := &config.Config{
		Repos: []config.Repo{{Kind: config.RepoRemote, URL: url, Rev: rev, Hooks: manifestHooks}},
	}

	ws := &workspace.Workspace{
		Root:    repo.Dir,
		GitRoot: repo.Dir,
		Projects: []*workspace.Project{{
			Path: repo.Dir, RelPath: "", Config: cfg,
		}},
	}

	opts := scheduler.Options{
		Stage:       config.StageCommit,
		Repo:        repo,
		ResolveRepo: resolveRepo(s),
		EnvManager:  envmanager.New(s),
		Verbose:     a.verbose,
		Files:       scheduler.FileSelection{AllFiles: a.allFiles},
	}
	runner := scheduler.New(ws, opts)
	rep := reporter.New(env.Stdout, verbosityFrom(a.verbose, false, false))

	var result scheduler.RunResult
	err = worktree.Run(ctx, repo, s.PatchesDir(), func() error {
		var runErr error
		result, runErr = runner.Run(ctx)
		return runErr
	})
	if err != nil {
		return err
	}
	for _, pr := range result.Projects {
		rep.PrintProject(pr)
	}
	if !result.Passed() {
		return &exitCodeError{code: result.ExitCode()}
	}
	return nil
}
