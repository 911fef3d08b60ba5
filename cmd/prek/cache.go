package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/store"
)

// cacheApp is `prek cache <dir|gc|clean|size>`: it dispatches on its
// first positional argument to one of the store-maintenance
// subcommands, since none of them need their own flag surface beyond
// gc's.
type cacheApp struct {
	maxAge time.Duration
	dryRun bool
}

func (a *cacheApp) Flags(fs *flag.FlagSet) {
	fs.DurationVar(&a.maxAge, "max-age", 30*24*time.Hour, "Remove cache entries unused for longer than this, in gc.")
	fs.BoolVar(&a.dryRun, "dry-run", false, "Report what gc would remove without removing it.")
}

func (a *cacheApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) == 0 {
		return fmt.Errorf("prek cache: expected a subcommand (dir, gc, clean, size)")
	}
	sub := env.Args[0]

	s, err := openStore(env)
	if err != nil {
		return err
	}

	switch sub {
	case "dir":
		fmt.Fprintln(env.Stdout, s.Path)
		return nil
	case "size":
		for bucket, n := range s.Size() {
			fmt.Fprintf(env.Stdout, "%s\t%d\n", bucket, n)
		}
		return nil
	case "clean":
		if err := s.Clean(); err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, "cache cleaned")
		return nil
	case "gc":
		return a.runGC(ctx, env, s)
	default:
		return fmt.Errorf("prek cache: unknown subcommand %q", sub)
	}
}

func (a *cacheApp) runGC(ctx context.Context, env *cli.Env, s *store.Store) error {
	liveRepos := make(map[string]bool)
	if repo, err := openRepo(ctx); err == nil {
		if ws, err := openWorkspace(ctx, repo); err == nil {
			for _, p := range ws.Projects {
				for _, r := range p.Config.Repos {
					if r.Kind == config.RepoRemote {
						liveRepos[store.RepoKey(r.URL, r.Rev)] = true
					}
				}
			}
		}
	}
	// Live env keys aren't recomputed here (that needs the same
	// installSourceHash inputs envmanager.Ensure uses per hook); gc
	// instead relies on maxAge to reap anything genuinely unused.
	liveEnvs := make(map[string]bool)

	result, err := s.GarbageCollect(liveRepos, liveEnvs, a.maxAge, a.dryRun)
	if err != nil {
		return err
	}
	verb := "removed"
	if a.dryRun {
		verb = "would remove"
	}
	fmt.Fprintf(env.Stdout, "%s %d repo(s), %d env(s), freeing %d bytes\n", verb, result.RemovedRepos, result.RemovedEnvs, result.FreedBytes)
	return nil
}
