package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/astrophena/prek/internal/autoupdate"
	"github.com/astrophena/prek/internal/cli"
)

// autoUpdateApp is `prek auto-update`: it bumps every remote repo in
// the given (or discovered) config files to its newest eligible tag.
type autoUpdateApp struct {
	bleedingEdge bool
	freeze       bool
	cooldown     int
	repos        stringList
	dryRun       bool
}

func (a *autoUpdateApp) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.bleedingEdge, "bleeding-edge", false, "Pin to each repo's default branch tip instead of its newest tag.")
	fs.BoolVar(&a.freeze, "freeze", false, "Pin to the resolved commit SHA instead of the tag name.")
	fs.IntVar(&a.cooldown, "cooldown-days", 0, "Skip tags younger than this many days.")
	fs.Var(&a.repos, "repo", "Restrict updates to this repo URL (repeatable).")
	fs.BoolVar(&a.dryRun, "dry-run", false, "Compute updates without writing any file.")
}

func (a *autoUpdateApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	paths := env.Args
	if len(paths) == 0 {
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		ws, err := openWorkspace(ctx, repo)
		if err != nil {
			return err
		}
		for _, p := range ws.Projects {
			paths = append(paths, p.ConfigPath)
		}
	}

	s, err := openStore(env)
	if err != nil {
		return err
	}

	opts := autoupdate.Options{
		BleedingEdge: a.bleedingEdge,
		Freeze:       a.freeze,
		CooldownDays: a.cooldown,
		RepoFilter:   a.repos.values,
	}

	results, err := autoupdate.Run(ctx, s, paths, opts, a.dryRun)
	if err != nil {
		return err
	}

	for _, fr := range results {
		for _, u := range fr.Repos {
			if !u.Changed {
				continue
			}
			verb := "updating"
			if a.dryRun {
				verb = "would update"
			}
			fmt.Fprintf(env.Stdout, "%s: %s %s: %s -> %s\n", fr.Path, verb, u.URL, u.OldRev, u.NewRev)
		}
	}
	return nil
}
