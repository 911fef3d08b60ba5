package main

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/hooks"
)

// listApp is `prek list`: it enumerates every configured hook across
// the workspace, or with -builtins, the fixed fast-path hook set.
type listApp struct {
	builtins bool
}

func (a *listApp) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.builtins, "builtins", false, "List the built-in fast-path hooks instead of configured ones.")
}

func (a *listApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	if a.builtins {
		ids := hooks.BuiltinIDs()
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintln(env.Stdout, id)
		}
		return nil
	}

	repo, err := openRepo(ctx)
	if err != nil {
		return err
	}
	ws, err := openWorkspace(ctx, repo)
	if err != nil {
		return err
	}
	for _, project := range ws.Projects {
		for _, r := range project.Config.Repos {
			for _, h := range r.Hooks {
				label := h.ID
				if project.RelPath != "" {
					label = project.RelPath + ":" + h.ID
				}
				fmt.Fprintf(env.Stdout, "%s\t%s\n", label, h.Language)
			}
		}
	}
	return nil
}
