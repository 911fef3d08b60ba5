// Command prek is a git hook orchestrator: it discovers a workspace of
// nested project configs, resolves which hooks apply to which changed
// files, and runs them concurrently with per-language environments
// provisioned on demand.
package main

import (
	"context"
	"os"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/gitutil"
	"github.com/astrophena/prek/internal/store"
	"github.com/astrophena/prek/internal/workspace"
)

// openRepo resolves the git repository containing the current
// directory.
func openRepo(ctx context.Context) (*gitutil.Repo, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := gitutil.Root(ctx, dir)
	if err != nil {
		return nil, err
	}
	return &gitutil.Repo{Dir: root}, nil
}

// openWorkspace discovers the project graph rooted above the current
// directory, using repo's gitignore rules (plus prek's own
// dot-directory/cookiecutter skips) to prune the walk.
func openWorkspace(ctx context.Context, repo *gitutil.Repo) (*workspace.Workspace, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, gitRoot, err := workspace.FindRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	ignored := func(path string) bool { return repo.IsIgnored(ctx, path) }
	return workspace.Discover(root, gitRoot, ignored)
}

// openStore opens the on-disk cache the PREK_HOME environment variable
// names, falling back to store.DefaultPath.
func openStore(env *cli.Env) (*store.Store, error) {
	path := env.Getenv("PREK_HOME")
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

// resolveRepo clones (or reuses a cached clone of) a remote hook
// repository at its pinned rev into the store, returning the directory
// hooks in it should run from. Local repos run from the project root.
func resolveRepo(s *store.Store) func(ctx context.Context, repo config.Repo, projectRoot string) (string, error) {
	return func(ctx context.Context, repo config.Repo, projectRoot string) (string, error) {
		if repo.Kind != config.RepoRemote {
			return projectRoot, nil
		}
		key := store.RepoKey(repo.URL, repo.Rev)
		dest := s.PathFor(store.KindRepo, key)
		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}

		lock, err := s.LockExclusive(store.KindRepo, key)
		if err != nil {
			return "", err
		}
		defer lock.Unlock()

		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}

		scratch, err := s.ScratchDir()
		if err != nil {
			return "", err
		}
		defer os.RemoveAll(scratch)

		if err := cloneAtRev(ctx, repo.URL, repo.Rev, scratch); err != nil {
			return "", err
		}
		if err := s.Promote(scratch, dest); err != nil {
			return "", err
		}
		return dest, nil
	}
}

func cloneAtRev(ctx context.Context, url, rev, dest string) error {
	_, err := gitutil.CloneAtRev(ctx, url, rev, dest)
	return err
}
