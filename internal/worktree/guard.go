// Package worktree implements the working-tree guard: stashing unstaged
// changes around a run so hooks operate on the to-be-committed state,
// with a guaranteed restore on every exit path.
package worktree

import (
	"context"
	"fmt"

	"github.com/astrophena/prek/internal/gitutil"
)

// Error reports a stash or restore failure. A restore failure is never
// silent: Patch names the on-disk location the caller must report to the
// user, since the patch is deliberately not deleted on failure.
type Error struct {
	Op    string
	Patch string
	Err   error
}

func (e *Error) Error() string {
	if e.Patch != "" {
		return fmt.Sprintf("worktree: %s: %v (patch preserved at %s)", e.Op, e.Err, e.Patch)
	}
	return fmt.Sprintf("worktree: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Guard scopes one stash/restore cycle around a run.
type Guard struct {
	repo      *gitutil.Repo
	patchDir  string
	token     *gitutil.StashToken
	restoring bool
}

// New returns a Guard that will stash into patchDir (typically the
// store's patches/ directory) when Stash is called.
func New(repo *gitutil.Repo, patchDir string) *Guard {
	return &Guard{repo: repo, patchDir: patchDir}
}

// Stash saves a patch of the working tree's unstaged changes. The index
// and untracked files are left untouched. Calling Stash twice without an
// intervening Restore is a programming error; it panics.
func (g *Guard) Stash(ctx context.Context) error {
	if g.token != nil {
		panic("worktree: Stash called while a stash is already held")
	}
	token, err := g.repo.StashUnstaged(ctx, g.patchDir)
	if err != nil {
		return &Error{Op: "stash", Err: err}
	}
	g.token = token
	return nil
}

// Restore re-applies the stashed patch, if one is held. It is safe to
// call multiple times or after Stash was never called (a no-op then).
// Callers must invoke Restore on every exit path — success, error, or a
// signal handler — typically via defer immediately after a successful
// Stash.
func (g *Guard) Restore(ctx context.Context) error {
	if g.token == nil {
		return nil
	}
	token := g.token
	g.token = nil
	if err := g.repo.Restore(ctx, token); err != nil {
		return &Error{Op: "restore", Patch: token.Path, Err: err}
	}
	return nil
}

// Run stashes, invokes fn, and restores unconditionally, including when
// fn panics: the panic is re-raised after restore runs.
func Run(ctx context.Context, repo *gitutil.Repo, patchDir string, fn func() error) (err error) {
	g := New(repo, patchDir)
	if err := g.Stash(ctx); err != nil {
		return err
	}

	defer func() {
		restoreErr := g.Restore(ctx)
		if r := recover(); r != nil {
			panic(r)
		}
		if err == nil {
			err = restoreErr
		}
	}()

	return fn()
}
