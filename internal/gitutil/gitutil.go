// Package gitutil is a thin, typed wrapper over the git subprocess: staged
// and unstaged file sets, ref resolution, stash/restore of the working
// tree, attribute queries, and hook-script installation.
package gitutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Error reports a failed git invocation: the human summary of what was
// being attempted, the argv, and the subprocess's stderr.
type Error struct {
	Summary string
	Args    []string
	Stderr  string
	Err     error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("git: %s (%s): %v: %s", e.Summary, strings.Join(e.Args, " "), e.Err, e.Stderr)
	}
	return fmt.Sprintf("git: %s (%s): %v", e.Summary, strings.Join(e.Args, " "), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// keepGitEnv lists GIT_* environment variables that are safe to forward to
// a subprocess operating against an external repository (e.g. a clone into
// the store). All others are stripped so leftover state from the calling
// process (GIT_DIR, GIT_INDEX_FILE, ...) doesn't leak into an unrelated
// repository.
var keepGitEnv = map[string]bool{
	"GIT_EXEC_PATH":              true,
	"GIT_SSH":                    true,
	"GIT_SSH_COMMAND":            true,
	"GIT_SSL_CAINFO":             true,
	"GIT_SSL_NO_VERIFY":          true,
	"GIT_CONFIG_COUNT":           true,
	"GIT_HTTP_PROXY_AUTHMETHOD":  true,
	"GIT_ALLOW_PROTOCOL":         true,
	"GIT_ASKPASS":                true,
}

// Repo is a handle to a working git repository rooted at Dir.
type Repo struct {
	// Dir is the repository's working directory. Commands run with this
	// as their current directory.
	Dir string
	// External marks a repository the tool cloned into its own store
	// (a remote hook source), as opposed to the user's own repository.
	// External repos have GIT_* environment variables stripped from
	// their subprocess environment.
	External bool
}

// Root discovers the enclosing repository root starting from dir, or
// fails if dir is not inside a git repository.
func Root(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, &Repo{Dir: dir}, "get git root", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func run(ctx context.Context, r *Repo, summary string, args ...string) ([]byte, error) {
	full := append([]string{"-c", "core.useBuiltinFSMonitor=false"}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Dir = r.Dir
	cmd.Stdin = nil

	env := os.Environ()
	if r.External {
		filtered := env[:0]
		for _, kv := range env {
			name, _, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			if strings.HasPrefix(name, "GIT_") &&
				!strings.HasPrefix(name, "GIT_CONFIG_KEY_") &&
				!strings.HasPrefix(name, "GIT_CONFIG_VALUE_") &&
				!keepGitEnv[name] {
				continue
			}
			filtered = append(filtered, kv)
		}
		env = filtered
	}
	cmd.Env = append(env, "GIT_TERMINAL_PROMPT=0", "TERM=dumb")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &Error{Summary: summary, Args: full, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// zsplit splits NUL-terminated git output (produced with -z) into paths.
func zsplit(data []byte) []string {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// StagedFiles returns paths in the index (added/modified), excluding
// deletions.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := run(ctx, r, "get staged files",
		"diff", "--cached", "--name-only", "--diff-filter=ACMRTUXB", "--no-ext-diff", "-z")
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// IntentToAddFiles returns paths added with `git add -N`: staged as
// additions but with no content in the index yet.
func (r *Repo) IntentToAddFiles(ctx context.Context) ([]string, error) {
	out, err := run(ctx, r, "get intent-to-add files",
		"diff", "--no-ext-diff", "--ignore-submodules", "--diff-filter=A", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// FilesInDiff returns paths changed between two refs, trying the
// three-dot (merge-base) form first and falling back to two-dot.
func (r *Repo) FilesInDiff(ctx context.Context, from, to string) ([]string, error) {
	base := []string{"diff", "--name-only", "--diff-filter=ACMRT", "--no-ext-diff", "-z"}
	threeDot := append(append([]string{}, base...), from+"..."+to)
	if out, err := run(ctx, r, "get changed files", threeDot...); err == nil {
		return zsplit(out), nil
	}
	twoDot := append(append([]string{}, base...), from+".."+to)
	out, err := run(ctx, r, "get changed files", twoDot...)
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// AllTrackedFiles returns every path tracked by git.
func (r *Repo) AllTrackedFiles(ctx context.Context) ([]string, error) {
	return r.FilesInDirectory(ctx, ".")
}

// FilesInDirectory returns tracked files under dir, relative to the
// repository root.
func (r *Repo) FilesInDirectory(ctx context.Context, dir string) ([]string, error) {
	out, err := run(ctx, r, "ls-files", "ls-files", "-z", "--", dir)
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// Attr queries a git attribute (e.g. "filter") for path.
func (r *Repo) Attr(ctx context.Context, path, name string) (string, error) {
	out, err := run(ctx, r, "check-attr", "check-attr", name, "--", path)
	if err != nil {
		return "", err
	}
	// Output format: "<path>: <name>: <value>".
	_, value, ok := strings.Cut(strings.TrimSpace(string(out)), name+": ")
	if !ok {
		return "unspecified", nil
	}
	return value, nil
}

// HashObject computes the git blob hash of the file at path as it exists
// on disk, independent of the index.
func (r *Repo) HashObject(ctx context.Context, path string) (string, error) {
	out, err := run(ctx, r, "hash-object", "hash-object", "--", path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// StashToken names a saved working-tree patch, restorable with Restore.
type StashToken struct {
	// Path is the on-disk patch file location under the store's
	// patches/ directory.
	Path string
}

// StashUnstaged saves a patch of unstaged changes only (index and
// untracked files are preserved) into patchDir, returning a token to pass
// to Restore. If there are no unstaged changes, it returns a nil token.
func (r *Repo) StashUnstaged(ctx context.Context, patchDir string) (*StashToken, error) {
	diff, err := run(ctx, r, "diff for stash", "diff", "--no-ext-diff", "--no-color", "--no-textconv", "--ignore-submodules")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(diff)) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(patchDir, 0o755); err != nil {
		return nil, fmt.Errorf("gitutil: creating patch dir: %w", err)
	}
	name := fmt.Sprintf("%d.patch", time.Now().UnixNano())
	path := filepath.Join(patchDir, name)
	if err := os.WriteFile(path, diff, 0o644); err != nil {
		return nil, fmt.Errorf("gitutil: writing patch: %w", err)
	}

	if _, err := run(ctx, r, "checkout unstaged changes", "checkout", "--", "."); err != nil {
		return nil, err
	}

	return &StashToken{Path: path}, nil
}

// Restore applies a patch saved by StashUnstaged back onto the working
// tree using a three-way merge. If applying the patch fails, the patch is
// left on disk and the returned error names its path.
func (r *Repo) Restore(ctx context.Context, token *StashToken) error {
	if token == nil {
		return nil
	}
	_, err := run(ctx, r, "restore unstaged changes", "apply", "--whitespace=nowarn", "--3way", token.Path)
	if err != nil {
		return fmt.Errorf("failed to restore working tree changes, patch preserved at %s: %w", token.Path, err)
	}
	return os.Remove(token.Path)
}

// FilesNotStaged reports which of files have unstaged modifications,
// used for post-hook modification detection.
func (r *Repo) FilesNotStaged(ctx context.Context, files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	args := append([]string{"diff", "--name-only", "--no-ext-diff", "-z", "--"}, files...)
	out, err := run(ctx, r, "diff", args...)
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// HasUnmergedPaths reports whether the index has unresolved merge
// conflicts.
func (r *Repo) HasUnmergedPaths(ctx context.Context) (bool, error) {
	out, err := run(ctx, r, "check unmerged paths", "ls-files", "--unmerged", "-z")
	if err != nil {
		return false, err
	}
	return len(bytes.TrimSpace(out)) > 0, nil
}

// GitDir returns the repository's .git directory (or worktree-specific
// git dir).
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	out, err := run(ctx, r, "get git dir", "rev-parse", "--git-dir")
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.Dir, dir)
	}
	return dir, nil
}

// hookShimTemplate is written into .git/hooks/<stage> by InstallHookScript. It
// dispatches to `prek hook-impl` so upgrading the binary doesn't require
// reinstalling hooks.
const hookShimTemplate = `#!/bin/sh
# installed by prek — do not edit
PREK_BIN="%s"
if command -v prek >/dev/null 2>&1; then
	PREK_BIN="prek"
fi
exec "$PREK_BIN" hook-impl --hook-type=%s --hook-dir="$(dirname "$0")" -- "$@"
`

// InstallHookScript writes a shim into .git/hooks/<stage> for each stage
// in stages, invoking `hook-impl` with a fallback to selfPath if `prek`
// isn't on PATH.
func (r *Repo) InstallHookScript(ctx context.Context, stages []string, selfPath string) error {
	gitDir, err := r.GitDir(ctx)
	if err != nil {
		return err
	}
	hooksDir := filepath.Join(gitDir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return fmt.Errorf("gitutil: creating hooks dir: %w", err)
	}
	for _, stage := range stages {
		path := filepath.Join(hooksDir, stage)
		script := fmt.Sprintf(hookShimTemplate, selfPath, stage)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			return fmt.Errorf("gitutil: writing hook script %s: %w", stage, err)
		}
	}
	return nil
}

// Config reads a git config value, returning "" if the key is unset.
func (r *Repo) Config(ctx context.Context, key string) (string, error) {
	out, err := run(ctx, r, "get config", "config", "--get", key)
	if err != nil {
		var gitErr *Error
		if errors.As(err, &gitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch resolves the short name of the branch HEAD points at, or
// "" when HEAD is detached.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := run(ctx, r, "get current branch", "symbolic-ref", "--short", "HEAD")
	if err != nil {
		var gitErr *Error
		if errors.As(err, &gitErr) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// AddedFiles returns paths staged as new additions (diff-filter=A against
// HEAD), used by check-added-large-files to scope its check to newly
// tracked content instead of every candidate file.
func (r *Repo) AddedFiles(ctx context.Context) ([]string, error) {
	out, err := run(ctx, r, "get added files",
		"diff", "--cached", "--name-only", "--diff-filter=A", "--no-ext-diff", "-z")
	if err != nil {
		return nil, err
	}
	return zsplit(out), nil
}

// LFSFiles reports which of files are tracked by Git LFS (pointer files
// under .gitattributes filter=lfs), by checking the "filter" attribute.
func (r *Repo) LFSFiles(ctx context.Context, files []string) (map[string]bool, error) {
	lfs := make(map[string]bool, len(files))
	for _, f := range files {
		v, err := r.Attr(ctx, f, "filter")
		if err != nil {
			return nil, err
		}
		if v == "lfs" {
			lfs[f] = true
		}
	}
	return lfs, nil
}

// ExecutableFiles reports which of files are marked executable in the
// index, used as a git-native fallback for platforms (Windows) where the
// filesystem's own executable bit isn't meaningful.
func (r *Repo) ExecutableFiles(ctx context.Context, files []string) (map[string]bool, error) {
	if len(files) == 0 {
		return nil, nil
	}
	args := append([]string{"ls-files", "--stage", "-z", "--"}, files...)
	out, err := run(ctx, r, "ls-files --stage", args...)
	if err != nil {
		return nil, err
	}
	exec := make(map[string]bool)
	for _, entry := range zsplit(out) {
		meta, name, ok := strings.Cut(entry, "\t")
		if !ok {
			continue
		}
		modeStr, _, _ := strings.Cut(strings.TrimSpace(meta), " ")
		mode, err := strconv.ParseUint(modeStr, 8, 32)
		if err != nil {
			continue
		}
		if mode&0o111 != 0 {
			exec[name] = true
		}
	}
	return exec, nil
}

// CloneMirror creates (or, if dir already holds a mirror, updates) a
// bare mirror clone of url at dir, fetching every ref including tags.
// Mirrors back the store's per-URL cache that auto-update walks for tag
// history, independent of any single revision a project has pinned.
func CloneMirror(ctx context.Context, url, dir string) (*Repo, error) {
	r := &Repo{Dir: dir, External: true}
	if _, err := os.Stat(filepath.Join(dir, "HEAD")); err == nil {
		if _, err := run(ctx, r, "fetch mirror", "fetch", "--prune", "--tags", "origin"); err != nil {
			return nil, err
		}
		return r, nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("gitutil: creating mirror parent: %w", err)
	}
	if _, err := run(ctx, &Repo{Dir: "", External: true}, "clone mirror", "clone", "--mirror", "--quiet", url, dir); err != nil {
		return nil, err
	}
	return r, nil
}

// CloneAtRev clones url into dir and checks out rev, producing a real
// working tree a hook's Entry can execute from (unlike CloneMirror,
// which only maintains a bare mirror for tag history).
func CloneAtRev(ctx context.Context, url, rev, dir string) (*Repo, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("gitutil: creating repo parent: %w", err)
	}
	if _, err := run(ctx, &Repo{Dir: "", External: true}, "clone repo", "clone", "--quiet", "--no-checkout", url, dir); err != nil {
		return nil, err
	}
	r := &Repo{Dir: dir, External: true}
	if _, err := run(ctx, r, "fetch rev", "fetch", "--quiet", "--depth=1", "origin", rev); err == nil {
		if _, err := run(ctx, r, "checkout FETCH_HEAD", "checkout", "--quiet", "FETCH_HEAD"); err == nil {
			return r, initSubmodules(ctx, r)
		}
	}
	// rev wasn't fetchable directly (not a branch/tag ref, e.g. a bare
	// SHA outside the shallow clone's history): fall back to an
	// unshallow checkout of the exact revision.
	if _, err := run(ctx, r, "fetch full history", "fetch", "--quiet", "--unshallow", "origin"); err != nil {
		return nil, err
	}
	if _, err := run(ctx, r, "checkout rev", "checkout", "--quiet", rev); err != nil {
		return nil, err
	}
	return r, initSubmodules(ctx, r)
}

func initSubmodules(ctx context.Context, r *Repo) error {
	if _, err := run(ctx, r, "init submodules", "submodule", "update", "--init", "--recursive"); err != nil {
		return err
	}
	return nil
}

// TagInfo describes one tag in a mirror clone.
type TagInfo struct {
	// Name is the tag's short name (no refs/tags/ prefix).
	Name string
	// Commit is the commit the tag ultimately points at (peeled).
	Commit string
	// Created is the annotated tag's own creation date, or the tagged
	// commit's committer date for a lightweight tag.
	Created time.Time
}

// Tags lists every tag in the mirror, each with the timestamp
// auto-update's cooldown filter checks against.
func (r *Repo) Tags(ctx context.Context) ([]TagInfo, error) {
	out, err := run(ctx, r, "list tags", "for-each-ref",
		"--format=%(refname:short)%00%(objectname)%00%(*objectname)%00%(creatordate:iso-strict)", "refs/tags")
	if err != nil {
		return nil, err
	}
	var tags []TagInfo
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, "\x00")
		if len(parts) != 4 {
			continue
		}
		commit := parts[1]
		if parts[2] != "" {
			// Annotated tag: %(*objectname) peels to the tagged commit.
			commit = parts[2]
		}
		created, err := time.Parse(time.RFC3339, parts[3])
		if err != nil {
			continue
		}
		tags = append(tags, TagInfo{Name: parts[0], Commit: commit, Created: created})
	}
	return tags, nil
}

// DefaultBranchTip resolves the commit the mirror's remote HEAD points
// at, used for --bleeding-edge auto-update.
func (r *Repo) DefaultBranchTip(ctx context.Context) (string, error) {
	out, err := run(ctx, r, "resolve default branch", "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// RevParse resolves rev to a full commit SHA.
func (r *Repo) RevParse(ctx context.Context, rev string) (string, error) {
	out, err := run(ctx, r, "resolve rev", "rev-parse", rev+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// IsIgnored reports whether path is excluded by gitignore rules,
// consulting `git check-ignore` directly since its exit status 1
// ("not ignored") isn't a failure the way run's other callers treat it.
func (r *Repo) IsIgnored(ctx context.Context, path string) bool {
	cmd := exec.CommandContext(ctx, "git", "-c", "core.useBuiltinFSMonitor=false", "check-ignore", "-q", path)
	cmd.Dir = r.Dir
	return cmd.Run() == nil
}

// UninstallHookScript removes shims previously written by
// InstallHookScript, ignoring stages that were never installed.
func (r *Repo) UninstallHookScript(ctx context.Context, stages []string) error {
	gitDir, err := r.GitDir(ctx)
	if err != nil {
		return err
	}
	for _, stage := range stages {
		path := filepath.Join(gitDir, "hooks", stage)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("gitutil: removing hook script %s: %w", stage, err)
		}
	}
	return nil
}
