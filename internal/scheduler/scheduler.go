// Package scheduler resolves selectors and candidate files against a
// workspace's project graph, then dispatches hooks priority-group by
// priority-group under a global concurrency limit, aggregating results.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/envmanager"
	"github.com/astrophena/prek/internal/gitutil"
	"github.com/astrophena/prek/internal/hooks"
	"github.com/astrophena/prek/internal/identify"
	"github.com/astrophena/prek/internal/langs"
	"github.com/astrophena/prek/internal/workspace"
)

// RepoResolver maps a remote or local repo entry to the filesystem
// directory a hook's Entry/AdditionalDependencies should run against:
// a store clone for RepoRemote, the project root for RepoLocal.
type RepoResolver func(ctx context.Context, repo config.Repo, projectRoot string) (string, error)

// FileSelection describes which files are eligible to run against,
// before per-project/per-hook filtering narrows them further.
type FileSelection struct {
	AllFiles   bool
	Files      []string // resolved absolute paths; used verbatim if set
	LastCommit bool
	FromRef    string
	ToRef      string
	Directory  string // intersect candidates with this subtree
}

// Options configures one scheduler Run.
type Options struct {
	Stage        config.Stage
	Selection    Selection
	Files        FileSelection
	FailFast     bool
	Concurrency  int // 0 means runtime.NumCPU()
	Timeout      time.Duration
	ResolveRepo  RepoResolver
	EnvManager   *envmanager.Manager
	Repo         *gitutil.Repo
	Verbose      bool
	// OnHookStart, if set, is called just before each hook is
	// dispatched, with its 1-based position among every hook Run will
	// attempt and the total count, so a caller can render a
	// "[current/total] Running hook <id>" progress line. It may be
	// called concurrently from several goroutines within a priority
	// group.
	OnHookStart func(hookID string, current, total int)
}

// Runner executes hooks against a discovered workspace.
type Runner struct {
	Workspace *workspace.Workspace
	Opts      Options

	hookIndex atomic.Int64
}

// New returns a Runner for ws configured by opts.
func New(ws *workspace.Workspace, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Runner{Workspace: ws, Opts: opts}
}

// candidateFiles resolves Options.Files into the workspace-relative
// initial file set, before per-project/per-hook narrowing.
func (r *Runner) candidateFiles(ctx context.Context) ([]string, error) {
	repo := r.Opts.Repo
	var files []string
	var err error

	switch {
	case r.Opts.Files.AllFiles:
		files, err = repo.AllTrackedFiles(ctx)
	case len(r.Opts.Files.Files) > 0:
		files = r.Opts.Files.Files
	case r.Opts.Files.LastCommit:
		files, err = repo.FilesInDiff(ctx, "HEAD~1", "HEAD")
	case r.Opts.Files.FromRef != "" || r.Opts.Files.ToRef != "":
		files, err = repo.FilesInDiff(ctx, r.Opts.Files.FromRef, r.Opts.Files.ToRef)
	default:
		var staged, ita []string
		staged, err = repo.StagedFiles(ctx)
		if err == nil {
			ita, err = repo.IntentToAddFiles(ctx)
		}
		files = append(staged, ita...)
	}
	if err != nil {
		return nil, err
	}

	if dir := r.Opts.Files.Directory; dir != "" {
		files = filterUnderDir(files, dir)
	}
	return files, nil
}

func filterUnderDir(files []string, dir string) []string {
	var out []string
	for _, f := range files {
		if withinDir(f, dir) {
			out = append(out, f)
		}
	}
	return out
}

func withinDir(path, dir string) bool {
	if dir == "" || dir == "." {
		return true
	}
	if path == dir {
		return true
	}
	return len(path) > len(dir) && path[:len(dir)] == dir && path[len(dir)] == '/'
}

// Run selects candidate files, partitions them across the project
// graph, and dispatches each project's hooks in priority order,
// returning the aggregated result. The caller is responsible for
// wrapping Run in a worktree guard (internal/worktree) so hooks observe
// the to-be-committed state.
func (r *Runner) Run(ctx context.Context) (RunResult, error) {
	files, err := r.candidateFiles(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("scheduler: resolving candidate files: %w", err)
	}

	byProject := r.Workspace.PartitionFiles(files)

	r.hookIndex.Store(0)
	total := 0
	for _, project := range r.Workspace.Projects {
		groups, err := r.priorityGroups(project)
		if err != nil {
			return RunResult{}, err
		}
		for _, group := range groups {
			total += len(group)
		}
	}

	var result RunResult
	for _, project := range r.Workspace.Projects {
		pr, err := r.runProject(ctx, project, byProject[project], r.Opts.Concurrency, total)
		if err != nil {
			return result, err
		}
		result.Projects = append(result.Projects, pr)
		if r.Opts.FailFast && !pr.Passed() {
			break
		}
	}
	return result, nil
}

// runProject runs one project's hooks, grouped by priority.
func (r *Runner) runProject(ctx context.Context, project *workspace.Project, files []string, concurrency, total int) (ProjectResult, error) {
	pf, err := compileProjectFilter(project.Config)
	if err != nil {
		return ProjectResult{}, err
	}
	var scoped []string
	for _, f := range files {
		if pf.matches(f) {
			scoped = append(scoped, f)
		}
	}

	groups, err := r.priorityGroups(project)
	if err != nil {
		return ProjectResult{}, err
	}

	result := ProjectResult{Project: project.RelPath}
	failFast := r.Opts.FailFast || project.Config.FailFast

	for _, group := range groups {
		hookResults, err := r.runGroup(ctx, project, group, scoped, concurrency, total)
		if err != nil {
			return result, err
		}
		result.Hooks = append(result.Hooks, hookResults...)

		if failFast {
			failed := false
			for _, hr := range hookResults {
				if hr.Status == Failed {
					failed = true
				}
			}
			if failed {
				break
			}
		}
	}
	return result, nil
}

type hookEntry struct {
	repo config.Repo
	hook config.Hook
	// position is the hook's 0-based index among repos[*].hooks[*],
	// independent of filtering, since EffectivePriority falls back to it.
	position int
}

// priorityGroups flattens a project's repos[*].hooks[*] into position-
// ordered entries eligible for r.Opts.Stage and r.Opts.Selection, then
// groups them by effective priority.
func (r *Runner) priorityGroups(project *workspace.Project) ([][]hookEntry, error) {
	var flat []hookEntry
	position := 0
	for _, repo := range project.Config.Repos {
		for _, hook := range repo.Hooks {
			stages := hook.Stages
			if len(stages) == 0 {
				stages = project.Config.DefaultStages
			}
			if len(stages) == 0 {
				stages = config.DefaultStages
			}
			if !hasStage(stages, r.Opts.Stage) {
				position++
				continue
			}
			if !r.Opts.Selection.Allows(project.RelPath, hook.ID) {
				position++
				continue
			}
			flat = append(flat, hookEntry{repo: repo, hook: hook, position: position})
			position++
		}
	}

	byPriority := map[int][]hookEntry{}
	for _, e := range flat {
		p := e.hook.EffectivePriority(e.position)
		byPriority[p] = append(byPriority[p], e)
	}
	var priorities []int
	for p := range byPriority {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	var groups [][]hookEntry
	for _, p := range priorities {
		groups = append(groups, byPriority[p])
	}
	return groups, nil
}

func hasStage(stages []config.Stage, want config.Stage) bool {
	for _, s := range stages {
		if s == want {
			return true
		}
	}
	return false
}

// runGroup dispatches every hook in one priority group concurrently,
// bounded by concurrency, and detects whether any candidate file was
// modified during the group's execution.
func (r *Runner) runGroup(ctx context.Context, project *workspace.Project, group []hookEntry, files []string, concurrency, total int) ([]HookResult, error) {
	preHashes, err := r.hashFiles(ctx, project, files)
	if err != nil {
		return nil, err
	}

	results := make([]HookResult, len(group))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, entry := range group {
		i, entry := i, entry
		g.Go(func() error {
			if r.Opts.OnHookStart != nil {
				current := r.hookIndex.Add(1)
				r.Opts.OnHookStart(entry.hook.ID, int(current), total)
			}
			hr, err := r.runHook(gctx, project, entry, files)
			if err != nil {
				return err
			}
			results[i] = hr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	postHashes, err := r.hashFiles(ctx, project, files)
	if err != nil {
		return nil, err
	}
	modified := !hashesEqual(preHashes, postHashes)
	if modified {
		for i := range results {
			results[i].Modified = true
		}
	}

	return results, nil
}

func (r *Runner) hashFiles(ctx context.Context, project *workspace.Project, files []string) (map[string]string, error) {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		h, err := r.Opts.Repo.HashObject(ctx, project.Path+"/"+f)
		if err != nil {
			continue // deleted or unreadable: treated as changed by hashesEqual's length check
		}
		hashes[f] = h
	}
	return hashes, nil
}

func hashesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// runHook resolves the hook's repo, merges a remote repo's manifest
// defaults with the project's override, resolves the hook's
// environment, batches its candidate files, and runs one subprocess per
// batch (or in-process for pygrep), aggregating into a single
// HookResult.
func (r *Runner) runHook(ctx context.Context, project *workspace.Project, entry hookEntry, projectFiles []string) (HookResult, error) {
	if entry.repo.Kind == config.RepoMeta {
		return r.runMetaHook(ctx, project, entry)
	}

	repoPath := project.Path
	if r.Opts.ResolveRepo != nil {
		var err error
		repoPath, err = r.Opts.ResolveRepo(ctx, entry.repo, project.Path)
		if err != nil {
			return HookResult{}, err
		}
	}

	hook := entry.hook
	if entry.repo.Kind == config.RepoRemote {
		merged, err := config.ResolveRemoteHook(repoPath, hook)
		if err != nil {
			return HookResult{}, fmt.Errorf("scheduler: %w", err)
		}
		hook = merged
	}

	ch, err := compileHook(hook)
	if err != nil {
		return HookResult{}, err
	}
	tagsOf := func(relPath string) identify.TagSet {
		tags, err := identify.Identify(project.Path + "/" + relPath)
		if err != nil {
			return identify.TagSet{}
		}
		return tags
	}
	candidates := ch.candidateFiles(projectFiles, tagsOf)

	if len(candidates) == 0 && !hook.AlwaysRun {
		return HookResult{HookID: hook.ID, Project: project.RelPath, Status: Skipped}, nil
	}

	lhook := langs.Hook{
		ID:                     hook.ID,
		Entry:                  hook.Entry,
		Args:                   hook.Args,
		Language:               hook.Language,
		LanguageVersion:        string(hook.LanguageVersion),
		AdditionalDependencies: hook.AdditionalDependencies,
		Env:                    hook.Env,
		RepoPath:               repoPath,
	}

	if hook.Language == "pygrep" {
		return r.runPygrep(hook, project, candidates)
	}

	if useFastPath(entry.repo) && hooks.Supported(hook.ID) {
		result, err := r.runFastPath(ctx, project, hook, candidates)
		// Still provision the environment for fallback compatibility, per
		// the fast path's contract, but only after the native run so a
		// slow/missing toolchain never blocks the common case.
		if _, envErr := r.Opts.EnvManager.Ensure(ctx, lhook); envErr != nil && err == nil {
			return HookResult{}, envErr
		}
		return result, err
	}

	env, err := r.Opts.EnvManager.Ensure(ctx, lhook)
	if err != nil {
		return HookResult{}, err
	}
	backend := langs.Lookup(hook.Language)
	if backend == nil {
		return HookResult{}, fmt.Errorf("scheduler: unknown language %q for hook %q", hook.Language, hook.ID)
	}

	start := time.Now()

	batches := hookBatches(hook, candidates)

	result := HookResult{HookID: hook.ID, Project: project.RelPath, Status: Passed}
	for _, batch := range batches {
		spec := backend.BuildCommand(env, lhook, batch)
		out, exitErr := r.runSubprocess(ctx, spec)
		result.Stdout += out
		if exitErr != nil {
			result.Status = Failed
			result.Stderr += exitErr.Error() + "\n"
			if r.Opts.FailFast || hook.FailFast {
				break
			}
		}
	}
	if hook.Language == "fail" {
		result.Stdout = hook.Entry + "\n" + result.Stdout
	}
	result.Duration = time.Since(start)
	return result, nil
}

// useFastPath reports whether repo is the canonical upstream
// pre-commit-hooks repository, so its hooks may be substituted with a
// native implementation, unless PREK_NO_FAST_PATH disables that.
func useFastPath(repo config.Repo) bool {
	if os.Getenv("PREK_NO_FAST_PATH") != "" {
		return false
	}
	return repo.URL == config.UpstreamHooksURL
}

func (r *Runner) runFastPath(ctx context.Context, project *workspace.Project, hook config.Hook, candidates []string) (HookResult, error) {
	start := time.Now()
	out, failed, err := hooks.Run(ctx, r.Opts.Repo, project.Path, hook, candidates)
	if err != nil {
		return HookResult{}, err
	}
	status := Passed
	if failed {
		status = Failed
	}
	return HookResult{
		HookID:   hook.ID,
		Project:  project.RelPath,
		Status:   status,
		Stdout:   out,
		Duration: time.Since(start),
	}, nil
}

func (r *Runner) runPygrep(hook config.Hook, project *workspace.Project, candidates []string) (HookResult, error) {
	lhook := langs.Hook{ID: hook.ID, Entry: hook.Entry, Args: hook.Args}
	out, failed, err := langs.Run(lhook, absolutize(project.Path, candidates))
	if err != nil {
		return HookResult{}, err
	}
	status := Passed
	if failed {
		status = Failed
	}
	return HookResult{HookID: hook.ID, Project: project.RelPath, Status: status, Stdout: out}, nil
}

func absolutize(root string, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = root + "/" + f
	}
	return out
}

// runSubprocess runs one CommandSpec with a timeout, stdin closed, and
// hook env applied on top of the inherited environment.
func (r *Runner) runSubprocess(ctx context.Context, spec langs.CommandSpec) (string, error) {
	if len(spec.Argv) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.Opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdin = nil
	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return string(out), fmt.Errorf("timed out after %s", r.Opts.Timeout)
	}
	if err != nil {
		return string(out), err
	}
	return string(out), nil
}

