package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"sync"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/envmanager"
	"github.com/astrophena/prek/internal/reporter"
	"github.com/astrophena/prek/internal/scheduler"
	"github.com/astrophena/prek/internal/worktree"
)

// runApp is the `prek run` subcommand: it selects candidate files,
// resolves them against the project graph, and dispatches hooks.
type runApp struct {
	allFiles   bool
	files      stringList
	fromRef    string
	toRef      string
	lastCommit bool
	directory  string
	hookStage  string
	skip       string
	failFast   bool
	verbose    bool
	quiet      bool
	veryQuiet  bool
}

func (a *runApp) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.allFiles, "all-files", false, "Run hooks against every tracked file, not just changed ones.")
	fs.Var(&a.files, "files", "Run hooks against these files only (repeatable, or comma-separated).")
	fs.StringVar(&a.fromRef, "from-ref", "", "Run against files changed since this ref.")
	fs.StringVar(&a.toRef, "to-ref", "", "Upper bound ref for -from-ref (defaults to HEAD).")
	fs.BoolVar(&a.lastCommit, "last-commit", false, "Run against files changed in the last commit.")
	fs.StringVar(&a.directory, "directory", "", "Restrict the candidate set to this subtree.")
	fs.StringVar(&a.hookStage, "hook-stage", string(config.StageCommit), "Run only hooks eligible for this git lifecycle stage.")
	fs.StringVar(&a.skip, "skip", "", "Comma-separated hook/project selectors to skip (also read from PREK_SKIP).")
	fs.BoolVar(&a.failFast, "fail-fast", false, "Stop after the first project that fails.")
	fs.BoolVar(&a.verbose, "v", false, "Print every hook's output, not just failures'.")
	fs.BoolVar(&a.quiet, "q", false, "Print only failing hooks.")
	fs.BoolVar(&a.veryQuiet, "qq", false, "Print nothing.")
}

func (a *runApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	skip := a.skip
	if v := env.Getenv("PREK_SKIP"); v != "" {
		if skip != "" {
			skip += ","
		}
		skip += v
	}

	sel := scheduler.Selection{Skip: scheduler.ParseSelectors(skip)}
	if include := env.Args; len(include) > 0 {
		sel.Include = scheduler.ParseSelectors(strings.Join(include, ","))
	}

	files := scheduler.FileSelection{
		AllFiles:   a.allFiles,
		Files:      a.files.values,
		LastCommit: a.lastCommit,
		FromRef:    a.fromRef,
		ToRef:      a.toRef,
		Directory:  a.directory,
	}
	if files.ToRef == "" && files.FromRef != "" {
		files.ToRef = "HEAD"
	}

	return runHooks(ctx, env, runRequest{
		stage:        config.Stage(a.hookStage),
		selection:    sel,
		files:        files,
		failFast:     a.failFast,
		verbosity:    verbosityFrom(a.verbose, a.quiet, a.veryQuiet),
		schedVerbose: a.verbose,
	})
}

// runRequest is the shared input `run` and `hook-impl` both funnel
// into runHooks, since a git hook shim's invocation is just `run`
// with its stage and default file selection fixed by the hook type.
type runRequest struct {
	stage        config.Stage
	selection    scheduler.Selection
	files        scheduler.FileSelection
	failFast     bool
	verbosity    reporter.Verbosity
	schedVerbose bool
}

// runHooks discovers the workspace and store, builds a scheduler.Runner
// from req, and runs it inside a worktree guard, printing results
// through a reporter.
func runHooks(ctx context.Context, env *cli.Env, req runRequest) error {
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

	rep := reporter.New(env.Stdout, req.verbosity)

	opts := scheduler.Options{
		Stage:       req.stage,
		Selection:   req.selection,
		Files:       req.files,
		FailFast:    req.failFast,
		Repo:        repo,
		ResolveRepo: resolveRepo(s),
		EnvManager:  envmanager.New(s),
		Verbose:     req.schedVerbose,
	}
	if rep.Color && (req.verbosity == reporter.Normal || req.verbosity == reporter.Verbose) {
		var mu sync.Mutex
		opts.OnHookStart = func(hookID string, current, total int) {
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(env.Stdout, "\r\x1b[K%s", rep.Progress(current, total, hookID))
		}
	}
	runner := scheduler.New(ws, opts)

	var result scheduler.RunResult
	err = worktree.Run(ctx, repo, s.PatchesDir(), func() error {
		var runErr error
		result, runErr = runner.Run(ctx)
		return runErr
	})
	if err != nil {
		return fmt.Errorf("prek run: %w", err)
	}

	if opts.OnHookStart != nil {
		fmt.Fprint(env.Stdout, "\r\x1b[K")
	}
	for _, pr := range result.Projects {
		rep.PrintProject(pr)
	}

	if !result.Passed() {
		return &exitCodeError{code: result.ExitCode()}
	}
	return nil
}

func verbosityFrom(verbose, quiet, veryQuiet bool) reporter.Verbosity {
	switch {
	case veryQuiet:
		return reporter.Silent
	case quiet:
		return reporter.Quiet
	case verbose:
		return reporter.Verbose
	default:
		return reporter.Normal
	}
}

// exitCodeError signals that an App already reported its own result
// (a status line per hook) and main should exit with code without
// printing anything further.
type exitCodeError struct{ code int }

func (e *exitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// stringList accumulates repeated or comma-separated -flag values.
type stringList struct{ values []string }

func (s *stringList) String() string { return strings.Join(s.values, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			s.values = append(s.values, part)
		}
	}
	return nil
}
