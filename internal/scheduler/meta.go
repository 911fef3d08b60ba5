package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/identify"
	"github.com/astrophena/prek/internal/workspace"
)

// runMetaHook executes one of the three configuration-introspecting meta
// hooks (repo: meta), which reason about a project's hook filters
// against its full tracked file set rather than the staged candidate
// list a normal hook receives.
func (r *Runner) runMetaHook(ctx context.Context, project *workspace.Project, entry hookEntry) (HookResult, error) {
	universe, err := r.projectUniverse(ctx, project)
	if err != nil {
		return HookResult{}, err
	}
	switch entry.hook.ID {
	case "check-hooks-apply":
		return r.checkHooksApply(project, universe)
	case "check-useless-excludes":
		return r.checkUselessExcludes(project, universe)
	case "identity":
		return HookResult{
			HookID:  entry.hook.ID,
			Project: project.RelPath,
			Status:  Passed,
			Stdout:  strings.Join(universe, "\n") + "\n",
		}, nil
	default:
		return HookResult{}, fmt.Errorf("scheduler: unknown meta hook %q", entry.hook.ID)
	}
}

// projectUniverse is every file git tracks under project, independent
// of what's staged or selected for this run — the set meta hooks
// reason about.
func (r *Runner) projectUniverse(ctx context.Context, project *workspace.Project) ([]string, error) {
	all, err := r.Opts.Repo.AllTrackedFiles(ctx)
	if err != nil {
		return nil, err
	}
	return r.Workspace.PartitionFiles(all)[project], nil
}

func tagsOfProject(project *workspace.Project) func(string) identify.TagSet {
	return func(relPath string) identify.TagSet {
		tags, err := identify.Identify(project.Path + "/" + relPath)
		if err != nil {
			return identify.TagSet{}
		}
		return tags
	}
}

var metaHookIDs = map[string]bool{
	"check-hooks-apply":     true,
	"check-useless-excludes": true,
	"identity":               true,
}

// checkHooksApply asserts that every non-meta hook in the project would
// match at least one file in universe, unless it's marked always_run.
func (r *Runner) checkHooksApply(project *workspace.Project, universe []string) (HookResult, error) {
	tagsOf := tagsOfProject(project)
	var msgs []string
	for _, repo := range project.Config.Repos {
		for _, hook := range repo.Hooks {
			if metaHookIDs[hook.ID] {
				continue
			}
			c, err := compileHook(hook)
			if err != nil {
				return HookResult{}, err
			}
			if !hook.AlwaysRun && len(c.candidateFiles(universe, tagsOf)) == 0 {
				msgs = append(msgs, fmt.Sprintf("%s does not apply to this repository\n", hook.ID))
			}
		}
	}
	return metaResult("check-hooks-apply", project.RelPath, msgs), nil
}

// checkUselessExcludes asserts that every configured exclude pattern
// (hook-level and project-level) actually removes at least one file
// that would otherwise have matched.
func (r *Runner) checkUselessExcludes(project *workspace.Project, universe []string) (HookResult, error) {
	tagsOf := tagsOfProject(project)
	var msgs []string

	if !project.Config.Exclude.Empty() {
		withExclude, err := compileProjectFilter(project.Config)
		if err != nil {
			return HookResult{}, err
		}
		without := *project.Config
		without.Exclude = config.FilePattern{}
		withoutExclude, err := compileProjectFilter(&without)
		if err != nil {
			return HookResult{}, err
		}
		if matchCount(universe, withExclude.matches) == matchCount(universe, withoutExclude.matches) {
			msgs = append(msgs, "The global exclude pattern does not match any files\n")
		}
	}

	for _, repo := range project.Config.Repos {
		for _, hook := range repo.Hooks {
			if metaHookIDs[hook.ID] || hook.Exclude.Empty() {
				continue
			}
			withExclude, err := compileHook(hook)
			if err != nil {
				return HookResult{}, err
			}
			without := hook
			without.Exclude = config.FilePattern{}
			withoutExclude, err := compileHook(without)
			if err != nil {
				return HookResult{}, err
			}
			if len(withExclude.candidateFiles(universe, tagsOf)) == len(withoutExclude.candidateFiles(universe, tagsOf)) {
				msgs = append(msgs, fmt.Sprintf("The exclude pattern for %s does not match any files\n", hook.ID))
			}
		}
	}
	return metaResult("check-useless-excludes", project.RelPath, msgs), nil
}

func matchCount(files []string, match func(string) bool) int {
	n := 0
	for _, f := range files {
		if match(f) {
			n++
		}
	}
	return n
}

func metaResult(id, projectRelPath string, msgs []string) HookResult {
	status := Passed
	if len(msgs) > 0 {
		status = Failed
	}
	return HookResult{HookID: id, Project: projectRelPath, Status: status, Stdout: strings.Join(msgs, "")}
}
