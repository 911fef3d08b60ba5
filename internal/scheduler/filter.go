package scheduler

import (
	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/identify"
)

// compiledHook caches a hook's compiled include/exclude patterns, so
// they're compiled once per run rather than once per candidate file.
type compiledHook struct {
	hook    config.Hook
	include *config.CompiledPattern
	exclude *config.CompiledPattern
}

func compileHook(h config.Hook) (*compiledHook, error) {
	include, err := config.Compile(h.Files)
	if err != nil {
		return nil, err
	}
	exclude, err := config.Compile(h.Exclude)
	if err != nil {
		return nil, err
	}
	return &compiledHook{hook: h, include: include, exclude: exclude}, nil
}

// matches implements the filter composition law: a file is passed to a
// hook iff it satisfies global include AND NOT global exclude AND hook
// include AND NOT hook exclude AND types-AND AND types_or-OR AND NOT
// exclude_types. Global include/exclude are applied by the caller before
// this function sees relPath; matches only checks the hook-level and
// type-level predicates.
func (c *compiledHook) matches(relPath string, tags identify.TagSet) bool {
	if !c.hook.Files.Empty() && !c.include.Match(relPath) {
		return false
	}
	if c.exclude.Match(relPath) {
		return false
	}

	types := c.hook.Types
	if len(types) == 0 {
		types = config.TypesDefault
	}
	if !tags.HasAll(types) {
		return false
	}
	if len(c.hook.TypesOr) > 0 && !tags.HasAny(c.hook.TypesOr) {
		return false
	}
	if tags.HasAny(c.hook.ExcludeTypes) {
		return false
	}
	return true
}

// projectFilter applies a project's top-level include/exclude, the
// first stage of the filter composition law, before any per-hook
// predicate runs.
type projectFilter struct {
	pattern config.FilePattern
	include *config.CompiledPattern
	exclude *config.CompiledPattern
}

func compileProjectFilter(cfg *config.Config) (*projectFilter, error) {
	include, err := config.Compile(cfg.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := config.Compile(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &projectFilter{pattern: cfg.Include, include: include, exclude: exclude}, nil
}

func (f *projectFilter) matches(relPath string) bool {
	if !f.pattern.Empty() && !f.include.Match(relPath) {
		return false
	}
	return !f.exclude.Match(relPath)
}

// candidateFiles filters files (all relative to the project root) down
// to those the hook should run against, tagging each with identify. An
// empty result means the hook is skipped unless AlwaysRun.
func (c *compiledHook) candidateFiles(files []string, tagsOf func(relPath string) identify.TagSet) []string {
	var out []string
	for _, f := range files {
		if c.matches(f, tagsOf(f)) {
			out = append(out, f)
		}
	}
	return out
}
