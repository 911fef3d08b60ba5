package config

// wireHook is the shape common to both surface syntaxes for one hook
// entry, decoded with permissive field types (glob may be a string or a
// list) before being lowered into the logical Hook.
type wireHook struct {
	ID          string   `yaml:"id" toml:"id"`
	Alias       string   `yaml:"alias" toml:"alias"`
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description" toml:"description"`
	Language    string   `yaml:"language" toml:"language"`
	Entry       string   `yaml:"entry" toml:"entry"`
	Args        []string `yaml:"args" toml:"args"`

	Files        any      `yaml:"files" toml:"files"`
	Exclude      any      `yaml:"exclude" toml:"exclude"`
	Types        []string     `yaml:"types" toml:"types"`
	TypesOr      []string     `yaml:"types_or" toml:"types_or"`
	ExcludeTypes []string     `yaml:"exclude_types" toml:"exclude_types"`
	AlwaysRun    bool         `yaml:"always_run" toml:"always_run"`
	PassFilenames *bool       `yaml:"pass_filenames" toml:"pass_filenames"`

	Stages                 []string `yaml:"stages" toml:"stages"`
	MinimumRequiredVersion string   `yaml:"minimum_pre_commit_version" toml:"minimum_required_version"`

	RequireSerial bool   `yaml:"require_serial" toml:"require_serial"`
	Priority      *int   `yaml:"priority" toml:"priority"`
	FailFast      bool   `yaml:"fail_fast" toml:"fail_fast"`
	Verbose       bool   `yaml:"verbose" toml:"verbose"`
	LogFile       string `yaml:"log_file" toml:"log_file"`

	LanguageVersion         string            `yaml:"language_version" toml:"language_version"`
	AdditionalDependencies  []string          `yaml:"additional_dependencies" toml:"additional_dependencies"`
	Env                     map[string]string `yaml:"env" toml:"env"`
}

// wirePattern accepts either a bare regex string ("files: '\\.py$'") or
// an object form ("files: {glob: ['*.py']}"). Because both YAML and TOML
// libraries decode into Go values before this package sees them, the
// caller passes in the already-decoded `any` and wirePattern normalizes
// it; see decodeWirePattern.
type wirePattern struct {
	Regex string
	Glob  []string
}

func decodeWirePattern(v any) *wirePattern {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return &wirePattern{Regex: t}
	case map[string]any:
		if g, ok := t["glob"]; ok {
			return &wirePattern{Glob: toStringSlice(g)}
		}
		if r, ok := t["regex"]; ok {
			if s, ok := r.(string); ok {
				return &wirePattern{Regex: s}
			}
		}
	}
	return nil
}

func toStringSlice(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (p *wirePattern) toFilePattern() FilePattern {
	if p == nil {
		return FilePattern{}
	}
	if p.Regex != "" {
		return FilePattern{Regex: p.Regex}
	}
	return FilePattern{Globs: p.Glob}
}

func (h wireHook) toHook() Hook {
	stages := make([]Stage, 0, len(h.Stages))
	for _, s := range h.Stages {
		stages = append(stages, Stage(s))
	}
	return Hook{
		ID:                     h.ID,
		Alias:                  h.Alias,
		Name:                   h.Name,
		Description:            h.Description,
		Language:               h.Language,
		Entry:                  h.Entry,
		Args:                   h.Args,
		Files:                  decodeWirePattern(h.Files).toFilePattern(),
		Exclude:                decodeWirePattern(h.Exclude).toFilePattern(),
		Types:                  h.Types,
		TypesOr:                h.TypesOr,
		ExcludeTypes:           h.ExcludeTypes,
		AlwaysRun:              h.AlwaysRun,
		PassFilenames:          h.PassFilenames,
		Stages:                 stages,
		MinimumRequiredVersion: h.MinimumRequiredVersion,
		RequireSerial:          h.RequireSerial,
		Priority:               h.Priority,
		FailFast:               h.FailFast,
		Verbose:                h.Verbose,
		LogFile:                h.LogFile,
		LanguageVersion:        LanguageVersion(h.LanguageVersion),
		AdditionalDependencies: h.AdditionalDependencies,
		Env:                    h.Env,
	}
}
