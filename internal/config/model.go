// Package config normalizes repo/hook entries from either supported
// surface syntax (YAML or TOML) into a single logical model, independent
// of which syntax produced it.
package config

import "fmt"

// Stage is a git lifecycle point at which a hook is eligible to run.
type Stage string

// Recognized stages. The scheduler treats every stage alike: a stage
// only gates which hooks are selected for a run.
const (
	StageCommit      Stage = "pre-commit"
	StageMergeCommit Stage = "pre-merge-commit"
	StagePush        Stage = "pre-push"
	StagePrepareMsg  Stage = "prepare-commit-msg"
	StageCommitMsg   Stage = "commit-msg"
	StagePostCheckout Stage = "post-checkout"
	StagePostCommit  Stage = "post-commit"
	StagePostMerge   Stage = "post-merge"
	StagePostRewrite Stage = "post-rewrite"
	StageManual      Stage = "manual"
)

// DefaultStages is used for a hook that specifies no stages of its own.
var DefaultStages = []Stage{StageCommit, StageMergeCommit}

// FilePattern is either a glob (one or more patterns, OR'd) or a regular
// expression, matched against a path relative to the project root.
type FilePattern struct {
	Globs []string
	Regex string
}

// Empty reports whether p has no pattern, in which case it matches
// nothing (an unset exclude) or everything (an unset include, handled by
// the caller).
func (p FilePattern) Empty() bool {
	return len(p.Globs) == 0 && p.Regex == ""
}

// RepoKind identifies which of the four Repo entry variants a Repo value
// holds.
type RepoKind int

const (
	// RepoRemote clones hooks from a url at a rev.
	RepoRemote RepoKind = iota
	// RepoLocal defines hooks inline, with no external source.
	RepoLocal
	// RepoMeta refers to prek's own introspection hooks.
	RepoMeta
	// RepoBuiltin refers to the transparent fast-path hook set.
	RepoBuiltin
)

func (k RepoKind) String() string {
	switch k {
	case RepoRemote:
		return "remote"
	case RepoLocal:
		return "local"
	case RepoMeta:
		return "meta"
	case RepoBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Repo is one entry in a Config's repos list.
type Repo struct {
	Kind  RepoKind
	URL   string // RepoRemote only
	Rev   string // RepoRemote only
	Hooks []Hook
}

// LanguageVersion is a per-language version request, either "default",
// "system", or a language-specific version string (grammar owned by
// internal/langs).
type LanguageVersion string

const (
	VersionDefault LanguageVersion = "default"
	VersionSystem  LanguageVersion = "system"
)

// Hook is the fully merged form of one hook: manifest defaults (for
// remote repos) overridden by the user's config entry.
type Hook struct {
	ID          string
	Alias       string
	Name        string
	Description string
	Language    string
	Entry       string
	Args        []string

	Files        FilePattern
	Exclude      FilePattern
	Types        []string
	TypesOr      []string
	ExcludeTypes []string
	AlwaysRun bool
	// PassFilenames is a tri-state: nil means the surface syntax left it
	// unset, in which case PassFilenamesDefault applies.
	PassFilenames *bool

	Stages                  []Stage
	MinimumRequiredVersion string

	RequireSerial bool
	Priority      *int
	FailFast      bool
	Verbose       bool
	LogFile       string

	LanguageVersion         LanguageVersion
	AdditionalDependencies []string
	Env                     map[string]string
}

// EffectivePriority returns h's priority, defaulting to its 0-based
// position among the flattened repos[*].hooks[*] list when unset.
func (h Hook) EffectivePriority(position int) int {
	if h.Priority != nil {
		return *h.Priority
	}
	return position
}

// Config is the logical form of one project's configuration file,
// independent of whether it was written as YAML or TOML.
type Config struct {
	Repos []Repo

	Include FilePattern
	Exclude FilePattern

	FailFast                bool
	DefaultStages           []Stage
	DefaultLanguageVersion  map[string]LanguageVersion
	DefaultInstallHookTypes []Stage
	MinimumRequiredVersion  string
	Orphan                  bool
}

// PassFilenamesDefault is the default for Hook.PassFilenames when the
// surface syntax omits the field.
const PassFilenamesDefault = true

// EffectivePassFilenames returns h.PassFilenames, or PassFilenamesDefault
// when unset.
func (h Hook) EffectivePassFilenames() bool {
	if h.PassFilenames == nil {
		return PassFilenamesDefault
	}
	return *h.PassFilenames
}

// TypesDefault is used for a hook whose "types" field is unset.
var TypesDefault = []string{"file"}

// Error reports a malformed config: an unsupported field combination, an
// unknown key, or a version gate failure. Path points at the offending
// config file.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}
