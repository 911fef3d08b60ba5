package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the file a remote repo declares its hooks in.
const ManifestFileName = ".pre-commit-hooks.yaml"

// wireManifestHook is one entry in a repo's own .pre-commit-hooks.yaml.
// It's a distinct shape from wireHook: a manifest is never itself a
// mixture of user overrides, so it carries the fields a repo author can
// declare defaults for, no more.
type wireManifestHook struct {
	ID                     string   `yaml:"id"`
	Name                   string   `yaml:"name"`
	Description            string   `yaml:"description"`
	Entry                  string   `yaml:"entry"`
	Language               string   `yaml:"language"`
	Files                  string   `yaml:"files"`
	Exclude                string   `yaml:"exclude"`
	Types                  []string `yaml:"types"`
	TypesOr                []string `yaml:"types_or"`
	ExcludeTypes           []string `yaml:"exclude_types"`
	Args                   []string `yaml:"args"`
	AlwaysRun              bool     `yaml:"always_run"`
	PassFilenames          *bool    `yaml:"pass_filenames"`
	MinimumRequiredVersion string   `yaml:"minimum_pre_commit_version"`
}

// LoadManifest reads a repo's own hook manifest at path and returns its
// declared hooks with prek's field defaults applied, ready to be
// overlaid with a project's override via MergeManifest.
func LoadManifest(path string) ([]Hook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw []wireManifestHook
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid manifest: %w", path, err)
	}
	hooks := make([]Hook, len(raw))
	for i, m := range raw {
		hooks[i] = Hook{
			ID:                     m.ID,
			Name:                   m.Name,
			Description:            m.Description,
			Entry:                  m.Entry,
			Language:               m.Language,
			Args:                   m.Args,
			Files:                  FilePattern{Regex: m.Files},
			Exclude:                FilePattern{Regex: m.Exclude},
			Types:                  m.Types,
			TypesOr:                m.TypesOr,
			ExcludeTypes:           m.ExcludeTypes,
			AlwaysRun:              m.AlwaysRun,
			PassFilenames:          m.PassFilenames,
			MinimumRequiredVersion: m.MinimumRequiredVersion,
		}
		if len(hooks[i].Types) == 0 {
			hooks[i].Types = TypesDefault
		}
	}
	return hooks, nil
}

// HookByID returns the hook in hooks whose ID matches id.
func HookByID(hooks []Hook, id string) (Hook, bool) {
	for _, h := range hooks {
		if h.ID == id {
			return h, true
		}
	}
	return Hook{}, false
}

// ResolveRemoteHook loads the manifest a remote repo's resolved checkout
// at repoDir declares and overlays override (the project config's entry
// for the same hook ID) onto it via MergeManifest. A hook missing from
// the manifest is reported as an error rather than silently falling back
// to override alone, since an empty Entry/Language would otherwise reach
// a language backend as a hook with nothing to run.
func ResolveRemoteHook(repoDir string, override Hook) (Hook, error) {
	manifestHooks, err := LoadManifest(repoDir + "/" + ManifestFileName)
	if err != nil {
		return Hook{}, fmt.Errorf("loading manifest for hook %q: %w", override.ID, err)
	}
	manifest, ok := HookByID(manifestHooks, override.ID)
	if !ok {
		return Hook{}, fmt.Errorf("hook %q not found in repo manifest", override.ID)
	}
	return MergeManifest(manifest, override), nil
}
