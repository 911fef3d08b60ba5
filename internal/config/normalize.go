package config

import "fmt"

// Normalize applies field defaults and validates the constraints that
// don't depend on a remote manifest (entry forbidden for meta/builtin,
// required fields for local hooks, filter/type defaults). It mutates
// cfg's hooks in place and returns the first violation found.
func (cfg *Config) Normalize(path string) error {
	if len(cfg.DefaultStages) == 0 {
		cfg.DefaultStages = DefaultStages
	}

	position := 0
	for ri := range cfg.Repos {
		repo := &cfg.Repos[ri]
		for hi := range repo.Hooks {
			h := &repo.Hooks[hi]

			switch repo.Kind {
			case RepoMeta, RepoBuiltin:
				if h.Entry != "" {
					return &Error{Path: path, Message: fmt.Sprintf("hook %q: entry is not allowed on a %s hook", h.ID, repo.Kind)}
				}
				h.Language = "system"
			case RepoLocal:
				if h.ID == "" {
					return &Error{Path: path, Message: "local hook is missing required field id"}
				}
				if h.Name == "" {
					return &Error{Path: path, Message: fmt.Sprintf("local hook %q is missing required field name", h.ID)}
				}
				if h.Entry == "" {
					return &Error{Path: path, Message: fmt.Sprintf("local hook %q is missing required field entry", h.ID)}
				}
				if h.Language == "" {
					return &Error{Path: path, Message: fmt.Sprintf("local hook %q is missing required field language", h.ID)}
				}
			case RepoRemote:
				if h.ID == "" {
					return &Error{Path: path, Message: fmt.Sprintf("remote hook in %s is missing required field id", repo.URL)}
				}
			}

			// A remote hook's unset types stay unset so MergeManifest
			// falls back to the manifest's types.
			if len(h.Types) == 0 && repo.Kind != RepoRemote {
				h.Types = TypesDefault
			}
			if len(h.Stages) == 0 {
				h.Stages = cfg.DefaultStages
			}
			if h.LanguageVersion == "" {
				if v, ok := cfg.DefaultLanguageVersion[h.Language]; ok {
					h.LanguageVersion = v
				} else {
					h.LanguageVersion = VersionDefault
				}
			}
			if h.Priority == nil {
				pos := position
				h.Priority = &pos
			}

			position++
		}
	}

	return nil
}

// MergeManifest overlays a user override entry onto a manifest-declared
// hook, following pre-commit's field-by-field merge: unset fields on the
// override fall back to the manifest, everything else is replaced
// wholesale. additional_dependencies and env are the exception: they're
// appended/merged rather than replaced when both sides set them.
func MergeManifest(manifest, override Hook) Hook {
	merged := manifest

	if override.Name != "" {
		merged.Name = override.Name
	}
	if override.Description != "" {
		merged.Description = override.Description
	}
	if override.Entry != "" {
		merged.Entry = override.Entry
	}
	if override.Language != "" {
		merged.Language = override.Language
	}
	if len(override.Args) > 0 {
		merged.Args = override.Args
	}
	if !override.Files.Empty() {
		merged.Files = override.Files
	}
	if !override.Exclude.Empty() {
		merged.Exclude = override.Exclude
	}
	if len(override.Types) > 0 {
		merged.Types = override.Types
	}
	if len(override.TypesOr) > 0 {
		merged.TypesOr = override.TypesOr
	}
	if len(override.ExcludeTypes) > 0 {
		merged.ExcludeTypes = override.ExcludeTypes
	}
	if len(override.Stages) > 0 {
		merged.Stages = override.Stages
	}
	if override.LanguageVersion != "" {
		merged.LanguageVersion = override.LanguageVersion
	}
	if len(override.AdditionalDependencies) > 0 {
		merged.AdditionalDependencies = append(append([]string{}, manifest.AdditionalDependencies...), override.AdditionalDependencies...)
	}
	if len(override.Env) > 0 {
		merged.Env = make(map[string]string, len(manifest.Env)+len(override.Env))
		for k, v := range manifest.Env {
			merged.Env[k] = v
		}
		for k, v := range override.Env {
			merged.Env[k] = v
		}
	}
	if override.Priority != nil {
		merged.Priority = override.Priority
	}
	if override.RequireSerial {
		merged.RequireSerial = true
	}
	if override.AlwaysRun {
		merged.AlwaysRun = true
	}
	if override.Alias != "" {
		merged.Alias = override.Alias
	}
	if override.LogFile != "" {
		merged.LogFile = override.LogFile
	}
	if override.PassFilenames != nil {
		merged.PassFilenames = override.PassFilenames
	}

	return merged
}
