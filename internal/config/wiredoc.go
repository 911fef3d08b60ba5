package config

// wireRepo is the shape common to both surface syntaxes for one repos[]
// entry.
type wireRepo struct {
	Repo  string     `yaml:"repo" toml:"repo"`
	Rev   string     `yaml:"rev" toml:"rev"`
	Hooks []wireHook `yaml:"hooks" toml:"hooks"`
}

// wireDocument mirrors the top-level shape of a config file, valid in
// both the YAML and TOML surface syntaxes.
type wireDocument struct {
	Repos []wireRepo `yaml:"repos" toml:"repos"`

	Files   any      `yaml:"files" toml:"files"`
	Exclude any      `yaml:"exclude" toml:"exclude"`

	FailFast                bool              `yaml:"fail_fast" toml:"fail_fast"`
	DefaultStages           []string          `yaml:"default_stages" toml:"default_stages"`
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version" toml:"default_language_version"`
	DefaultInstallHookTypes []string          `yaml:"default_install_hook_types" toml:"default_install_hook_types"`
	MinimumRequiredVersion  string            `yaml:"minimum_pre_commit_version" toml:"minimum_required_version"`
	Orphan                  bool              `yaml:"orphan" toml:"orphan"`
}

const (
	// RemoteRepoLocal is the sentinel `repo:` value marking a local
	// hook entry.
	RemoteRepoLocal = "local"
	// RemoteRepoMeta is the sentinel `repo:` value marking a meta hook
	// entry.
	RemoteRepoMeta = "meta"
	// UpstreamHooksURL is the canonical upstream hook repository whose
	// hooks the transparent fast path (internal/hooks) substitutes
	// natively.
	UpstreamHooksURL = "https://github.com/pre-commit/pre-commit-hooks"
)

func (d wireDocument) toConfig() Config {
	cfg := Config{
		Include:                decodeWirePattern(d.Files).toFilePattern(),
		Exclude:                decodeWirePattern(d.Exclude).toFilePattern(),
		FailFast:                d.FailFast,
		MinimumRequiredVersion:  d.MinimumRequiredVersion,
		Orphan:                  d.Orphan,
	}
	for _, s := range d.DefaultStages {
		cfg.DefaultStages = append(cfg.DefaultStages, Stage(s))
	}
	for _, s := range d.DefaultInstallHookTypes {
		cfg.DefaultInstallHookTypes = append(cfg.DefaultInstallHookTypes, Stage(s))
	}
	if len(d.DefaultLanguageVersion) > 0 {
		cfg.DefaultLanguageVersion = make(map[string]LanguageVersion, len(d.DefaultLanguageVersion))
		for k, v := range d.DefaultLanguageVersion {
			cfg.DefaultLanguageVersion[k] = LanguageVersion(v)
		}
	}

	for _, wr := range d.Repos {
		repo := Repo{URL: wr.Repo, Rev: wr.Rev}
		switch wr.Repo {
		case RemoteRepoLocal:
			repo.Kind = RepoLocal
		case RemoteRepoMeta:
			repo.Kind = RepoMeta
		case "": // an entry whose repo value is empty
			repo.Kind = RepoBuiltin
		default:
			repo.Kind = RepoRemote
		}
		for _, wh := range wr.Hooks {
			repo.Hooks = append(repo.Hooks, wh.toHook())
		}
		cfg.Repos = append(cfg.Repos, repo)
	}

	return cfg
}
