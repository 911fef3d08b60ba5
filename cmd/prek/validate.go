package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/config"
)

// validateConfigApp is `prek validate-config`: it parses every config
// path given as an argument (or the discovered workspace's configs if
// none are given) and reports the first error, without running
// anything.
type validateConfigApp struct{}

func (a *validateConfigApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	paths := env.Args
	if len(paths) == 0 {
		repo, err := openRepo(ctx)
		if err != nil {
			return err
		}
		ws, err := openWorkspace(ctx, repo)
		if err != nil {
			return err
		}
		for _, p := range ws.Projects {
			paths = append(paths, p.ConfigPath)
		}
	}
	for _, path := range paths {
		if _, err := config.Load(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(env.Stdout, "%s: ok\n", path)
	}
	return nil
}

// manifestHook is the subset of a repo manifest's per-hook fields
// validate-manifest checks; the full merged shape lives in
// config.Hook, but a manifest is decoded on its own since it's never
// merged with a project's config.
type manifestHook struct {
	ID       string `yaml:"id" toml:"id"`
	Name     string `yaml:"name" toml:"name"`
	Entry    string `yaml:"entry" toml:"entry"`
	Language string `yaml:"language" toml:"language"`
}

// validateManifestApp is `prek validate-manifest`: it parses a
// repo's .pre-commit-hooks.yaml and checks that every hook id is
// unique and has a non-empty entry and language.
type validateManifestApp struct{}

func (a *validateManifestApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	paths := env.Args
	if len(paths) == 0 {
		paths = []string{".pre-commit-hooks.yaml"}
	}
	for _, path := range paths {
		if err := validateManifest(path); err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "%s: ok\n", path)
	}
	return nil
}

func validateManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var hooks []manifestHook
	if err := yaml.Unmarshal(data, &hooks); err != nil {
		return fmt.Errorf("%s: invalid manifest: %w", path, err)
	}
	seen := make(map[string]bool, len(hooks))
	for _, h := range hooks {
		if h.ID == "" {
			return fmt.Errorf("%s: hook missing id", path)
		}
		if seen[h.ID] {
			return fmt.Errorf("%s: duplicate hook id %q", path, h.ID)
		}
		seen[h.ID] = true
		if h.Entry == "" {
			return fmt.Errorf("%s: hook %q missing entry", path, h.ID)
		}
		if h.Language == "" {
			return fmt.Errorf("%s: hook %q missing language", path, h.ID)
		}
	}
	return nil
}
