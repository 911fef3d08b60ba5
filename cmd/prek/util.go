package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/astrophena/prek/internal/cli"
	"github.com/astrophena/prek/internal/identify"
)

// utilApp is `prek util <identify|init-template-dir|yaml-to-toml>`.
type utilApp struct{}

func (a *utilApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) == 0 {
		return fmt.Errorf("prek util: expected a subcommand (identify, init-template-dir, yaml-to-toml)")
	}
	sub, args := env.Args[0], env.Args[1:]
	switch sub {
	case "identify":
		return utilIdentify(env, args)
	case "init-template-dir":
		return utilInitTemplateDir(ctx, env, args)
	case "yaml-to-toml":
		return utilYAMLToTOML(env, args)
	default:
		return fmt.Errorf("prek util: unknown subcommand %q", sub)
	}
}

func utilIdentify(env *cli.Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("prek util identify: expected a file path")
	}
	for _, path := range args {
		tags, err := identify.Identify(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		names := make([]string, 0, len(tags))
		for t := range tags {
			names = append(names, t)
		}
		sort.Strings(names)
		fmt.Fprintf(env.Stdout, "%s: %v\n", path, names)
	}
	return nil
}

// utilInitTemplateDir writes a shim git hooks template directory at
// dir (defaulting to a .git-template subdirectory) so `git init
// --template` (or `git config init.templateDir`) pre-installs prek's
// shims into every repository cloned or initialized afterward.
func utilInitTemplateDir(ctx context.Context, env *cli.Env, args []string) error {
	dir := ".git-template"
	if len(args) > 0 {
		dir = args[0]
	}
	self, err := os.Executable()
	if err != nil {
		return err
	}
	hooksDir := filepath.Join(dir, "hooks")
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return err
	}
	stages := allStageNames()
	for _, stage := range stages {
		path := filepath.Join(hooksDir, stage)
		script := fmt.Sprintf("#!/bin/sh\nexec %q hook-impl --hook-type=%s --hook-dir=\"$(dirname \"$0\")\" -- \"$@\"\n", self, stage)
		if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
			return err
		}
	}
	fmt.Fprintf(env.Stdout, "template directory ready at %s\n", dir)
	fmt.Fprintln(env.Stdout, "run: git config --global init.templateDir "+dir)
	return nil
}

// utilYAMLToTOML converts a YAML config's raw document into TOML,
// preserving key order for the top-level repos/hooks list structure
// (arrays keep source order); nested map key order isn't guaranteed
// to survive, since BurntSushi/toml's encoder sorts map keys.
func utilYAMLToTOML(env *cli.Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("prek util yaml-to-toml: expected a YAML config path")
	}
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: invalid YAML: %w", path, err)
	}
	return toml.NewEncoder(env.Stdout).Encode(doc)
}
