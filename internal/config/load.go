package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames lists the recognized config filenames within a project
// directory, in precedence order: the tool-specific TOML name, then the
// two legacy pre-commit YAML names.
var FileNames = []string{".prek.toml", ".pre-commit-config.yaml", ".pre-commit-config.yml"}

// Find returns the path of the highest-precedence config file present in
// dir, or "" if none exists.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads and normalizes the config file at path, dispatching on its
// extension to the TOML or YAML decoder.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc wireDocument
	switch filepath.Ext(path) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, &Error{Path: path, Message: fmt.Sprintf("invalid TOML: %v", err)}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &Error{Path: path, Message: fmt.Sprintf("invalid YAML: %v", err)}
		}
	default:
		return nil, &Error{Path: path, Message: "unrecognized config file extension"}
	}

	cfg := doc.toConfig()
	if err := cfg.Normalize(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}
