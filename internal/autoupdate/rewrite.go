package autoupdate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// RewriteFile applies updates (repo URL -> new rev) to the config file
// at path in place, preserving formatting, comments, and key order
// where the format allows. It writes nothing and returns false when no
// repo in the file actually changes rev.
func RewriteFile(path string, updates map[string]RepoUpdate) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	var out []byte
	var changed bool
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		out, changed, err = rewriteYAML(data, updates)
	case ".toml":
		out, changed, err = rewriteTOML(data, updates)
	default:
		return false, fmt.Errorf("autoupdate: unrecognized config file extension: %s", path)
	}
	if err != nil {
		return false, fmt.Errorf("autoupdate: rewriting %s: %w", path, err)
	}
	if !changed {
		return false, nil
	}
	return true, atomic.WriteFile(path, bytes.NewReader(out))
}

// rewriteYAML edits rev: scalars in place on the decoded node tree, so
// yaml.v3 re-encodes everything else (comments, key order, block vs
// flow style) unchanged.
func rewriteYAML(data []byte, updates map[string]RepoUpdate) ([]byte, bool, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	if len(doc.Content) == 0 {
		return data, false, nil
	}
	root := doc.Content[0]

	changed := false
	repos := mappingValue(root, "repos")
	if repos != nil && repos.Kind == yaml.SequenceNode {
		for _, entry := range repos.Content {
			if entry.Kind != yaml.MappingNode {
				continue
			}
			urlNode := mappingValue(entry, "repo")
			revNode := mappingValue(entry, "rev")
			if urlNode == nil || revNode == nil {
				continue
			}
			u, ok := updates[urlNode.Value]
			if !ok || !u.Changed || revNode.Value == u.NewRev {
				continue
			}
			revNode.Value = u.NewRev
			changed = true
		}
	}
	if !changed {
		return data, false, nil
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, false, err
	}
	enc.Close()
	return []byte(buf.String()), true, nil
}

// mappingValue looks up key's value node within a YAML mapping node.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// repoLineRE and revLineRE match the .prek.toml surface's `repo = "..."`
// and `rev = "..."` lines, capturing indentation, quote character, and
// value so a replacement can preserve everything else about the line.
var (
	repoLineRE = regexp.MustCompile(`^(\s*repo\s*=\s*)(["'])(.*)(["'])(\s*(?:#.*)?)$`)
	revLineRE  = regexp.MustCompile(`^(\s*rev\s*=\s*)(["'])(.*)(["'])(\s*(?:#.*)?)$`)
)

// rewriteTOML rewrites rev = "..." lines by tracking the most recently
// seen repo = "..." line above them. BurntSushi/toml has no lossless
// node-tree API, so this is a line-oriented pass that touches only the
// matched value, leaving every other byte (including comments and
// table headers) untouched.
func rewriteTOML(data []byte, updates map[string]RepoUpdate) ([]byte, bool, error) {
	lines := strings.Split(string(data), "\n")
	currentURL := ""
	changed := false
	for i, line := range lines {
		if m := repoLineRE.FindStringSubmatch(line); m != nil {
			currentURL = m[3]
			continue
		}
		m := revLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		u, ok := updates[currentURL]
		if !ok || !u.Changed || m[3] == u.NewRev {
			continue
		}
		lines[i] = m[1] + m[2] + u.NewRev + m[4] + m[5]
		changed = true
	}
	if !changed {
		return data, false, nil
	}
	return []byte(strings.Join(lines, "\n")), true, nil
}
