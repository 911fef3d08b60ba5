package hooks

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// CheckJSON reports files that fail to parse as JSON. Empty files are
// treated as valid, matching pre-commit-hooks.
func CheckJSON(absPath, relPath string) (FileResult, error) {
	content, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	if len(content) == 0 {
		return FileResult{}, nil
	}
	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to json decode (%v)\n", relPath, err)}, nil
	}
	return FileResult{}, nil
}

// CheckTOML reports files that fail to parse as TOML.
func CheckTOML(absPath, relPath string) (FileResult, error) {
	content, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	if len(content) == 0 {
		return FileResult{}, nil
	}
	var v any
	if _, err := toml.Decode(string(content), &v); err != nil {
		return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to toml decode (%v)\n", relPath, err)}, nil
	}
	return FileResult{}, nil
}

// CheckYAML reports files that fail to parse as YAML. allowMultipleDocuments
// mirrors the upstream hook's -m/--multi flag, decoding every document in
// the stream instead of only the first.
func CheckYAML(allowMultipleDocuments bool) FileFunc {
	return func(absPath, relPath string) (FileResult, error) {
		content, err := readFile(absPath)
		if err != nil {
			return FileResult{}, err
		}
		if len(content) == 0 {
			return FileResult{}, nil
		}
		dec := yaml.NewDecoder(strings.NewReader(string(content)))
		for {
			var v any
			err := dec.Decode(&v)
			if err == io.EOF {
				break
			}
			if err != nil {
				return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to yaml decode (%v)\n", relPath, err)}, nil
			}
			if !allowMultipleDocuments {
				break
			}
		}
		return FileResult{}, nil
	}
}

// CheckXML reports files that fail to parse as a single well-formed XML
// document.
func CheckXML(absPath, relPath string) (FileResult, error) {
	content, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	if len(content) == 0 {
		return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to xml parse (no element found)\n", relPath)}, nil
	}
	dec := xml.NewDecoder(strings.NewReader(string(content)))
	depth := 0
	rootCount := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to xml parse (%v)\n", relPath, err)}, nil
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				rootCount++
				if rootCount > 1 {
					return FileResult{Failed: true, Message: fmt.Sprintf("%s: Failed to xml parse (junk after document element)\n", relPath)}, nil
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return FileResult{}, nil
}

// CheckSymlinks reports symlinks whose target does not exist.
func CheckSymlinks(absPath, relPath string) (FileResult, error) {
	fi, err := os.Lstat(absPath)
	if err != nil {
		return FileResult{}, err
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		return FileResult{}, nil
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return FileResult{Failed: true, Message: fmt.Sprintf("%s: broken symlink\n", relPath)}, nil
		}
		return FileResult{}, err
	}
	return FileResult{}, nil
}

// CheckCaseConflict reports files whose lowercased relative path
// collides with another file's, which breaks checkouts on
// case-insensitive filesystems (macOS, Windows).
func CheckCaseConflict(relFiles []string) (output string, failed bool) {
	seen := make(map[string]string, len(relFiles))
	var out strings.Builder
	for _, rel := range relFiles {
		key := strings.ToLower(rel)
		if other, ok := seen[key]; ok && other != rel {
			fmt.Fprintf(&out, "Case-insensitivity conflict found: %s %s\n", other, rel)
			failed = true
			continue
		}
		seen[key] = rel
	}
	return out.String(), failed
}
