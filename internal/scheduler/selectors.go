package scheduler

import "strings"

// Selector names a subset of the project graph: a bare hook id
// (matches that hook in every project), a project path ending in "/"
// (matches every hook in that project and its descendants), or
// "<project-path>:<hook-id>" (matches one hook in one project).
type Selector struct {
	ProjectPath string // "" means unset (bare hook-id selector)
	HookID      string // "" means unset (bare project selector)
}

// ParseSelector parses one selector string.
func ParseSelector(s string) Selector {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return Selector{ProjectPath: strings.TrimSuffix(s[:idx], "/"), HookID: s[idx+1:]}
	}
	if strings.HasSuffix(s, "/") {
		return Selector{ProjectPath: strings.TrimSuffix(s, "/")}
	}
	return Selector{HookID: s}
}

// ParseSelectors parses a comma-split list, dropping empty entries.
func ParseSelectors(raw string) []Selector {
	if raw == "" {
		return nil
	}
	var out []Selector
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, ParseSelector(part))
	}
	return out
}

// Matches reports whether s selects hookID within projectRelPath,
// where projectRelPath uses forward slashes and "" denotes the
// workspace root project. A project selector also matches every
// descendant project (projectRelPath prefixed by s.ProjectPath).
func (s Selector) Matches(projectRelPath, hookID string) bool {
	if s.HookID != "" && s.ProjectPath == "" {
		return s.HookID == hookID
	}
	if !projectUnderOrEqual(s.ProjectPath, projectRelPath) {
		return false
	}
	if s.HookID == "" {
		return true
	}
	return s.HookID == hookID
}

func projectUnderOrEqual(selector, project string) bool {
	if selector == project {
		return true
	}
	return strings.HasPrefix(project, selector+"/")
}

// Selection resolves include/skip selectors against the project graph:
// a hook runs iff it matches an include selector (or none are given) and
// matches no skip selector. Skipping a project skips all its
// descendants; selecting a project selects all its descendants unless a
// skip selector overrides them.
type Selection struct {
	Include []Selector
	Skip    []Selector
}

// Allows reports whether hookID in projectRelPath should run.
func (s Selection) Allows(projectRelPath, hookID string) bool {
	for _, sel := range s.Skip {
		if sel.Matches(projectRelPath, hookID) {
			return false
		}
	}
	if len(s.Include) == 0 {
		return true
	}
	for _, sel := range s.Include {
		if sel.Matches(projectRelPath, hookID) {
			return true
		}
	}
	return false
}
