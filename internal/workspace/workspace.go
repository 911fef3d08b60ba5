// Package workspace discovers a hierarchy of projects — each a directory
// with its own hook configuration — inside one git repository, builds the
// project graph, and computes file ownership between nested projects.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/gitutil"
)

// Project is a directory containing a config file: a unit of file
// ownership and hook scheduling. Projects are immutable once discovered.
type Project struct {
	// Path is the project's absolute directory.
	Path string
	// RelPath is Path relative to the workspace root, using forward
	// slashes; "" for the root project.
	RelPath string
	// ConfigPath is the config file that produced Config.
	ConfigPath string
	Config     *config.Config
	// Orphan mirrors Config.Orphan for quick access during ownership
	// computation.
	Orphan bool
	// Depth is the number of path components in RelPath; deeper
	// projects claim files before shallower ones.
	Depth int
	// Index is the project's position in the graph's canonical
	// execution order (deepest-first, ties by lexicographic path).
	Index int
}

// IsRoot reports whether p is the workspace root project.
func (p *Project) IsRoot() bool { return p.RelPath == "" }

// DiscoveryError reports a workspace discovery failure: not a git
// repository, no config found, or an unreadable/invalid config that
// aborts discovery entirely.
type DiscoveryError struct {
	Message string
	Path    string
}

func (e *DiscoveryError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Workspace is a forest of projects rooted at the shallowest discovered
// config, at or above the starting directory and at/below the git root.
type Workspace struct {
	Root     string
	GitRoot  string
	Projects []*Project
}

var cookiecutterDir = regexp.MustCompile(`^\{\{.*cookiecutter.*\}\}$`)

// FindRoot walks upward from dir, remembering the shallowest directory
// with a recognized config file, and stops at the git root. It returns
// the workspace root directory.
func FindRoot(ctx context.Context, dir string) (root, gitRoot string, err error) {
	gitRoot, err = gitutil.Root(ctx, dir)
	if err != nil {
		return "", "", &DiscoveryError{Message: "not a git repository"}
	}
	gitRoot = filepath.Clean(gitRoot)

	shallowest := ""
	cur := filepath.Clean(dir)
	for {
		if config.Find(cur) != "" {
			shallowest = cur
		}
		if cur == gitRoot {
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if shallowest == "" {
		return "", "", &DiscoveryError{Message: "no configuration found"}
	}
	return shallowest, gitRoot, nil
}

// Discover walks downward from root, building the project graph. It
// respects .gitignore semantics (via a caller-supplied ignore predicate,
// since the ignore-file walker itself lives in the git adapter's domain),
// and skips dot-directories, cookiecutter template directories, and git
// submodules (any directory holding a .git entry). .prekignore files are
// not read.
func Discover(root, gitRoot string, ignored func(path string) bool) (*Workspace, error) {
	var projects []*Project

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if path != root {
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if cookiecutterDir.MatchString(name) {
				return filepath.SkipDir
			}
			if _, err := os.Lstat(filepath.Join(path, ".git")); err == nil {
				return filepath.SkipDir
			}
			if ignored != nil && ignored(path) {
				return filepath.SkipDir
			}
		}

		cfgPath := config.Find(path)
		if cfgPath == "" {
			return nil
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			rel = ""
		}
		rel = filepath.ToSlash(rel)

		projects = append(projects, &Project{
			Path:       path,
			RelPath:    rel,
			ConfigPath: cfgPath,
			Config:     cfg,
			Orphan:     cfg.Orphan,
			Depth:      depthOf(rel),
		})
		return nil
	})
	if err != nil {
		if de, ok := err.(*DiscoveryError); ok {
			return nil, de
		}
		return nil, &DiscoveryError{Message: err.Error(), Path: root}
	}
	if len(projects) == 0 {
		return nil, &DiscoveryError{Message: "no configuration found"}
	}

	sortAndIndex(projects)

	return &Workspace{Root: root, GitRoot: gitRoot, Projects: projects}, nil
}

func depthOf(rel string) int {
	if rel == "" {
		return 0
	}
	return len(strings.Split(rel, "/"))
}

// sortAndIndex orders projects deepest-first, ties broken by
// lexicographic relative path, and assigns each its Index. This is the
// canonical iteration order for the scheduler: deepest-first, siblings in
// deterministic path order, root last.
func sortAndIndex(projects []*Project) {
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Depth != projects[j].Depth {
			return projects[i].Depth > projects[j].Depth
		}
		return projects[i].RelPath < projects[j].RelPath
	})
	for i, p := range projects {
		p.Index = i
	}
}

// OwnerOf returns the project that owns path (relative to the workspace
// root, forward-slash-separated) under the file-ownership rule: the
// deepest containing project claims the file, except that an orphan
// project's files are hidden from all of its ancestors even if the
// orphan itself is excluded from the current run by a selector.
func (w *Workspace) OwnerOf(relPath string) *Project {
	var best *Project
	for _, p := range w.Projects {
		if !underProject(p.RelPath, relPath) {
			continue
		}
		if best == nil || p.Depth > best.Depth {
			best = p
		}
	}
	return best
}

// underProject reports whether relPath is within (or equal to) the
// project directory projectRel.
func underProject(projectRel, relPath string) bool {
	if projectRel == "" {
		return true
	}
	return relPath == projectRel || strings.HasPrefix(relPath, projectRel+"/")
}

// PartitionFiles assigns each of files (relative to the workspace root)
// to every project that contains it, deepest first, stopping as soon as
// it reaches an orphan project: an orphan project's files are claimed
// exclusively by it and its own descendants and are hidden from
// everything above it. A non-orphan project's files stay visible to its
// ancestors too — each project filters the shared candidate set
// independently with its own include/exclude rules.
func (w *Workspace) PartitionFiles(files []string) map[*Project][]string {
	owned := make(map[*Project][]string, len(w.Projects))

	containing := make([]*Project, 0, len(w.Projects))
	for _, f := range files {
		containing = containing[:0]
		for _, p := range w.Projects {
			if underProject(p.RelPath, f) {
				containing = append(containing, p)
			}
		}
		// w.Projects is already ordered deepest-first (sortAndIndex), so
		// containing inherits that order.
		for _, p := range containing {
			owned[p] = append(owned[p], f)
			if p.Orphan {
				break
			}
		}
	}

	return owned
}
