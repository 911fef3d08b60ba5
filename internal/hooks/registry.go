package hooks

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/astrophena/prek/internal/config"
	"github.com/astrophena/prek/internal/gitutil"
)

// supported lists the fast-path hook ids this package can run natively
// in place of the upstream pre-commit-hooks entry point.
var supported = map[string]bool{
	"trailing-whitespace":             true,
	"end-of-file-fixer":               true,
	"fix-byte-order-marker":           true,
	"check-json":                      true,
	"check-toml":                      true,
	"check-xml":                       true,
	"check-yaml":                      true,
	"check-symlinks":                  true,
	"check-merge-conflict":            true,
	"check-case-conflict":             true,
	"check-added-large-files":         true,
	"check-executables-have-shebangs": true,
	"detect-private-key":              true,
	"mixed-line-ending":               true,
	"no-commit-to-branch":             true,
}

// Supported reports whether id names a hook this package implements
// natively.
func Supported(id string) bool { return supported[id] }

// BuiltinIDs lists every hook id this package implements natively, in
// no particular order.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(supported))
	for id := range supported {
		ids = append(ids, id)
	}
	return ids
}

// newFlagSet builds a flag.FlagSet that mirrors a pre-commit-hooks
// entry's own CLI: silent on unknown-flag errors (they're surfaced by
// Parse's returned error) and never prints its own usage, since a
// hook's stdout/stderr is captured and rendered by the reporter.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(nopWriter{})
	return fs
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// stringList accumulates repeated occurrences of a flag, e.g.
// -b main -b master.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Run dispatches to the native implementation of a fast-path hook,
// running it over relFiles (paths relative to base, the project's
// working directory). repo is used by the handful of hooks that need
// git state (added files, LFS attributes, index executable bits,
// merge/branch state) beyond the candidate file list itself.
func Run(ctx context.Context, repo *gitutil.Repo, base string, hook config.Hook, relFiles []string) (output string, failed bool, err error) {
	switch hook.ID {
	case "trailing-whitespace":
		return runTrailingWhitespace(base, relFiles, hook.Args)
	case "end-of-file-fixer":
		return RunFiles(base, relFiles, FixEndOfFile)
	case "fix-byte-order-marker":
		return RunFiles(base, relFiles, FixByteOrderMarker)
	case "check-json":
		return RunFiles(base, relFiles, CheckJSON)
	case "check-toml":
		return RunFiles(base, relFiles, CheckTOML)
	case "check-xml":
		return RunFiles(base, relFiles, CheckXML)
	case "check-yaml":
		return runCheckYAML(base, relFiles, hook.Args)
	case "check-symlinks":
		return RunFiles(base, relFiles, CheckSymlinks)
	case "check-merge-conflict":
		return runCheckMergeConflict(ctx, repo, base, relFiles, hook.Args)
	case "check-case-conflict":
		out, failed := CheckCaseConflict(relFiles)
		return out, failed, nil
	case "check-added-large-files":
		return runCheckAddedLargeFiles(ctx, repo, base, relFiles, hook.Args)
	case "check-executables-have-shebangs":
		return runCheckExecutablesHaveShebangs(ctx, repo, base, relFiles)
	case "detect-private-key":
		return RunFiles(base, relFiles, DetectPrivateKey)
	case "mixed-line-ending":
		return runMixedLineEnding(base, relFiles, hook.Args)
	case "no-commit-to-branch":
		return runNoCommitToBranch(ctx, repo, hook.Args)
	default:
		return "", false, fmt.Errorf("hooks: %s is not a fast-path hook", hook.ID)
	}
}
