package langs

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// pygrepBackend is a regex line/multiline matcher built directly into
// prek: hook.Entry is the pattern, hook.Args may contain "--multiline"
// or "-i"/"--ignore-case". It never spawns a subprocess.
type pygrepBackend struct{}

func (pygrepBackend) Name() string { return "pygrep" }

func (pygrepBackend) Discover(context.Context, string) (*ToolchainHandle, error) {
	return &ToolchainHandle{}, nil
}

func (pygrepBackend) Install(context.Context, string, string) (*ToolchainHandle, error) {
	return nil, &InstallError{Language: "pygrep", Message: "the pygrep backend never downloads a toolchain"}
}

func (pygrepBackend) ProvisionEnv(context.Context, string, Hook, ToolchainHandle) error { return nil }

func (pygrepBackend) HealthCheck(context.Context, EnvHandle) bool { return true }

// BuildCommand is unused for pygrep; the scheduler calls Run directly
// because pygrep never spawns a subprocess.
func (pygrepBackend) BuildCommand(EnvHandle, Hook, []string) CommandSpec {
	return CommandSpec{}
}

func (pygrepBackend) Managed() bool { return false }

// Run executes hook's pattern against files, returning the matching
// lines formatted as "path:line:text" (pre-commit-hooks' pygrep-hooks
// convention; with --multiline, just the path of each matching file)
// and whether any match was found (a match is a failure: the
// hook exists to forbid a pattern).
func Run(hook Hook, files []string) (output string, failed bool, err error) {
	ignoreCase := false
	multiline := false
	for _, a := range hook.Args {
		switch a {
		case "-i", "--ignore-case":
			ignoreCase = true
		case "--multiline":
			multiline = true
		}
	}

	pattern := hook.Entry
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	if multiline {
		pattern = "(?s)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false, fmt.Errorf("pygrep: invalid pattern %q: %w", hook.Entry, err)
	}

	var sb strings.Builder
	for _, path := range files {
		if multiline {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if re.Match(data) {
				fmt.Fprintf(&sb, "%s\n", path)
				failed = true
			}
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(f)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if re.MatchString(scanner.Text()) {
				fmt.Fprintf(&sb, "%s:%d:%s\n", path, lineNo, scanner.Text())
				failed = true
			}
		}
		f.Close()
	}

	return sb.String(), failed, nil
}
