// Package version reports build information about the running binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
)

// Info describes the version of the running binary.
type Info struct {
	// Version is the module version, e.g. "v1.2.3" or "(devel)".
	Version string
	// Commit is the VCS revision the binary was built from, if known.
	Commit string
	// Dirty is true if the working tree had uncommitted changes at build time.
	Dirty bool
}

// String renders human-readable version information.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", CmdName())
	if i.Version != "" {
		fmt.Fprintf(&b, "version: %s\n", i.Version)
	}
	if i.Commit != "" {
		dirty := ""
		if i.Dirty {
			dirty = "-dirty"
		}
		fmt.Fprintf(&b, "commit: %s%s\n", i.Commit, dirty)
	}
	return b.String()
}

var (
	once sync.Once
	info Info
	name string
)

func load() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		info = Info{Version: "(unknown)"}
		return
	}
	info.Version = bi.Main.Version
	name = programName(bi.Main.Path)
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
}

func programName(modulePath string) string {
	if idx := strings.LastIndex(modulePath, "/"); idx >= 0 {
		return modulePath[idx+1:]
	}
	return modulePath
}

// Version returns information about the currently running build.
func Version() Info {
	once.Do(load)
	return info
}

// CmdName returns the program's name, derived from its module path.
func CmdName() string {
	once.Do(load)
	if name == "" {
		return "prek"
	}
	return name
}
