//go:build windows

package identify

import (
	"os"
	"strings"
)

// executableExts are the extensions Windows treats as directly
// executable. The filesystem's mode bits don't carry an executable bit
// on Windows, so the index's mode bits (from git) are the reliable
// source; this is a best-effort fallback used when no index entry is
// available.
var executableExts = map[string]bool{
	".exe": true,
	".bat": true,
	".cmd": true,
	".com": true,
	".ps1": true,
}

func isExecutable(info os.FileInfo) bool {
	name := strings.ToLower(info.Name())
	for ext := range executableExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
