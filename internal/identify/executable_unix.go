//go:build !windows

package identify

import "os"

// isExecutable reports whether info's mode bits mark the file as
// executable by anyone. On unix this is read straight off the
// filesystem; git's own executable bit tracking mirrors owner mode.
func isExecutable(info os.FileInfo) bool {
	return info.Mode()&0o111 != 0
}
