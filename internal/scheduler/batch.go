package scheduler

import (
	"runtime"

	"github.com/astrophena/prek/internal/config"
)

// maxArgvBytes is a conservative ceiling on total argv+envp size passed
// to a subprocess. POSIX systems typically allow far more (getconf
// ARG_MAX is commonly 2MB+), but a conservative shared limit avoids
// needing a per-platform syscall just to batch file lists; Windows'
// CreateProcess command-line limit is much tighter, so it gets its own,
// smaller constant.
const (
	maxArgvBytesPOSIX   = 128 * 1024
	maxArgvBytesWindows = 30 * 1024
)

func maxArgvBytes() int {
	if runtime.GOOS == "windows" {
		return maxArgvBytesWindows
	}
	return maxArgvBytesPOSIX
}

// batchFiles splits files into groups whose total byte length (plus a
// fixed baseArgvBytes for the fixed argv0/args/env portion of the
// command line) stays under the OS argv limit, so a hook is invoked once
// per batch rather than exceeding "argument list too long".
func batchFiles(files []string, baseArgvBytes int) [][]string {
	if len(files) == 0 {
		return [][]string{nil}
	}

	limit := maxArgvBytes() - baseArgvBytes
	if limit < 4096 {
		limit = 4096
	}

	var batches [][]string
	var cur []string
	curBytes := 0
	for _, f := range files {
		// +1 for the argv separator accounting (a conservative
		// approximation, not the exact kernel encoding).
		size := len(f) + 1
		if len(cur) > 0 && curBytes+size > limit {
			batches = append(batches, cur)
			cur = nil
			curBytes = 0
		}
		cur = append(cur, f)
		curBytes += size
	}
	if len(cur) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

// hookBatches computes hook's subprocess batches for candidates.
// RequireSerial narrows the concurrency this hook's own invocations run
// under (the caller runs batches one at a time), it does not exempt the
// hook from batchFiles's argv-length ceiling: a require_serial hook
// matched against many files still needs several invocations.
func hookBatches(hook config.Hook, candidates []string) [][]string {
	batchArgs := candidates
	if !hook.EffectivePassFilenames() {
		batchArgs = nil
	}
	return batchFiles(batchArgs, len(hook.Entry)+256)
}
