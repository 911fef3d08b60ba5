package hooks

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/astrophena/prek/internal/gitutil"
)

var conflictPatterns = [][]byte{
	[]byte("<<<<<<< "),
	[]byte("======= "),
	[]byte("=======\r\n"),
	[]byte("=======\n"),
	[]byte(">>>>>>> "),
}

// InMerge reports whether the repository is mid-merge or mid-rebase,
// the gate CheckMergeConflict uses unless assumeInMerge is set.
func InMerge(ctx context.Context, repo *gitutil.Repo) (bool, error) {
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(gitDir + "/MERGE_MSG"); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	for _, name := range []string{"MERGE_HEAD", "rebase-apply", "rebase-merge"} {
		if _, err := os.Stat(gitDir + "/" + name); err == nil {
			return true, nil
		}
	}
	return false, nil
}

// CheckMergeConflict reports lines starting with an unresolved
// conflict marker.
func CheckMergeConflict(absPath, relPath string) (FileResult, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return FileResult{}, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var out strings.Builder
	failed := false
	lineNumber := 1
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			for _, pattern := range conflictPatterns {
				if bytes.HasPrefix(line, pattern) {
					display := bytes.TrimRight(pattern, "\r\n")
					fmt.Fprintf(&out, "%s:%d: Merge conflict string %q found\n", relPath, lineNumber, display)
					failed = true
					break
				}
			}
		}
		if err != nil {
			break
		}
		lineNumber++
	}
	return FileResult{Failed: failed, Message: out.String()}, nil
}

// AddedLargeFilesOptions configures CheckAddedLargeFiles.
type AddedLargeFilesOptions struct {
	MaxKB       int64
	EnforceAll  bool
	AddedFiles  map[string]bool
	LFSFiles    map[string]bool
}

// CheckAddedLargeFiles reports files exceeding MaxKB, scoped to newly
// added files unless EnforceAll is set, always excluding Git LFS
// pointers.
func CheckAddedLargeFiles(opts AddedLargeFilesOptions) FileFunc {
	return func(absPath, relPath string) (FileResult, error) {
		if !opts.EnforceAll && !opts.AddedFiles[relPath] {
			return FileResult{}, nil
		}
		if opts.LFSFiles[relPath] {
			return FileResult{}, nil
		}
		fi, err := os.Stat(absPath)
		if err != nil {
			return FileResult{}, err
		}
		sizeKB := fi.Size() / 1024
		if sizeKB > opts.MaxKB {
			return FileResult{Failed: true, Message: fmt.Sprintf("%s (%d KB) exceeds %d KB\n", relPath, sizeKB, opts.MaxKB)}, nil
		}
		return FileResult{}, nil
	}
}

// ExecutablesHaveShebangsOptions configures CheckExecutablesHaveShebangs.
type ExecutablesHaveShebangsOptions struct {
	// TracksExecutableBit is core.fileMode's effective value: when
	// false (Windows checkouts typically), the filesystem's executable
	// bit is meaningless and Executable must come from git's index
	// instead.
	TracksExecutableBit bool
	// Executable reports, per relative path, whether git's index marks
	// the file executable. Only consulted when TracksExecutableBit is
	// false.
	Executable map[string]bool
}

// CheckExecutablesHaveShebangs reports executable files that don't
// start with a #! shebang.
func CheckExecutablesHaveShebangs(opts ExecutablesHaveShebangsOptions) FileFunc {
	return func(absPath, relPath string) (FileResult, error) {
		if !opts.TracksExecutableBit && !opts.Executable[relPath] {
			return FileResult{}, nil
		}
		has, err := fileHasShebang(absPath)
		if err != nil {
			return FileResult{}, err
		}
		if has {
			return FileResult{}, nil
		}
		msg := fmt.Sprintf(
			"%s marked executable but has no (or invalid) shebang!\n"+
				"  If it isn't supposed to be executable, try: 'chmod -x %s'\n"+
				"  If on Windows, you may also need to: 'git add --chmod=-x %s'\n"+
				"  If it is supposed to be executable, double-check its shebang.\n",
			relPath, relPath, relPath)
		return FileResult{Failed: true, Message: msg}, nil
	}
}

func fileHasShebang(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var buf [2]byte
	n, err := f.Read(buf[:])
	if err != nil && n == 0 {
		return false, nil
	}
	return n >= 2 && buf[0] == '#' && buf[1] == '!', nil
}

var privateKeyPatterns = [][]byte{
	[]byte("BEGIN RSA PRIVATE KEY"),
	[]byte("BEGIN DSA PRIVATE KEY"),
	[]byte("BEGIN EC PRIVATE KEY"),
	[]byte("BEGIN OPENSSH PRIVATE KEY"),
	[]byte("BEGIN PRIVATE KEY"),
	[]byte("PuTTY-User-Key-File-2"),
	[]byte("BEGIN SSH2 ENCRYPTED PRIVATE KEY"),
	[]byte("BEGIN PGP PRIVATE KEY BLOCK"),
	[]byte("BEGIN ENCRYPTED PRIVATE KEY"),
	[]byte("BEGIN OpenVPN Static key V1"),
}

// DetectPrivateKey reports files containing a recognizable private key
// header.
func DetectPrivateKey(absPath, relPath string) (FileResult, error) {
	content, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	for _, pattern := range privateKeyPatterns {
		if bytes.Contains(content, pattern) {
			return FileResult{Failed: true, Message: fmt.Sprintf("Private key found: %s\n", relPath)}, nil
		}
	}
	return FileResult{}, nil
}

// NoCommitToBranchOptions configures NoCommitToBranch.
type NoCommitToBranchOptions struct {
	Branches []string
	Patterns []string
}

// NoCommitToBranch reports whether HEAD names a protected branch,
// blocking direct commits to it. It returns "" (no violation) when HEAD
// is detached, matching pre-commit-hooks.
func NoCommitToBranch(ctx context.Context, repo *gitutil.Repo, opts NoCommitToBranchOptions) (message string, failed bool, err error) {
	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return "", false, err
	}
	if branch == "" {
		return "", false, nil
	}
	if len(opts.Branches) == 0 {
		opts = NoCommitToBranchOptions{Branches: []string{"main", "master"}, Patterns: opts.Patterns}
	}
	for _, b := range opts.Branches {
		if b == branch {
			return fmt.Sprintf("You are not allowed to commit to branch '%s'\n", branch), true, nil
		}
	}
	for _, p := range opts.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return "", false, fmt.Errorf("hooks: compiling pattern %q: %w", p, err)
		}
		if re.MatchString(branch) {
			return fmt.Sprintf("You are not allowed to commit to branch '%s'\n", branch), true, nil
		}
	}
	return "", false, nil
}
