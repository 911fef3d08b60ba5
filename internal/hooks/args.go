package hooks

import (
	"context"

	"github.com/astrophena/prek/internal/gitutil"
)

func runTrailingWhitespace(base string, relFiles, args []string) (string, bool, error) {
	fs := newFlagSet("trailing-whitespace")
	var exts stringList
	chars := fs.String("chars", "", "characters to strip from line ends")
	fs.Var(&exts, "markdown-linebreak-ext", "extension treated as Markdown for hard line breaks")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	extSet := make(map[string]bool, len(exts))
	for _, e := range exts {
		for _, part := range splitComma(e) {
			extSet[part] = true
		}
	}
	// markdown/mdown/markdn/md carry hard line breaks by convention even
	// without an explicit --markdown-linebreak-ext, matching
	// pre-commit-hooks' default extension set.
	for _, e := range []string{"md", "markdown", "mdown", "markdn"} {
		extSet[e] = true
	}
	return RunFiles(base, relFiles, FixTrailingWhitespace(TrailingWhitespaceOptions{
		MarkdownLinebreakExt: extSet,
		Chars:                *chars,
	}))
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func runCheckYAML(base string, relFiles, args []string) (string, bool, error) {
	fs := newFlagSet("check-yaml")
	multi := fs.Bool("multi", false, "allow multiple YAML documents per file")
	fs.BoolVar(multi, "m", false, "shorthand for --multi")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	return RunFiles(base, relFiles, CheckYAML(*multi))
}

func runCheckMergeConflict(ctx context.Context, repo *gitutil.Repo, base string, relFiles, args []string) (string, bool, error) {
	fs := newFlagSet("check-merge-conflict")
	assumeInMerge := fs.Bool("assume-in-merge", false, "run even when not in a detected merge state")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	if !*assumeInMerge {
		inMerge, err := InMerge(ctx, repo)
		if err != nil {
			return "", false, err
		}
		if !inMerge {
			return "", false, nil
		}
	}
	return RunFiles(base, relFiles, CheckMergeConflict)
}

func runCheckAddedLargeFiles(ctx context.Context, repo *gitutil.Repo, base string, relFiles, args []string) (string, bool, error) {
	fs := newFlagSet("check-added-large-files")
	enforceAll := fs.Bool("enforce-all", false, "check every candidate file, not just newly added ones")
	maxKB := fs.Int64("maxkb", 500, "maximum allowed file size in KB")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}

	var added map[string]bool
	if !*enforceAll {
		files, err := repo.AddedFiles(ctx)
		if err != nil {
			return "", false, err
		}
		added = make(map[string]bool, len(files))
		for _, f := range files {
			added[f] = true
		}
	}
	lfs, err := repo.LFSFiles(ctx, relFiles)
	if err != nil {
		return "", false, err
	}
	return RunFiles(base, relFiles, CheckAddedLargeFiles(AddedLargeFilesOptions{
		MaxKB:      *maxKB,
		EnforceAll: *enforceAll,
		AddedFiles: added,
		LFSFiles:   lfs,
	}))
}

func runCheckExecutablesHaveShebangs(ctx context.Context, repo *gitutil.Repo, base string, relFiles []string) (string, bool, error) {
	fileMode, err := repo.Config(ctx, "core.fileMode")
	if err != nil {
		return "", false, err
	}
	tracksExecBit := fileMode != "false"

	var executable map[string]bool
	if !tracksExecBit {
		executable, err = repo.ExecutableFiles(ctx, relFiles)
		if err != nil {
			return "", false, err
		}
	}
	return RunFiles(base, relFiles, CheckExecutablesHaveShebangs(ExecutablesHaveShebangsOptions{
		TracksExecutableBit: tracksExecBit,
		Executable:          executable,
	}))
}

func runMixedLineEnding(base string, relFiles, args []string) (string, bool, error) {
	fs := newFlagSet("mixed-line-ending")
	fix := fs.String("fix", "auto", "auto|no|lf|crlf|cr")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	var mode LineEnding
	switch *fix {
	case "auto":
		mode = EndingAuto
	case "no":
		mode = EndingReportOnly
	case "lf":
		mode = EndingLF
	case "crlf":
		mode = EndingCRLF
	case "cr":
		mode = EndingCR
	default:
		mode = EndingAuto
	}
	return RunFiles(base, relFiles, MixedLineEnding(mode))
}

func runNoCommitToBranch(ctx context.Context, repo *gitutil.Repo, args []string) (string, bool, error) {
	fs := newFlagSet("no-commit-to-branch")
	var branches, patterns stringList
	fs.Var(&branches, "branch", "protected branch name")
	fs.Var(&branches, "b", "shorthand for --branch")
	fs.Var(&patterns, "pattern", "protected branch name regexp")
	fs.Var(&patterns, "p", "shorthand for --pattern")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	msg, failed, err := NoCommitToBranch(ctx, repo, NoCommitToBranchOptions{
		Branches: []string(branches),
		Patterns: []string(patterns),
	})
	return msg, failed, err
}
