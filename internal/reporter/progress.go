package reporter

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Progress renders the transient "[current/total] Running hook <name>"
// line a caller can overwrite in place (e.g. with a carriage return) to
// show which hook is currently executing, truncated to r's terminal
// width when Out is a terminal.
func (r *Reporter) Progress(current, total int, hookID string) string {
	return progressMessage(current, total, []string{hookID}, r.termWidth())
}

// termWidth returns the current terminal column width for r.Out, or 0
// (meaning "don't truncate") when Out isn't a terminal or its size
// can't be queried.
func (r *Reporter) termWidth() int {
	f, ok := r.Out.(*os.File)
	if !ok {
		return 0
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(int(fd))
	if err != nil {
		return 0
	}
	return w
}

// progressMessage renders a "[current/total] Running hook <words...>"
// transient line, shortened to fit terminalWidth when it's positive.
// The prefix is never truncated; only the trailing command/hook name
// is shortened, with an ellipsis appended only when there's room (more
// than 3 columns) left for it after the prefix. Tabs in words are
// flattened to spaces so the rendered line never corrupts a
// single-line terminal update.
func progressMessage(current, total int, words []string, terminalWidth int) string {
	prefix := fmt.Sprintf("[%d/%d] Running hook ", current, total)
	name := strings.ReplaceAll(strings.Join(words, " "), "\t", " ")

	if terminalWidth <= 0 {
		return prefix + name
	}

	budget := terminalWidth - len(prefix)
	switch {
	case budget <= 0:
		return prefix
	case len(name) <= budget:
		return prefix + name
	case budget <= 3:
		return prefix + name[:budget]
	default:
		return prefix + name[:budget-3] + "..."
	}
}
