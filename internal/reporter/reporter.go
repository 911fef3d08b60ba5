// Package reporter renders scheduler run results to the terminal: a
// fixed-width per-hook status line (id padded with dot leaders, then
// Passed/Failed/Skipped), with failure bodies printed after the status,
// gated by -v/-q/-qq verbosity.
package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/astrophena/prek/internal/scheduler"
)

// Verbosity controls how much of a hook's captured output Print emits
// alongside its status line.
type Verbosity int

const (
	// Normal prints every status line; only failures print a body.
	Normal Verbosity = iota
	// Verbose prints every status line and every body, passed or not.
	Verbose
	// Quiet prints only failing hooks' status lines and bodies.
	Quiet
	// Silent writes nothing to stdout.
	Silent
)

// lineWidth is the fixed column status labels align to, matching the
// classic pre-commit-style console report.
const lineWidth = 79

const ansiReset = "\x1b[0m"

func ansiFor(status scheduler.Status) string {
	switch status {
	case scheduler.Passed:
		return "\x1b[32m"
	case scheduler.Failed:
		return "\x1b[31m"
	case scheduler.Skipped:
		return "\x1b[33m"
	default:
		return ""
	}
}

// StatusLine renders one fixed-width status line for a hook named id:
// dot leaders fill the gap between id and status.String() up to
// lineWidth columns. An id (plus its label) longer than lineWidth
// still gets exactly one leading dot, so the line is never malformed,
// just wider than the target width.
func StatusLine(id string, status scheduler.Status, color bool) string {
	label := status.String()
	dots := lineWidth - len(id) - len(label)
	if dots < 1 {
		dots = 1
	}
	line := id + strings.Repeat(".", dots)
	if !color {
		return line + label
	}
	return line + ansiFor(status) + label + ansiReset
}

// Reporter accumulates hook results and writes them to Out as they
// arrive, honoring Verbosity and Color.
type Reporter struct {
	Out       io.Writer
	Verbosity Verbosity
	Color     bool
}

// New builds a Reporter writing to out, auto-detecting Color from
// whether out is a terminal (including a Windows Cygwin/MSYS pty).
// Callers that need to force color on or off (a --color flag,
// NO_COLOR) should construct a Reporter literal instead.
func New(out io.Writer, verbosity Verbosity) *Reporter {
	color := false
	if f, ok := out.(*os.File); ok {
		fd := f.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &Reporter{Out: out, Verbosity: verbosity, Color: color}
}

// PrintHook writes result's status line (and, depending on Verbosity,
// its captured body) to r.Out.
func (r *Reporter) PrintHook(result scheduler.HookResult) {
	if r.Verbosity == Silent {
		return
	}
	if r.Verbosity == Quiet && result.Status != scheduler.Failed {
		return
	}
	fmt.Fprintln(r.Out, StatusLine(result.HookID, result.Status, r.Color))
	if result.Status != scheduler.Failed && r.Verbosity != Verbose {
		return
	}
	if result.Stderr != "" {
		io.WriteString(r.Out, result.Stderr)
	}
	if result.Stdout != "" {
		io.WriteString(r.Out, result.Stdout)
	}
}

// PrintProject writes every hook result for one project, in order.
func (r *Reporter) PrintProject(result scheduler.ProjectResult) {
	for _, h := range result.Hooks {
		r.PrintHook(h)
	}
}
