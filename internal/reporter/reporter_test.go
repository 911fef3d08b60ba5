package reporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/astrophena/prek/internal/scheduler"
)

func TestNewDisablesColorForNonTerminalOutput(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, Normal)
	if r.Color {
		t.Fatal("expected Color false for a non-*os.File writer")
	}
	if r.Out != &buf || r.Verbosity != Normal {
		t.Fatal("expected Out and Verbosity to be set from arguments")
	}
}

func TestStatusLinePadsWithDotsToFixedWidth(t *testing.T) {
	line := StatusLine("trim trailing whitespace", scheduler.Passed, false)
	if !strings.HasSuffix(line, "Passed") {
		t.Fatalf("line = %q, want suffix Passed", line)
	}
	if !strings.Contains(line, "...") {
		t.Fatalf("line = %q, want dot leaders", line)
	}
	if len(line) != lineWidth {
		t.Fatalf("len(line) = %d, want %d", len(line), lineWidth)
	}
}

func TestStatusLineNeverGoesBelowOneDot(t *testing.T) {
	longID := strings.Repeat("x", lineWidth+20)
	line := StatusLine(longID, scheduler.Failed, false)
	if !strings.HasSuffix(line, ".Failed") {
		t.Fatalf("line = %q, want exactly one dot before the label", line)
	}
}

func TestStatusLineColorWrapsLabelInANSI(t *testing.T) {
	line := StatusLine("a hook", scheduler.Failed, true)
	if !strings.Contains(line, "\x1b[31m") || !strings.HasSuffix(line, ansiReset) {
		t.Fatalf("line = %q, want red ANSI-wrapped Failed", line)
	}
}

func TestPrintHookQuietSuppressesPassed(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Verbosity: Quiet}
	r.PrintHook(scheduler.HookResult{HookID: "a", Status: scheduler.Passed})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPrintHookQuietStillPrintsFailure(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Verbosity: Quiet}
	r.PrintHook(scheduler.HookResult{HookID: "a", Status: scheduler.Failed, Stdout: "boom\n"})
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected failure body printed, got %q", buf.String())
	}
}

func TestPrintHookSilentWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Verbosity: Silent}
	r.PrintHook(scheduler.HookResult{HookID: "a", Status: scheduler.Failed, Stdout: "boom\n"})
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPrintHookNormalOmitsPassedBody(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Verbosity: Normal}
	r.PrintHook(scheduler.HookResult{HookID: "a", Status: scheduler.Passed, Stdout: "should not print\n"})
	if strings.Contains(buf.String(), "should not print") {
		t.Fatalf("passed body should not print under Normal, got %q", buf.String())
	}
}

func TestPrintHookVerbosePrintsPassedBody(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{Out: &buf, Verbosity: Verbose}
	r.PrintHook(scheduler.HookResult{HookID: "a", Status: scheduler.Passed, Stdout: "shown\n"})
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("expected passed body under Verbose, got %q", buf.String())
	}
}

func TestProgressMessageNoWidthDoesNotShorten(t *testing.T) {
	got := progressMessage(1, 1, []string{"very-long-hook-id"}, 0)
	want := "[1/1] Running hook very-long-hook-id"
	if got != want {
		t.Fatalf("progressMessage() = %q, want %q", got, want)
	}
}

func TestProgressMessageShortensWithEllipsis(t *testing.T) {
	// prefix "[2/10] Running hook " is 20 chars; width 25 leaves a
	// 5-char budget, enough for "ch" plus "...".
	got := progressMessage(2, 10, []string{"check-added-large-files"}, 25)
	want := "[2/10] Running hook ch..."
	if got != want {
		t.Fatalf("progressMessage() = %q, want %q", got, want)
	}
}

func TestProgressMessageTinyWidthKeepsPrefixOnly(t *testing.T) {
	got := progressMessage(3, 10, []string{"check-yaml"}, 5)
	want := "[3/10] Running hook "
	if got != want {
		t.Fatalf("progressMessage() = %q, want %q", got, want)
	}
}

func TestProgressMessageSmallBudgetTrimsWithoutEllipsis(t *testing.T) {
	// prefix "[2/100] Running hook " is 21 chars; width 23 leaves a
	// 2-char budget, too small for an ellipsis.
	got := progressMessage(2, 100, []string{"check-yaml"}, 23)
	want := "[2/100] Running hook ch"
	if got != want {
		t.Fatalf("progressMessage() = %q, want %q", got, want)
	}
}

func TestProgressMessageFlattensTabs(t *testing.T) {
	got := progressMessage(1, 2, []string{"a\thook"}, 0)
	if strings.Contains(got, "\t") {
		t.Fatalf("progressMessage() = %q, contains tab", got)
	}
}
