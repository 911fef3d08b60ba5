package hooks

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// writeAtomic rewrites path with data without ever leaving a
// partially-written file behind, preserving the original file's mode.
func writeAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode()
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}

// FixEndOfFile ensures the file ends with exactly one line ending,
// using whatever ending style already terminates its last line (or LF
// if the file has none). Files made entirely of line-ending bytes are
// truncated to empty.
func FixEndOfFile(absPath, relPath string) (FileResult, error) {
	data, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	if len(data) == 0 {
		return FileResult{}, nil
	}

	pos := len(data) - 1
	for pos >= 0 && (data[pos] == '\n' || data[pos] == '\r') {
		pos--
	}

	if pos < 0 {
		if err := writeAtomic(absPath, nil); err != nil {
			return FileResult{}, err
		}
		return fixedResult(relPath), nil
	}

	var ending []byte
	if pos+1 < len(data) {
		switch {
		case data[pos+1] == '\r' && pos+2 < len(data) && data[pos+2] == '\n':
			ending = []byte("\r\n")
		case data[pos+1] == '\n':
			ending = []byte("\n")
		case data[pos+1] == '\r':
			ending = []byte("\r")
		}
	}

	if ending == nil {
		newData := append(append([]byte{}, data[:pos+1]...), '\n')
		if err := writeAtomic(absPath, newData); err != nil {
			return FileResult{}, err
		}
		return fixedResult(relPath), nil
	}

	newSize := pos + 1 + len(ending)
	if newSize == len(data) {
		return FileResult{}, nil
	}
	if err := writeAtomic(absPath, data[:newSize]); err != nil {
		return FileResult{}, err
	}
	return fixedResult(relPath), nil
}

func fixedResult(relPath string) FileResult {
	return FileResult{Modified: true, Failed: true, Message: fmt.Sprintf("Fixing %s\n", relPath)}
}

// FixByteOrderMarker strips a leading UTF-8 byte order mark.
func FixByteOrderMarker(absPath, relPath string) (FileResult, error) {
	data, err := readFile(absPath)
	if err != nil {
		return FileResult{}, err
	}
	const bom = "\xef\xbb\xbf"
	if !strings.HasPrefix(string(data), bom) {
		return FileResult{}, nil
	}
	if err := writeAtomic(absPath, data[len(bom):]); err != nil {
		return FileResult{}, err
	}
	return fixedResult(relPath), nil
}

// TrailingWhitespaceOptions configures FixTrailingWhitespace.
type TrailingWhitespaceOptions struct {
	// MarkdownLinebreakExt lists extensions (without the leading dot,
	// lowercase) whose files preserve a two-space trailing sequence as
	// a Markdown hard line break instead of stripping it.
	MarkdownLinebreakExt map[string]bool
	// Chars, if non-empty, overrides the default whitespace character
	// set (" \t\v") stripped from line ends.
	Chars string
}

const defaultTrailingWhitespaceChars = " \t\v"

// FixTrailingWhitespace strips trailing whitespace from every line,
// leaving the line's own ending intact.
func FixTrailingWhitespace(opts TrailingWhitespaceOptions) FileFunc {
	chars := opts.Chars
	if chars == "" {
		chars = defaultTrailingWhitespaceChars
	}
	return func(absPath, relPath string) (FileResult, error) {
		data, err := readFile(absPath)
		if err != nil {
			return FileResult{}, err
		}
		if len(data) == 0 {
			return FileResult{}, nil
		}
		markdown := opts.MarkdownLinebreakExt[strings.ToLower(strings.TrimPrefix(extOf(relPath), "."))]

		var out bytes.Buffer
		changed := false
		for _, line := range splitLinesKeepEnds(data) {
			body, ending := splitLineEnding(line)
			trimmed := bytes.TrimRight(body, chars)
			removed := body[len(trimmed):]
			if markdown && bytes.HasPrefix(removed, []byte("  ")) {
				trimmed = append(trimmed, ' ', ' ')
			}
			if !bytes.Equal(trimmed, body) {
				changed = true
			}
			out.Write(trimmed)
			out.Write(ending)
		}
		if !changed {
			return FileResult{}, nil
		}
		if err := writeAtomic(absPath, out.Bytes()); err != nil {
			return FileResult{}, err
		}
		return fixedResult(relPath), nil
	}
}

func extOf(relPath string) string {
	if i := strings.LastIndexByte(relPath, '.'); i >= 0 {
		return relPath[i:]
	}
	return ""
}

func splitLineEnding(line []byte) (body, ending []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")), bytes.HasSuffix(line, []byte("\r")):
		return line[:len(line)-1], line[len(line)-1:]
	default:
		return line, nil
	}
}

func splitLinesKeepEnds(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	i := 0
	for i < len(data) {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i+1])
			start = i + 1
			i++
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				lines = append(lines, data[start:i+2])
				start = i + 2
				i += 2
			} else {
				lines = append(lines, data[start:i+1])
				start = i + 1
				i++
			}
		default:
			i++
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// LineEnding names a fixed line-ending style for MixedLineEnding.
type LineEnding int

const (
	// EndingAuto rewrites the file to whichever ending occurs most
	// often, ties broken toward LF.
	EndingAuto LineEnding = iota
	// EndingReportOnly never rewrites, only reports mixed endings.
	EndingReportOnly
	EndingLF
	EndingCRLF
	EndingCR
)

var endingBytes = map[LineEnding][]byte{
	EndingLF:   []byte("\n"),
	EndingCRLF: []byte("\r\n"),
	EndingCR:   []byte("\r"),
}

// preferenceOrder lists the endings in ascending tie-break precedence:
// mostCommonEnding keeps the last of equally common endings, so CRLF
// beats CR and LF wins any full tie — matching pre-commit-hooks.
var preferenceOrder = []LineEnding{EndingCR, EndingCRLF, EndingLF}

// MixedLineEnding normalizes or reports files using more than one line
// ending style.
func MixedLineEnding(mode LineEnding) FileFunc {
	return func(absPath, relPath string) (FileResult, error) {
		data, err := readFile(absPath)
		if err != nil {
			return FileResult{}, err
		}
		if len(data) == 0 || bytes.IndexByte(data, 0) >= 0 {
			return FileResult{}, nil
		}

		counts := map[LineEnding]int{}
		for _, line := range splitLinesKeepEnds(data) {
			_, ending := splitLineEnding(line)
			switch {
			case bytes.Equal(ending, []byte("\r\n")):
				counts[EndingCRLF]++
			case bytes.Equal(ending, []byte("\n")):
				counts[EndingLF]++
			case bytes.Equal(ending, []byte("\r")):
				counts[EndingCR]++
			}
		}
		if len(counts) == 0 {
			return FileResult{}, nil
		}

		switch mode {
		case EndingReportOnly:
			if len(counts) > 1 {
				return FileResult{Failed: true, Message: fmt.Sprintf("%s: mixed line endings\n", relPath)}, nil
			}
			return FileResult{}, nil
		case EndingAuto:
			if len(counts) <= 1 {
				return FileResult{}, nil
			}
			target := mostCommonEnding(counts)
			if err := rewriteLineEndings(absPath, data, endingBytes[target]); err != nil {
				return FileResult{}, err
			}
			return fixedResult(relPath), nil
		default:
			target := endingBytes[mode]
			needsFix := false
			for ending, n := range counts {
				if n > 0 && !bytes.Equal(endingBytes[ending], target) {
					needsFix = true
				}
			}
			if !needsFix {
				return FileResult{}, nil
			}
			if err := rewriteLineEndings(absPath, data, target); err != nil {
				return FileResult{}, err
			}
			return fixedResult(relPath), nil
		}
	}
}

// mostCommonEnding picks the ending with the highest count, breaking
// ties toward whichever comes later in preferenceOrder (CR, then CRLF,
// then LF) — matching Rust's Iterator::max_by_key, which returns the
// last of several equally-maximum elements, so LF wins any full tie.
func mostCommonEnding(counts map[LineEnding]int) LineEnding {
	best := preferenceOrder[0]
	bestCount := -1
	for _, ending := range preferenceOrder {
		if n := counts[ending]; n >= bestCount {
			bestCount = n
			best = ending
		}
	}
	return best
}

// rewriteLineEndings normalizes every line to end with ending,
// including a trailing line with no ending of its own — matching
// pre-commit-hooks, which always terminates the rewritten file.
func rewriteLineEndings(absPath string, data []byte, ending []byte) error {
	var out bytes.Buffer
	out.Grow(len(data))
	for _, line := range splitLinesKeepEnds(data) {
		body, _ := splitLineEnding(line)
		out.Write(body)
		out.Write(ending)
	}
	return writeAtomic(absPath, out.Bytes())
}
