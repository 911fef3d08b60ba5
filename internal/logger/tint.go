package logger

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// NewCLIHandler returns a [slog.Handler] suitable for attaching to a
// [Logger] used by an interactive command: colored unless noColor is set
// (w itself is not inspected), leveled by level, with a compact
// timestamp.
func NewCLIHandler(w io.Writer, level *slog.LevelVar, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
}
