package cli

import (
	"io"
	"log/slog"

	"github.com/nocache-dev/nocache-server/internal/config"
)

// NewLogger creates the diagnostic logger with JSON output on w.
// The CLI passes stderr so stdout stays reserved for the banner and the
// access log.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: a.Value,
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// ParseLogLevelOrDefault parses a log level name, falling back to info for
// anything config does not recognize.
func ParseLogLevelOrDefault(levelStr string) slog.Level {
	if level, ok := config.ParseLogLevel(levelStr); ok {
		return level
	}
	return slog.LevelInfo
}
