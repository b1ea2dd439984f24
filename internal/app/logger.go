package app

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// newLogger builds the run logger without touching slog.Default. Unknown
// levels fall back to info and unknown formats to text.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch formatStr {
	case "json":
		handler = slog.NewJSONHandler(outW, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = charmlog.NewWithOptions(outW, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Prefix:          "scenegrid",
		})
	default:
		handler = slog.NewTextHandler(outW, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler)
}
