// Package logging configures the process-wide slog logger.
//
// Usage:
//
//	logging.Setup(logging.Options{Level: "debug"})   // colored output via tint
//	logging.Setup(logging.Options{JSON: true})       // JSON lines for log shippers
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options selects the handler installed by Setup.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string

	// JSON switches from the colored console handler to slog's JSON handler.
	JSON bool

	// Output defaults to os.Stderr.
	Output io.Writer
}

// Setup installs the default logger and returns it.
func Setup(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level == slog.LevelDebug,
			NoColor:    out != os.Stderr && out != os.Stdout,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a LOG_LEVEL string to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
