// Package logging configures the process-wide structured logger.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug for the chattiest diagnostics.
const LevelTrace = slog.Level(-8)

// Setup installs the default slog logger for CLI runs. The verbosity
// count maps 0..4 to ERROR, WARN, INFO, DEBUG and TRACE; higher counts
// clamp to TRACE. Logs go to stderr so tables own stdout.
func Setup(verbosity int, jsonFormat bool) {
	opts := &slog.HandlerOptions{
		Level:       LevelFromVerbosity(verbosity),
		ReplaceAttr: renameTraceLevel,
	}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// SetDefaultStructuredLogger installs a JSON logger tagged with the
// service name and version, for long-running server processes. The level
// comes from LOG_LEVEL (error, warn, info, debug, trace), defaulting to
// info.
func SetDefaultStructuredLogger(name, version string) {
	opts := &slog.HandlerOptions{
		Level:       LevelFromName(os.Getenv("LOG_LEVEL")),
		ReplaceAttr: renameTraceLevel,
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts)).With(
		slog.String("service", name),
		slog.String("version", version),
	)
	slog.SetDefault(logger)
}

// LevelFromVerbosity maps a -v count to a slog level.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError
	case v == 1:
		return slog.LevelWarn
	case v == 2:
		return slog.LevelInfo
	case v == 3:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelFromName maps a level name to a slog level, defaulting to info.
func LevelFromName(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "", "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// Trace logs through the default logger at LevelTrace, which the
// standard slog API has no shorthand for.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

func renameTraceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}
