// =============================================================================
// Bill Analyzer - Structured Logging
// =============================================================================
//
// Thin wrapper around zerolog. The console writer keeps operator output
// readable while warnings and diagnostics stay structured. Commands create
// one logger at startup and hand it down; context helpers exist for call
// paths that only carry a context.
//
// =============================================================================

package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// contextKey is the private type for context keys used by this package.
type contextKey string

// loggerKey is the context key for the logger instance.
const loggerKey contextKey = "logger"

// New creates a console logger at the given level ("debug", "info",
// "warn", "error"). Unknown levels fall back to info.
func New(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Logger()
}

// NewWithWriter creates a logger writing to a custom writer. Used by tests.
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithContext stores the logger in the context.
func WithContext(ctx context.Context, log zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext retrieves the logger from the context, or a default logger
// when none was stored.
func FromContext(ctx context.Context) zerolog.Logger {
	if log, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return log
	}
	return New("info")
}
