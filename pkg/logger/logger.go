// Package logger owns the process-wide slog logger and the request-scoped
// logger carried through the context.
package logger

import (
	"log/slog"
	"os"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

var defaultLogger *slog.Logger

// Init configures the process logger: JSON at info level in production,
// text at debug level everywhere else. Every line carries the service name
// so log aggregation can tell this API apart from its neighbours.
func Init(env string) {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var handler slog.Handler
	if env == EnvProduction {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	defaultLogger = slog.New(handler).With("service", "salesops")
	slog.SetDefault(defaultLogger)
}

// LoggerWrapper returns the process logger, lazily initializing a
// development one when Init has not run (tests, one-off cobra commands).
func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		Init(EnvDevelopment)
	}
	return defaultLogger
}
