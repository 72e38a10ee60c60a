package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With attaches fields to the logger carried by the context. The middleware
// uses it for the request id and the resolved actor, so every handler log
// line downstream is correlated for free.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process one
// when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
