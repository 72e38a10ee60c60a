package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextIPKey        ctxKey = "clientIP"
	ContextUserAgentKey ctxKey = "userAgent"
)

func ContextWithRequestMeta(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ContextIPKey, ip)
	return context.WithValue(ctx, ContextUserAgentKey, userAgent)
}

func IPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ip, ok := ctx.Value(ContextIPKey).(string); ok {
		return ip
	}
	return ""
}

func UserAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ua, ok := ctx.Value(ContextUserAgentKey).(string); ok {
		return ua
	}
	return ""
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
