// Package context carries per-request values without leaking keys across
// packages.
package context

import "context"

type requestIDKey struct{}

// WithRequestID stores the request id for downstream logging.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the stored request id, or "".
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(requestIDKey{}).(string); ok {
		return s
	}
	return ""
}
