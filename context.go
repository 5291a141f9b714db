package goSignIn

import "context"

type correlationIDContextKey struct{}

// WithCorrelationID attaches a caller-chosen identifier to ctx. The Engine
// copies it into every audit event emitted for operations started with ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey{}, id)
}

func correlationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(correlationIDContextKey{}).(string)
	return id
}
