package core

import "context"

// Context keys for analysis options
type contextKey string

const suppressHeaderKey contextKey = "suppressHeader"

// WithSuppressHeader returns a context that disables run headers.
// Nested runs and the MCP server use it to keep stderr quiet.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}
