package contextutils

import (
	"context"

	"referralhub/internal/policy"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	principalKey contextKey = "principal"
)

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetPrincipal retrieves the authenticated caller; the zero Principal means anonymous
func GetPrincipal(ctx context.Context) policy.Principal {
	if p, ok := ctx.Value(principalKey).(policy.Principal); ok {
		return p
	}
	return policy.Principal{}
}

// WithPrincipal adds the authenticated caller to the context
func WithPrincipal(ctx context.Context, p policy.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
