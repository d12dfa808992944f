// Package responseutil stores the response writer in a request context
// without importing the response package.
package responseutil

import (
	"context"
	"net/http"
)

// ResponseBuilder is the part of the response builder that middleware needs
type ResponseBuilder interface {
	WriteError(w http.ResponseWriter, r *http.Request, err error)
}

type contextKey string

const (
	// ResponseBuilderKey is the key used to store the response builder in the context.
	ResponseBuilderKey contextKey = "response_builder"
)

// GetBuilder extracts the response builder from the context, or nil
func GetBuilder(ctx context.Context) ResponseBuilder {
	if builder, ok := ctx.Value(ResponseBuilderKey).(ResponseBuilder); ok {
		return builder
	}
	return nil
}

// SetBuilder stores a response builder in the context.
func SetBuilder(ctx context.Context, builder ResponseBuilder) context.Context {
	return context.WithValue(ctx, ResponseBuilderKey, builder)
}
