// Package v1 holds the helpers shared by the version 1 API controllers.
package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"referralhub/internal/services"
)

// RequestTimeout bounds the storage work done for a single API call
const RequestTimeout = 30 * time.Second

// maxBodyBytes caps request bodies; every payload in this API is a small form
const maxBodyBytes = 1 << 20

// WithTimeout derives the handler context from the request
func WithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), RequestTimeout)
}

// DecodeJSON reads the request body into dst. An empty body leaves dst at its
// zero value so field validation reports what is missing. Field decoders that
// reject a value with a ServiceError keep their message.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return services.NewValidationError("Invalid request body", err)
}
