package response

import (
	"context"
	"encoding/json"
	"net/http"

	"referralhub/internal/contextutils"
	"referralhub/internal/responseutil"
	"referralhub/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool `json:"pretty_json"`
	IncludeRequestID   bool `json:"include_request_id"`
	MaskInternalErrors bool `json:"mask_internal_errors"`
}

// DefaultConfig returns production-ready response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		IncludeRequestID:   true,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// ErrorBody is the JSON body of every error response
type ErrorBody struct {
	Msg       string                 `json:"msg"`
	Code      string                 `json:"code,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// MessageBody is returned by operations that only report an outcome
type MessageBody struct {
	Msg string `json:"msg"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes JSON success payloads and error bodies
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		config: config,
		logger: logger,
	}
}

// ===============================
// HTTP RESPONSE WRITERS
// ===============================

// WriteJSON writes a JSON payload with appropriate headers
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if statusCode >= 400 {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	w.WriteHeader(statusCode)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(payload); err != nil {
		b.logger.Error("Failed to encode JSON response",
			zap.Error(err),
			zap.String("request_id", b.getRequestID(r.Context())),
		)
	}
}

// WriteSuccess writes the payload with 200
func (b *Builder) WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, data, http.StatusOK)
}

// WriteCreated writes the payload with 201
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, data, http.StatusCreated)
}

// WriteMessage writes {"msg": message} with 200
func (b *Builder) WriteMessage(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteJSON(w, r, MessageBody{Msg: message}, http.StatusOK)
}

// WriteError writes an error body with the status code carried by err
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)
	body := b.errorBody(r.Context(), serviceErr)
	b.logError(r.Context(), serviceErr)
	b.WriteJSON(w, r, body, serviceErr.GetStatusCode())
}

// ===============================
// UTILITY METHODS
// ===============================

func (b *Builder) errorBody(ctx context.Context, serviceErr *services.ServiceError) *ErrorBody {
	body := &ErrorBody{
		Msg:       serviceErr.Message,
		Code:      serviceErr.Code,
		RequestID: b.getRequestID(ctx),
		Details:   serviceErr.Details,
	}

	if b.config.MaskInternalErrors && serviceErr.Type == services.ErrTypeInternal {
		body.Msg = "Server Error"
		body.Details = nil
	}
	return body
}

func (b *Builder) getRequestID(ctx context.Context) string {
	if !b.config.IncludeRequestID {
		return ""
	}
	return contextutils.GetRequestID(ctx)
}

func (b *Builder) logError(ctx context.Context, serviceErr *services.ServiceError) {
	fields := []zap.Field{
		zap.String("request_id", contextutils.GetRequestID(ctx)),
		zap.String("error_type", serviceErr.Type),
		zap.String("error_message", serviceErr.Message),
		zap.String("error_code", serviceErr.Code),
	}

	switch serviceErr.Type {
	case services.ErrTypeInternal:
		b.logger.Error("Internal error", append(fields, zap.Error(serviceErr.Cause))...)
	case services.ErrTypeValidation, services.ErrTypeConflict:
		b.logger.Warn("Request error", fields...)
	default:
		b.logger.Info("Request completed with error", fields...)
	}
}

// ===============================
// CONTEXT HELPERS
// ===============================

// GetBuilder extracts response builder from context
func GetBuilder(ctx context.Context) *Builder {
	if builder, ok := responseutil.GetBuilder(ctx).(*Builder); ok {
		return builder
	}
	return nil
}

// SetBuilder stores response builder in context
func SetBuilder(ctx context.Context, builder *Builder) context.Context {
	return responseutil.SetBuilder(ctx, builder)
}

// ===============================
// HELPER FUNCTIONS
// ===============================

// QuickSuccess is a helper for simple success responses
func QuickSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	builderFor(r).WriteSuccess(w, r, data)
}

// QuickError is a helper for simple error responses
func QuickError(w http.ResponseWriter, r *http.Request, err error) {
	builderFor(r).WriteError(w, r, err)
}

func builderFor(r *http.Request) *Builder {
	if builder := GetBuilder(r.Context()); builder != nil {
		return builder
	}
	return NewBuilder(DefaultConfig(), zap.NewNop())
}

// ===============================
// RESPONSE MIDDLEWARE
// ===============================

// Middleware stores the builder in each request context
func Middleware(builder *Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := SetBuilder(r.Context(), builder)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
