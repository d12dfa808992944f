// file: internal/middleware/context.go
package middleware

import (
	"context"
	"time"

	"referralhub/internal/contextutils"

	"go.uber.org/zap"
)

// GetRequestLogger extracts the request-scoped logger from context
func GetRequestLogger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// GetRequestStart extracts the request start time from context
func GetRequestStart(ctx context.Context) time.Time {
	if start, ok := ctx.Value(RequestStartKey).(time.Time); ok {
		return start
	}
	return time.Now()
}

// WithRequestContext adds request context fields to an existing logger
func WithRequestContext(logger *zap.Logger, ctx context.Context) *zap.Logger {
	if requestID := contextutils.GetRequestID(ctx); requestID != "" {
		logger = logger.With(zap.String("request_id", requestID))
	}
	if p := contextutils.GetPrincipal(ctx); p.IsAuthenticated() {
		logger = logger.With(zap.String("user_id", p.UserID.String()))
	}
	return logger
}
