package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// RequestIDKey is the header carrying the request id
const RequestIDKey = "X-Request-ID"

// FromContext retrieves the request logger from the Echo context
func FromContext(c echo.Context) *zap.Logger {
	if logger, ok := c.Get("logger").(*zap.Logger); ok {
		return logger
	}

	requestID := c.Request().Header.Get(RequestIDKey)
	if requestID == "" {
		requestID = "unknown"
	}
	return GetLogger().With(zap.String("request_id", requestID))
}

// FromCtx retrieves the logger from a plain context
func FromCtx(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return logger
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
