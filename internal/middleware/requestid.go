package middleware

import (
	"catalog-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware adds a unique request ID to each request. An incoming
// X-Request-ID that parses as a UUID is kept so traces line up across services.
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(logger.RequestIDKey)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Request().Header.Set(logger.RequestIDKey, requestID)
		c.Response().Header().Set(logger.RequestIDKey, requestID)
		c.Set("request_id", requestID)

		log := logger.GetLogger().With(zap.String("request_id", requestID))
		c.Set("logger", log)

		// Plain contexts handed to services carry the same logger
		ctx := logger.WithContext(c.Request().Context(), log)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
