package middleware

import (
	"net/http"
	"strings"

	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the admin bearer token and stores the caller in the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		prometheus.RecordAuthAttempt(true)

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("user_role", claims.Role)

		// Carry the caller on the request logger
		c.Set("logger", log.With(zap.Uint("user_id", claims.UserID), zap.String("email", claims.Email)))

		return next(c)
	}
}

// GetUserIDFromContext retrieves the authenticated user ID from the context
// Returns 0, false if no user is authenticated
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
