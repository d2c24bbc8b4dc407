package handler

import (
	"context"
	"net/http"
	"time"

	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports whether the service and its database are reachable
func Health(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				logger.FromContext(c).Error("Health check failed", zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "database": "down"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}

// Version answers the build version
func Version(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"version": version})
	}
}
