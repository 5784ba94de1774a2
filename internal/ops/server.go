// Package ops serves health and prometheus endpoints next to the gRPC listener.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/metrics"
	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck reports the state of one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

func NewServer(gatherer prometheus.Gatherer, m *metrics.Metrics, checks map[string]HealthCheck, log logger.ZapLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(metricsMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		result := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				result[name] = err.Error()
				healthy = false
				continue
			}
			result[name] = "ok"
		}

		code := http.StatusOK
		status := "ok"
		if !healthy {
			code = http.StatusServiceUnavailable
			status = "degraded"
		}
		return c.JSON(code, map[string]any{"status": status, "dependencies": result})
	})
	return e
}

func metricsMiddleware(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			m.ObserveHTTP(c.Request().Method, c.Path(), c.Response().Status, time.Since(start))
			return err
		}
	}
}
