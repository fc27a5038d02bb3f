// Observability middleware and operational endpoints for metrics and profiling
package server

import (
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nainya/spdxtv/internal/logger"
	"github.com/nainya/spdxtv/internal/metrics"
)

// MetricsMiddleware records request metrics and logs every request
func MetricsMiddleware(m *metrics.Metrics, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if m != nil {
				m.HTTPRequestsInFlight.Inc()
				defer m.HTTPRequestsInFlight.Dec()
			}

			err := next(c)
			if err != nil {
				// writes the response so the status below is final
				c.Error(err)
			}

			duration := time.Since(start)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if m != nil {
				m.RecordHTTPRequest(route, strconv.Itoa(status), duration)
			}

			ev := log.HTTPLogger(route).Debug("request")
			if status >= http.StatusInternalServerError {
				ev = log.HTTPLogger(route).Error("request")
			}
			ev.Str("method", c.Request().Method).
				Int("status", status).
				Dur("duration_ms", duration).
				Err(err).
				Send()
			return nil
		}
	}
}

// registerOps adds /metrics, /health, /ready and the pprof endpoints
func (s *Server) registerOps(g prometheus.Gatherer) {
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))

	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "service": "spdxtv"})
	})

	s.echo.GET("/ready", func(c echo.Context) error {
		if !s.ready.Load() {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "shutting down"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":     "ready",
			"namespaces": len(s.store.Namespaces()),
		})
	})

	s.echo.GET("/debug/pprof/cmdline", echo.WrapHandler(http.HandlerFunc(pprof.Cmdline)))
	s.echo.GET("/debug/pprof/profile", echo.WrapHandler(http.HandlerFunc(pprof.Profile)))
	s.echo.GET("/debug/pprof/symbol", echo.WrapHandler(http.HandlerFunc(pprof.Symbol)))
	s.echo.GET("/debug/pprof/trace", echo.WrapHandler(http.HandlerFunc(pprof.Trace)))
	// Index serves the named profiles (heap, goroutine, allocs, ...)
	s.echo.GET("/debug/pprof/*", echo.WrapHandler(http.HandlerFunc(pprof.Index)))
}
