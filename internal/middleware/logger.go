package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogger logs one line per request with method, route, status, and
// latency. 5xx responses log at error level.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []any{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if res.Status >= 500 {
				logger.Error("request", attrs...)
			} else {
				logger.Info("request", attrs...)
			}
			return nil
		}
	}
}
