package middleware

import (
	"time"

	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware ログミドルウェア
func LoggingMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			logger.Debug(req.Context(), "HTTP request started", map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"remote_addr": c.RealIP(),
				"user_agent":  req.UserAgent(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			})

			err := next(c)

			fields := map[string]interface{}{
				"method":      req.Method,
				"path":        req.URL.Path,
				"route":       c.Path(),
				"status_code": c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
			}
			if ownerID, ok := c.Get(OwnerIDKey).(string); ok {
				fields["owner_id"] = ownerID
			}

			// 認証後のコンテキストでログを出す
			ctx := c.Request().Context()
			switch {
			case err != nil:
				logger.Error(ctx, "HTTP request failed", err, fields)
			case c.Response().Status >= 500:
				logger.Error(ctx, "HTTP request failed", nil, fields)
			case c.Response().Status >= 400:
				logger.Warn(ctx, "HTTP request rejected", fields)
			default:
				logger.Info(ctx, "HTTP request completed", fields)
			}

			return err
		}
	}
}
