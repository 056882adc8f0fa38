package middleware

import (
	"net/http"
	"time"

	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware メトリクス記録ミドルウェア
func MetricsMiddleware(metrics *otelinfra.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			ctx := c.Request().Context()
			method := c.Request().Method

			err := next(c)

			// ルートはハンドラー実行後に確定する
			route := c.Path()
			metrics.RecordRequest(ctx, method, route)
			metrics.RecordResponseTime(ctx, method, route, time.Since(start).Seconds())

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			if errorType := classifyStatus(status); errorType != "" {
				metrics.RecordError(ctx, errorType)
			}

			return err
		}
	}
}

func classifyStatus(status int) string {
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return ""
	}
}
