package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	giftcardapp "giftkeeper-server/internal/application/giftcard"
	"giftkeeper-server/internal/application/notification"
	"giftkeeper-server/internal/domain/giftcard"
	"giftkeeper-server/internal/domain/ratelimit"
	"giftkeeper-server/internal/infrastructure/csvexport"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error        string                `json:"error"`
	Message      string                `json:"message"`
	Code         string                `json:"code,omitempty"`
	Details      []giftcard.FieldError `json:"details,omitempty"`
	Notification *notification.Notice  `json:"notification,omitempty"`
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// 入力エラーは最初のメッセージを通知し、全件をdetailsに含める
	var verrs giftcard.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs.First()
		notice := notification.ValidationFailed(first.Message)
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:        "validation_error",
			Message:      first.Message,
			Details:      verrs,
			Notification: &notice,
		})
	}

	if errors.Is(err, ratelimit.ErrRateLimitExceeded) {
		notice := notification.RateLimited()
		c.Response().Header().Set("Retry-After", "60")
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error:        "rate_limit_exceeded",
			Message:      notice.Description,
			Notification: &notice,
		})
	}

	if errors.Is(err, giftcard.ErrGiftCardNotFound) {
		notice := notification.NotFound()
		return c.JSON(http.StatusNotFound, ErrorResponse{
			Error:        "gift_card_not_found",
			Message:      err.Error(),
			Notification: &notice,
		})
	}

	if errors.Is(err, giftcardapp.ErrInvalidFilter) {
		logger.Warn(ctx, "Invalid filter", map[string]interface{}{
			"error": err.Error(),
		})
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_filter",
			Message: err.Error(),
		})
	}

	if errors.Is(err, csvexport.ErrNothingToExport) {
		notice := notification.NothingToExport()
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:        "nothing_to_export",
			Message:      notice.Description,
			Notification: &notice,
		})
	}

	// 保存先の失敗は詳細を隠して操作ごとの汎用メッセージを返す
	var opErr *giftcardapp.OperationError
	if errors.As(err, &opErr) {
		notice := notification.OperationFailed(opErr.Op)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:        "operation_failed",
			Message:      notice.Description,
			Code:         opErr.Op,
			Notification: &notice,
		})
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
