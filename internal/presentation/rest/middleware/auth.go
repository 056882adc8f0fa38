package middleware

import (
	"errors"
	"net/http"

	authapp "giftkeeper-server/internal/application/auth"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"github.com/labstack/echo/v4"
)

// OwnerIDKey echo.Contextに設定する所有者IDのキー
const OwnerIDKey = "owner_id"

// AuthMiddleware JWT認証ミドルウェア
// トークンのuser_idを所有者IDとしてコンテキストに設定する
func AuthMiddleware(authService *authapp.AuthApplicationService, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			ownerID, err := authService.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				logger.Warn(ctx, "Authentication failed", map[string]interface{}{
					"error": err.Error(),
					"path":  c.Request().URL.Path,
				})
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: unauthorizedMessage(err),
				})
			}

			c.Set(OwnerIDKey, ownerID)
			c.SetRequest(c.Request().WithContext(authapp.WithOwnerID(ctx, ownerID)))

			return next(c)
		}
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, authapp.ErrMissingToken):
		return "Missing authorization header"
	case errors.Is(err, authapp.ErrMalformedHeader):
		return "Invalid authorization header format"
	case errors.Is(err, authapp.ErrMissingUserClaim):
		return "Missing user_id in token"
	default:
		return "Invalid or expired token"
	}
}
