package handler

import (
	"net/http"
	"strings"

	authapp "giftkeeper-server/internal/application/auth"

	"github.com/labstack/echo/v4"
)

// AuthHandler 認証関連ハンドラー
type AuthHandler struct {
	authService *authapp.AuthApplicationService
}

// NewAuthHandler 新しいAuthHandlerを作成
func NewAuthHandler(authService *authapp.AuthApplicationService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// GenerateToken トークン生成ハンドラー（開発環境のみ）
// @Summary 認証トークンを生成
// @Description ユーザーIDを元にJWT認証トークンを生成します。発行したトークンのuser_idがギフトカードの所有者になります
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GenerateTokenRequest true "トークン生成リクエスト"
// @Success 200 {object} GenerateTokenResponse "トークン生成成功"
// @Failure 400 {object} middleware.ErrorResponse "不正なリクエスト"
// @Router /auth/token [post]
func (h *AuthHandler) GenerateToken(c echo.Context) error {
	var reqBody GenerateTokenRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(reqBody.UserID) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	resp, err := h.authService.GenerateToken(c.Request().Context(), &authapp.GenerateTokenRequest{
		UserID: reqBody.UserID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, GenerateTokenResponse{
		Token:     resp.Token,
		ExpiresIn: int(resp.ExpiresIn),
		TokenType: resp.TokenType,
	})
}
