package rest

import (
	"context"
	"net/http"
	"strconv"

	authapp "giftkeeper-server/internal/application/auth"
	giftcardapp "giftkeeper-server/internal/application/giftcard"
	"giftkeeper-server/internal/infrastructure/config"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
	"giftkeeper-server/internal/presentation/rest/handler"
	restmiddleware "giftkeeper-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// HealthChecker ヘルスチェック対象（データベースなど）
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc 関数をHealthCheckerとして使うためのアダプター
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck HealthCheckerの実装
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// Router REST APIルーター
type Router struct {
	echo            *echo.Echo
	cfg             *config.Config
	giftCardHandler *handler.GiftCardHandler
	authHandler     *handler.AuthHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	giftCardService *giftcardapp.GiftCardApplicationService,
	checkers ...HealthChecker,
) *Router {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	setupMiddleware(e, logger, metrics)

	r := &Router{
		echo:            e,
		cfg:             cfg,
		giftCardHandler: handler.NewGiftCardHandler(giftCardService),
		authHandler:     handler.NewAuthHandler(authService),
	}

	r.setupRoutes(authService, logger, checkers)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return r
}

// setupMiddleware ミドルウェアを設定
// エラーハンドリングを最も内側に置き、外側のミドルウェアが最終的なステータスを見られるようにする
func setupMiddleware(e *echo.Echo, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-Export-Count", "Retry-After"},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func (r *Router) setupRoutes(authService *authapp.AuthApplicationService, logger *otelinfra.Logger, checkers []HealthChecker) {
	api := r.echo.Group("/api/v1")

	// トークン発行は開発環境のみ公開する
	if r.cfg.IsDevelopment() {
		api.POST("/auth/token", r.authHandler.GenerateToken)
	}

	cards := api.Group("/gift-cards", restmiddleware.AuthMiddleware(authService, logger))
	cards.GET("", r.giftCardHandler.List)
	cards.POST("", r.giftCardHandler.Create)
	cards.GET("/summary", r.giftCardHandler.Summary)
	cards.GET("/export", r.giftCardHandler.Export)
	cards.PUT("/:id", r.giftCardHandler.Update)
	cards.DELETE("/:id", r.giftCardHandler.Delete)

	// ヘルスチェックエンドポイント（認証不要）
	r.echo.GET("/health", func(c echo.Context) error {
		for _, checker := range checkers {
			if err := checker.HealthCheck(c.Request().Context()); err != nil {
				logger.Error(c.Request().Context(), "Health check failed", err, nil)
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Handler テスト用にhttp.Handlerを返す
func (r *Router) Handler() http.Handler {
	return r.echo
}

// Start サーバーを起動
func (r *Router) Start() error {
	err := r.echo.Start(":" + strconv.Itoa(r.cfg.Server.Port))
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown 処理中のリクエストを待ってサーバーを停止
func (r *Router) Shutdown(ctx context.Context) error {
	return r.echo.Shutdown(ctx)
}
