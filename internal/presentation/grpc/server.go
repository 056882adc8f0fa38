package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	authapp "giftkeeper-server/internal/application/auth"
	giftcardapp "giftkeeper-server/internal/application/giftcard"
	"giftkeeper-server/internal/infrastructure/config"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
	"giftkeeper-server/internal/presentation/grpc/handler"
	"giftkeeper-server/internal/presentation/grpc/interceptor"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

// Server gRPCサーバー
type Server struct {
	server   *grpc.Server
	listener net.Listener
	port     int
	logger   *otelinfra.Logger
}

// NewServer 新しいgRPCサーバーを作成
func NewServer(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	giftCardService *giftcardapp.GiftCardApplicationService,
) (*Server, error) {
	port := cfg.Server.EffectiveGRPCPort()
	address := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	return NewServerWithListener(cfg, logger, metrics, authService, giftCardService, listener, port)
}

// NewServerWithListener リスナーを指定してgRPCサーバーを作成（テスト用）
func NewServerWithListener(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	giftCardService *giftcardapp.GiftCardApplicationService,
	listener net.Listener,
	port int,
) (*Server, error) {
	// ログ → 認証の順に実行
	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			interceptor.LoggingInterceptor(logger, metrics),
			interceptor.AuthInterceptor(authService, logger),
		),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     15 * time.Second,
			MaxConnectionAge:      30 * time.Second,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  5 * time.Second,
			Timeout:               1 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	grpcServer := grpc.NewServer(opts...)

	handler.RegisterGiftCardServiceServer(grpcServer, handler.NewGiftCardHandler(giftCardService, logger))

	// リフレクションを有効化（開発環境用）
	if cfg.IsDevelopment() {
		reflection.Register(grpcServer)
	}

	return &Server{
		server:   grpcServer,
		listener: listener,
		port:     port,
		logger:   logger,
	}, nil
}

// Start サーバーを起動
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "gRPC server starting", map[string]interface{}{
		"port": s.port,
	})
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop サーバーを停止
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "Stopping gRPC server", nil)

	// グレースフルシャットダウン
	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info(ctx, "gRPC server stopped", nil)
		return nil
	case <-ctx.Done():
		// タイムアウトした場合は強制停止
		s.logger.Warn(ctx, "gRPC server shutdown timeout, forcing stop", nil)
		s.server.Stop()
		return ctx.Err()
	}
}

// Port サーバーのポート番号を返す
func (s *Server) Port() int {
	return s.port
}
