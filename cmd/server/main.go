package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "giftkeeper-server/internal/application/auth"
	giftcardapp "giftkeeper-server/internal/application/giftcard"
	"giftkeeper-server/internal/domain/giftcard"
	"giftkeeper-server/internal/domain/ratelimit"
	"giftkeeper-server/internal/infrastructure/config"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
	"giftkeeper-server/internal/infrastructure/persistence/memory"
	"giftkeeper-server/internal/infrastructure/persistence/mysql"
	ratelimitinfra "giftkeeper-server/internal/infrastructure/ratelimit"
	grpcserver "giftkeeper-server/internal/presentation/grpc"
	"giftkeeper-server/internal/presentation/rest"

	"golang.org/x/sync/errgroup"
)

const serviceName = "giftkeeper-server"

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer(serviceName)
	logger := otelinfra.NewLogger(tracer,
		otelinfra.WithLevel(otelinfra.LevelForEnvironment(cfg.Environment, cfg.Log.Level)),
	)
	metrics, err := otelinfra.NewMetrics(serviceName)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checkers []rest.HealthChecker

	// 保存先の初期化
	var repo giftcard.Repository
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		repo = memory.NewGiftCardRepository()
	default:
		db, err := mysql.NewDB(ctx, &cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		repo = mysql.NewGiftCardRepository(db)
		checkers = append(checkers, db)
	}

	// レート制限の初期化
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		client, err := ratelimitinfra.Connect(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		limiter = ratelimitinfra.NewRedisLimiter(client, cfg.RateLimit.KeyPrefix)
		checkers = append(checkers, rest.HealthCheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	default:
		memLimiter, err := ratelimitinfra.NewSlidingWindowLimiter(cfg.RateLimit.MaxKeys)
		if err != nil {
			log.Fatalf("Failed to create rate limiter: %v", err)
		}
		limiter = memLimiter
	}
	gate := ratelimit.NewGate(limiter, cfg.RateLimit.Policies)
	if memLimiter, ok := limiter.(*ratelimitinfra.SlidingWindowLimiter); ok {
		memLimiter.StartJanitor(ctx, cfg.RateLimit.SweepInterval, gate.LongestWindow())
	}

	// アプリケーションサービスの初期化
	authAppService := authapp.NewAuthApplicationService(&cfg.JWT, logger)
	giftCardAppService := giftcardapp.NewGiftCardApplicationService(
		repo,
		gate,
		logger,
		metrics,
		giftcardapp.WithLocation(cfg.Location),
		giftcardapp.WithExportPrefix(cfg.Export.FilenamePrefix),
	)

	// REST APIルーターの初期化
	router := rest.NewRouter(cfg, logger, metrics, authAppService, giftCardAppService, checkers...)

	// gRPCサーバーの初期化
	grpcSrv, err := grpcserver.NewServer(cfg, logger, metrics, authAppService, giftCardAppService)
	if err != nil {
		log.Fatalf("Failed to create gRPC server: %v", err)
	}

	logger.Info(ctx, "Servers starting", map[string]interface{}{
		"rest_port":   cfg.Server.Port,
		"grpc_port":   grpcSrv.Port(),
		"environment": cfg.Environment,
		"store":       cfg.Store.Driver,
		"rate_limit":  cfg.RateLimit.Backend,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	g.Go(grpcSrv.Start)

	// シグナルまたはどちらかのサーバーの停止を待ってシャットダウン
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down servers", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := router.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down REST API server", err, nil)
		}
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "Error shutting down gRPC server", err, nil)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error(context.Background(), "Server error", err, nil)
		os.Exit(1)
	}

	logger.Info(context.Background(), "Servers stopped", nil)
}
