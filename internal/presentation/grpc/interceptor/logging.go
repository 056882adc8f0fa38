package interceptor

import (
	"context"
	"time"

	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor 呼び出しごとのログとメトリクスを記録するインターセプター
func LoggingInterceptor(logger *otelinfra.Logger, metrics *otelinfra.Metrics) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start)
		code := status.Code(err)

		metrics.RecordRequest(ctx, "GRPC", info.FullMethod)
		metrics.RecordResponseTime(ctx, "GRPC", info.FullMethod, float64(duration.Milliseconds()))

		fields := map[string]interface{}{
			"method":      info.FullMethod,
			"code":        code.String(),
			"duration_ms": duration.Milliseconds(),
		}

		switch code {
		case codes.OK:
			logger.Info(ctx, "gRPC call completed", fields)
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
			metrics.RecordError(ctx, "grpc_"+code.String())
			logger.Error(ctx, "gRPC call failed", err, fields)
		default:
			logger.Warn(ctx, "gRPC call rejected", fields)
		}

		return resp, err
	}
}
