package interceptor

import (
	"context"
	"errors"

	authapp "giftkeeper-server/internal/application/auth"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AuthInterceptor JWT認証インターセプター
// トークンのuser_idを所有者IDとしてコンテキストに設定する
func AuthInterceptor(authService *authapp.AuthApplicationService, logger *otelinfra.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		// メタデータからトークンを取得
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			logger.Warn(ctx, "Missing metadata", map[string]interface{}{
				"method": info.FullMethod,
			})
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		authHeader := ""
		if values := md.Get("authorization"); len(values) > 0 {
			authHeader = values[0]
		}

		ownerID, err := authService.Authenticate(authHeader)
		if err != nil {
			logger.Warn(ctx, "Authentication failed", map[string]interface{}{
				"method": info.FullMethod,
				"error":  err.Error(),
			})
			return nil, status.Error(codes.Unauthenticated, unauthenticatedMessage(err))
		}

		return handler(authapp.WithOwnerID(ctx, ownerID), req)
	}
}

func unauthenticatedMessage(err error) string {
	for _, target := range []error{
		authapp.ErrMissingToken,
		authapp.ErrMalformedHeader,
		authapp.ErrMissingUserClaim,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return authapp.ErrInvalidToken.Error()
}
