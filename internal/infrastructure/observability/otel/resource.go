package otel

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"giftkeeper-server/internal/infrastructure/config"
)

func newResource(ctx context.Context, cfg *config.OpenTelemetryConfig) (*resource.Resource, error) {
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// isEndpointURL エンドポイントがスキーム付きのURLかどうか
// URLならWithEndpointURL、host:portならWithEndpointで渡す
func isEndpointURL(endpoint string) bool {
	return strings.Contains(endpoint, "://")
}

func noopShutdown(context.Context) error { return nil }
