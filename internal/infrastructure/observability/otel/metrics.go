package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// ギフトカード操作数
	OperationCount metric.Int64Counter

	// レート制限で拒否された数
	RateLimitedCount metric.Int64Counter

	// 入力エラー数
	ValidationFailureCount metric.Int64Counter

	// CSV出力数
	ExportCount metric.Int64Counter

	// 所有者ごとの残高合計
	BalanceTotal metric.Float64Gauge

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := Meter(meterName)

	operationCount, err := meter.Int64Counter(
		"gift_card_operations_total",
		metric.WithDescription("Total number of gift card operations"),
	)
	if err != nil {
		return nil, err
	}

	rateLimitedCount, err := meter.Int64Counter(
		"rate_limited_total",
		metric.WithDescription("Total number of operations rejected by the rate limiter"),
	)
	if err != nil {
		return nil, err
	}

	validationFailureCount, err := meter.Int64Counter(
		"validation_failures_total",
		metric.WithDescription("Total number of validation failures"),
	)
	if err != nil {
		return nil, err
	}

	exportCount, err := meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Total number of CSV exports"),
	)
	if err != nil {
		return nil, err
	}

	balanceTotal, err := meter.Float64Gauge(
		"gift_card_balance_total",
		metric.WithDescription("Total gift card balance in USD"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		OperationCount:         operationCount,
		RateLimitedCount:       rateLimitedCount,
		ValidationFailureCount: validationFailureCount,
		ExportCount:            exportCount,
		BalanceTotal:           balanceTotal,
		RequestCount:           requestCount,
		ResponseTime:           responseTime,
		ErrorCount:             errorCount,
	}, nil
}

// RecordOperation ギフトカード操作を記録
func (m *Metrics) RecordOperation(ctx context.Context, operation, result string) {
	m.OperationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

// RecordRateLimited レート制限による拒否を記録
func (m *Metrics) RecordRateLimited(ctx context.Context, operation string) {
	m.RateLimitedCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
		),
	)
}

// RecordValidationFailure 入力エラーを記録
func (m *Metrics) RecordValidationFailure(ctx context.Context, field string) {
	m.ValidationFailureCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("field", field),
		),
	)
}

// RecordExport CSV出力を記録
func (m *Metrics) RecordExport(ctx context.Context, rows int) {
	m.ExportCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.Int("rows", rows),
		),
	)
}

// RecordBalanceTotal 所有者の残高合計を記録
func (m *Metrics) RecordBalanceTotal(ctx context.Context, ownerID string, total float64) {
	m.BalanceTotal.Record(ctx, total,
		metric.WithAttributes(
			attribute.String("owner_id", ownerID),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
