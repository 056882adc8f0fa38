package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
)

// collectCounters error_typeごとのerrors_totalとrequests_totalを集計する
func collectCounters(t *testing.T, reader *sdkmetric.ManualReader) (requests int64, errorsByType map[string]int64) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	errorsByType = map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				switch m.Name {
				case "requests_total":
					requests += dp.Value
				case "errors_total":
					v, _ := dp.Attributes.Value(attribute.Key("error_type"))
					errorsByType[v.AsString()] += dp.Value
				}
			}
		}
	}
	return requests, errorsByType
}

func TestMetricsMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		handler    echo.HandlerFunc
		wantErr    bool
		wantErrors map[string]int64
	}{
		{
			name: "正常系: 2xxはエラーに数えない",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantErrors: map[string]int64{},
		},
		{
			name: "正常系: 3xxはエラーに数えない",
			handler: func(c echo.Context) error {
				return c.Redirect(http.StatusFound, "/elsewhere")
			},
			wantErrors: map[string]int64{},
		},
		{
			name: "異常系: 書き込み済みの4xx",
			handler: func(c echo.Context) error {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
			},
			wantErrors: map[string]int64{"client_error": 1},
		},
		{
			name: "異常系: HTTPエラーを返す",
			handler: func(c echo.Context) error {
				return echo.NewHTTPError(http.StatusBadRequest, "bad")
			},
			wantErr:    true,
			wantErrors: map[string]int64{"client_error": 1},
		},
		{
			name: "異常系: 未処理のエラーはサーバーエラー",
			handler: func(c echo.Context) error {
				return errors.New("boom")
			},
			wantErr:    true,
			wantErrors: map[string]int64{"server_error": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := sdkmetric.NewManualReader()
			otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
			defer otel.SetMeterProvider(noop.NewMeterProvider())

			metrics, err := otelinfra.NewMetrics("test-meter")
			require.NoError(t, err)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/gift-cards", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath("/api/v1/gift-cards")

			err = MetricsMiddleware(metrics)(tt.handler)(c)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			requests, errorsByType := collectCounters(t, reader)
			assert.Equal(t, int64(1), requests)
			assert.Equal(t, tt.wantErrors, errorsByType)
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, "", classifyStatus(http.StatusOK))
	assert.Equal(t, "", classifyStatus(http.StatusNotModified))
	assert.Equal(t, "client_error", classifyStatus(http.StatusTooManyRequests))
	assert.Equal(t, "server_error", classifyStatus(http.StatusBadGateway))
}
