package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantCSP     string
		wantNoStore bool
		wantHSTS    bool
	}{
		{
			name:        "正常系: APIパス",
			target:      "/api/v1/gift-cards",
			wantCSP:     apiCSP,
			wantNoStore: true,
		},
		{
			name:    "正常系: ヘルスチェック",
			target:  "/health",
			wantCSP: apiCSP,
		},
		{
			name:    "正常系: Swagger UI",
			target:  "/swagger/index.html",
			wantCSP: swaggerCSP,
		},
		{
			name:    "正常系: ReDoc",
			target:  "/redoc",
			wantCSP: swaggerCSP,
		},
		{
			name:        "正常系: HTTPSではHSTSを付与",
			target:      "https://example.com/api/v1/gift-cards/summary",
			wantCSP:     apiCSP,
			wantNoStore: true,
			wantHSTS:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler := SecurityHeadersMiddleware()(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			assert.NoError(t, handler(c))

			h := rec.Header()
			assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
			assert.Equal(t, tt.wantCSP, h.Get("Content-Security-Policy"))

			if tt.wantNoStore {
				assert.Equal(t, "no-store", h.Get("Cache-Control"))
			} else {
				assert.Empty(t, h.Get("Cache-Control"))
			}
			if tt.wantHSTS {
				assert.Contains(t, h.Get("Strict-Transport-Security"), "max-age=31536000")
			} else {
				assert.Empty(t, h.Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestSecurityHeadersMiddleware_HeadersSetOnError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gift-cards", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	testErr := errors.New("handler failed")
	handler := SecurityHeadersMiddleware()(func(c echo.Context) error {
		return testErr
	})

	assert.Equal(t, testErr, handler(c))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestIsSwaggerPath(t *testing.T) {
	assert.True(t, isSwaggerPath("/swagger"))
	assert.True(t, isSwaggerPath("/swagger/doc.json"))
	assert.True(t, isSwaggerPath("/openapi.yaml"))
	assert.False(t, isSwaggerPath("/swaggerish"))
	assert.False(t, isSwaggerPath("/api/v1/gift-cards"))
}
