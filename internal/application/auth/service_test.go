package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"giftkeeper-server/internal/infrastructure/config"
	otelinfra "giftkeeper-server/internal/infrastructure/observability/otel"
)

func TestAuthApplicationService_GenerateToken(t *testing.T) {
	tests := []struct {
		name      string
		req       *GenerateTokenRequest
		jwtConfig *config.JWTConfig
		wantError bool
		checkFunc func(*testing.T, *GenerateTokenResponse, error)
	}{
		{
			name: "正常系: トークンを生成",
			req: &GenerateTokenRequest{
				UserID: "user123",
			},
			jwtConfig: &config.JWTConfig{
				Secret:     "test-secret-key",
				Issuer:     "test-issuer",
				Expiration: 24 * time.Hour,
			},
			wantError: false,
			checkFunc: func(t *testing.T, resp *GenerateTokenResponse, err error) {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, int64(86400), resp.ExpiresIn) // 24時間 = 86400秒
				assert.Equal(t, "Bearer", resp.TokenType)
			},
		},
		{
			name: "異常系: ユーザーIDが空白のみ",
			req: &GenerateTokenRequest{
				UserID: "   ",
			},
			jwtConfig: &config.JWTConfig{
				Secret:     "test-secret-key",
				Issuer:     "test-issuer",
				Expiration: time.Hour,
			},
			wantError: true,
		},
		{
			name: "異常系: ユーザーIDが空",
			req: &GenerateTokenRequest{
				UserID: "",
			},
			jwtConfig: &config.JWTConfig{
				Secret:     "test-secret-key",
				Issuer:     "test-issuer",
				Expiration: 24 * time.Hour,
			},
			wantError: true,
			checkFunc: func(t *testing.T, resp *GenerateTokenResponse, err error) {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrMissingUserID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := otel.Tracer("test")
			logger := otelinfra.NewLogger(tracer)

			svc := NewAuthApplicationService(tt.jwtConfig, logger)

			ctx := context.Background()
			got, err := svc.GenerateToken(ctx, tt.req)

			if tt.wantError {
				assert.Error(t, err)
				if tt.checkFunc != nil {
					tt.checkFunc(t, got, err)
				}
			} else {
				if tt.checkFunc != nil {
					tt.checkFunc(t, got, err)
				} else {
					require.NoError(t, err)
					assert.NotNil(t, got)
				}
			}
		})
	}
}

func newTestService(now time.Time) *AuthApplicationService {
	svc := NewAuthApplicationService(&config.JWTConfig{
		Secret:     "test-secret-key",
		Issuer:     "test-issuer",
		Expiration: time.Hour,
	}, otelinfra.NewLogger(otel.Tracer("test")))
	svc.now = func() time.Time { return now }
	return svc
}

func TestAuthApplicationService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	resp, err := svc.GenerateToken(context.Background(), &GenerateTokenRequest{UserID: "owner-1"})
	require.NoError(t, err)

	ownerID, err := svc.Authenticate("Bearer " + resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", ownerID)
}

func TestAuthApplicationService_Authenticate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(now)

	signed := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name      string
		header    string
		wantOwner string
		wantError error
	}{
		{
			name:      "正常系: 有効なトークン",
			header:    "Bearer " + signed(jwt.MapClaims{"user_id": "u1", "exp": now.Add(time.Minute).Unix()}, "test-secret-key"),
			wantOwner: "u1",
		},
		{
			name:      "異常系: ヘッダーなし",
			header:    "",
			wantError: ErrMissingToken,
		},
		{
			name:      "異常系: Bearerではない",
			header:    "Basic abc",
			wantError: ErrMalformedHeader,
		},
		{
			name:      "異常系: トークンが空",
			header:    "Bearer ",
			wantError: ErrMalformedHeader,
		},
		{
			name:      "異常系: 署名が異なる",
			header:    "Bearer " + signed(jwt.MapClaims{"user_id": "u1"}, "other-secret"),
			wantError: ErrInvalidToken,
		},
		{
			name:      "異常系: 期限切れ",
			header:    "Bearer " + signed(jwt.MapClaims{"user_id": "u1", "exp": now.Add(-time.Minute).Unix()}, "test-secret-key"),
			wantError: ErrInvalidToken,
		},
		{
			name:      "異常系: user_idなし",
			header:    "Bearer " + signed(jwt.MapClaims{"sub": "u1"}, "test-secret-key"),
			wantError: ErrMissingUserClaim,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(tt.header)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, got)
		})
	}
}

func TestOwnerIDContext(t *testing.T) {
	_, ok := OwnerIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithOwnerID(context.Background(), "owner-1")
	got, ok := OwnerIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "owner-1", got)

	_, ok = OwnerIDFromContext(WithOwnerID(context.Background(), ""))
	assert.False(t, ok)
}
