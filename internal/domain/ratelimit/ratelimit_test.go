package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, maxRequests, window)
	return args.Bool(0), args.Error(1)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "add:user-1", Key(OperationAdd, "user-1"))
	assert.Equal(t, "export:user-2", Key(OperationExport, "user-2"))
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, Policy{MaxRequests: 1, Window: time.Second}.Validate())
	assert.Error(t, Policy{MaxRequests: 0, Window: time.Second}.Validate())
	assert.Error(t, Policy{MaxRequests: 1}.Validate())
}

func TestGate_Check(t *testing.T) {
	tests := []struct {
		name      string
		allowed   bool
		allowErr  error
		wantErr   error
		wantOther bool
	}{
		{name: "正常系: 許可", allowed: true},
		{name: "異常系: 上限超過", allowed: false, wantErr: ErrRateLimitExceeded},
		{name: "異常系: バックエンドエラー", allowErr: errors.New("redis down"), wantOther: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := new(MockLimiter)
			gate := NewGate(limiter, map[Operation]Policy{
				OperationAdd: {MaxRequests: 3, Window: 30 * time.Second},
			})
			limiter.On("Allow", mock.Anything, "add:user-1", 3, 30*time.Second).Return(tt.allowed, tt.allowErr)

			err := gate.Check(context.Background(), OperationAdd, "user-1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantOther:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrRateLimitExceeded)
			default:
				assert.NoError(t, err)
			}
			limiter.AssertExpectations(t)
		})
	}
}

func TestNewGate_MergesDefaults(t *testing.T) {
	gate := NewGate(new(MockLimiter), map[Operation]Policy{
		OperationExport: {MaxRequests: 1, Window: 2 * time.Hour},
	})

	p, ok := gate.Policy(OperationAdd)
	assert.True(t, ok)
	assert.Equal(t, DefaultPolicies()[OperationAdd], p)

	p, ok = gate.Policy(OperationExport)
	assert.True(t, ok)
	assert.Equal(t, 1, p.MaxRequests)
	assert.Equal(t, 2*time.Hour, gate.LongestWindow())
}
