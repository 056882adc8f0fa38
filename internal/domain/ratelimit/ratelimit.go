package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimitExceeded 一定時間内の操作回数が上限に達した
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Limiter スライディングウィンドウ方式のレートリミッター
// windowより古い記録を捨て、残りがmaxRequests未満なら現在時刻を記録して許可する
// 拒否した場合は何も記録しない
type Limiter interface {
	Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error)
}

// Operation レート制限の対象となる操作
type Operation string

const (
	OperationAdd    Operation = "add"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationExport Operation = "export"
)

// Operations 全操作
var Operations = []Operation{OperationAdd, OperationUpdate, OperationDelete, OperationExport}

// String 文字列表現を返す
func (o Operation) String() string {
	return string(o)
}

// Policy 操作ごとの上限
type Policy struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// Validate ポリシーが有効かどうかを検証
func (p Policy) Validate() error {
	if p.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be positive: %d", p.MaxRequests)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive: %s", p.Window)
	}
	return nil
}

// DefaultPolicies 既定のポリシー
func DefaultPolicies() map[Operation]Policy {
	return map[Operation]Policy{
		OperationAdd:    {MaxRequests: 10, Window: time.Minute},
		OperationUpdate: {MaxRequests: 20, Window: time.Minute},
		OperationDelete: {MaxRequests: 10, Window: time.Minute},
		OperationExport: {MaxRequests: 5, Window: time.Minute},
	}
}

// Key 操作と所有者からリミッターのキーを作る
func Key(op Operation, ownerID string) string {
	return string(op) + ":" + ownerID
}

// Gate 操作ごとのポリシーでLimiterを呼び出す
type Gate struct {
	limiter  Limiter
	policies map[Operation]Policy
}

// NewGate 新しいGateを作成
func NewGate(limiter Limiter, policies map[Operation]Policy) *Gate {
	merged := DefaultPolicies()
	for op, p := range policies {
		merged[op] = p
	}
	return &Gate{limiter: limiter, policies: merged}
}

// Check 許可されなければErrRateLimitExceededを返す
func (g *Gate) Check(ctx context.Context, op Operation, ownerID string) error {
	p, ok := g.policies[op]
	if !ok {
		return nil
	}
	allowed, err := g.limiter.Allow(ctx, Key(op, ownerID), p.MaxRequests, p.Window)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return ErrRateLimitExceeded
	}
	return nil
}

// Policy 操作のポリシーを返す
func (g *Gate) Policy(op Operation) (Policy, bool) {
	p, ok := g.policies[op]
	return p, ok
}

// LongestWindow 最も長いウィンドウを返す
func (g *Gate) LongestWindow() time.Duration {
	var longest time.Duration
	for _, p := range g.policies {
		if p.Window > longest {
			longest = p.Window
		}
	}
	return longest
}
