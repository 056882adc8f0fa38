package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"giftkeeper-server/internal/domain/ratelimit"
)

// DefaultMaxKeys 保持するキー数の既定値
const DefaultMaxKeys = 10000

var _ ratelimit.Limiter = (*SlidingWindowLimiter)(nil)

// SlidingWindowLimiter プロセス内でキーごとのタイムスタンプを保持するレートリミッター
// キー数はLRUで上限を設け、最も長く使われていないキーから捨てる
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	windows *lru.Cache
	now     func() time.Time
}

// Option SlidingWindowLimiterのオプション
type Option func(*SlidingWindowLimiter)

// WithClock 現在時刻の取得方法を差し替える
func WithClock(now func() time.Time) Option {
	return func(l *SlidingWindowLimiter) {
		l.now = now
	}
}

// NewSlidingWindowLimiter 新しいSlidingWindowLimiterを作成
func NewSlidingWindowLimiter(maxKeys int, opts ...Option) (*SlidingWindowLimiter, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	cache, err := lru.New(maxKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to create key cache: %w", err)
	}

	l := &SlidingWindowLimiter{
		windows: cache,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow キーの操作を許可するかどうかを判定する
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-window)

	var timestamps []time.Time
	if v, ok := l.windows.Get(key); ok {
		timestamps = v.([]time.Time)
	}
	timestamps = prune(timestamps, windowStart)

	if len(timestamps) >= maxRequests {
		l.windows.Add(key, timestamps)
		return false, nil
	}

	l.windows.Add(key, append(timestamps, now))
	return true, nil
}

// Sweep 最新の記録がolderThanより古いキーを削除し、削除した件数を返す
func (l *SlidingWindowLimiter) Sweep(olderThan time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-olderThan)
	removed := 0
	for _, k := range l.windows.Keys() {
		v, ok := l.windows.Peek(k)
		if !ok {
			continue
		}
		timestamps := v.([]time.Time)
		if len(timestamps) == 0 || !timestamps[len(timestamps)-1].After(cutoff) {
			l.windows.Remove(k)
			removed++
		}
	}
	return removed
}

// StartJanitor ctxが終了するまでintervalごとにSweepを実行する
func (l *SlidingWindowLimiter) StartJanitor(ctx context.Context, interval, olderThan time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep(olderThan)
			}
		}
	}()
}

// Len 保持しているキー数を返す
func (l *SlidingWindowLimiter) Len() int {
	return l.windows.Len()
}

// prune windowStartより新しいタイムスタンプだけを残す
func prune(timestamps []time.Time, windowStart time.Time) []time.Time {
	i := 0
	for i < len(timestamps) && !timestamps[i].After(windowStart) {
		i++
	}
	if i == 0 {
		return timestamps
	}
	kept := make([]time.Time, len(timestamps)-i)
	copy(kept, timestamps[i:])
	return kept
}
