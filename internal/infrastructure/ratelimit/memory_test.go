package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, maxKeys int) (*SlidingWindowLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	l, err := NewSlidingWindowLimiter(maxKeys, WithClock(clock.Now))
	require.NoError(t, err)
	return l, clock
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 0)

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "add:user-1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "call %d", i+1)
	}

	ok, err := l.Allow(ctx, "add:user-1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(59 * time.Second)
	ok, err = l.Allow(ctx, "add:user-1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Second)
	ok, err = l.Allow(ctx, "add:user-1", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_SlidesPerTimestamp(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 0)

	// t=0 と t=30s に1回ずつ
	ok, _ := l.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)
	clock.Advance(30 * time.Second)
	ok, _ = l.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)

	clock.Advance(20 * time.Second)
	ok, _ = l.Allow(ctx, "k", 2, time.Minute)
	assert.False(t, ok)

	// t=60s で最初の記録だけが外れる
	clock.Advance(10 * time.Second)
	ok, _ = l.Allow(ctx, "k", 2, time.Minute)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k", 2, time.Minute)
	assert.False(t, ok)
}

func TestSlidingWindowLimiter_DenyDoesNotRecord(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 0)

	ok, _ := l.Allow(ctx, "k", 1, time.Minute)
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
		ok, _ = l.Allow(ctx, "k", 1, time.Minute)
		require.False(t, ok)
	}

	clock.Advance(10 * time.Second)
	ok, _ = l.Allow(ctx, "k", 1, time.Minute)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 0)

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow(ctx, "add:user-1", 3, time.Minute)
		require.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "add:user-1", 3, time.Minute)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "add:user-2", 3, time.Minute)
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "delete:user-1", 3, time.Minute)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Allow(ctx, "k", 10, time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestSlidingWindowLimiter_MaxKeys(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLimiter(t, 2)

	_, _ = l.Allow(ctx, "a", 1, time.Minute)
	_, _ = l.Allow(ctx, "b", 1, time.Minute)
	_, _ = l.Allow(ctx, "c", 1, time.Minute)

	assert.Equal(t, 2, l.Len())

	// 最も古い"a"は追い出されているため再び許可される
	ok, _ := l.Allow(ctx, "a", 1, time.Minute)
	assert.True(t, ok)
}

func TestSlidingWindowLimiter_Sweep(t *testing.T) {
	ctx := context.Background()
	l, clock := newTestLimiter(t, 0)

	_, _ = l.Allow(ctx, "old", 5, time.Minute)
	clock.Advance(90 * time.Second)
	_, _ = l.Allow(ctx, "new", 5, time.Minute)

	removed := l.Sweep(time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
}

func TestSlidingWindowLimiter_CanceledContext(t *testing.T) {
	l, _ := newTestLimiter(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := l.Allow(ctx, "k", 5, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
