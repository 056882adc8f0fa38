package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"giftkeeper-server/internal/domain/ratelimit"
)

// DefaultKeyPrefix Redisキーの接頭辞
const DefaultKeyPrefix = "giftkeeper:ratelimit:"

// slidingWindowScript ソート済み集合をウィンドウとして扱う
// KEYS[1]: キー, ARGV: 現在時刻(ms), ウィンドウ(ms), 上限, メンバー
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

var _ ratelimit.Limiter = (*RedisLimiter)(nil)

// RedisLimiter 複数プロセスで共有するRedisのレートリミッター
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

// NewRedisLimiter 新しいRedisLimiterを作成
func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// Allow キーの操作を許可するかどうかを判定する
func (l *RedisLimiter) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (bool, error) {
	now := l.now().UnixMilli()
	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.prefix + key},
		now, window.Milliseconds(), maxRequests, uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	return res == 1, nil
}

// Connect URLまたはhost:portからRedisクライアントを作成
func Connect(addr, password string, db int) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), nil
}
