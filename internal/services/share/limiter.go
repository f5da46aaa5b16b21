package share

import (
	"context"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/cache"
)

// AttemptLimiter 统计链接的验证码失败次数
type AttemptLimiter interface {
	// Blocked 失败次数是否已达上限
	Blocked(ctx context.Context, linkID string) (bool, error)
	// RecordFailure 记录一次失败, ttl 为链接剩余有效期
	RecordFailure(ctx context.Context, linkID string, ttl time.Duration) error
	// Reset 验证成功后清零
	Reset(ctx context.Context, linkID string) error
}

// NoopLimiter 不做任何限制
type NoopLimiter struct{}

var _ AttemptLimiter = NoopLimiter{}

func (NoopLimiter) Blocked(ctx context.Context, linkID string) (bool, error) { return false, nil }

func (NoopLimiter) RecordFailure(ctx context.Context, linkID string, ttl time.Duration) error {
	return nil
}

func (NoopLimiter) Reset(ctx context.Context, linkID string) error { return nil }

// CacheLimiter 用 Redis 计数, 计数随链接过期一同失效
type CacheLimiter struct {
	cache       cache.Cache
	maxAttempts int64
}

var _ AttemptLimiter = (*CacheLimiter)(nil)

func NewCacheLimiter(c cache.Cache, maxAttempts int) *CacheLimiter {
	return &CacheLimiter{cache: c, maxAttempts: int64(maxAttempts)}
}

func (l *CacheLimiter) Blocked(ctx context.Context, linkID string) (bool, error) {
	n, err := l.cache.GetInt(ctx, cache.GenerateLinkAttemptsKey(linkID))
	if err != nil {
		return false, err
	}
	return n >= l.maxAttempts, nil
}

func (l *CacheLimiter) RecordFailure(ctx context.Context, linkID string, ttl time.Duration) error {
	key := cache.GenerateLinkAttemptsKey(linkID)
	n, err := l.cache.Incr(ctx, key)
	if err != nil {
		return err
	}
	if n == 1 {
		if ttl <= 0 {
			ttl = time.Second
		}
		return l.cache.Expire(ctx, key, ttl)
	}
	return nil
}

func (l *CacheLimiter) Reset(ctx context.Context, linkID string) error {
	return l.cache.Del(ctx, cache.GenerateLinkAttemptsKey(linkID))
}
