package cache

import (
	"context"
	"fmt"
	"time"
)

// 缓存通用接口
type Cache interface {
	// 删除一个或多个key
	Del(ctx context.Context, keys ...string) error

	Counter
}

// Counter 计数器操作, 用于失败次数统计这类自增场景
type Counter interface {
	// Incr 原子自增并返回自增后的值
	Incr(ctx context.Context, key string) (int64, error)
	// GetInt 读取计数, key 不存在时返回 0
	GetInt(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// GenerateLinkAttemptsKey 打印链接的验证码失败次数
func GenerateLinkAttemptsKey(linkID string) string {
	return fmt.Sprintf("link:attempts:%s", linkID)
}
