package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/pkg/logger"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := r.client.Del(ctx, keys...).Err()
	if err != nil {
		logger.Error("Failed to delete keys from Redis", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("从 Redis 删除键失败: %w", err)
	}
	return nil
}

func (r *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		logger.Error("Failed to INCR key in Redis", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("自增操作失败: %w", err)
	}
	return val, nil
}

func (r *RedisCache) GetInt(ctx context.Context, key string) (int64, error) {
	val, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		logger.Error("Failed to get counter from Redis", zap.String("key", key), zap.Error(err))
		return 0, fmt.Errorf("读取计数失败: %w", err)
	}
	return val, nil
}

func (r *RedisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	err := r.client.Expire(ctx, key, expiration).Err()
	if err != nil {
		logger.Error("Failed to set expiration for key in Redis", zap.String("key", key), zap.Duration("expiration", expiration), zap.Error(err))
		return fmt.Errorf("设置键过期时间失败: %w", err)
	}
	return nil
}
