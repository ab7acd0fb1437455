package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps the window in a Redis sorted set scored by microsecond
// timestamps, shared by every process using the same key.
type RedisBackend struct {
	client redis.Cmdable
	key    string
}

// NewRedisBackend uses the key "<prefix>:global".
func NewRedisBackend(client redis.Cmdable, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "rate_limit"
	}
	return &RedisBackend{client: client, key: prefix + ":global"}
}

// Record runs ZADD, ZREMRANGEBYSCORE, ZCARD and EXPIRE inside MULTI/EXEC.
func (b *RedisBackend) Record(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
	micros := now.UnixMicro()
	cutoff := now.Add(-window).UnixMicro()
	// unique member: two requests in the same microsecond must both count
	member := fmt.Sprintf("%d-%s", micros, uuid.NewString())

	var card *redis.IntCmd
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, b.key, redis.Z{Score: float64(micros), Member: member})
		pipe.ZRemRangeByScore(ctx, b.key, "0", strconv.FormatInt(cutoff, 10))
		card = pipe.ZCard(ctx, b.key)
		pipe.Expire(ctx, b.key, 2*window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit transaction: %w", err)
	}
	return card.Val(), nil
}
