package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/yr-forecast/internal/weather"
)

// RedisStore caches forecasts as JSON strings in Redis so that every replica
// shares them.
type RedisStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "weather-forecast"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) (weather.Forecast, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return weather.Forecast{}, false, nil
	}
	if err != nil {
		return weather.Forecast{}, false, fmt.Errorf("redis get: %w", err)
	}

	var f weather.Forecast
	if err := json.Unmarshal(raw, &f); err != nil {
		return weather.Forecast{}, false, fmt.Errorf("decode cached forecast: %w", err)
	}
	return f, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, forecast weather.Forecast, ttl time.Duration) error {
	raw, err := json.Marshal(forecast)
	if err != nil {
		return fmt.Errorf("encode forecast: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+":"+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
