package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/yr-forecast/internal/weather"
)

// cachedForecast holds one forecast and its expiry.
type cachedForecast struct {
	Forecast  weather.Forecast
	StoredAt  time.Time
	ExpiresAt time.Time
}

// MemoryStore is a concurrency-safe in-memory forecast cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: cache key, value: entry
	data map[string]cachedForecast

	// retention configuration
	maxEntries int // max number of cached forecasts (0 = unlimited)

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
// If maxEntries is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]cachedForecast),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns a forecast that has not expired yet.
func (s *MemoryStore) Get(_ context.Context, key string) (weather.Forecast, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[key]
	if !ok || !s.now().Before(entry.ExpiresAt) {
		return weather.Forecast{}, false, nil
	}
	return entry.Forecast, true, nil
}

// Set stores a forecast for ttl and enforces retention.
func (s *MemoryStore) Set(_ context.Context, key string, forecast weather.Forecast, ttl time.Duration) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = cachedForecast{
		Forecast:  forecast,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	// Enforce retention by age.
	for k, e := range s.data {
		if !now.Before(e.ExpiresAt) {
			delete(s.data, k)
		}
	}

	// Enforce retention by count, evicting the oldest entries first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.StoredAt.Before(oldest) {
				oldestKey, oldest = k, e.StoredAt
			}
		}
		delete(s.data, oldestKey)
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
