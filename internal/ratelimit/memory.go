package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps the window in process memory. It is only global within
// one process.
type MemoryBackend struct {
	mu     sync.Mutex
	stamps []int64 // unix microseconds
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Record(_ context.Context, now time.Time, window time.Duration) (int64, error) {
	cutoff := now.Add(-window).UnixMicro()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.stamps = append(b.stamps, now.UnixMicro())

	kept := b.stamps[:0]
	for _, ts := range b.stamps {
		if ts > cutoff {
			kept = append(kept, ts)
		}
	}
	b.stamps = kept

	return int64(len(b.stamps)), nil
}
