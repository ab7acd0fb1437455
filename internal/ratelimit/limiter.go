// Package ratelimit implements a global sliding-window request limiter whose
// window state lives in a pluggable backend (Redis or in-process).
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Backend stores request instants for the trailing window. Record must add
// now, drop every instant at or before now-window and return the remaining
// count as one atomic step with respect to concurrent callers.
type Backend interface {
	Record(ctx context.Context, now time.Time, window time.Duration) (int64, error)
}

// Config holds the limiter parameters.
type Config struct {
	MaxRequests int
	Window      time.Duration
	// RetryAfter is the fixed hint, in seconds, returned on rejection.
	RetryAfter int
}

// DefaultConfig is 20 requests per second with a 2 second retry hint.
func DefaultConfig() Config {
	return Config{MaxRequests: 20, Window: time.Second, RetryAfter: 2}
}

// Limiter admits or rejects work against a single global budget.
type Limiter struct {
	backend Backend
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

// New creates a Limiter. Zero fields in cfg take their DefaultConfig values.
func New(backend Backend, cfg Config, logger *slog.Logger) *Limiter {
	def := DefaultConfig()
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.RetryAfter <= 0 {
		cfg.RetryAfter = def.RetryAfter
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{
		backend: backend,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With("component", "rate-limiter"),
	}
}

// TryAdmit records one attempt and reports whether it fits the budget. When
// rejected, retryAfter is the configured hint in seconds. Backend errors admit
// the request.
func (l *Limiter) TryAdmit(ctx context.Context) (admitted bool, retryAfter int) {
	count, err := l.backend.Record(ctx, l.now(), l.cfg.Window)
	if err != nil {
		l.logger.Error("rate limiter backend error, allowing request", "error", err)
		return true, 0
	}

	if count > int64(l.cfg.MaxRequests) {
		l.logger.Debug("rate limited", "count", count, "max", l.cfg.MaxRequests, "retry_after", l.cfg.RetryAfter)
		return false, l.cfg.RetryAfter
	}
	l.logger.Debug("not rate limited", "count", count, "max", l.cfg.MaxRequests)
	return true, 0
}

// MaxRequests returns the per-window budget.
func (l *Limiter) MaxRequests() int { return l.cfg.MaxRequests }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.cfg.Window }
