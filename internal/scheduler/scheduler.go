package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/yr-forecast/internal/config"
	"github.com/i474232898/yr-forecast/internal/weather"
)

// Refresher recomputes and caches the forecast of one location.
type Refresher interface {
	Refresh(ctx context.Context, req weather.LocationRequest, mode weather.TimezoneMode) error
}

// Scheduler periodically refreshes cached forecasts for configured locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	targets   []config.WarmTarget
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(targets []config.WarmTarget, interval time.Duration, service Refresher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		targets:   targets,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.targets) == 0 {
		s.logger.Info("no warm locations configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every target concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	s.logger.Info("running cache warm job", "locations", len(s.targets))

	var wg sync.WaitGroup
	for _, t := range s.targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.service.Refresh(ctx, t.Request, t.Mode); err != nil {
				s.logger.Warn("cache warm failed", "key", weather.CacheKey(t.Request, t.Mode), "error", err)
			}
		}()
	}
	wg.Wait()
	s.logger.Info("completed cache warm job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
