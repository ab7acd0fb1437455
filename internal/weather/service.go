package weather

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service orchestrates location resolution, the upstream fetch, the daily
// reduction and the response cache.
type Service struct {
	resolver *LocationResolver
	fetcher  Fetcher
	reducer  *Reducer
	cache    Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// ServiceOptions bundles the collaborators of a Service. Cache may be nil.
type ServiceOptions struct {
	Resolver *LocationResolver
	Fetcher  Fetcher
	Reducer  *Reducer
	Cache    Cache
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(opts ServiceOptions) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: opts.Resolver,
		fetcher:  opts.Fetcher,
		reducer:  opts.Reducer,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.With("component", "weather-service"),
	}
}

// GetDailyForecast returns one temperature sample per day for the requested
// location, served from the cache when a fresh entry exists.
func (s *Service) GetDailyForecast(ctx context.Context, req LocationRequest, mode TimezoneMode) (Forecast, error) {
	key := CacheKey(req, mode)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache lookup failed", "key", key, "error", err)
		} else if ok {
			s.logger.Debug("cache hit", "key", key)
			return cached, nil
		}
	}

	forecast, err := s.compute(ctx, req, mode)
	if err != nil {
		return Forecast{}, err
	}

	s.store(ctx, key, forecast)
	return forecast, nil
}

// Refresh recomputes the forecast for req and overwrites the cached entry.
func (s *Service) Refresh(ctx context.Context, req LocationRequest, mode TimezoneMode) error {
	forecast, err := s.compute(ctx, req, mode)
	if err != nil {
		return err
	}
	s.store(ctx, CacheKey(req, mode), forecast)
	return nil
}

func (s *Service) compute(ctx context.Context, req LocationRequest, mode TimezoneMode) (Forecast, error) {
	loc, err := s.resolver.Resolve(ctx, req, mode)
	if err != nil {
		return Forecast{}, err
	}

	doc, err := s.fetcher.FetchTimeseries(ctx, Coordinates{Lat: loc.Latitude, Lon: loc.Longitude})
	if err != nil {
		s.logger.Error("forecast fetch failed", "lat", loc.Latitude, "lon", loc.Longitude, "error", err)
		return Forecast{}, err
	}

	days, err := s.reducer.Reduce(doc.Timeseries(), loc.TimezoneID)
	if err != nil {
		s.logger.Error("forecast reduction failed", "city", loc.DisplayName, "error", err)
		return Forecast{}, err
	}

	s.logger.Info("forecast computed", "city", loc.DisplayName, "timezone", loc.TimezoneID, "days", len(days))
	return Forecast{
		Location: loc,
		Timezone: loc.TimezoneID,
		Days:     days,
	}, nil
}

func (s *Service) store(ctx context.Context, key string, forecast Forecast) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, forecast, s.cacheTTL); err != nil {
		s.logger.Warn("cache store failed", "key", key, "error", err)
	}
}

// CacheKey derives the cache key for a request. Coordinates are rounded to
// four decimals, matching the precision sent upstream. City names are used
// as given: the cached display name must equal the requested one.
func CacheKey(req LocationRequest, mode TimezoneMode) string {
	if mode == "" {
		mode = TimezoneFixed
	}
	if req.Coordinates != nil {
		key := fmt.Sprintf("forecast:coords:%.4f,%.4f:%s", req.Coordinates.Lat, req.Coordinates.Lon, mode)
		if req.Name != "" {
			key += ":" + req.Name
		}
		return key
	}
	return fmt.Sprintf("forecast:city:%s:%s", req.City, mode)
}
