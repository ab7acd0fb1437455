package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/yr-forecast/internal/api/http"
	"github.com/i474232898/yr-forecast/internal/config"
	"github.com/i474232898/yr-forecast/internal/ratelimit"
	"github.com/i474232898/yr-forecast/internal/scheduler"
	"github.com/i474232898/yr-forecast/internal/store"
	"github.com/i474232898/yr-forecast/internal/weather"
	"github.com/i474232898/yr-forecast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Redis backs the limiter window and the response cache when configured;
	// otherwise both stay in process.
	var (
		rdb          *redis.Client
		cache        weather.Cache
		limitBackend ratelimit.Backend
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opts)
		log.Info("using redis for cache and rate limiting", "addr", opts.Addr)
		cache = store.NewRedisStore(rdb, cfg.CachePrefix)
		limitBackend = ratelimit.NewRedisBackend(rdb, cfg.RateLimitKeyPrefix)
	} else {
		log.Info("REDIS_URL not set; using in-memory cache and rate limiting")
		cache = store.NewMemoryStore(cfg.CacheMaxEntries)
		limitBackend = ratelimit.NewMemoryBackend()
	}

	// Geocoding: Google when a key is configured, Nominatim otherwise.
	var geo weather.Geocoder = providers.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL, cfg.GeocodingUserAgent)
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	cachedGeo, err := providers.NewCachedGeocoder(geo, 1000)
	if err != nil {
		log.Error("failed to create geocoder cache", "error", err)
		os.Exit(1)
	}

	var timezones weather.TimezoneLookup
	if tzf, err := providers.NewTZFLookup(); err != nil {
		log.Warn("timezone lookup unavailable; local timezone requests will use UTC", "error", err)
	} else {
		timezones = tzf
	}

	// Core service.
	service := weather.NewService(weather.ServiceOptions{
		Resolver: weather.NewLocationResolver(cachedGeo, timezones, cfg.FixedTimezone, log),
		Fetcher:  providers.NewMetNoProvider(httpClient, cfg.YrAPIBaseURL, cfg.UserAgent, cfg.UpstreamMaxRetries, log),
		Reducer:  weather.NewReducer(cfg.TargetHour, cfg.TimeToleranceHours, log),
		Cache:    cache,
		CacheTTL: cfg.CacheExpire,
		Logger:   log,
	})

	// Scheduler that keeps configured locations warm in the cache.
	sched := scheduler.New(cfg.WarmLocations, cfg.WarmInterval, service, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	limiter := ratelimit.New(limitBackend, ratelimit.Config{
		MaxRequests: cfg.RateLimitRequests,
		Window:      cfg.RateLimitWindow,
		RetryAfter:  cfg.RateLimitRetryAfter,
	}, log)

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "yr-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(httpapi.RateLimit(limiter, cfg.RateLimitEnabled, log))

	// API routes.
	httpapi.RegisterRoutes(app, service, httpapi.DefaultLocation{
		City:     cfg.DefaultCity,
		Lat:      cfg.DefaultLat,
		Lon:      cfg.DefaultLon,
		Timezone: cfg.DefaultTimezone,
	})

	go func() {
		log.Info("starting server", "addr", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("error closing redis client", "error", err)
		}
	}
	log.Info("shutting down yr-forecast")
}
