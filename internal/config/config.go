package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/yr-forecast/internal/weather"
)

type AppConfig struct {
	Host  string
	Port  string
	Debug bool

	// Upstream weather API.
	YrAPIBaseURL       string
	UserAgent          string
	HTTPTimeout        time.Duration
	UpstreamMaxRetries int

	// Geocoding. A Google API key switches from Nominatim to Google.
	NominatimBaseURL   string
	GeocodingUserAgent string
	GeocoderAPIKey     string

	// Location used when a request names none.
	DefaultLat      float64
	DefaultLon      float64
	DefaultCity     string
	DefaultTimezone string

	// FixedTimezone is the zone used for timezone_option=utc.
	FixedTimezone string

	// Daily sample selection.
	TargetHour         int
	TimeToleranceHours int

	// Redis backs the rate limiter and response cache when set.
	RedisURL        string
	CacheExpire     time.Duration
	CachePrefix     string
	CacheMaxEntries int // in-memory cache only

	RateLimitEnabled    bool
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	RateLimitRetryAfter int
	RateLimitKeyPrefix  string

	// Cache warming.
	WarmInterval  time.Duration
	WarmLocations []WarmTarget
}

// WarmTarget is a location whose forecast is refreshed periodically.
type WarmTarget struct {
	Request weather.LocationRequest
	Mode    weather.TimezoneMode
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Host = getenvDefault("HOST", "0.0.0.0")
	cfg.Port = getenvDefault("PORT", "8000")
	cfg.Debug = getenvBool("DEBUG", false)

	cfg.YrAPIBaseURL = getenvDefault("YR_API_BASE_URL", "https://api.met.no/weatherapi/locationforecast/2.0/compact")
	cfg.UserAgent = getenvDefault("USER_AGENT", "WeatherForecastService/0.1 (user@example.com)")
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.UpstreamMaxRetries, err = getenvInt("UPSTREAM_MAX_RETRIES", 0); err != nil {
		return nil, err
	}

	cfg.NominatimBaseURL = getenvDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	cfg.GeocodingUserAgent = getenvDefault("GEOCODING_USER_AGENT", cfg.UserAgent)
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	if cfg.DefaultLat, err = getenvFloat("DEFAULT_LAT", 44.8125); err != nil {
		return nil, err
	}
	if cfg.DefaultLon, err = getenvFloat("DEFAULT_LON", 20.4612); err != nil {
		return nil, err
	}
	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", "Belgrade")
	cfg.DefaultTimezone = getenvDefault("DEFAULT_TIMEZONE", "Europe/Belgrade")
	cfg.FixedTimezone = getenvDefault("FIXED_TIMEZONE", "UTC")

	if cfg.TargetHour, err = getenvInt("TARGET_HOUR", 14); err != nil {
		return nil, err
	}
	if cfg.TimeToleranceHours, err = getenvInt("TIME_TOLERANCE_HOURS", 2); err != nil {
		return nil, err
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	expireSeconds, err := getenvInt("CACHE_EXPIRE_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.CacheExpire = time.Duration(expireSeconds) * time.Second
	cfg.CachePrefix = getenvDefault("CACHE_PREFIX", "weather-forecast")
	if cfg.CacheMaxEntries, err = getenvInt("CACHE_MAX_ENTRIES", 1000); err != nil {
		return nil, err
	}

	cfg.RateLimitEnabled = getenvBool("RATE_LIMIT_ENABLED", true)
	if cfg.RateLimitRequests, err = getenvInt("RATE_LIMIT_REQUESTS_PER_SECOND", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", "1s"); err != nil {
		return nil, err
	}
	if cfg.RateLimitRetryAfter, err = getenvInt("RATE_LIMIT_RETRY_AFTER", 2); err != nil {
		return nil, err
	}
	cfg.RateLimitKeyPrefix = getenvDefault("RATE_LIMIT_REDIS_KEY_PREFIX", "rate_limit")

	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	if path := os.Getenv("WARM_LOCATIONS_FILE"); path != "" {
		if cfg.WarmLocations, err = LoadWarmLocations(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges that the environment parsing cannot.
func (c *AppConfig) Validate() error {
	if c.TargetHour < 0 || c.TargetHour > 23 {
		return fmt.Errorf("TARGET_HOUR must be between 0 and 23, got %d", c.TargetHour)
	}
	if c.TimeToleranceHours < 0 {
		return fmt.Errorf("TIME_TOLERANCE_HOURS must not be negative, got %d", c.TimeToleranceHours)
	}
	if c.RateLimitRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_SECOND must be positive, got %d", c.RateLimitRequests)
	}
	if c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimitWindow)
	}
	if _, err := time.LoadLocation(c.FixedTimezone); err != nil {
		return fmt.Errorf("invalid FIXED_TIMEZONE: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c *AppConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type warmFile struct {
	Locations []struct {
		City           string   `yaml:"city"`
		Lat            *float64 `yaml:"lat"`
		Lon            *float64 `yaml:"lon"`
		TimezoneOption string   `yaml:"timezone_option"`
	} `yaml:"locations"`
}

// LoadWarmLocations reads the YAML list of locations to keep warm.
func LoadWarmLocations(path string) ([]WarmTarget, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read warm locations: %w", err)
	}
	return parseWarmLocations(raw)
}

func parseWarmLocations(raw []byte) ([]WarmTarget, error) {
	var f warmFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse warm locations: %w", err)
	}

	targets := make([]WarmTarget, 0, len(f.Locations))
	for i, l := range f.Locations {
		mode, err := weather.ParseTimezoneOption(l.TimezoneOption)
		if err != nil {
			return nil, fmt.Errorf("warm location %d: %w", i, err)
		}

		var req weather.LocationRequest
		city := strings.TrimSpace(l.City)
		switch {
		case city != "" && (l.Lat != nil || l.Lon != nil):
			return nil, fmt.Errorf("warm location %d: city and coordinates are mutually exclusive", i)
		case city != "":
			req.City = city
		case l.Lat != nil && l.Lon != nil:
			req.Coordinates = &weather.Coordinates{Lat: *l.Lat, Lon: *l.Lon}
		default:
			return nil, fmt.Errorf("warm location %d: city or lat/lon required", i)
		}
		targets = append(targets, WarmTarget{Request: req, Mode: mode})
	}
	return targets, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true")
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
