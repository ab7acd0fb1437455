package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/yr-forecast/internal/weather"
)

func TestParseWarmLocations(t *testing.T) {
	raw := []byte(`
locations:
  - city: Belgrade
  - city: " Oslo "
    timezone_option: local
  - lat: 35.6762
    lon: 139.6503
    timezone_option: auto
`)

	targets, err := parseWarmLocations(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}

	if targets[0].Request.City != "Belgrade" || targets[0].Mode != weather.TimezoneFixed {
		t.Errorf("unexpected first target %+v", targets[0])
	}
	if targets[1].Request.City != "Oslo" || targets[1].Mode != weather.TimezoneAuto {
		t.Errorf("unexpected second target %+v", targets[1])
	}
	c := targets[2].Request.Coordinates
	if c == nil || c.Lat != 35.6762 || c.Lon != 139.6503 || targets[2].Request.City != "" {
		t.Errorf("unexpected third target %+v", targets[2].Request)
	}
}

func TestParseWarmLocationsErrors(t *testing.T) {
	tests := map[string]string{
		"city and coordinates": "locations:\n  - city: Oslo\n    lat: 59.9\n    lon: 10.7\n",
		"nothing":              "locations:\n  - timezone_option: utc\n",
		"latitude only":        "locations:\n  - lat: 59.9\n",
		"bad timezone option":  "locations:\n  - city: Oslo\n    timezone_option: mars\n",
		"not yaml":             "locations: [",
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseWarmLocations([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadWarmLocationsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warm.yaml")
	if err := os.WriteFile(path, []byte("locations:\n  - city: Tromsø\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	targets, err := LoadWarmLocations(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(targets) != 1 || targets[0].Request.City != "Tromsø" {
		t.Errorf("unexpected targets %+v", targets)
	}

	if _, err := LoadWarmLocations(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func validConfig() *AppConfig {
	return &AppConfig{
		TargetHour:         14,
		TimeToleranceHours: 2,
		RateLimitRequests:  20,
		RateLimitWindow:    time.Second,
		FixedTimezone:      "UTC",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]func(*AppConfig){
		"hour too big":       func(c *AppConfig) { c.TargetHour = 24 },
		"negative hour":      func(c *AppConfig) { c.TargetHour = -1 },
		"negative tolerance": func(c *AppConfig) { c.TimeToleranceHours = -1 },
		"zero budget":        func(c *AppConfig) { c.RateLimitRequests = 0 },
		"zero window":        func(c *AppConfig) { c.RateLimitWindow = 0 },
		"unknown zone":       func(c *AppConfig) { c.FixedTimezone = "Mars/Olympus" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TARGET_HOUR", "9")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WINDOW", "2s")
	t.Setenv("DEFAULT_CITY", "Oslo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(cfg.Addr(), ":9090") {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
	if cfg.TargetHour != 9 || cfg.RateLimitEnabled || cfg.RateLimitWindow != 2*time.Second || cfg.DefaultCity != "Oslo" {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.TimeToleranceHours != 2 || cfg.RateLimitRequests != 20 || cfg.CacheExpire != time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}

}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	tests := map[string]string{
		"TARGET_HOUR":                    "fourteen",
		"TIME_TOLERANCE_HOURS":           "2h",
		"RATE_LIMIT_REQUESTS_PER_SECOND": "20x",
		"RATE_LIMIT_RETRY_AFTER":         "soon",
		"CACHE_EXPIRE_SECONDS":           "1m",
		"CACHE_MAX_ENTRIES":              "lots",
		"UPSTREAM_MAX_RETRIES":           "1.5",
		"DEFAULT_LAT":                    "north",
		"RATE_LIMIT_WINDOW":              "second",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("expected error to name %s, got %v", key, err)
			}
		})
	}
}
