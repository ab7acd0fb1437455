package weather

import (
	"context"
	"time"
)

// Fetcher retrieves the raw hourly forecast for a point (e.g. MET Norway).
type Fetcher interface {
	FetchTimeseries(ctx context.Context, c Coordinates) (ForecastDocument, error)
}

// ForwardGeocoder resolves a city name to coordinates.
type ForwardGeocoder interface {
	Geocode(ctx context.Context, city string) (Coordinates, error)
}

// ReverseGeocoder resolves coordinates to a display name. An empty name with a
// nil error means no match.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinates) (string, error)
}

// Geocoder does both directions.
type Geocoder interface {
	ForwardGeocoder
	ReverseGeocoder
}

// TimezoneLookup maps coordinates to an IANA timezone identifier.
type TimezoneLookup interface {
	TimezoneFor(ctx context.Context, c Coordinates) (string, error)
}

// Cache is the contract for forecast response caches (in-memory or Redis).
type Cache interface {
	Get(ctx context.Context, key string) (Forecast, bool, error)
	Set(ctx context.Context, key string, forecast Forecast, ttl time.Duration) error
}
