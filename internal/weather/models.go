package weather

import (
	"fmt"
	"strings"
	"time"
)

// TimezoneMode selects how the forecast timezone is chosen for a location.
type TimezoneMode string

const (
	// TimezoneFixed always uses the configured fixed zone (UTC by default).
	TimezoneFixed TimezoneMode = "fixed"
	// TimezoneAuto looks the zone up from the resolved coordinates.
	TimezoneAuto TimezoneMode = "auto"
)

// UnknownLocation is the display name used when reverse geocoding finds nothing.
const UnknownLocation = "Unknown Location"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the pair is inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// LocationRequest identifies a place either by coordinates or by city name.
// Exactly one of the two must be set.
type LocationRequest struct {
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	City        string       `json:"city,omitempty"`
	// Name labels a coordinates request. When set, reverse geocoding is skipped.
	Name        string       `json:"name,omitempty"`
}

// ResolvedLocation is a location after geocoding and timezone resolution.
type ResolvedLocation struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"city"`
	TimezoneID  string  `json:"timezone"`
}

// RawTimeseriesEntry is one upstream observation as delivered by the weather API.
// Data is kept as an opaque tree; only the winning entry of a day is inspected.
type RawTimeseriesEntry struct {
	Time string         `json:"time"`
	Data map[string]any `json:"data"`
}

// ForecastDocument is the decoded upstream response.
type ForecastDocument struct {
	Type       string              `json:"type"`
	Geometry   map[string]any      `json:"geometry"`
	Properties *ForecastProperties `json:"properties"`
}

// ForecastProperties holds the timeseries of a forecast document.
type ForecastProperties struct {
	Timeseries []RawTimeseriesEntry `json:"timeseries"`
}

// Timeseries returns the raw entries, or nil when the document has none.
func (d ForecastDocument) Timeseries() []RawTimeseriesEntry {
	if d.Properties == nil {
		return nil
	}
	return d.Properties.Timeseries
}

// EnrichedEntry is a raw entry with its parsed instant and local wall time.
type EnrichedEntry struct {
	RawTimeseriesEntry
	UTCTime   time.Time
	LocalTime time.Time
}

// LocalDate returns the entry's local calendar date as YYYY-MM-DD.
func (e EnrichedEntry) LocalDate() string {
	return e.LocalTime.Format(dateLayout)
}

// DailySample is the representative temperature of one local calendar day.
type DailySample struct {
	Date               string  `json:"date"`
	Time               string  `json:"time"`
	TemperatureCelsius float64 `json:"temperature_c"`
}

// Forecast is the result handed to the HTTP layer for serialization.
// Days are ordered by Date ascending.
type Forecast struct {
	Location ResolvedLocation `json:"location"`
	Timezone string           `json:"timezone"`
	Days     []DailySample    `json:"forecast"`
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ParseTimezoneOption maps the public option names to a TimezoneMode:
// "utc" or "fixed" (the default) and "local" or "auto".
func ParseTimezoneOption(option string) (TimezoneMode, error) {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case "", "utc", string(TimezoneFixed):
		return TimezoneFixed, nil
	case "local", string(TimezoneAuto):
		return TimezoneAuto, nil
	default:
		return "", fmt.Errorf("%w: timezone option must be 'utc' or 'local', got %q", ErrInvalidRequest, option)
	}
}
