package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned for malformed or contradictory location input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrLocationNotFound is returned when a city name cannot be geocoded.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstreamUnavailable is returned when the weather API cannot be reached.
	ErrUpstreamUnavailable = errors.New("weather upstream unavailable")
	// ErrDataValidation is returned when an upstream response breaks its contract.
	ErrDataValidation = errors.New("data validation failed")

	ErrNoData               = fmt.Errorf("%w: no timeseries data in forecast response", ErrDataValidation)
	ErrMalformedMeasurement = fmt.Errorf("%w: malformed measurement", ErrDataValidation)
)

// Per-entry failures. The reducer records and skips these.
var (
	ErrParse        = errors.New("malformed timestamp")
	ErrTimezone     = errors.New("unknown timezone")
	ErrMissingField = errors.New("missing field")
)
