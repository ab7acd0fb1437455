package weather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// LocationResolver turns a LocationRequest into coordinates, a display name
// and a timezone. Reverse geocoding and timezone failures fall back to
// UnknownLocation and UTC; only a failed forward geocode is an error.
type LocationResolver struct {
	geocoder  Geocoder
	timezones TimezoneLookup
	fixedZone string
	logger    *slog.Logger
}

// NewLocationResolver creates a resolver. fixedZone is used for TimezoneFixed;
// an empty value means UTC.
func NewLocationResolver(geocoder Geocoder, timezones TimezoneLookup, fixedZone string, logger *slog.Logger) *LocationResolver {
	if fixedZone == "" {
		fixedZone = "UTC"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationResolver{
		geocoder:  geocoder,
		timezones: timezones,
		fixedZone: fixedZone,
		logger:    logger.With("component", "location-resolver"),
	}
}

// Resolve applies the resolution policy for req and mode.
func (r *LocationResolver) Resolve(ctx context.Context, req LocationRequest, mode TimezoneMode) (ResolvedLocation, error) {
	city := strings.TrimSpace(req.City)
	hasCity := city != ""
	hasCoords := req.Coordinates != nil

	switch {
	case hasCity && hasCoords:
		return ResolvedLocation{}, fmt.Errorf("%w: cannot provide both coordinates and city name", ErrInvalidRequest)
	case !hasCity && !hasCoords:
		return ResolvedLocation{}, fmt.Errorf("%w: either coordinates or city name is required", ErrInvalidRequest)
	}

	var (
		coords Coordinates
		name   string
	)
	if hasCity {
		c, err := r.geocoder.Geocode(ctx, city)
		if err != nil {
			r.logger.Error("forward geocoding failed", "city", city, "error", err)
			return ResolvedLocation{}, fmt.Errorf("%w: city %q: %v", ErrLocationNotFound, city, err)
		}
		coords = c
		name = req.City
	} else {
		coords = *req.Coordinates
		if !coords.Valid() {
			return ResolvedLocation{}, fmt.Errorf("%w: coordinates out of range: lat=%v, lon=%v", ErrInvalidRequest, coords.Lat, coords.Lon)
		}
		name = req.Name
		if name == "" {
			name = r.reverseName(ctx, coords)
		}
	}

	if !coords.Valid() {
		return ResolvedLocation{}, fmt.Errorf("%w: geocoder returned out-of-range coordinates for %q", ErrLocationNotFound, city)
	}

	tz, err := r.resolveZone(ctx, coords, mode)
	if err != nil {
		return ResolvedLocation{}, err
	}

	return ResolvedLocation{
		Latitude:    coords.Lat,
		Longitude:   coords.Lon,
		DisplayName: name,
		TimezoneID:  tz,
	}, nil
}

func (r *LocationResolver) reverseName(ctx context.Context, c Coordinates) string {
	if r.geocoder == nil {
		return UnknownLocation
	}
	name, err := r.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		r.logger.Warn("reverse geocoding failed", "lat", c.Lat, "lon", c.Lon, "error", err)
		return UnknownLocation
	}
	if name == "" {
		r.logger.Info("no city found for coordinates", "lat", c.Lat, "lon", c.Lon)
		return UnknownLocation
	}
	return name
}

func (r *LocationResolver) resolveZone(ctx context.Context, c Coordinates, mode TimezoneMode) (string, error) {
	switch mode {
	case TimezoneFixed, "":
		return r.fixedZone, nil
	case TimezoneAuto:
		if r.timezones == nil {
			return "UTC", nil
		}
		tz, err := r.timezones.TimezoneFor(ctx, c)
		if err != nil || tz == "" {
			r.logger.Warn("timezone lookup failed, defaulting to UTC", "lat", c.Lat, "lon", c.Lon, "error", err)
			return "UTC", nil
		}
		return tz, nil
	default:
		return "", fmt.Errorf("%w: unknown timezone mode %q", ErrInvalidRequest, mode)
	}
}
