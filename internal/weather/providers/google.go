package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/yr-forecast/internal/common"
	"github.com/i474232898/yr-forecast/internal/weather"
)

// the geocoder package keeps its key in a package variable
var googleKeyOnce sync.Once

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct{}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	googleKeyOnce.Do(func() {
		geocoder.ApiKey = apiKey
	})
	return &GoogleGeocoder{}
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	type result struct {
		loc geocoder.Location
		err error
	}
	ch := make(chan result, 1)
	go func() {
		loc, err := geocoder.Geocoding(geocoder.Address{City: city})
		ch <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("google geocoding %q: %w", city, r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}

func (g *GoogleGeocoder) ReverseGeocode(ctx context.Context, c weather.Coordinates) (string, error) {
	type result struct {
		addrs []geocoder.Address
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		addrs, err := geocoder.GeocodingReverse(geocoder.Location{
			Latitude:  common.RoundCoord(c.Lat),
			Longitude: common.RoundCoord(c.Lon),
		})
		ch <- result{addrs: addrs, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("google reverse geocoding: %w", r.err)
		}
		for _, a := range r.addrs {
			if a.City != "" {
				return a.City, nil
			}
		}
		for _, a := range r.addrs {
			if a.County != "" {
				return a.County, nil
			}
		}
		return "", nil
	}
}
