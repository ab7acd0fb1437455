package weather

import (
	"context"
	"errors"
	"math"
	"testing"
)

type fakeGeocoder struct {
	cities      map[string]Coordinates
	reverseName string
	reverseErr  error

	forwardCalls int
	reverseCalls int
}

func (f *fakeGeocoder) Geocode(_ context.Context, city string) (Coordinates, error) {
	f.forwardCalls++
	c, ok := f.cities[city]
	if !ok {
		return Coordinates{}, errors.New("no match")
	}
	return c, nil
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _ Coordinates) (string, error) {
	f.reverseCalls++
	return f.reverseName, f.reverseErr
}

type fakeTimezones struct {
	zone string
	err  error
}

func (f fakeTimezones) TimezoneFor(_ context.Context, _ Coordinates) (string, error) {
	return f.zone, f.err
}

func belgradeGeocoder() *fakeGeocoder {
	return &fakeGeocoder{cities: map[string]Coordinates{"Belgrade": {Lat: 44.8178, Lon: 20.4569}}}
}

func TestResolveCityFixed(t *testing.T) {
	geo := belgradeGeocoder()
	r := NewLocationResolver(geo, fakeTimezones{zone: "Europe/Belgrade"}, "UTC", nil)

	got, err := r.Resolve(context.Background(), LocationRequest{City: "Belgrade"}, TimezoneFixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DisplayName != "Belgrade" {
		t.Errorf("expected display name Belgrade, got %q", got.DisplayName)
	}
	if math.Abs(got.Latitude-44.8) > 0.1 || math.Abs(got.Longitude-20.5) > 0.1 {
		t.Errorf("expected coordinates near (44.8, 20.5), got (%v, %v)", got.Latitude, got.Longitude)
	}
	if got.TimezoneID != "UTC" {
		t.Errorf("expected fixed zone UTC, got %q", got.TimezoneID)
	}
	if geo.reverseCalls != 0 {
		t.Errorf("city branch must not reverse geocode")
	}
}

func TestResolveCityNotFound(t *testing.T) {
	r := NewLocationResolver(belgradeGeocoder(), nil, "UTC", nil)

	_, err := r.Resolve(context.Background(), LocationRequest{City: "Atlantis"}, TimezoneFixed)
	if !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
}

func TestResolveCoordinatesUnknownLocation(t *testing.T) {
	tests := []struct {
		name string
		geo  *fakeGeocoder
	}{
		{"no match", &fakeGeocoder{}},
		{"geocoder error", &fakeGeocoder{reverseErr: errors.New("timeout")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLocationResolver(tt.geo, fakeTimezones{zone: "Europe/Belgrade"}, "UTC", nil)
			req := LocationRequest{Coordinates: &Coordinates{Lat: 44.8125, Lon: 20.4612}}

			got, err := r.Resolve(context.Background(), req, TimezoneAuto)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.DisplayName != UnknownLocation {
				t.Errorf("expected %q, got %q", UnknownLocation, got.DisplayName)
			}
			if got.Latitude != 44.8125 || got.Longitude != 20.4612 {
				t.Errorf("coordinates changed: %+v", got)
			}
			if got.TimezoneID != "Europe/Belgrade" {
				t.Errorf("expected looked-up zone, got %q", got.TimezoneID)
			}
			if tt.geo.forwardCalls != 0 {
				t.Errorf("coordinate branch must not forward geocode")
			}
		})
	}
}

func TestResolveNamedCoordinates(t *testing.T) {
	geo := &fakeGeocoder{reverseErr: errors.New("nominatim down")}
	r := NewLocationResolver(geo, nil, "UTC", nil)
	req := LocationRequest{Coordinates: &Coordinates{Lat: 44.8125, Lon: 20.4612}, Name: "Belgrade"}

	got, err := r.Resolve(context.Background(), req, TimezoneFixed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DisplayName != "Belgrade" || got.Latitude != 44.8125 || got.Longitude != 20.4612 {
		t.Errorf("unexpected location %+v", got)
	}
	if geo.forwardCalls != 0 || geo.reverseCalls != 0 {
		t.Errorf("named coordinates must not be geocoded, got %d forward and %d reverse calls", geo.forwardCalls, geo.reverseCalls)
	}
}

func TestResolveAutoTimezoneFallsBackToUTC(t *testing.T) {
	geo := &fakeGeocoder{reverseName: "Oslo"}
	req := LocationRequest{Coordinates: &Coordinates{Lat: 59.91, Lon: 10.75}}

	for _, tz := range []TimezoneLookup{nil, fakeTimezones{err: errors.New("boom")}, fakeTimezones{}} {
		r := NewLocationResolver(geo, tz, "Europe/Oslo", nil)
		got, err := r.Resolve(context.Background(), req, TimezoneAuto)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.TimezoneID != "UTC" {
			t.Errorf("expected UTC fallback, got %q", got.TimezoneID)
		}
		if got.DisplayName != "Oslo" {
			t.Errorf("expected Oslo, got %q", got.DisplayName)
		}
	}
}

func TestResolveInvalidRequests(t *testing.T) {
	r := NewLocationResolver(belgradeGeocoder(), nil, "", nil)
	ctx := context.Background()

	cases := map[string]LocationRequest{
		"neither":       {},
		"blank city":    {City: "   "},
		"both":          {City: "Belgrade", Coordinates: &Coordinates{Lat: 1, Lon: 2}},
		"lat too big":   {Coordinates: &Coordinates{Lat: 90.5, Lon: 0}},
		"lon too small": {Coordinates: &Coordinates{Lat: 0, Lon: -180.01}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := r.Resolve(ctx, req, TimezoneFixed); !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}

	if _, err := r.Resolve(ctx, LocationRequest{City: "Belgrade"}, "sideways"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for unknown mode, got %v", err)
	}
}

func TestParseTimezoneOption(t *testing.T) {
	for in, want := range map[string]TimezoneMode{
		"":      TimezoneFixed,
		"utc":   TimezoneFixed,
		"UTC":   TimezoneFixed,
		"fixed": TimezoneFixed,
		"local": TimezoneAuto,
		"auto":  TimezoneAuto,
	} {
		got, err := ParseTimezoneOption(in)
		if err != nil || got != want {
			t.Errorf("ParseTimezoneOption(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseTimezoneOption("mars"); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}
