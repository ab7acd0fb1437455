package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/i474232898/yr-forecast/internal/weather"
)

type countingGeocoder struct {
	forward, reverse int
	fail             bool
}

func (c *countingGeocoder) Geocode(_ context.Context, city string) (weather.Coordinates, error) {
	c.forward++
	if c.fail {
		return weather.Coordinates{}, errors.New("upstream down")
	}
	return weather.Coordinates{Lat: 59.91, Lon: 10.75}, nil
}

func (c *countingGeocoder) ReverseGeocode(_ context.Context, _ weather.Coordinates) (string, error) {
	c.reverse++
	if c.fail {
		return "", errors.New("upstream down")
	}
	return "Oslo", nil
}

func TestCachedGeocoderMemoises(t *testing.T) {
	next := &countingGeocoder{}
	g, err := NewCachedGeocoder(next, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	for _, city := range []string{"Oslo", "oslo", " OSLO "} {
		if _, err := g.Geocode(ctx, city); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if next.forward != 1 {
		t.Errorf("expected 1 forward lookup, got %d", next.forward)
	}

	c := weather.Coordinates{Lat: 59.91, Lon: 10.75}
	for i := 0; i < 3; i++ {
		name, err := g.ReverseGeocode(ctx, c)
		if err != nil || name != "Oslo" {
			t.Fatalf("unexpected result %q, %v", name, err)
		}
	}
	if next.reverse != 1 {
		t.Errorf("expected 1 reverse lookup, got %d", next.reverse)
	}
}

func TestCachedGeocoderDoesNotCacheFailures(t *testing.T) {
	next := &countingGeocoder{fail: true}
	g, _ := NewCachedGeocoder(next, 8)
	ctx := context.Background()

	_, _ = g.Geocode(ctx, "Oslo")
	_, _ = g.Geocode(ctx, "Oslo")
	if next.forward != 2 {
		t.Errorf("expected failures to reach upstream every time, got %d calls", next.forward)
	}

	next.fail = false
	if _, err := g.Geocode(ctx, "Oslo"); err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
}
