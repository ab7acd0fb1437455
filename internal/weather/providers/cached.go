package providers

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/i474232898/yr-forecast/internal/common"
	"github.com/i474232898/yr-forecast/internal/weather"
)

// CachedGeocoder memoises successful lookups of another geocoder.
// Failures are not cached.
type CachedGeocoder struct {
	next    weather.Geocoder
	forward *lru.Cache[string, weather.Coordinates]
	reverse *lru.Cache[string, string]
}

func NewCachedGeocoder(next weather.Geocoder, size int) (*CachedGeocoder, error) {
	if size <= 0 {
		size = 1000
	}
	fwd, err := lru.New[string, weather.Coordinates](size)
	if err != nil {
		return nil, err
	}
	rev, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedGeocoder{next: next, forward: fwd, reverse: rev}, nil
}

func (g *CachedGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(city))
	if c, ok := g.forward.Get(key); ok {
		return c, nil
	}
	c, err := g.next.Geocode(ctx, city)
	if err != nil {
		return weather.Coordinates{}, err
	}
	g.forward.Add(key, c)
	return c, nil
}

func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, c weather.Coordinates) (string, error) {
	key := fmt.Sprintf("%s,%s", common.FormatCoord(c.Lat), common.FormatCoord(c.Lon))
	if name, ok := g.reverse.Get(key); ok {
		return name, nil
	}
	name, err := g.next.ReverseGeocode(ctx, c)
	if err != nil {
		return "", err
	}
	g.reverse.Add(key, name)
	return name, nil
}
