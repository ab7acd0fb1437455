package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/yr-forecast/internal/common"
	"github.com/i474232898/yr-forecast/internal/weather"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder implements weather.Geocoder against OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &NominatimGeocoder{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: userAgent,
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
		},
		circuit: newCircuitBreaker("nominatim"),
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the coordinates of the best match for city.
func (g *NominatimGeocoder) Geocode(ctx context.Context, city string) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("format", "json")
	values.Set("limit", "1")

	var places []nominatimPlace
	if err := g.getJSON(ctx, "/search", values, &places); err != nil {
		return weather.Coordinates{}, err
	}
	if len(places) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: city %q", weather.ErrLocationNotFound, city)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("nominatim: bad latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("nominatim: bad longitude %q: %w", places[0].Lon, err)
	}
	return weather.Coordinates{Lat: lat, Lon: lon}, nil
}

type nominatimReverse struct {
	Error   string `json:"error"`
	Address struct {
		City         string `json:"city"`
		Town         string `json:"town"`
		Village      string `json:"village"`
		Municipality string `json:"municipality"`
		County       string `json:"county"`
	} `json:"address"`
}

// ReverseGeocode returns the settlement name at c, or "" when Nominatim has none.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, c weather.Coordinates) (string, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("lat", common.FormatCoord(c.Lat))
	values.Set("lon", common.FormatCoord(c.Lon))
	values.Set("zoom", "10")
	values.Set("addressdetails", "1")

	var rev nominatimReverse
	if err := g.getJSON(ctx, "/reverse", values, &rev); err != nil {
		return "", err
	}
	if rev.Error != "" {
		return "", nil
	}

	for _, name := range []string{
		rev.Address.City,
		rev.Address.Town,
		rev.Address.Village,
		rev.Address.Municipality,
		rev.Address.County,
	} {
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}

func (g *NominatimGeocoder) getJSON(ctx context.Context, path string, values url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", g.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return fmt.Errorf("nominatim %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nominatim %s: decode: %w", path, err)
	}
	return nil
}
