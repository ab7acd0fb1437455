package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/yr-forecast/internal/common"
	"github.com/i474232898/yr-forecast/internal/weather"
)

// DefaultMetNoURL is the MET Norway Locationforecast 2.0 compact endpoint.
const DefaultMetNoURL = "https://api.met.no/weatherapi/locationforecast/2.0/compact"

// MetNoProvider implements weather.Fetcher for MET Norway (yr.no).
type MetNoProvider struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewMetNoProvider creates a client. MET Norway rejects requests without an
// identifying User-Agent.
func NewMetNoProvider(client *http.Client, baseURL, userAgent string, maxRetries int, logger *slog.Logger) *MetNoProvider {
	if baseURL == "" {
		baseURL = DefaultMetNoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetNoProvider{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:    client,
			UserAgent: userAgent,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("metno"),
		logger:  logger.With("component", "metno"),
	}
}

// FetchTimeseries returns the raw forecast document for c.
func (p *MetNoProvider) FetchTimeseries(ctx context.Context, c weather.Coordinates) (weather.ForecastDocument, error) {
	if !c.Valid() {
		return weather.ForecastDocument{}, fmt.Errorf("%w: invalid coordinates: lat=%v, lon=%v", weather.ErrInvalidRequest, c.Lat, c.Lon)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", common.FormatCoord(c.Lat))
		values.Set("lon", common.FormatCoord(c.Lon))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	p.logger.Info("fetching forecast", "lat", c.Lat, "lon", c.Lon)

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		p.logger.Warn("forecast request failed", "error", err)
		return weather.ForecastDocument{}, fmt.Errorf("metno: %w", err)
	}
	defer resp.Body.Close()

	var doc weather.ForecastDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return weather.ForecastDocument{}, fmt.Errorf("%w: invalid API response format: %v", weather.ErrDataValidation, err)
	}
	if doc.Properties == nil {
		return weather.ForecastDocument{}, fmt.Errorf("%w: response has no properties", weather.ErrDataValidation)
	}

	p.logger.Info("fetched forecast", "entries", len(doc.Timeseries()))
	return doc, nil
}
