package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/i474232898/yr-forecast/internal/weather"
)

const compactBody = `{
  "type": "Feature",
  "geometry": {"type": "Point", "coordinates": [20.4612, 44.8125, 117]},
  "properties": {
    "timeseries": [
      {"time": "2024-06-01T14:00:00Z", "data": {"instant": {"details": {"air_temperature": 27.5}}}},
      {"time": "2024-06-01T15:00:00Z", "data": {"instant": {"details": {"air_temperature": 28.1}}}}
    ]
  }
}`

func TestMetNoFetchTimeseries(t *testing.T) {
	var gotUA, gotLat, gotLon string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLat = r.URL.Query().Get("lat")
		gotLon = r.URL.Query().Get("lon")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(compactBody))
	}))
	defer srv.Close()

	p := NewMetNoProvider(srv.Client(), srv.URL, "yr-forecast/1.0 test@example.com", 0, nil)
	doc, err := p.FetchTimeseries(context.Background(), weather.Coordinates{Lat: 44.8125, Lon: 20.4612})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUA != "yr-forecast/1.0 test@example.com" {
		t.Errorf("expected User-Agent to be sent, got %q", gotUA)
	}
	if gotLat != "44.8125" || gotLon != "20.4612" {
		t.Errorf("unexpected query lat=%s lon=%s", gotLat, gotLon)
	}
	if n := len(doc.Timeseries()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	if doc.Timeseries()[0].Time != "2024-06-01T14:00:00Z" {
		t.Errorf("unexpected first entry %+v", doc.Timeseries()[0])
	}
}

func TestMetNoFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `oops`, weather.ErrUpstreamUnavailable},
		{"forbidden", http.StatusForbidden, `no user agent`, weather.ErrUpstreamUnavailable},
		{"rate limited", http.StatusTooManyRequests, ``, weather.ErrUpstreamUnavailable},
		{"bad json", http.StatusOK, `{"type":`, weather.ErrDataValidation},
		{"no properties", http.StatusOK, `{"type": "Feature"}`, weather.ErrDataValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewMetNoProvider(srv.Client(), srv.URL, "test", 0, nil)
			_, err := p.FetchTimeseries(context.Background(), weather.Coordinates{Lat: 59.91, Lon: 10.75})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMetNoRejectsInvalidCoordinates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	p := NewMetNoProvider(srv.Client(), srv.URL, "test", 0, nil)
	_, err := p.FetchTimeseries(context.Background(), weather.Coordinates{Lat: 91, Lon: 0})
	if !errors.Is(err, weather.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no upstream call, got %d", calls)
	}
}

func TestMetNoRetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(compactBody))
	}))
	defer srv.Close()

	p := NewMetNoProvider(srv.Client(), srv.URL, "test", 1, nil)
	if _, err := p.FetchTimeseries(context.Background(), weather.Coordinates{Lat: 59.91, Lon: 10.75}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}
