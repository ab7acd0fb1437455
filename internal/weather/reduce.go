package weather

import (
	"fmt"
	"log/slog"
	"time"
)

// Reducer turns an hourly timeseries into one sample per local calendar day.
// It holds only configuration and is safe for concurrent use.
type Reducer struct {
	TargetHour     int
	ToleranceHours int

	logger *slog.Logger
}

// NewReducer creates a Reducer. A nil logger uses slog.Default().
func NewReducer(targetHour, toleranceHours int, logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{
		TargetHour:     targetHour,
		ToleranceHours: toleranceHours,
		logger:         logger.With("component", "reducer"),
	}
}

// enrichResult is the outcome of enriching one raw entry: either an entry or
// the reason it was skipped.
type enrichResult struct {
	entry EnrichedEntry
	skip  error
}

// Reduce runs normalize -> group -> select over raw and returns samples in
// ascending date order. An empty input is ErrNoData. Entries with a bad
// timestamp or zone are skipped; a malformed temperature on a day's winning
// entry aborts the whole call.
func (r *Reducer) Reduce(raw []RawTimeseriesEntry, timezoneID string) ([]DailySample, error) {
	if len(raw) == 0 {
		return nil, ErrNoData
	}

	r.logger.Debug("processing timeseries", "entries", len(raw), "timezone", timezoneID)

	results := enrich(raw, timezoneID)

	enriched := make([]EnrichedEntry, 0, len(results))
	skipped := 0
	for i, res := range results {
		if res.skip != nil {
			skipped++
			r.logger.Warn("skipping invalid timeseries entry", "index", i, "reason", res.skip)
			continue
		}
		enriched = append(enriched, res.entry)
	}

	buckets := GroupByDate(enriched)

	samples := make([]DailySample, 0, len(buckets))
	for _, date := range sortedDates(buckets) {
		sample, ok, err := SelectTargetHour(buckets[date], r.TargetHour, r.ToleranceHours)
		if err != nil {
			return nil, fmt.Errorf("date %s: %w", date, err)
		}
		if ok {
			samples = append(samples, sample)
		}
	}

	r.logger.Info("extracted daily temperatures", "days", len(samples), "skipped", skipped)
	return samples, nil
}

func enrich(raw []RawTimeseriesEntry, timezoneID string) []enrichResult {
	results := make([]enrichResult, len(raw))

	loc, zoneErr := loadZone(timezoneID)
	for i, entry := range raw {
		results[i] = enrichOne(entry, loc, zoneErr)
	}
	return results
}

func enrichOne(entry RawTimeseriesEntry, loc *time.Location, zoneErr error) enrichResult {
	if entry.Time == "" {
		return enrichResult{skip: fmt.Errorf("%w: time", ErrMissingField)}
	}
	if zoneErr != nil {
		return enrichResult{skip: zoneErr}
	}

	utc, local, err := normalizeIn(entry.Time, loc)
	if err != nil {
		return enrichResult{skip: err}
	}
	return enrichResult{entry: EnrichedEntry{
		RawTimeseriesEntry: entry,
		UTCTime:            utc,
		LocalTime:          local,
	}}
}
