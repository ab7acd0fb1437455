package weather

import (
	"fmt"
	"time"
)

// Layouts accepted for upstream timestamps. All of them carry a zone designator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
}

// NormalizeTimestamp parses an ISO-8601 timestamp with a 'Z' or numeric offset
// and returns the instant in UTC together with the wall time in timezoneID.
func NormalizeTimestamp(utcTimestamp, timezoneID string) (time.Time, time.Time, error) {
	loc, err := loadZone(timezoneID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return normalizeIn(utcTimestamp, loc)
}

func normalizeIn(utcTimestamp string, loc *time.Location) (time.Time, time.Time, error) {
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, utcTimestamp)
		if err == nil {
			return ts.UTC(), ts.In(loc), nil
		}
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrParse, utcTimestamp)
}

func loadZone(timezoneID string) (*time.Location, error) {
	// LoadLocation maps "" to UTC, which would hide a missing zone.
	if timezoneID == "" {
		return nil, fmt.Errorf("%w: empty identifier", ErrTimezone)
	}
	loc, err := time.LoadLocation(timezoneID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrTimezone, timezoneID, err)
	}
	return loc, nil
}
