package weather

import (
	"fmt"
	"time"
)

// SelectTargetHour picks, from one day's entries, the entry whose local time of
// day is closest to targetHour:00 and at most toleranceHours away. Equal
// distances keep the earlier entry. ok is false when nothing qualifies.
//
// The temperature is read from the winning entry only; a malformed measurement
// there is returned as ErrMalformedMeasurement.
func SelectTargetHour(entries []EnrichedEntry, targetHour, toleranceHours int) (sample DailySample, ok bool, err error) {
	best, found := closestToTarget(entries, targetHour, toleranceHours)
	if !found {
		return DailySample{}, false, nil
	}

	winner := entries[best]
	temp, err := airTemperature(winner.Data)
	if err != nil {
		return DailySample{}, false, fmt.Errorf("%w: entry %s: %v", ErrMalformedMeasurement, winner.Time, err)
	}

	return DailySample{
		Date:               winner.LocalTime.Format(dateLayout),
		Time:               winner.LocalTime.Format(timeLayout),
		TemperatureCelsius: temp,
	}, true, nil
}

// closestToTarget returns the index of the best candidate.
func closestToTarget(entries []EnrichedEntry, targetHour, toleranceHours int) (int, bool) {
	target := time.Duration(targetHour) * time.Hour
	tolerance := time.Duration(toleranceHours) * time.Hour

	best := -1
	var bestDelta time.Duration
	for i, e := range entries {
		tod := time.Duration(e.LocalTime.Hour())*time.Hour + time.Duration(e.LocalTime.Minute())*time.Minute
		delta := tod - target
		if delta < 0 {
			delta = -delta
		}
		if delta > tolerance {
			continue
		}
		// strict comparison: ties keep the first entry seen
		if best < 0 || delta < bestDelta {
			best = i
			bestDelta = delta
		}
	}
	return best, best >= 0
}

// airTemperature walks data.instant.details.air_temperature.
func airTemperature(data map[string]any) (float64, error) {
	node := any(data)
	for _, key := range []string{"instant", "details", "air_temperature"} {
		m, ok := node.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
		node, ok = m[key]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
		}
	}

	switch v := node.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("air_temperature is %T, not a number", node)
	}
}
