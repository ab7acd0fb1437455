package weather

import "sort"

// GroupByDate buckets entries by local calendar date. Input order is preserved
// inside each bucket.
func GroupByDate(entries []EnrichedEntry) map[string][]EnrichedEntry {
	buckets := make(map[string][]EnrichedEntry)
	for _, e := range entries {
		k := e.LocalDate()
		buckets[k] = append(buckets[k], e)
	}
	return buckets
}

// sortedDates returns the bucket keys in ascending order. YYYY-MM-DD sorts
// lexically in chronological order.
func sortedDates(buckets map[string][]EnrichedEntry) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
