package common

import (
	"math"
	"strconv"
)

// RoundCoord rounds a coordinate to four decimals (about 11 m), the precision
// accepted by MET Norway and used for geocoding lookups.
func RoundCoord(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// FormatCoord renders a coordinate rounded to four decimals without trailing zeros.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(RoundCoord(v), 'f', -1, 64)
}
