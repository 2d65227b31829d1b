package rating

import (
	"math"
	"time"
)

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// DaysSince returns the number of whole days elapsed between t and now.
// Timestamps in the future count as zero days.
func DaysSince(t, now time.Time) int {
	if !now.After(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}
