package rating

import (
	"math"
	"time"
)

// Inactivity decay tuning.
const (
	// InactivityGraceDays is how long a user may be idle before decay starts.
	InactivityGraceDays = 30
	// InactivityWindowDays is the span over which the full penalty phases in.
	InactivityWindowDays = 365.0
	// MaxInactivityPenalty is the largest fraction removed from a rating.
	MaxInactivityPenalty = 0.3
	// UnknownActivityDays is assumed when no activity has ever been recorded.
	UnknownActivityDays = 365
)

// DecayFactor returns the multiplier applied to a rating after the given
// number of idle days. It stays within [1-MaxInactivityPenalty, 1].
func DecayFactor(daysSinceActivity int) float64 {
	if daysSinceActivity <= InactivityGraceDays {
		return 1.0
	}
	phase := math.Min(float64(daysSinceActivity-InactivityGraceDays)/InactivityWindowDays, 1.0)
	return 1.0 - phase*MaxInactivityPenalty
}

// Decay softens a weighted average for users who have been inactive.
// A nil lastActivity counts as UnknownActivityDays of inactivity.
func Decay(weightedAverage float64, lastActivity *time.Time, now time.Time) float64 {
	days := UnknownActivityDays
	if lastActivity != nil {
		days = DaysSince(*lastActivity, now)
	}
	return weightedAverage * DecayFactor(days)
}
