package rating

import (
	"sort"
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
)

// TrendThreshold is the average difference between the recent and previous
// halves above which a trend is reported as improving or declining.
const TrendThreshold = 0.2

// Eligible returns the reviews that count towards ratings, preserving order.
func Eligible(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Eligible() {
			out = append(out, r)
		}
	}
	return out
}

// NewestFirst returns a copy of reviews ordered by creation time, newest first.
// Reviews created at the same instant are ordered by id.
func NewestFirst(reviews []domain.Review) []domain.Review {
	out := make([]domain.Review, len(reviews))
	copy(out, reviews)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SimpleAverage is the arithmetic mean of the raw ratings, or 0 when empty.
func SimpleAverage(reviews []domain.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// WeightedAverage is Σ(rating × weight) / Σ(weight), or 0 when empty.
func WeightedAverage(reviews []domain.Review, weight func(domain.Review) float64) float64 {
	var sum, total float64
	for _, r := range reviews {
		w := weight(r)
		sum += float64(r.Rating) * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// TimeWeightedAverage weighs each rating by TimeWeight alone.
func TimeWeightedAverage(reviews []domain.Review, now time.Time) float64 {
	return WeightedAverage(reviews, func(r domain.Review) float64 {
		return TimeWeight(DaysSince(r.CreatedAt, now))
	})
}

// BuildDistribution counts ratings per star value. Percentages are rounded
// to one decimal place.
func BuildDistribution(reviews []domain.Review) domain.Distribution {
	d := domain.NewDistribution()
	if len(reviews) == 0 {
		return d
	}

	counts := make(map[int]int, len(d))
	for _, r := range reviews {
		counts[r.Rating]++
	}

	total := float64(len(reviews))
	for star := range d {
		d[star] = domain.DistributionBucket{
			Count:      counts[star],
			Percentage: Round(float64(counts[star])/total*100, 1),
		}
	}
	return d
}

// AnalyzeTrend splits newest-first reviews at their midpoint and compares the
// mean of the recent half against the mean of the previous half.
func AnalyzeTrend(newestFirst []domain.Review) domain.Trend {
	if len(newestFirst) < 2 {
		avg := SimpleAverage(newestFirst)
		return domain.Trend{
			Direction:       domain.TrendStable,
			RecentAverage:   avg,
			PreviousAverage: avg,
		}
	}

	mid := len(newestFirst) / 2
	recent := SimpleAverage(newestFirst[:mid])
	previous := SimpleAverage(newestFirst[mid:])
	slope := recent - previous

	direction := domain.TrendStable
	switch {
	case slope > TrendThreshold:
		direction = domain.TrendImproving
	case slope < -TrendThreshold:
		direction = domain.TrendDeclining
	}

	return domain.Trend{
		Direction:       direction,
		Slope:           slope,
		RecentAverage:   recent,
		PreviousAverage: previous,
	}
}
