package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zwehtet-dev/talent2income-rating/internal/domain"
	pkgkafka "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"
)

// TopicStatsUpdated receives a snapshot every time a user's statistics are recomputed.
const TopicStatsUpdated = "marketplace.rating.stats_updated"

// Aggregate type constant.
const AggregateTypeRating = "rating"

// Source identifier for events originating from the rating engine.
const SourceRatingService = "rating-service"

// StatsUpdatedData is the payload for a rating.stats_updated event.
type StatsUpdatedData struct {
	UserID              string    `json:"user_id"`
	TotalReviews        int       `json:"total_reviews"`
	SimpleAverage       float64   `json:"simple_average"`
	WeightedAverage     float64   `json:"weighted_average"`
	TimeWeightedAverage float64   `json:"time_weighted_average"`
	DecayedRating       float64   `json:"decayed_rating"`
	QualityScore        float64   `json:"quality_score"`
	TrendDirection      string    `json:"trend_direction"`
	CalculatedAt        time.Time `json:"calculated_at"`
}

// Publisher sends events to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes rating domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the rating service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishStatsUpdated publishes a rating.stats_updated event.
func (p *Producer) PublishStatsUpdated(ctx context.Context, stats *domain.RatingStats) error {
	data := StatsUpdatedData{
		UserID:              stats.UserID,
		TotalReviews:        stats.TotalReviews,
		SimpleAverage:       stats.SimpleAverage,
		WeightedAverage:     stats.WeightedAverage,
		TimeWeightedAverage: stats.TimeWeightedAverage,
		DecayedRating:       stats.DecayedRating,
		QualityScore:        stats.QualityScore,
		TrendDirection:      string(stats.Trend.Direction),
		CalculatedAt:        stats.LastCalculated,
	}

	event, err := pkgkafka.NewEvent(TopicStatsUpdated, stats.UserID, AggregateTypeRating, SourceRatingService, data)
	if err != nil {
		return fmt.Errorf("create rating.stats_updated event: %w", err)
	}
	event.WithContext(ctx)

	if err := p.kafka.Publish(ctx, TopicStatsUpdated, event); err != nil {
		return fmt.Errorf("publish rating.stats_updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published rating.stats_updated event",
		slog.String("user_id", stats.UserID),
		slog.Float64("quality_score", stats.QualityScore),
	)

	return nil
}
