package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	pkgkafka "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"
)

// TopicReviewChanged carries every review lifecycle event of the marketplace.
const TopicReviewChanged = "marketplace.review.changed"

// Review lifecycle event types published on TopicReviewChanged.
const (
	EventReviewCreated   = "marketplace.review.created"
	EventReviewUpdated   = "marketplace.review.updated"
	EventReviewFlagged   = "marketplace.review.flagged"
	EventReviewUnflagged = "marketplace.review.unflagged"
	EventReviewDeleted   = "marketplace.review.deleted"
)

// ReviewChangedData is the payload of every review lifecycle event.
type ReviewChangedData struct {
	ReviewID   string `json:"review_id"`
	RevieweeID string `json:"reviewee_id"`
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
	IsPublic   bool   `json:"is_public"`
	IsFlagged  bool   `json:"is_flagged"`
}

// CacheInvalidator evicts cached rating data of a user.
type CacheInvalidator interface {
	InvalidateUserCache(ctx context.Context, userID string) error
}

// Consumer turns review lifecycle events into rating cache invalidations.
type Consumer struct {
	invalidator CacheInvalidator
	logger      *slog.Logger
}

// NewConsumer creates a new review event consumer.
func NewConsumer(invalidator CacheInvalidator, logger *slog.Logger) *Consumer {
	return &Consumer{
		invalidator: invalidator,
		logger:      logger,
	}
}

// Handle processes a review lifecycle event. Any change to a review affects
// the reviewee's statistics and the reviewer's credibility, so both users'
// cache entries are evicted.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case EventReviewCreated, EventReviewUpdated, EventReviewFlagged, EventReviewUnflagged, EventReviewDeleted:
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	var data ReviewChangedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	if data.RevieweeID == "" {
		c.logger.WarnContext(ctx, "review event without reviewee, skipping",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
			slog.String("review_id", data.ReviewID),
		)
		return nil
	}

	if err := c.invalidator.InvalidateUserCache(ctx, data.RevieweeID); err != nil {
		return fmt.Errorf("invalidate reviewee %s: %w", data.RevieweeID, err)
	}

	if data.ReviewerID != "" && data.ReviewerID != data.RevieweeID {
		if err := c.invalidator.InvalidateUserCache(ctx, data.ReviewerID); err != nil {
			return fmt.Errorf("invalidate reviewer %s: %w", data.ReviewerID, err)
		}
	}

	c.logger.InfoContext(ctx, "rating cache invalidated from review event",
		slog.String("event_type", event.EventType),
		slog.String("review_id", data.ReviewID),
		slog.String("reviewee_id", data.RevieweeID),
		slog.String("reviewer_id", data.ReviewerID),
	)

	return nil
}
