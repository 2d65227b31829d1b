package event

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	pkgkafka "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"
)

// --- Mock CacheInvalidator ---

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) InvalidateUserCache(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Test helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestEvent(eventType string, data any) *pkgkafka.Event {
	dataBytes, _ := json.Marshal(data)
	return &pkgkafka.Event{
		EventID:       "evt-test-123",
		EventType:     eventType,
		AggregateID:   "review-1",
		AggregateType: "review",
		Version:       1,
		Timestamp:     time.Now().UTC(),
		Source:        "review-service",
		Data:          dataBytes,
	}
}

func samplePayload() ReviewChangedData {
	return ReviewChangedData{
		ReviewID:   "review-1",
		RevieweeID: "freelancer-1",
		ReviewerID: "client-1",
		Rating:     4,
		IsPublic:   true,
	}
}

// ============================================================
// Handle
// ============================================================

func TestHandle_InvalidatesRevieweeAndReviewer(t *testing.T) {
	for _, eventType := range []string{
		EventReviewCreated, EventReviewUpdated, EventReviewFlagged, EventReviewUnflagged, EventReviewDeleted,
	} {
		t.Run(eventType, func(t *testing.T) {
			inv := new(mockInvalidator)
			consumer := NewConsumer(inv, newTestLogger())
			ctx := context.Background()

			inv.On("InvalidateUserCache", ctx, "freelancer-1").Return(nil).Once()
			inv.On("InvalidateUserCache", ctx, "client-1").Return(nil).Once()

			err := consumer.Handle(ctx, newTestEvent(eventType, samplePayload()))
			require.NoError(t, err)
			inv.AssertExpectations(t)
		})
	}
}

func TestHandle_SelfReviewInvalidatesOnce(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())
	ctx := context.Background()

	payload := samplePayload()
	payload.ReviewerID = payload.RevieweeID
	inv.On("InvalidateUserCache", ctx, "freelancer-1").Return(nil).Once()

	require.NoError(t, consumer.Handle(ctx, newTestEvent(EventReviewCreated, payload)))
	inv.AssertNumberOfCalls(t, "InvalidateUserCache", 1)
}

func TestHandle_UnknownEventType(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())

	err := consumer.Handle(context.Background(), newTestEvent("marketplace.job.created", samplePayload()))
	require.NoError(t, err)
	inv.AssertNotCalled(t, "InvalidateUserCache", mock.Anything, mock.Anything)
}

func TestHandle_MalformedPayload(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())

	event := newTestEvent(EventReviewCreated, nil)
	event.Data = json.RawMessage(`{"reviewee_id": 12`)

	err := consumer.Handle(context.Background(), event)
	require.Error(t, err)
	inv.AssertNotCalled(t, "InvalidateUserCache", mock.Anything, mock.Anything)
}

func TestHandle_MissingReviewee(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())

	payload := samplePayload()
	payload.RevieweeID = ""

	require.NoError(t, consumer.Handle(context.Background(), newTestEvent(EventReviewDeleted, payload)))
	inv.AssertNotCalled(t, "InvalidateUserCache", mock.Anything, mock.Anything)
}

func TestHandle_InvalidationFailureIsReturned(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())
	ctx := context.Background()

	inv.On("InvalidateUserCache", ctx, "freelancer-1").Return(errors.New("redis down"))

	err := consumer.Handle(ctx, newTestEvent(EventReviewFlagged, samplePayload()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "freelancer-1")
	inv.AssertNotCalled(t, "InvalidateUserCache", ctx, "client-1")
}

func TestHandle_WithIdempotency(t *testing.T) {
	inv := new(mockInvalidator)
	consumer := NewConsumer(inv, newTestLogger())
	ctx := context.Background()

	inv.On("InvalidateUserCache", ctx, mock.Anything).Return(nil)

	store := pkgkafka.NewMemoryIdempotencyStore(time.Hour)
	handler := pkgkafka.IdempotentHandler(store, consumer.Handle, newTestLogger())

	event := newTestEvent(EventReviewCreated, samplePayload())
	require.NoError(t, handler(ctx, event))
	require.NoError(t, handler(ctx, event))

	inv.AssertNumberOfCalls(t, "InvalidateUserCache", 2)
	assert.Equal(t, 1, store.Len())
}
