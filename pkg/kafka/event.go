package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

// EnvelopeVersion is the version stamped on events built by NewEvent.
const EnvelopeVersion = 1

// ErrMalformedEvent is returned by UnmarshalEvent for payloads that decode
// but lack the fields every consumer relies on.
var ErrMalformedEvent = errors.New("malformed event")

// Event is the envelope shared by every marketplace topic. Data carries the
// event specific payload.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewEvent builds an event with a fresh id and the current UTC time.
func NewEvent(eventType, aggregateID, aggregateType, source string, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          payload,
	}, nil
}

// WithCorrelationID sets the correlation ID on the event.
func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithContext copies the correlation ID of the request or message being
// handled in ctx onto the event, so downstream consumers log under it.
func (e *Event) WithContext(ctx context.Context) *Event {
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		e.CorrelationID = id
	}
	return e
}

// Age reports how long ago the event was produced. Events without a
// timestamp have age zero.
func (e *Event) Age(now time.Time) time.Duration {
	if e.Timestamp.IsZero() || now.Before(e.Timestamp) {
		return 0
	}
	return now.Sub(e.Timestamp)
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes an envelope and rejects events without a type or
// payload. Events from a newer envelope version are rejected too.
func UnmarshalEvent(data []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	switch {
	case event.EventType == "":
		return nil, fmt.Errorf("%w: missing event_type", ErrMalformedEvent)
	case len(event.Data) == 0:
		return nil, fmt.Errorf("%w: %s has no data", ErrMalformedEvent, event.EventType)
	case event.Version > EnvelopeVersion:
		return nil, fmt.Errorf("%w: %s has unsupported version %d", ErrMalformedEvent, event.EventType, event.Version)
	}
	return &event, nil
}

// UnmarshalData decodes the event payload into target.
func (e *Event) UnmarshalData(target any) error {
	if err := json.Unmarshal(e.Data, target); err != nil {
		return fmt.Errorf("decode %s data: %w", e.EventType, err)
	}
	return nil
}
