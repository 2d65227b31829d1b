package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"

	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

// maxHandlerRetries is the maximum number of times a message handler will be
// attempted before the message is dead-lettered and committed.
const maxHandlerRetries = 3

// defaultRetryBackoff is the base delay between handler attempts. Attempt n
// waits n times this value.
const defaultRetryBackoff = 100 * time.Millisecond

// Handler is a function that processes a Kafka event.
type Handler func(ctx context.Context, event *Event) error

// DeadLetterPublisher receives messages whose handler failed every attempt.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, lastErr error, consumerGroup string) error
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topic    string
	MinBytes int
	MaxBytes int

	// DeadLetter, when set, receives poison messages before they are committed.
	DeadLetter DeadLetterPublisher
}

// messageReader is the subset of *kafka.Reader used by the consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer wraps the kafka-go reader for consuming events.
type Consumer struct {
	reader       messageReader
	topic        string
	group        string
	logger       *slog.Logger
	handler      Handler
	deadLetter   DeadLetterPublisher
	retryBackoff time.Duration
	closeOnce    sync.Once
}

// NewConsumer creates a new Kafka consumer for a specific topic and group.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: cfg.MinBytes,
		MaxBytes: cfg.MaxBytes,
	})
	return newConsumer(r, cfg, handler, logger)
}

func newConsumer(r messageReader, cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:       r,
		topic:        cfg.Topic,
		group:        cfg.GroupID,
		logger:       logger,
		handler:      handler,
		deadLetter:   cfg.DeadLetter,
		retryBackoff: defaultRetryBackoff,
	}
}

// Start begins consuming messages. It blocks until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started",
		slog.String("topic", c.topic),
		slog.String("group", c.group),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping", slog.String("topic", c.topic))
			return c.Close()
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("failed to fetch message", slog.String("error", err.Error()))
				continue
			}
			consumerReceived.WithLabelValues(c.topic, c.group).Inc()

			if !c.process(ctx, msg) {
				return nil
			}
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// process runs the handler for one message with retries. It returns false
// only when the context was canceled mid-retry, in which case the message
// must not be committed.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	event, err := UnmarshalEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to unmarshal event",
			slog.String("error", err.Error()),
			slog.String("topic", msg.Topic),
		)
		c.fail(ctx, msg, fmt.Errorf("unmarshal event: %w", err))
		return true
	}

	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}
	consumerEventLag.WithLabelValues(c.topic, c.group).Observe(event.Age(time.Now()).Seconds())

	ctx, span := startProcessSpan(ctx, &msg, event, c.group)
	start := time.Now()
	defer func() {
		consumerDuration.WithLabelValues(c.topic, c.group).Observe(time.Since(start).Seconds())
		span.End()
	}()

	var lastErr error
	for attempt := 1; attempt <= maxHandlerRetries; attempt++ {
		lastErr = c.handler(ctx, event)
		if lastErr == nil {
			consumerProcessed.WithLabelValues(c.topic, c.group).Inc()
			return true
		}

		c.logger.Warn("handler failed, will retry",
			slog.String("event_type", event.EventType),
			slog.String("aggregate_id", event.AggregateID),
			slog.String("error", lastErr.Error()),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", maxHandlerRetries),
		)

		if attempt < maxHandlerRetries {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(time.Duration(attempt) * c.retryBackoff):
			}
		}
	}

	c.logger.Error("handler failed after all retries, skipping poison message",
		slog.String("event_type", event.EventType),
		slog.String("aggregate_id", event.AggregateID),
		slog.String("error", lastErr.Error()),
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
		slog.Int("retries", maxHandlerRetries),
	)
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	c.fail(ctx, msg, lastErr)
	return true
}

// fail records a message that will never be handled and forwards it to the
// dead-letter publisher, if one is configured.
func (c *Consumer) fail(ctx context.Context, msg kafka.Message, cause error) {
	consumerFailed.WithLabelValues(c.topic, c.group).Inc()
	if c.deadLetter == nil {
		return
	}
	if err := c.deadLetter.Publish(ctx, msg, cause, c.group); err != nil {
		c.logger.Error("failed to dead-letter message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return
	}
	consumerDeadLettered.WithLabelValues(c.topic, c.group).Inc()
}

// Close closes the consumer. It is safe to call multiple times.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.reader.Close()
	})
	return err
}

// TopicPrefix is the standard prefix for all marketplace Kafka topics.
const TopicPrefix = "marketplace"

// Topic constructs a fully-qualified topic name.
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
