package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/zwehtet-dev/talent2income-rating/pkg/kafka"

// headerCarrier lets the OpenTelemetry propagator read and write W3C trace
// context on Kafka message headers.
type headerCarrier struct {
	headers *[]kafka.Header
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func eventAttributes(topic string, event *Event) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.name", topic),
		attribute.String("messaging.message.id", event.EventID),
		attribute.String("event.type", event.EventType),
	}
}

// startPublishSpan opens a producer span and writes its context into msg.
func startPublishSpan(ctx context.Context, msg *kafka.Message, event *Event) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "publish "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(eventAttributes(msg.Topic, event)...),
	)
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{&msg.Headers})
	return ctx, span
}

// startProcessSpan opens a consumer span that continues the trace carried in
// msg's headers, if any.
func startProcessSpan(ctx context.Context, msg *kafka.Message, event *Event, group string) (context.Context, trace.Span) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier{&msg.Headers})
	attrs := append(eventAttributes(msg.Topic, event),
		attribute.String("messaging.kafka.consumer.group", group),
		attribute.Int("messaging.kafka.destination.partition", msg.Partition),
		attribute.Int64("messaging.kafka.message.offset", msg.Offset),
	)
	return otel.Tracer(tracerName).Start(ctx, "process "+msg.Topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)
}
