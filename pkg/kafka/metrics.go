package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var consumerLabels = []string{"topic", "consumer_group"}

// Review events only trigger cache deletes, so handling is expected to take
// milliseconds. The upper buckets catch retries against a slow Redis.
var handlerBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

var (
	consumerReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name: "messages_received_total",
		Help: "Kafka messages fetched from the broker",
	}, consumerLabels)

	consumerProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name: "messages_processed_total",
		Help: "Kafka messages handled successfully",
	}, consumerLabels)

	consumerFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name: "messages_failed_total",
		Help: "Kafka messages that could not be decoded or exhausted their retries",
	}, consumerLabels)

	consumerDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name: "dead_lettered_total",
		Help: "Failed Kafka messages forwarded to the dead letter topic",
	}, consumerLabels)

	consumerDuplicates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name: "messages_duplicate_total",
		Help: "Redelivered events skipped because their id was already handled",
	}, []string{"event_type", "source"})

	consumerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name:    "processing_duration_seconds",
		Help:    "Time spent handling one message, retries included",
		Buckets: handlerBuckets,
	}, consumerLabels)

	consumerEventLag = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kafka", Subsystem: "consumer",
		Name:    "event_lag_seconds",
		Help:    "Delay between an event being produced and this consumer picking it up",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, consumerLabels)

	producerPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "producer",
		Name: "messages_published_total",
		Help: "Events written to Kafka",
	}, []string{"topic"})

	producerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kafka", Subsystem: "producer",
		Name: "publish_errors_total",
		Help: "Events that could not be written to Kafka",
	}, []string{"topic"})

	producerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kafka", Subsystem: "producer",
		Name:    "publish_duration_seconds",
		Help:    "Time spent in WriteMessages",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
)
