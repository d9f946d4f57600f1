package kafka_middleware

import (
	"context"
	"time"

	"innkeep/pkg/kafka"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics records message counts and handling latency on an OpenTelemetry meter.
type Metrics struct {
	published metric.Int64Counter
	consumed  metric.Int64Counter
	duration  metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	published, err := meter.Int64Counter("innkeep.kafka.messages.published",
		metric.WithDescription("Messages handed to the broker"))
	if err != nil {
		return nil, err
	}
	consumed, err := meter.Int64Counter("innkeep.kafka.messages.consumed",
		metric.WithDescription("Messages taken off the broker"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("innkeep.kafka.message.duration",
		metric.WithDescription("Time spent publishing or handling a message"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &Metrics{published: published, consumed: consumed, duration: duration}, nil
}

func (m *Metrics) Producer() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := metric.WithAttributes(
			attribute.String("topic", msg.Topic),
			attribute.String("direction", "publish"),
			attribute.String("outcome", outcome(err)),
		)
		m.published.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		return err
	}
}

func (m *Metrics) Consumer() kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := metric.WithAttributes(
			attribute.String("topic", msg.Topic),
			attribute.String("direction", "consume"),
			attribute.String("outcome", outcome(err)),
		)
		m.consumed.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		return err
	}
}

func outcome(err error) string {
	if err != nil {
		return outcomeError
	}
	return outcomeOK
}
