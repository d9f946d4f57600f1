package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	msg := kafka.Message{Topic: "bookings"}
	ok := func(context.Context, kafka.Message) error { return nil }
	fail := func(context.Context, kafka.Message) error { return errors.New("boom") }

	require.NoError(t, m.Producer()(context.Background(), msg, ok))
	require.Error(t, m.Producer()(context.Background(), msg, fail))
	require.NoError(t, m.Consumer()(context.Background(), msg, ok))

	assert.Equal(t, int64(2), sum(t, reader, "innkeep.kafka.messages.published"))
	assert.Equal(t, int64(1), sum(t, reader, "innkeep.kafka.messages.consumed"))
}

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Output: &buf})

	msg := kafka.NewMessage().WithKey("room-1").WithRawValue([]byte("{}")).WithCorrelationID("req-1").Build()
	err := LoggingConsumerMiddleware(log)(context.Background(), msg, func(context.Context, kafka.Message) error {
		return kafka.NewPermanentError("bad payload", nil)
	})

	require.Error(t, err)
	assert.Contains(t, buf.String(), "Failed to process kafka message")
	assert.Contains(t, buf.String(), `"correlation_id":"req-1"`)
	assert.Contains(t, buf.String(), `"error_type":"permanent"`)
}

func TestLoggingProducerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Output: &buf})

	msg := kafka.NewMessage().WithKey("room-1").WithRawValue([]byte("{}")).Build()
	err := LoggingProducerMiddleware(log)(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Published kafka message")
	assert.Contains(t, buf.String(), `"key":"room-1"`)
}
