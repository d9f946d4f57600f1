package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"innkeep/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage().
		WithKey("room-1").
		WithValue(map[string]string{"bookingId": "b1"}).
		WithEventType("booking.created").
		WithCorrelationID("").
		WithSource("innkeep").
		Build()

	assert.Equal(t, "room-1", msg.Key)
	assert.JSONEq(t, `{"bookingId":"b1"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	_, hasCorrelation := msg.GetHeader(HeaderCorrelationID)
	assert.False(t, hasCorrelation, "empty correlation id should not be set")
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	b := NewMessage().WithKey("k").WithValue(make(chan int))
	msg := b.Build()

	assert.Error(t, b.Err())
	assert.Empty(t, msg.Value)
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	assert.Equal(t, 0, msg.GetRetryCount())

	for range 12 {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])

	msg.Headers[HeaderRetryCount] = "garbage"
	assert.Equal(t, 0, msg.GetRetryCount())
}

func TestKafkaRoundTripKeepsHeaders(t *testing.T) {
	msg := NewMessage().WithKey("k").WithRawValue([]byte("v")).WithEventType("t").Build()
	back := fromKafka(msg.toKafka())

	assert.Equal(t, msg.Key, back.Key)
	assert.Equal(t, msg.Headers, back.Headers)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"typed transient", NewTransientError("broker busy", nil), ErrorTypeTransient},
		{"wrapped permanent", fmt.Errorf("handle: %w", NewPermanentError("bad payload", nil)), ErrorTypePermanent},
		{"business", NewBusinessError("rule", nil), ErrorTypeBusiness},
		{"network text", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"io timeout", errors.New("read: i/o timeout"), ErrorTypeTransient},
		{"unknown", errors.New("unexpected field"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("later", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("never", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "bookings", "", testLogger())

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	err := p.Publish(context.Background(), NewMessage().WithKey("room-1").WithRawValue([]byte("{}")).Build())
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	assert.Equal(t, "room-1", string(w.written[0].Key))
	assert.Equal(t, "bookings", seenTopic)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "bookings", "", testLogger())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("v")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)
	assert.ErrorIs(t, p.PublishBatch(context.Background(), []Message{{Key: "k"}}), ErrInvalidMessage)
}

func TestProducer_DeadLettersFailedWrites(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newProducer(&fakeWriter{err: writeErr}, dlq, "bookings", "bookings.dlq", testLogger())

	err := p.Publish(context.Background(), NewMessage().WithKey("k").WithRawValue([]byte("v")).Build())
	assert.ErrorIs(t, err, writeErr)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "bookings", header(dlq.written[0], HeaderOriginalTopic))
	assert.Equal(t, "leader not available", header(dlq.written[0], HeaderDLQError))
}

func TestProducer_Closed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "bookings", "", testLogger())

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}), ErrProducerClosed)
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("busy", nil)
		}
		return nil
	}
	c := newConsumer(&fakeReader{}, nil, "bookings", "notifier", "", handler, testLogger())
	c.maxRetries = 3

	err := c.processMessage(context.Background(), NewMessage().WithKey("k").WithRawValue([]byte("v")).Build())
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestConsumer_DeadLettersPermanentFailures(t *testing.T) {
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		return NewPermanentError("bad payload", nil)
	}
	dlq := &fakeWriter{}
	c := newConsumer(&fakeReader{}, dlq, "bookings", "notifier", "bookings.dlq", handler, testLogger())
	c.maxRetries = 3

	err := c.processMessage(context.Background(), NewMessage().WithKey("k").WithRawValue([]byte("v")).Build())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 1, calls, "permanent failures are not retried")
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "notifier", header(dlq.written[0], HeaderDLQGroup))
}

func TestConsumer_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	handler := func(context.Context, Message) error {
		calls++
		return NewTransientError("busy", nil)
	}
	c := newConsumer(&fakeReader{}, nil, "bookings", "notifier", "", handler, testLogger())
	c.maxRetries = 2

	err := c.processMessage(context.Background(), NewMessage().WithKey("k").WithRawValue([]byte("v")).Build())
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, ErrorTypeTransient, ClassifyError(err), "the handler error stays in the chain")
	assert.Equal(t, 3, calls)
}

func TestConsumer_StartCommitsEveryMessage(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		NewMessage().WithKey("a").WithRawValue([]byte("1")).Build().toKafka(),
		NewMessage().WithKey("b").WithRawValue([]byte("2")).Build().toKafka(),
	}}

	var mu sync.Mutex
	var keys []string
	handler := func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, msg.Key)
		if msg.Key == "b" {
			return NewPermanentError("bad", nil)
		}
		return nil
	}

	var order []string
	c := newConsumer(reader, nil, "bookings", "notifier", "", handler, testLogger())
	c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		order = append(order, "outer")
		return next(ctx, msg)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, c.Close())
	assert.Equal(t, []string{"a", "b"}, keys)
	assert.Equal(t, []string{"outer", "outer"}, order)
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
