package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []kafka.Message
	err  error
}

func (f *fakeSender) Publish(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func testBooking() *model.Booking {
	return &model.Booking{
		ID:           "65a1b2c3d4e5f60718293a4d",
		UserID:       "000000000000000000000001",
		HotelID:      "65a1b2c3d4e5f60718293a4b",
		RoomID:       "65a1b2c3d4e5f60718293a4c",
		CheckInDate:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		TotalPrice:   240,
		Status:       model.BookingStatusPending,
		CreatedAt:    time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestKafkaPublisher_BookingCreated(t *testing.T) {
	sender := &fakeSender{}
	p := NewKafkaPublisher(sender, "innkeep")
	ctx := logger.ContextWithRequestID(context.Background(), "req-42")

	require.NoError(t, p.BookingCreated(ctx, testBooking()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "65a1b2c3d4e5f60718293a4c", msg.Key)
	assert.Equal(t, EventBookingCreated, msg.GetEventType())
	assert.Equal(t, "req-42", msg.GetCorrelationID())
	assert.Equal(t, "innkeep", msg.Headers[kafka.HeaderSource])
	assert.NotEmpty(t, msg.GetEventID())

	var payload BookingCreated
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "2024-02-01", payload.CheckInDate)
	assert.Equal(t, "2024-02-03", payload.CheckOutDate)
	assert.Equal(t, 240.0, payload.TotalPrice)
	assert.Equal(t, "PENDING", payload.Status)
}

func TestKafkaPublisher_Error(t *testing.T) {
	brokerErr := errors.New("leader not available")
	p := NewKafkaPublisher(&fakeSender{err: brokerErr}, "innkeep")

	err := p.BookingCreated(context.Background(), testBooking())
	assert.ErrorIs(t, err, brokerErr)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.BookingCreated(context.Background(), testBooking()))
}

func TestNotifier_Handle(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(logger.New(logger.Config{Level: "debug", Output: &buf, Service: "notifier"}))

	sender := &fakeSender{}
	require.NoError(t, NewKafkaPublisher(sender, "innkeep").BookingCreated(context.Background(), testBooking()))

	require.NoError(t, n.Handle(context.Background(), sender.sent[0]))
	assert.True(t, strings.Contains(buf.String(), "65a1b2c3d4e5f60718293a4d"))
}

func TestNotifier_Handle_Rejects(t *testing.T) {
	n := NewNotifier(logger.New(logger.Config{Level: "error", Output: &bytes.Buffer{}}))

	t.Run("other event types are skipped", func(t *testing.T) {
		msg := kafka.NewMessage().WithKey("k").WithRawValue([]byte("{}")).WithEventType("room.updated").Build()
		assert.NoError(t, n.Handle(context.Background(), msg))
	})

	t.Run("undecodable payload is permanent", func(t *testing.T) {
		msg := kafka.NewMessage().WithKey("k").WithRawValue([]byte("not json")).WithEventType(EventBookingCreated).Build()
		err := n.Handle(context.Background(), msg)
		assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
	})

	t.Run("missing booking id is permanent", func(t *testing.T) {
		msg := kafka.NewMessage().WithKey("k").WithRawValue([]byte(`{"roomId":"r"}`)).WithEventType(EventBookingCreated).Build()
		err := n.Handle(context.Background(), msg)
		assert.ErrorIs(t, err, kafka.ErrInvalidMessage)
	})
}
