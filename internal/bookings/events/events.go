// Package events announces committed bookings on Kafka and decodes them on
// the consuming side.
package events

import (
	"context"
	"fmt"
	"time"

	"innkeep/pkg/kafka"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
)

const (
	EventBookingCreated = "booking.created"
	SchemaVersion       = "1"
)

// BookingCreated is the payload of a booking.created event.
type BookingCreated struct {
	BookingID    string    `json:"bookingId"`
	UserID       string    `json:"userId"`
	HotelID      string    `json:"hotelId"`
	RoomID       string    `json:"roomId"`
	CheckInDate  string    `json:"checkInDate"`
	CheckOutDate string    `json:"checkOutDate"`
	TotalPrice   float64   `json:"totalPrice"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewBookingCreated(b *model.Booking) BookingCreated {
	return BookingCreated{
		BookingID:    b.ID,
		UserID:       b.UserID,
		HotelID:      b.HotelID,
		RoomID:       b.RoomID,
		CheckInDate:  model.FormatDate(b.CheckInDate),
		CheckOutDate: model.FormatDate(b.CheckOutDate),
		TotalPrice:   b.TotalPrice,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt,
	}
}

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
}

// NopPublisher drops every event. It is used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) BookingCreated(context.Context, *model.Booking) error { return nil }

// Sender is satisfied by *kafka.Producer.
type Sender interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	sender Sender
	source string
}

func NewKafkaPublisher(sender Sender, source string) *KafkaPublisher {
	return &KafkaPublisher{sender: sender, source: source}
}

// BookingCreated keys the message by room so events of one room stay ordered.
func (p *KafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg := kafka.NewMessage().
		WithKey(booking.RoomID).
		WithValue(NewBookingCreated(booking)).
		WithEventType(EventBookingCreated).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		Build()

	if err := p.sender.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s for booking %s: %w", EventBookingCreated, booking.ID, err)
	}
	return nil
}

// Notifier handles booking.created events. The current sink is the log.
type Notifier struct {
	log *logger.Logger
}

func NewNotifier(log *logger.Logger) *Notifier {
	return &Notifier{log: log}
}

// Handle skips unrelated event types and rejects payloads that cannot be
// decoded as permanent failures.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != EventBookingCreated {
		n.log.Debug("Skipping unrelated event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
		return nil
	}

	var event BookingCreated
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err).
			WithDetail("event_id", msg.GetEventID())
	}
	if event.BookingID == "" {
		return kafka.NewPermanentError("booking event without booking id", kafka.ErrInvalidMessage)
	}

	n.log.WithContext(logger.ContextWithRequestID(ctx, msg.GetCorrelationID())).Info("Booking confirmation queued",
		"booking_id", event.BookingID,
		"user_id", event.UserID,
		"room_id", event.RoomID,
		"check_in", event.CheckInDate,
		"check_out", event.CheckOutDate,
		"total_price", event.TotalPrice,
	)
	return nil
}
