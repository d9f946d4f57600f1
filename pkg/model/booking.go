package model

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var bookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelled,
	BookingStatusCompleted,
}

func AllBookingStatuses() []BookingStatus {
	return slices.Clone(bookingStatuses)
}

func (s BookingStatus) Valid() bool {
	return slices.Contains(bookingStatuses, s)
}

type Booking struct {
	ID           string        `json:"id" bson:"_id"`
	UserID       string        `json:"userId" bson:"userId"`
	HotelID      string        `json:"hotelId" bson:"hotelId"`
	RoomID       string        `json:"roomId" bson:"roomId"`
	CheckInDate  time.Time     `json:"checkInDate" bson:"checkInDate"`
	CheckOutDate time.Time     `json:"checkOutDate" bson:"checkOutDate"`
	TotalPrice   float64       `json:"totalPrice" bson:"totalPrice"`
	IsPaid       bool          `json:"isPaid" bson:"isPaid"`
	Status       BookingStatus `json:"status" bson:"status"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
}

func (b *Booking) Stay() Stay {
	return NewStay(b.CheckInDate, b.CheckOutDate)
}

// BookingRequest is the client payload for a new reservation. Dates stay as
// strings until the validator has parsed them.
type BookingRequest struct {
	HotelID      string `json:"hotelId" validate:"required,mongodb"`
	RoomID       string `json:"roomId" validate:"required,mongodb"`
	CheckInDate  string `json:"checkInDate" validate:"required,isodate"`
	CheckOutDate string `json:"checkOutDate" validate:"required,isodate"`
}

// Actor identifies who is acting on a request.
type Actor struct {
	UserID string
}
