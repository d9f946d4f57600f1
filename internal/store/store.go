// Package store defines the persistence contract shared by the mongo,
// postgres and memory backends.
package store

import (
	"context"
	"errors"

	"innkeep/pkg/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("conflicting write")
	ErrInUse     = errors.New("record still referenced")
	ErrInvalidID = errors.New("invalid id")

	// ErrBusy reports a transaction that lost a write race to a concurrent
	// one. Unlike ErrConflict it says nothing about the data, so the whole
	// transaction can be run again.
	ErrBusy = errors.New("concurrent transaction in progress")
)

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int64
}

// Store is the entry point of a backend. CRUD methods run in their own
// implicit transaction; Begin opens an explicit one for the booking path.
type Store interface {
	Begin(ctx context.Context) (Tx, error)

	CreateHotel(ctx context.Context, hotel *model.Hotel) error
	FindHotel(ctx context.Context, id string) (*model.Hotel, error)
	ListHotels(ctx context.Context, page Page) ([]*model.Hotel, int64, error)
	// UpdateHotel returns the hotel after the update.
	UpdateHotel(ctx context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error)
	// DeleteHotel returns ErrInUse while any room references the hotel.
	DeleteHotel(ctx context.Context, id string) error

	// CreateRoom returns ErrNotFound when the hotel does not exist and
	// appends the room id to the hotel's room list.
	CreateRoom(ctx context.Context, room *model.Room) error
	FindRoom(ctx context.Context, id string) (*model.Room, error)
	ListRooms(ctx context.Context, filter model.RoomFilter, page Page) ([]*model.Room, int64, error)
	UpdateRoom(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	// DeleteRoom returns ErrInUse when the room is not available and
	// removes the room id from its hotel's room list.
	DeleteRoom(ctx context.Context, id string) error

	FindBooking(ctx context.Context, id string) (*model.Booking, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is one all-or-nothing unit of work. Every call must use the context
// the transaction was begun with, or one derived from it. Abort after Commit
// is a no-op, so callers can always defer it.
type Tx interface {
	FindRoomByID(ctx context.Context, id string) (*model.Room, error)
	FindHotelByID(ctx context.Context, id string) (*model.Hotel, error)
	FindBookingsOverlapping(ctx context.Context, roomID string, stay model.Stay) ([]*model.Booking, error)
	UpdateRoomAvailability(ctx context.Context, roomID string, available bool) error
	InsertBooking(ctx context.Context, booking *model.Booking) error

	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
}
