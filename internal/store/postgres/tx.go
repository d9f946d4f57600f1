package postgres

import (
	"context"
	"errors"
	"fmt"

	"innkeep/internal/store"
	"innkeep/pkg/model"

	"github.com/jackc/pgx/v5"
)

type tx struct {
	tx pgx.Tx
}

// FindRoomByID locks the room row until the transaction ends, which
// serialises bookings of the same room.
func (t *tx) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id)
	room, err := scanRoom(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to find room %s", id), err)
	}
	return room, nil
}

func (t *tx) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = $1 FOR SHARE`, id)
	hotel, err := scanHotel(row)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to find hotel %s", id), err)
	}
	return hotel, nil
}

func (t *tx) FindBookingsOverlapping(ctx context.Context, roomID string, stay model.Stay) ([]*model.Booking, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE room_id = $1 AND check_in < $3 AND check_out > $2`,
		roomID, stay.CheckIn, stay.CheckOut)
	if err != nil {
		return nil, mapError("failed to query overlapping bookings", err)
	}
	bookings, err := collect(rows, scanBooking)
	if err != nil {
		return nil, mapError("failed to decode overlapping bookings", err)
	}
	return bookings, nil
}

func (t *tx) UpdateRoomAvailability(ctx context.Context, roomID string, available bool) error {
	tag, err := t.tx.Exec(ctx, `UPDATE rooms SET availability = $2 WHERE id = $1`, roomID, available)
	if err != nil {
		return mapError("failed to update room availability", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("room %s: %w", roomID, store.ErrNotFound)
	}
	return nil
}

func (t *tx) InsertBooking(ctx context.Context, b *model.Booking) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO bookings (`+bookingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.UserID, b.HotelID, b.RoomID, b.CheckInDate, b.CheckOutDate,
		b.TotalPrice, b.IsPaid, string(b.Status), b.CreatedAt)
	return mapError("failed to insert booking", err)
}

func (t *tx) Commit(ctx context.Context) error {
	return mapError("failed to commit booking transaction", t.tx.Commit(ctx))
}

func (t *tx) Abort(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to abort booking transaction: %w", err)
	}
	return nil
}
