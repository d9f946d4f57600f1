// Package postgres stores hotels, rooms and bookings in PostgreSQL through a
// pgx pool. Booking transactions lock the room row; an exclusion constraint
// on bookings rejects overlapping stays at commit.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"innkeep/internal/store"
	"innkeep/pkg/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	hotelColumns   = "id, name, location, room_ids"
	roomColumns    = "id, hotel_id, room_type, price, availability"
	bookingColumns = "id, user_id, hotel_id, room_id, check_in, check_out, total_price, is_paid, status, created_at"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	pgxTx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &tx{tx: pgxTx}, nil
}

func (s *Store) CreateHotel(ctx context.Context, hotel *model.Hotel) error {
	if hotel.Rooms == nil {
		hotel.Rooms = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO hotels (id, name, location, room_ids) VALUES ($1, $2, $3, $4)`,
		hotel.ID, hotel.Name, hotel.Location, hotel.Rooms)
	return mapError("failed to create hotel", err)
}

func (s *Store) FindHotel(ctx context.Context, id string) (*model.Hotel, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+hotelColumns+` FROM hotels WHERE id = $1`, id)
	hotel, err := scanHotel(row)
	if err != nil {
		return nil, mapError("failed to find hotel", err)
	}
	return hotel, nil
}

func (s *Store) ListHotels(ctx context.Context, page store.Page) ([]*model.Hotel, int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+hotelColumns+` FROM hotels ORDER BY id LIMIT $1 OFFSET $2`,
		limitArg(page), page.Offset)
	if err != nil {
		return nil, 0, mapError("failed to list hotels", err)
	}
	hotels, err := collect(rows, scanHotel)
	if err != nil {
		return nil, 0, mapError("failed to decode hotels", err)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM hotels`).Scan(&total); err != nil {
		return nil, 0, mapError("failed to count hotels", err)
	}
	return hotels, total, nil
}

func (s *Store) UpdateHotel(ctx context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE hotels SET
			name = COALESCE($2, name),
			location = COALESCE($3, location),
			room_ids = COALESCE($4, room_ids)
		WHERE id = $1
		RETURNING `+hotelColumns,
		id, update.Name, update.Location, update.Rooms)
	hotel, err := scanHotel(row)
	if err != nil {
		return nil, mapError("failed to update hotel", err)
	}
	return hotel, nil
}

// DeleteHotel relies on the rooms.hotel_id foreign key to refuse hotels that
// still have rooms.
func (s *Store) DeleteHotel(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if err != nil {
		return mapError("failed to delete hotel", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) CreateRoom(ctx context.Context, room *model.Room) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE hotels SET room_ids = array_append(room_ids, $2) WHERE id = $1`,
			room.HotelID, room.ID)
		if err != nil {
			return mapError("failed to attach room to hotel", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("hotel %s: %w", room.HotelID, store.ErrNotFound)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO rooms (`+roomColumns+`) VALUES ($1, $2, $3, $4, $5)`,
			room.ID, room.HotelID, string(room.RoomType), room.Price, room.Availability)
		return mapError("failed to create room", err)
	})
}

func (s *Store) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	room, err := scanRoom(row)
	if err != nil {
		return nil, mapError("failed to find room", err)
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context, filter model.RoomFilter, page store.Page) ([]*model.Room, int64, error) {
	where, args := roomWhere(filter)

	n := len(args)
	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM rooms%s ORDER BY id LIMIT $%d OFFSET $%d`, roomColumns, where, n+1, n+2),
		append(args, limitArg(page), page.Offset)...)
	if err != nil {
		return nil, 0, mapError("failed to list rooms", err)
	}
	rooms, err := collect(rows, scanRoom)
	if err != nil {
		return nil, 0, mapError("failed to decode rooms", err)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM rooms`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError("failed to count rooms", err)
	}
	return rooms, total, nil
}

func (s *Store) UpdateRoom(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	var roomType *string
	if update.RoomType != nil {
		rt := string(*update.RoomType)
		roomType = &rt
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE rooms SET
			room_type = COALESCE($2, room_type),
			price = COALESCE($3, price),
			availability = COALESCE($4, availability)
		WHERE id = $1
		RETURNING `+roomColumns,
		id, roomType, update.Price, update.Availability)
	room, err := scanRoom(row)
	if err != nil {
		return nil, mapError("failed to update room", err)
	}
	return room, nil
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var hotelID string
		var available bool
		err := tx.QueryRow(ctx, `SELECT hotel_id, availability FROM rooms WHERE id = $1 FOR UPDATE`, id).
			Scan(&hotelID, &available)
		if err != nil {
			return mapError("failed to find room", err)
		}
		if !available {
			return fmt.Errorf("room %s: %w", id, store.ErrInUse)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
			return mapError("failed to delete room", err)
		}
		_, err = tx.Exec(ctx, `UPDATE hotels SET room_ids = array_remove(room_ids, $2) WHERE id = $1`, hotelID, id)
		return mapError("failed to detach room from hotel", err)
	})
}

func (s *Store) FindBooking(ctx context.Context, id string) (*model.Booking, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	booking, err := scanBooking(row)
	if err != nil {
		return nil, mapError("failed to find booking", err)
	}
	return booking, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool belongs to pkg/client.
func (s *Store) Close(context.Context) error {
	return nil
}

// limitArg maps an unbounded page to NULL, which Postgres reads as no limit.
func limitArg(page store.Page) *int {
	if page.Limit <= 0 {
		return nil
	}
	return &page.Limit
}

// roomWhere builds the WHERE clause for a filter with positional arguments
// starting at $1.
func roomWhere(filter model.RoomFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.HotelID != "" {
		args = append(args, filter.HotelID)
		conds = append(conds, fmt.Sprintf("hotel_id = $%d", len(args)))
	}
	if filter.RoomType != "" {
		args = append(args, string(filter.RoomType))
		conds = append(conds, fmt.Sprintf("room_type = $%d", len(args)))
	}
	if filter.Available != nil {
		args = append(args, *filter.Available)
		conds = append(conds, fmt.Sprintf("availability = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func scanHotel(row pgx.Row) (*model.Hotel, error) {
	var h model.Hotel
	if err := row.Scan(&h.ID, &h.Name, &h.Location, &h.Rooms); err != nil {
		return nil, err
	}
	if h.Rooms == nil {
		h.Rooms = []string{}
	}
	return &h, nil
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var r model.Room
	var roomType string
	if err := row.Scan(&r.ID, &r.HotelID, &roomType, &r.Price, &r.Availability); err != nil {
		return nil, err
	}
	r.RoomType = model.RoomType(roomType)
	return &r, nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	var status string
	err := row.Scan(&b.ID, &b.UserID, &b.HotelID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate,
		&b.TotalPrice, &b.IsPaid, &status, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	b.CheckInDate = b.CheckInDate.UTC()
	b.CheckOutDate = b.CheckOutDate.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	return &b, nil
}
