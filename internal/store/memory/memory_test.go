package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"innkeep/internal/store"
	"innkeep/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func stay(in, out string) model.Stay {
	return model.NewStay(day(in), day(out))
}

func price(v float64) *float64 { return &v }

func seed(t *testing.T, s *Store) (*model.Hotel, *model.Room) {
	t.Helper()
	ctx := context.Background()

	hotel := &model.Hotel{ID: model.NewID(), Name: "Harbor Inn", Location: "Lisbon"}
	require.NoError(t, s.CreateHotel(ctx, hotel))

	room := &model.Room{ID: model.NewID(), HotelID: hotel.ID, RoomType: model.RoomTypeDouble, Price: price(100), Availability: true}
	require.NoError(t, s.CreateRoom(ctx, room))
	return hotel, room
}

func booking(room *model.Room, st model.Stay) *model.Booking {
	return &model.Booking{
		ID:           model.NewID(),
		UserID:       model.NewID(),
		HotelID:      room.HotelID,
		RoomID:       room.ID,
		CheckInDate:  st.CheckIn,
		CheckOutDate: st.CheckOut,
		Status:       model.BookingStatusPending,
	}
}

func TestCreateRoom_MaintainsHotelRooms(t *testing.T) {
	s := New()
	ctx := context.Background()
	hotel, room := seed(t, s)

	got, err := s.FindHotel(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{room.ID}, got.Rooms)

	err = s.CreateRoom(ctx, &model.Room{ID: model.NewID(), HotelID: model.NewID(), RoomType: model.RoomTypeSingle})
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteRoom(ctx, room.ID))
	got, err = s.FindHotel(ctx, hotel.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Rooms)
}

func TestDeleteRoom_RefusesUnavailable(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	unavailable := false
	_, err := s.UpdateRoom(ctx, room.ID, &model.RoomUpdate{Availability: &unavailable})
	require.NoError(t, err)

	assert.ErrorIs(t, s.DeleteRoom(ctx, room.ID), store.ErrInUse)
	_, err = s.FindRoom(ctx, room.ID)
	assert.NoError(t, err, "refused delete leaves the room in place")

	assert.ErrorIs(t, s.DeleteRoom(ctx, model.NewID()), store.ErrNotFound)
}

func TestDeleteHotel_RefusesWhileRoomsExist(t *testing.T) {
	s := New()
	ctx := context.Background()
	hotel, room := seed(t, s)

	assert.ErrorIs(t, s.DeleteHotel(ctx, hotel.ID), store.ErrInUse)

	require.NoError(t, s.DeleteRoom(ctx, room.ID))
	require.NoError(t, s.DeleteHotel(ctx, hotel.ID))
	_, err := s.FindHotel(ctx, hotel.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListRooms_FilterAndPage(t *testing.T) {
	s := New()
	ctx := context.Background()
	hotel, _ := seed(t, s)

	for _, rt := range []model.RoomType{model.RoomTypeSingle, model.RoomTypeSuite, model.RoomTypeSuite} {
		require.NoError(t, s.CreateRoom(ctx, &model.Room{ID: model.NewID(), HotelID: hotel.ID, RoomType: rt, Price: price(50), Availability: true}))
	}

	suites, total, err := s.ListRooms(ctx, model.RoomFilter{RoomType: model.RoomTypeSuite}, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, suites, 2)

	page, total, err := s.ListRooms(ctx, model.RoomFilter{HotelID: hotel.ID}, store.Page{Limit: 2, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, page, 1)
}

func TestUpdateHotel(t *testing.T) {
	s := New()
	ctx := context.Background()
	hotel, _ := seed(t, s)

	name := "Harbor Inn & Spa"
	got, err := s.UpdateHotel(ctx, hotel.ID, &model.HotelUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.Name)
	assert.Equal(t, "Lisbon", got.Location)

	_, err = s.UpdateHotel(ctx, model.NewID(), &model.HotelUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTx_CommitAppliesWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Abort(ctx)

	_, err = tx.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	require.NoError(t, tx.UpdateRoomAvailability(ctx, room.ID, false))
	b := booking(room, stay("2030-01-10", "2030-01-15"))
	require.NoError(t, tx.InsertBooking(ctx, b))

	// Nothing is visible before commit.
	got, err := s.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.Availability)
	_, err = s.FindBooking(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, tx.Abort(ctx), "abort after commit is a no-op")

	got, err = s.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.Availability)
	stored, err := s.FindBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.RoomID, stored.RoomID)
}

func TestTx_AbortDiscardsWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	require.NoError(t, tx.UpdateRoomAvailability(ctx, room.ID, false))
	require.NoError(t, tx.InsertBooking(ctx, booking(room, stay("2030-01-10", "2030-01-15"))))
	require.NoError(t, tx.Abort(ctx))

	got, err := s.FindRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, got.Availability)
	assert.Empty(t, s.Bookings(room.ID))

	// The room lock was released.
	next, err := s.Begin(ctx)
	require.NoError(t, err)
	defer next.Abort(ctx)
	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err = next.FindRoomByID(lockCtx, room.ID)
	assert.NoError(t, err)
}

func TestTx_FindBookingsOverlapping(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertBooking(ctx, booking(room, stay("2030-01-10", "2030-01-15"))))
	require.NoError(t, tx.Commit(ctx))

	tests := []struct {
		name string
		stay model.Stay
		want int
	}{
		{"inside", stay("2030-01-11", "2030-01-12"), 1},
		{"back to back after", stay("2030-01-15", "2030-01-18"), 0},
		{"back to back before", stay("2030-01-05", "2030-01-10"), 0},
		{"straddles start", stay("2030-01-08", "2030-01-11"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := s.Begin(ctx)
			require.NoError(t, err)
			defer tx.Abort(ctx)

			got, err := tx.FindBookingsOverlapping(ctx, room.ID, tt.stay)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestTx_CommitRejectsOverlap(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	first, err := s.Begin(ctx)
	require.NoError(t, err)
	second, err := s.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, first.InsertBooking(ctx, booking(room, stay("2030-03-01", "2030-03-05"))))
	require.NoError(t, second.InsertBooking(ctx, booking(room, stay("2030-03-04", "2030-03-06"))))

	require.NoError(t, first.Commit(ctx))
	err = second.Commit(ctx)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Len(t, s.Bookings(room.ID), 1)
}

func TestTx_RoomLockRespectsDeadline(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = holder.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)

	waiter, err := s.Begin(ctx)
	require.NoError(t, err)
	defer waiter.Abort(ctx)

	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = waiter.FindRoomByID(shortCtx, room.ID)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)

	require.NoError(t, holder.Abort(ctx))
}

func TestTx_DifferentRoomsDoNotBlock(t *testing.T) {
	s := New()
	ctx := context.Background()
	hotel, room := seed(t, s)
	other := &model.Room{ID: model.NewID(), HotelID: hotel.ID, RoomType: model.RoomTypeSingle, Price: price(80), Availability: true}
	require.NoError(t, s.CreateRoom(ctx, other))

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	defer holder.Abort(ctx)
	_, err = holder.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Abort(ctx)
	shortCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err = tx.FindRoomByID(shortCtx, other.ID)
	assert.NoError(t, err)
}

func TestTx_ConcurrentSameRoom(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, room := seed(t, s)
	requested := stay("2030-05-01", "2030-05-04")

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.Begin(ctx)
			if err != nil {
				return
			}
			defer tx.Abort(ctx)

			if _, err := tx.FindRoomByID(ctx, room.ID); err != nil {
				return
			}
			existing, err := tx.FindBookingsOverlapping(ctx, room.ID, requested)
			if err != nil || len(existing) > 0 {
				return
			}
			if err := tx.InsertBooking(ctx, booking(room, requested)); err != nil {
				return
			}
			if err := tx.Commit(ctx); err == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, committed)
	assert.Len(t, s.Bookings(room.ID), 1)
}
