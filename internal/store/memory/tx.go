package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"innkeep/internal/store"
	"innkeep/pkg/model"
)

var errTxDone = errors.New("transaction already finished")

// tx holds the lock of every room it touched and stages its writes until
// Commit.
type tx struct {
	s *Store

	mu          sync.Mutex
	locked      map[string]bool
	roomUpdates map[string]bool
	inserts     []*model.Booking
	done        bool
}

func (t *tx) active(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	return ctx.Err()
}

func (t *tx) holdRoom(ctx context.Context, roomID string) error {
	if t.locked[roomID] {
		return nil
	}
	if err := t.s.lockRoom(ctx, roomID); err != nil {
		return err
	}
	t.locked[roomID] = true
	return nil
}

func (t *tx) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return nil, err
	}
	if err := t.holdRoom(ctx, id); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	room, ok := t.s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, store.ErrNotFound)
	}
	out := cloneRoom(room)
	if available, staged := t.roomUpdates[id]; staged {
		out.Availability = available
	}
	return out, nil
}

func (t *tx) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	hotel, ok := t.s.hotels[id]
	if !ok {
		return nil, fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
	}
	return cloneHotel(hotel), nil
}

func (t *tx) FindBookingsOverlapping(ctx context.Context, roomID string, stay model.Stay) ([]*model.Booking, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return nil, err
	}

	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var out []*model.Booking
	for _, b := range t.s.byRoom[roomID] {
		if b.Stay().Overlaps(stay) {
			c := *b
			out = append(out, &c)
		}
	}
	for _, b := range t.inserts {
		if b.RoomID == roomID && b.Stay().Overlaps(stay) {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (t *tx) UpdateRoomAvailability(ctx context.Context, roomID string, available bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return err
	}
	if err := t.holdRoom(ctx, roomID); err != nil {
		return err
	}

	t.s.mu.RLock()
	_, ok := t.s.rooms[roomID]
	t.s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("room %s: %w", roomID, store.ErrNotFound)
	}

	t.roomUpdates[roomID] = available
	return nil
}

func (t *tx) InsertBooking(ctx context.Context, booking *model.Booking) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return err
	}

	c := *booking
	t.inserts = append(t.inserts, &c)
	return nil
}

// Commit re-checks every staged booking against committed ones before
// applying anything.
func (t *tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.active(ctx); err != nil {
		return err
	}
	defer t.finish()

	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range t.inserts {
		if _, exists := s.bookings[b.ID]; exists {
			return fmt.Errorf("booking %s: %w", b.ID, store.ErrConflict)
		}
		for _, existing := range s.byRoom[b.RoomID] {
			if existing.Stay().Overlaps(b.Stay()) {
				return fmt.Errorf("room %s %s: %w", b.RoomID, b.Stay(), store.ErrConflict)
			}
		}
		for _, other := range t.inserts[:i] {
			if other.RoomID == b.RoomID && other.Stay().Overlaps(b.Stay()) {
				return fmt.Errorf("room %s %s: %w", b.RoomID, b.Stay(), store.ErrConflict)
			}
		}
	}
	for roomID := range t.roomUpdates {
		if _, ok := s.rooms[roomID]; !ok {
			return fmt.Errorf("room %s: %w", roomID, store.ErrNotFound)
		}
	}

	for roomID, available := range t.roomUpdates {
		updated := cloneRoom(s.rooms[roomID])
		updated.Availability = available
		s.rooms[roomID] = updated
	}
	for _, b := range t.inserts {
		s.bookings[b.ID] = b
		s.byRoom[b.RoomID] = append(s.byRoom[b.RoomID], b)
	}
	return nil
}

func (t *tx) Abort(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *tx) finish() {
	t.done = true
	for roomID := range t.locked {
		t.s.unlockRoom(roomID)
	}
	t.locked = nil
	t.roomUpdates = nil
	t.inserts = nil
}
