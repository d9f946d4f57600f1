// Package memory is an in-process store used for tests and local runs.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"innkeep/internal/store"
	"innkeep/pkg/model"
)

type Store struct {
	mu       sync.RWMutex
	hotels   map[string]*model.Hotel
	rooms    map[string]*model.Room
	bookings map[string]*model.Booking
	byRoom   map[string][]*model.Booking

	locksMu   sync.Mutex
	roomLocks map[string]chan struct{}
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		hotels:    make(map[string]*model.Hotel),
		rooms:     make(map[string]*model.Room),
		bookings:  make(map[string]*model.Booking),
		byRoom:    make(map[string][]*model.Booking),
		roomLocks: make(map[string]chan struct{}),
	}
}

// lockRoom serialises writers of one room. It gives up when ctx is done.
func (s *Store) lockRoom(ctx context.Context, roomID string) error {
	s.locksMu.Lock()
	ch, ok := s.roomLocks[roomID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.roomLocks[roomID] = ch
	}
	s.locksMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for room %s: %w", roomID, ctx.Err())
	}
}

func (s *Store) unlockRoom(roomID string) {
	s.locksMu.Lock()
	ch := s.roomLocks[roomID]
	s.locksMu.Unlock()
	<-ch
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &tx{
		s:           s,
		locked:      make(map[string]bool),
		roomUpdates: make(map[string]bool),
	}, nil
}

func (s *Store) CreateHotel(_ context.Context, hotel *model.Hotel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.hotels[hotel.ID]; exists {
		return fmt.Errorf("hotel %s: %w", hotel.ID, store.ErrConflict)
	}
	if hotel.Rooms == nil {
		hotel.Rooms = []string{}
	}
	s.hotels[hotel.ID] = cloneHotel(hotel)
	return nil
}

func (s *Store) FindHotel(_ context.Context, id string) (*model.Hotel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hotel, ok := s.hotels[id]
	if !ok {
		return nil, fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
	}
	return cloneHotel(hotel), nil
}

func (s *Store) ListHotels(_ context.Context, page store.Page) ([]*model.Hotel, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*model.Hotel, 0, len(s.hotels))
	for _, h := range s.hotels {
		all = append(all, h)
	}
	slices.SortFunc(all, func(a, b *model.Hotel) int { return cmp.Compare(a.ID, b.ID) })

	window := paginate(all, page)
	out := make([]*model.Hotel, len(window))
	for i, h := range window {
		out[i] = cloneHotel(h)
	}
	return out, int64(len(all)), nil
}

func (s *Store) UpdateHotel(_ context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hotel, ok := s.hotels[id]
	if !ok {
		return nil, fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
	}
	updated := cloneHotel(hotel)
	update.Apply(updated)
	s.hotels[id] = updated
	return cloneHotel(updated), nil
}

func (s *Store) DeleteHotel(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hotels[id]; !ok {
		return fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
	}
	for _, r := range s.rooms {
		if r.HotelID == id {
			return fmt.Errorf("hotel %s: %w", id, store.ErrInUse)
		}
	}
	delete(s.hotels, id)
	return nil
}

func (s *Store) CreateRoom(_ context.Context, room *model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hotel, ok := s.hotels[room.HotelID]
	if !ok {
		return fmt.Errorf("hotel %s: %w", room.HotelID, store.ErrNotFound)
	}
	if _, exists := s.rooms[room.ID]; exists {
		return fmt.Errorf("room %s: %w", room.ID, store.ErrConflict)
	}

	s.rooms[room.ID] = cloneRoom(room)
	updated := cloneHotel(hotel)
	updated.Rooms = append(updated.Rooms, room.ID)
	s.hotels[hotel.ID] = updated
	return nil
}

func (s *Store) FindRoom(_ context.Context, id string) (*model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, store.ErrNotFound)
	}
	return cloneRoom(room), nil
}

func (s *Store) ListRooms(_ context.Context, filter model.RoomFilter, page store.Page) ([]*model.Room, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.Room
	for _, r := range s.rooms {
		if filter.Matches(r) {
			matched = append(matched, r)
		}
	}
	slices.SortFunc(matched, func(a, b *model.Room) int { return cmp.Compare(a.ID, b.ID) })

	window := paginate(matched, page)
	out := make([]*model.Room, len(window))
	for i, r := range window {
		out[i] = cloneRoom(r)
	}
	return out, int64(len(matched)), nil
}

// UpdateRoom waits for any booking transaction holding the room.
func (s *Store) UpdateRoom(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if err := s.lockRoom(ctx, id); err != nil {
		return nil, err
	}
	defer s.unlockRoom(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, store.ErrNotFound)
	}
	updated := cloneRoom(room)
	update.Apply(updated)
	s.rooms[id] = updated
	return cloneRoom(updated), nil
}

func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	if err := s.lockRoom(ctx, id); err != nil {
		return err
	}
	defer s.unlockRoom(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return fmt.Errorf("room %s: %w", id, store.ErrNotFound)
	}
	if !room.Availability {
		return fmt.Errorf("room %s: %w", id, store.ErrInUse)
	}

	delete(s.rooms, id)
	if hotel, ok := s.hotels[room.HotelID]; ok {
		updated := cloneHotel(hotel)
		updated.Rooms = slices.DeleteFunc(updated.Rooms, func(rid string) bool { return rid == id })
		s.hotels[hotel.ID] = updated
	}
	return nil
}

func (s *Store) FindBooking(_ context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, store.ErrNotFound)
	}
	b := *booking
	return &b, nil
}

// Bookings lists every committed booking of a room, oldest first.
func (s *Store) Bookings(roomID string) []*model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Booking, len(s.byRoom[roomID]))
	for i, b := range s.byRoom[roomID] {
		c := *b
		out[i] = &c
	}
	return out
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close(context.Context) error {
	return nil
}

func paginate[T any](items []T, page store.Page) []T {
	if page.Limit <= 0 {
		return items
	}
	start := min(int(page.Offset), len(items))
	end := min(start+page.Limit, len(items))
	return items[start:end]
}

func cloneHotel(h *model.Hotel) *model.Hotel {
	c := *h
	c.Rooms = slices.Clone(h.Rooms)
	if c.Rooms == nil {
		c.Rooms = []string{}
	}
	return &c
}

func cloneRoom(r *model.Room) *model.Room {
	c := *r
	if r.Price != nil {
		price := *r.Price
		c.Price = &price
	}
	return &c
}
