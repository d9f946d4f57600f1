// Package mongo stores hotels, rooms and bookings in MongoDB. Booking
// transactions use explicit sessions and claim each booked night in the
// Room_nights collection so overlapping commits collide on its _id.
package mongo

import (
	"context"
	"fmt"
	"time"

	"innkeep/internal/store"
	mongotx "innkeep/pkg/db/mongo"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	HotelsCollection     = "Hotels"
	RoomsCollection      = "Rooms"
	BookingsCollection   = "Bookings"
	RoomNightsCollection = "Room_nights"
)

type Options struct {
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxCommitTime time.Duration
}

type Store struct {
	client     *mongo.Client
	hotels     *mongo.Collection
	rooms      *mongo.Collection
	bookings   *mongo.Collection
	roomNights *mongo.Collection
	txManager  mongotx.TransactionManager
	opts       Options
}

var _ store.Store = (*Store)(nil)

func New(client *mongo.Client, databaseName string, opts Options) *Store {
	db := client.Database(databaseName)
	return &Store{
		client:     client,
		hotels:     db.Collection(HotelsCollection),
		rooms:      db.Collection(RoomsCollection),
		bookings:   db.Collection(BookingsCollection),
		roomNights: db.Collection(RoomNightsCollection),
		txManager:  mongotx.NewTransactionManager(client, opts.MaxCommitTime),
		opts:       opts,
	}
}

// withTimeout bounds ctx by timeout unless it is a session context, which
// cannot be wrapped without losing the transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok || timeout <= 0 {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Store) Begin(ctx context.Context) (store.Tx, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	if err := session.StartTransaction(mongotx.TransactionOptions(s.opts.MaxCommitTime)); err != nil {
		session.EndSession(ctx)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	return &tx{s: s, session: session}, nil
}

func (s *Store) CreateHotel(ctx context.Context, hotel *model.Hotel) error {
	ctx, cancel := withTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	if hotel.Rooms == nil {
		hotel.Rooms = []string{}
	}
	_, err := s.hotels.InsertOne(ctx, hotel)
	return mapError("failed to create hotel", err)
}

func (s *Store) FindHotel(ctx context.Context, id string) (*model.Hotel, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	var hotel model.Hotel
	if err := s.hotels.FindOne(ctx, bson.M{"_id": id}).Decode(&hotel); err != nil {
		return nil, mapError("failed to find hotel", err)
	}
	return &hotel, nil
}

func (s *Store) ListHotels(ctx context.Context, page store.Page) ([]*model.Hotel, int64, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	cursor, err := s.hotels.Find(ctx, bson.M{}, findOptions(page))
	if err != nil {
		return nil, 0, mapError("failed to list hotels", err)
	}
	defer cursor.Close(ctx)

	hotels := []*model.Hotel{}
	if err := cursor.All(ctx, &hotels); err != nil {
		return nil, 0, mapError("failed to decode hotels", err)
	}

	total, err := s.hotels.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mapError("failed to count hotels", err)
	}
	return hotels, total, nil
}

func (s *Store) UpdateHotel(ctx context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error) {
	ctx, cancel := withTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	var hotel model.Hotel
	err := s.hotels.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": hotelSetDoc(update)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&hotel)
	if err != nil {
		return nil, mapError("failed to update hotel", err)
	}
	return &hotel, nil
}

func (s *Store) DeleteHotel(ctx context.Context, id string) error {
	return s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		rooms, err := s.rooms.CountDocuments(sc, bson.M{"hotelId": id}, options.Count().SetLimit(1))
		if err != nil {
			return mapError("failed to count hotel rooms", err)
		}
		if rooms > 0 {
			return fmt.Errorf("hotel %s: %w", id, store.ErrInUse)
		}

		res, err := s.hotels.DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return mapError("failed to delete hotel", err)
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("hotel %s: %w", id, store.ErrNotFound)
		}
		return nil
	})
}

// CreateRoom inserts the room and pushes its id onto the hotel in one
// transaction.
func (s *Store) CreateRoom(ctx context.Context, room *model.Room) error {
	return s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		res, err := s.hotels.UpdateOne(sc, bson.M{"_id": room.HotelID}, bson.M{"$push": bson.M{"rooms": room.ID}})
		if err != nil {
			return mapError("failed to attach room to hotel", err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("hotel %s: %w", room.HotelID, store.ErrNotFound)
		}

		if _, err := s.rooms.InsertOne(sc, room); err != nil {
			return mapError("failed to create room", err)
		}
		return nil
	})
}

func (s *Store) FindRoom(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	var room model.Room
	if err := s.rooms.FindOne(ctx, bson.M{"_id": id}).Decode(&room); err != nil {
		return nil, mapError("failed to find room", err)
	}
	return &room, nil
}

func (s *Store) ListRooms(ctx context.Context, filter model.RoomFilter, page store.Page) ([]*model.Room, int64, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	query := roomFilterDoc(filter)
	cursor, err := s.rooms.Find(ctx, query, findOptions(page))
	if err != nil {
		return nil, 0, mapError("failed to list rooms", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, 0, mapError("failed to decode rooms", err)
	}

	total, err := s.rooms.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, mapError("failed to count rooms", err)
	}
	return rooms, total, nil
}

func (s *Store) UpdateRoom(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	ctx, cancel := withTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	var room model.Room
	err := s.rooms.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": roomSetDoc(update)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&room)
	if err != nil {
		return nil, mapError("failed to update room", err)
	}
	return &room, nil
}

// DeleteRoom only removes an available room; the availability condition is
// part of the delete filter so a concurrent booking cannot slip in between.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	return s.txManager.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		var room model.Room
		if err := s.rooms.FindOne(sc, bson.M{"_id": id}).Decode(&room); err != nil {
			return mapError("failed to find room", err)
		}

		res, err := s.rooms.DeleteOne(sc, bson.M{"_id": id, "availability": true})
		if err != nil {
			return mapError("failed to delete room", err)
		}
		if res.DeletedCount == 0 {
			return fmt.Errorf("room %s: %w", id, store.ErrInUse)
		}

		if _, err := s.hotels.UpdateOne(sc, bson.M{"_id": room.HotelID}, bson.M{"$pull": bson.M{"rooms": id}}); err != nil {
			return mapError("failed to detach room from hotel", err)
		}
		return nil
	})
}

func (s *Store) FindBooking(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, s.opts.ReadTimeout)
	defer cancel()

	var booking model.Booking
	if err := s.bookings.FindOne(ctx, bson.M{"_id": id}).Decode(&booking); err != nil {
		return nil, mapError("failed to find booking", err)
	}
	return &booking, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close is a no-op; the client belongs to pkg/client.
func (s *Store) Close(context.Context) error {
	return nil
}

func findOptions(page store.Page) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if page.Limit > 0 {
		opts.SetLimit(int64(page.Limit)).SetSkip(page.Offset)
	}
	return opts
}

func hotelSetDoc(update *model.HotelUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Rooms != nil {
		set["rooms"] = update.Rooms
	}
	return set
}

func roomSetDoc(update *model.RoomUpdate) bson.M {
	set := bson.M{}
	if update.RoomType != nil {
		set["roomType"] = *update.RoomType
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Availability != nil {
		set["availability"] = *update.Availability
	}
	return set
}

func roomFilterDoc(filter model.RoomFilter) bson.M {
	query := bson.M{}
	if filter.HotelID != "" {
		query["hotelId"] = filter.HotelID
	}
	if filter.RoomType != "" {
		query["roomType"] = filter.RoomType
	}
	if filter.Available != nil {
		query["availability"] = *filter.Available
	}
	return query
}

// overlapFilter matches bookings of roomID whose half-open range intersects
// stay.
func overlapFilter(roomID string, stay model.Stay) bson.M {
	return bson.M{
		"roomId":       roomID,
		"checkInDate":  bson.M{"$lt": stay.CheckOut},
		"checkOutDate": bson.M{"$gt": stay.CheckIn},
	}
}
