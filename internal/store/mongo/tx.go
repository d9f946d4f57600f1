package mongo

import (
	"context"
	"fmt"
	"time"

	"innkeep/internal/store"
	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// nightClaim reserves one whole day of one room. The deterministic _id makes
// a second claim on the same day fail with a duplicate key error. Stays that
// only share part of a day collide on the room document instead.
type nightClaim struct {
	ID        string    `bson:"_id"`
	RoomID    string    `bson:"roomId"`
	BookingID string    `bson:"bookingId"`
	Night     time.Time `bson:"night"`
	CreatedAt time.Time `bson:"createdAt"`
}

func nightClaimID(roomID string, night time.Time) string {
	return roomID + ":" + night.Format(model.DateLayout)
}

func nightClaims(booking *model.Booking) []any {
	nights := booking.Stay().WholeDays()
	claims := make([]any, len(nights))
	for i, night := range nights {
		claims[i] = nightClaim{
			ID:        nightClaimID(booking.RoomID, night),
			RoomID:    booking.RoomID,
			BookingID: booking.ID,
			Night:     night,
			CreatedAt: booking.CreatedAt,
		}
	}
	return claims
}

type tx struct {
	s       *Store
	session mongo.Session
	done    bool
}

func (t *tx) sc(ctx context.Context) mongo.SessionContext {
	return mongo.NewSessionContext(ctx, t.session)
}

func (t *tx) FindRoomByID(ctx context.Context, id string) (*model.Room, error) {
	var room model.Room
	if err := t.s.rooms.FindOne(t.sc(ctx), bson.M{"_id": id}).Decode(&room); err != nil {
		return nil, mapError(fmt.Sprintf("failed to find room %s", id), err)
	}
	return &room, nil
}

func (t *tx) FindHotelByID(ctx context.Context, id string) (*model.Hotel, error) {
	var hotel model.Hotel
	if err := t.s.hotels.FindOne(t.sc(ctx), bson.M{"_id": id}).Decode(&hotel); err != nil {
		return nil, mapError(fmt.Sprintf("failed to find hotel %s", id), err)
	}
	return &hotel, nil
}

func (t *tx) FindBookingsOverlapping(ctx context.Context, roomID string, stay model.Stay) ([]*model.Booking, error) {
	sc := t.sc(ctx)
	cursor, err := t.s.bookings.Find(sc, overlapFilter(roomID, stay))
	if err != nil {
		return nil, mapError("failed to query overlapping bookings", err)
	}
	defer cursor.Close(sc)

	var bookings []*model.Booking
	if err := cursor.All(sc, &bookings); err != nil {
		return nil, mapError("failed to decode overlapping bookings", err)
	}
	return bookings, nil
}

// UpdateRoomAvailability writes the room document, so two transactions
// booking the same room conflict on it even before their night claims do.
func (t *tx) UpdateRoomAvailability(ctx context.Context, roomID string, available bool) error {
	res, err := t.s.rooms.UpdateOne(t.sc(ctx), bson.M{"_id": roomID}, bson.M{"$set": bson.M{"availability": available}})
	if err != nil {
		return mapError("failed to update room availability", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("room %s: %w", roomID, store.ErrNotFound)
	}
	return nil
}

func (t *tx) InsertBooking(ctx context.Context, booking *model.Booking) error {
	sc := t.sc(ctx)
	if _, err := t.s.bookings.InsertOne(sc, booking); err != nil {
		return mapError("failed to insert booking", err)
	}
	if claims := nightClaims(booking); len(claims) > 0 {
		if _, err := t.s.roomNights.InsertMany(sc, claims); err != nil {
			return mapError("failed to claim room nights", err)
		}
	}
	return nil
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	err := t.session.CommitTransaction(ctx)
	if err != nil {
		// The caller's deferred Abort ends the session.
		return mapError("failed to commit booking transaction", err)
	}
	t.done = true
	t.session.EndSession(ctx)
	return nil
}

func (t *tx) Abort(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.session.EndSession(ctx)

	if err := t.session.AbortTransaction(ctx); err != nil {
		return fmt.Errorf("failed to abort booking transaction: %w", err)
	}
	return nil
}
