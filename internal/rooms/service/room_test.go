package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"innkeep/internal/rooms/validator"
	"innkeep/internal/store/memory"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
	"innkeep/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem   *memory.Store
	svc   RoomService
	hotel *model.Hotel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	mem := memory.New()

	hotel := &model.Hotel{ID: model.NewID(), Name: "Harbour View", Location: "Lisbon", Rooms: []string{}}
	require.NoError(t, mem.CreateHotel(context.Background(), hotel))

	return &fixture{
		mem:   mem,
		svc:   NewRoomService(mem, validator.NewRoomValidator(log), &config.Config{Log: log}),
		hotel: hotel,
	}
}

func (f *fixture) create(t *testing.T, rt model.RoomType, price float64) *model.Room {
	t.Helper()
	room, err := f.svc.Create(context.Background(), &model.RoomCreate{HotelID: f.hotel.ID, RoomType: rt, Price: &price})
	require.NoError(t, err)
	return room
}

func TestRoomService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	room := f.create(t, model.RoomTypeDeluxe, 180)
	assert.True(t, room.Availability, "rooms default to available")
	assert.Equal(t, 180.0, *room.Price)

	hotel, err := f.mem.FindHotel(ctx, f.hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{room.ID}, hotel.Rooms)

	price := 90.0
	_, err = f.svc.Create(ctx, &model.RoomCreate{HotelID: model.NewID(), RoomType: model.RoomTypeSingle, Price: &price})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Hotel not found", appErr.Message)

	_, err = f.svc.Create(ctx, &model.RoomCreate{HotelID: f.hotel.ID, RoomType: "Attic", Price: &price})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestRoomService_Create_NormalisesHotelID(t *testing.T) {
	f := newFixture(t)
	price := 50.0

	upper := " " + strings.ToUpper(f.hotel.ID) + " "
	room, err := f.svc.Create(context.Background(), &model.RoomCreate{HotelID: upper, RoomType: model.RoomTypeSingle, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, f.hotel.ID, room.HotelID)
}

func TestRoomService_Queries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	single := f.create(t, model.RoomTypeSingle, 60)
	suite := f.create(t, model.RoomTypeSuite, 400)
	closed := false
	_, err := f.svc.Update(ctx, suite.ID, &model.RoomUpdate{Availability: &closed})
	require.NoError(t, err)

	all, total, err := f.svc.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	available, _, err := f.svc.GetAvailable(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, single.ID, available[0].ID)

	suites, _, err := f.svc.GetByType(ctx, "Suite", 10, 0)
	require.NoError(t, err)
	require.Len(t, suites, 1)
	assert.Equal(t, suite.ID, suites[0].ID)

	byHotel, _, err := f.svc.GetByHotel(ctx, f.hotel.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byHotel, 2)

	none, total, err := f.svc.GetByHotel(ctx, model.NewID(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestRoomService_GetByType_Invalid(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.GetByType(context.Background(), "suite", 10, 0)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode())
	assert.Equal(t, "Invalid room type provided", appErr.Message)
	assert.Equal(t, "Valid room types are: Single, Double, Deluxe, Suite", appErr.PublicReason())
}

func TestRoomService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.create(t, model.RoomTypeDouble, 100)

	newPrice := 125.0
	updated, err := f.svc.Update(ctx, room.ID, &model.RoomUpdate{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 125.0, *updated.Price)
	assert.Equal(t, model.RoomTypeDouble, updated.RoomType)

	_, err = f.svc.Update(ctx, room.ID, &model.RoomUpdate{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.svc.Update(ctx, model.NewID(), &model.RoomUpdate{Price: &newPrice})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Update(ctx, "room-1", &model.RoomUpdate{Price: &newPrice})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestRoomService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	free := f.create(t, model.RoomTypeSingle, 60)
	booked := f.create(t, model.RoomTypeDouble, 90)
	closed := false
	_, err := f.svc.Update(ctx, booked.ID, &model.RoomUpdate{Availability: &closed})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, booked.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Room is not available for deletion", appErr.Message)
	assert.Equal(t, 400, appErr.StatusCode())

	_, err = f.svc.GetByID(ctx, booked.ID)
	assert.NoError(t, err, "a refused delete leaves the room in place")

	require.NoError(t, f.svc.Delete(ctx, free.ID))
	hotel, err := f.mem.FindHotel(ctx, f.hotel.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{booked.ID}, hotel.Rooms)

	err = f.svc.Delete(ctx, free.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
