package service

import (
	"context"
	"errors"
	"strings"

	"innkeep/internal/rooms/validator"
	"innkeep/internal/store"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"
)

type RoomService interface {
	// Create adds the room to its hotel's room list.
	Create(ctx context.Context, req *model.RoomCreate) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	// Delete refuses rooms whose availability is false.
	Delete(ctx context.Context, id string) error

	GetAvailable(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error)
	GetByType(ctx context.Context, roomType string, limit int, offset int64) ([]*model.Room, int64, error)
	GetByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, int64, error)
}

type roomService struct {
	store     store.Store
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	st store.Store,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		store:     st,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, req *model.RoomCreate) (*model.Room, error) {
	req.HotelID = sanitizer.NormalizeID(req.HotelID)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Room validation failed", "hotel_id", req.HotelID, "error", err)
		return nil, validation.ToAppError(err)
	}

	room := req.ToRoom()
	if err := s.store.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Hotel", req.HotelID)
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to create room", "hotel_id", req.HotelID, "error", err)
		return nil, apperrors.Internal("Internal server error", err)
	}

	s.cfg.Log.WithContext(ctx).Info("Room created successfully", "id", room.ID, "hotel_id", room.HotelID, "room_type", room.RoomType)
	return room, nil
}

func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if err := checkID("Room", id); err != nil {
		return nil, err
	}

	room, err := s.store.FindRoom(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "Failed to retrieve room", id, err)
	}
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	return s.list(ctx, model.RoomFilter{}, limit, offset)
}

func (s *roomService) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if err := checkID("Room", id); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validation.ToAppError(err)
	}

	room, err := s.store.UpdateRoom(ctx, id, update)
	if err != nil {
		return nil, s.mapError(ctx, "Failed to update room", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Room updated successfully", "id", id)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if err := checkID("Room", id); err != nil {
		return err
	}

	if err := s.store.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, store.ErrInUse) {
			return apperrors.Conflict("Room is not available for deletion")
		}
		return s.mapError(ctx, "Failed to delete room", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Room deleted successfully", "id", id)
	return nil
}

func (s *roomService) GetAvailable(ctx context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	available := true
	return s.list(ctx, model.RoomFilter{Available: &available}, limit, offset)
}

func (s *roomService) GetByType(ctx context.Context, roomType string, limit int, offset int64) ([]*model.Room, int64, error) {
	rt, ok := model.ParseRoomType(roomType)
	if !ok {
		return nil, 0, apperrors.Validation("Invalid room type provided", nil).
			WithReason("Valid room types are: " + model.RoomTypeNames())
	}
	return s.list(ctx, model.RoomFilter{RoomType: rt}, limit, offset)
}

func (s *roomService) GetByHotel(ctx context.Context, hotelID string, limit int, offset int64) ([]*model.Room, int64, error) {
	if err := checkID("Hotel", hotelID); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, model.RoomFilter{HotelID: hotelID}, limit, offset)
}

func (s *roomService) list(ctx context.Context, filter model.RoomFilter, limit int, offset int64) ([]*model.Room, int64, error) {
	rooms, total, err := s.store.ListRooms(ctx, filter, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list rooms", "filter", filter, "error", err)
		return nil, 0, apperrors.Internal("Internal server error", err)
	}
	return rooms, total, nil
}

func (s *roomService) mapError(ctx context.Context, msg, id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFoundWithID("Room", id)
	case errors.Is(err, store.ErrInvalidID):
		return apperrors.InvalidInput("Invalid room ID format")
	default:
		s.cfg.Log.WithContext(ctx).Error(msg, "id", id, "error", err)
		return apperrors.Internal("Internal server error", err)
	}
}

func checkID(resource, id string) error {
	if id == "" {
		return apperrors.InvalidInput(resource + " ID cannot be empty")
	}
	if !model.IsValidID(id) {
		return apperrors.InvalidInput("Invalid " + strings.ToLower(resource) + " ID format")
	}
	return nil
}
