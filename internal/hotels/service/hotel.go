package service

import (
	"context"
	"errors"

	"innkeep/internal/hotels/validator"
	"innkeep/internal/store"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/sanitizer"
	"innkeep/pkg/validation"
)

type HotelService interface {
	Create(ctx context.Context, req *model.HotelCreate) (*model.Hotel, error)
	GetByID(ctx context.Context, id string) (*model.Hotel, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error)
	Update(ctx context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error)
	// Delete refuses hotels that still have rooms.
	Delete(ctx context.Context, id string) error
}

type hotelService struct {
	store     store.Store
	validator *validator.HotelValidator
	cfg       *config.Config
}

func NewHotelService(
	st store.Store,
	validator *validator.HotelValidator,
	cfg *config.Config,
) HotelService {
	return &hotelService{
		store:     st,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *hotelService) Create(ctx context.Context, req *model.HotelCreate) (*model.Hotel, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Location = sanitizer.NormalizeLocation(req.Location)
	req.Rooms = sanitizer.NormalizeIDs(req.Rooms)

	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Hotel validation failed", "name", req.Name, "error", err)
		return nil, validation.ToAppError(err)
	}

	hotel := &model.Hotel{
		ID:       model.NewID(),
		Name:     req.Name,
		Location: req.Location,
		Rooms:    req.Rooms,
	}
	if err := s.store.CreateHotel(ctx, hotel); err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to create hotel", "name", hotel.Name, "error", err)
		return nil, apperrors.Internal("Internal server error", err)
	}

	s.cfg.Log.WithContext(ctx).Info("Hotel created successfully", "id", hotel.ID, "name", hotel.Name)
	return hotel, nil
}

func (s *hotelService) GetByID(ctx context.Context, id string) (*model.Hotel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	hotel, err := s.store.FindHotel(ctx, id)
	if err != nil {
		return nil, s.mapError(ctx, "Failed to retrieve hotel", id, err)
	}
	return hotel, nil
}

func (s *hotelService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Hotel, int64, error) {
	hotels, total, err := s.store.ListHotels(ctx, store.Page{Limit: limit, Offset: offset})
	if err != nil {
		s.cfg.Log.WithContext(ctx).Error("Failed to list hotels", "error", err)
		return nil, 0, apperrors.Internal("Internal server error", err)
	}
	return hotels, total, nil
}

func (s *hotelService) Update(ctx context.Context, id string, update *model.HotelUpdate) (*model.Hotel, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := sanitizer.NormalizeName(*update.Name)
		update.Name = &name
	}
	if update.Location != nil {
		location := sanitizer.NormalizeLocation(*update.Location)
		update.Location = &location
	}
	if update.Rooms != nil {
		update.Rooms = sanitizer.NormalizeIDs(update.Rooms)
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, validation.ToAppError(err)
	}

	hotel, err := s.store.UpdateHotel(ctx, id, update)
	if err != nil {
		return nil, s.mapError(ctx, "Failed to update hotel", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Hotel updated successfully", "id", id)
	return hotel, nil
}

func (s *hotelService) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	if err := s.store.DeleteHotel(ctx, id); err != nil {
		return s.mapError(ctx, "Failed to delete hotel", id, err)
	}

	s.cfg.Log.WithContext(ctx).Info("Hotel deleted successfully", "id", id)
	return nil
}

func (s *hotelService) mapError(ctx context.Context, msg, id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFoundWithID("Hotel", id)
	case errors.Is(err, store.ErrInUse):
		return apperrors.Conflict("Hotel still has rooms")
	case errors.Is(err, store.ErrInvalidID):
		return apperrors.InvalidInput("Invalid hotel ID format")
	default:
		s.cfg.Log.WithContext(ctx).Error(msg, "id", id, "error", err)
		return apperrors.Internal("Internal server error", err)
	}
}

func checkID(id string) error {
	if id == "" {
		return apperrors.InvalidInput("Hotel ID cannot be empty")
	}
	if !model.IsValidID(id) {
		return apperrors.InvalidInput("Invalid hotel ID format")
	}
	return nil
}
