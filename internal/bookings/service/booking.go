package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"innkeep/internal/bookings/conflict"
	"innkeep/internal/bookings/events"
	"innkeep/internal/bookings/pricing"
	"innkeep/internal/bookings/validator"
	"innkeep/internal/store"
	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "innkeep/internal/bookings/service"

	msgAlreadyBooked = "Room already booked for the selected dates"
	msgHotelMismatch = "Room does not belong to the selected hotel"
	msgInternalError = "Internal server error"
	releaseTimeout   = 5 * time.Second
	publishTimeout   = 3 * time.Second

	maxBusyAttempts = 5
	busyBackoff     = 20 * time.Millisecond
)

type BookingService interface {
	// Create validates req, then checks for overlapping bookings, prices the
	// stay and stores the booking with the room marked unavailable, all in
	// one store transaction.
	Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
}

type Option func(*bookingService)

func WithClock(now func() time.Time) Option {
	return func(s *bookingService) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *bookingService) { s.publisher = p }
}

type bookingService struct {
	store     store.Store
	validator *validator.BookingValidator
	detector  *conflict.Detector
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time

	tracer   trace.Tracer
	created  metric.Int64Counter
	rejected metric.Int64Counter
}

func NewBookingService(
	st store.Store,
	validator *validator.BookingValidator,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	s := &bookingService{
		store:     st,
		validator: validator,
		detector:  conflict.NewDetector(),
		publisher: events.NopPublisher{},
		cfg:       cfg,
		now:       time.Now,
		tracer:    otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator.WithClock(s.now)
	s.initMetrics()
	return s
}

func (s *bookingService) initMetrics() {
	meter := otel.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	var err error
	if s.created, err = meter.Int64Counter("innkeep.bookings.created",
		metric.WithDescription("Bookings committed")); err != nil {
		s.cfg.Log.Warn("Failed to create bookings.created counter", "error", err)
		s.created, _ = fallback.Int64Counter("innkeep.bookings.created")
	}
	if s.rejected, err = meter.Int64Counter("innkeep.bookings.rejected",
		metric.WithDescription("Booking requests that did not commit, by error code")); err != nil {
		s.cfg.Log.Warn("Failed to create bookings.rejected counter", "error", err)
		s.rejected, _ = fallback.Int64Counter("innkeep.bookings.rejected")
	}
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "BookingService.Create")
	defer span.End()

	stay, err := s.validator.Validate(req)
	if err != nil {
		return nil, s.reject(ctx, span, validation.ToAppError(err))
	}
	if !model.IsValidID(actor.UserID) {
		return nil, s.reject(ctx, span, apperrors.Validation("Validation failed", nil).
			WithReason("userId must be a valid object id"))
	}

	span.SetAttributes(
		attribute.String("booking.hotel_id", req.HotelID),
		attribute.String("booking.room_id", req.RoomID),
		attribute.String("booking.stay", stay.String()),
	)

	booking, err := s.commitWithRetry(ctx, actor, req, stay)
	if err != nil {
		return nil, s.reject(ctx, span, err)
	}

	s.created.Add(ctx, 1)
	s.cfg.Log.WithContext(ctx).Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"hotel_id", booking.HotelID,
		"check_in", model.FormatDate(booking.CheckInDate),
		"check_out", model.FormatDate(booking.CheckOutDate),
		"total_price", booking.TotalPrice,
	)

	s.publishCreated(ctx, booking)
	return booking, nil
}

// commitWithRetry reruns the transaction when it lost a write race on the
// room. The rerun reads the winner's booking, so a real overlap still ends in
// a conflict. Every attempt shares one BookingTxTimeout deadline.
func (s *bookingService) commitWithRetry(ctx context.Context, actor model.Actor, req *model.BookingRequest, stay model.Stay) (*model.Booking, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.cfg.BookingTxTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		booking, err := s.commitBooking(txCtx, actor, req, stay)
		if err == nil || !errors.Is(err, store.ErrBusy) || attempt == maxBusyAttempts {
			return booking, err
		}

		s.cfg.Log.WithContext(ctx).Info("Booking transaction lost a write race, retrying",
			"room_id", req.RoomID, "attempt", attempt)

		wait := busyBackoff*time.Duration(attempt) + rand.N(busyBackoff)
		select {
		case <-txCtx.Done():
			return nil, err
		case <-time.After(wait):
		}
	}
}

// commitBooking owns the store transaction: it is aborted on every path
// that does not reach a successful commit.
func (s *bookingService) commitBooking(txCtx context.Context, actor model.Actor, req *model.BookingRequest, stay model.Stay) (*model.Booking, error) {
	tx, err := s.store.Begin(txCtx)
	if err != nil {
		return nil, s.storeFailure(err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		releaseCtx, cancelRelease := context.WithTimeout(context.WithoutCancel(txCtx), releaseTimeout)
		defer cancelRelease()
		if abortErr := tx.Abort(releaseCtx); abortErr != nil {
			s.cfg.Log.WithContext(txCtx).Warn("Failed to abort booking transaction", "room_id", req.RoomID, "error", abortErr)
		}
	}()

	booking, err := s.reserve(txCtx, tx, actor, req, stay)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, s.storeFailure(err)
	}
	committed = true

	return booking, nil
}

func (s *bookingService) reserve(ctx context.Context, tx store.Tx, actor model.Actor, req *model.BookingRequest, stay model.Stay) (*model.Booking, error) {
	room, err := tx.FindRoomByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Room", req.RoomID)
		}
		return nil, s.storeFailure(err)
	}

	hotel, err := tx.FindHotelByID(ctx, req.HotelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Hotel", req.HotelID)
		}
		return nil, s.storeFailure(err)
	}

	if room.HotelID != hotel.ID {
		return nil, apperrors.Validation(msgHotelMismatch, nil)
	}

	taken, err := s.detector.HasConflict(ctx, tx, room.ID, stay)
	if err != nil {
		return nil, s.storeFailure(err)
	}
	if taken {
		return nil, apperrors.Conflict(msgAlreadyBooked)
	}

	booking := &model.Booking{
		ID:           model.NewID(),
		UserID:       actor.UserID,
		HotelID:      hotel.ID,
		RoomID:       room.ID,
		CheckInDate:  stay.CheckIn,
		CheckOutDate: stay.CheckOut,
		TotalPrice:   pricing.Total(room.Price, stay),
		IsPaid:       false,
		Status:       model.BookingStatusPending,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	if err := tx.UpdateRoomAvailability(ctx, room.ID, false); err != nil {
		return nil, s.storeFailure(err)
	}
	if err := tx.InsertBooking(ctx, booking); err != nil {
		return nil, s.storeFailure(err)
	}

	return booking, nil
}

// storeFailure maps a store error raised inside the booking transaction. A
// store-level conflict means a concurrent booking of the room won; a busy
// store only means another transaction wrote the room first.
func (s *bookingService) storeFailure(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, store.ErrConflict):
		return apperrors.Conflict(msgAlreadyBooked)
	case errors.Is(err, store.ErrBusy):
		busy := apperrors.Unavailable("Room")
		busy.Err = err
		return busy
	}
	return apperrors.Internal(msgInternalError, err)
}

func (s *bookingService) reject(ctx context.Context, span trace.Span, err error) error {
	appErr := apperrors.AsAppError(err)

	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("code", appErr.Code)))
	span.SetStatus(codes.Error, appErr.Message)

	log := s.cfg.Log.WithContext(ctx)
	if appErr.Code == apperrors.CodeInternal {
		span.RecordError(err)
		log.Error("Failed to create booking", "error", err)
	} else {
		log.Info("Booking request rejected", "code", appErr.Code, "reason", appErr.PublicReason())
	}
	return appErr
}

// publishCreated runs after the commit; a failure is logged and never
// reported to the caller.
func (s *bookingService) publishCreated(ctx context.Context, booking *model.Booking) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.BookingCreated(pubCtx, booking); err != nil {
		s.cfg.Log.WithContext(ctx).Warn("Failed to publish booking event", "id", booking.ID, "error", err)
	}
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !model.IsValidID(id) {
		return nil, apperrors.InvalidInput("Invalid booking ID format")
	}

	booking, err := s.store.FindBooking(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.WithContext(ctx).Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}
