package validator

import (
	"time"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Reasons reported in error.message when the stay itself is rejected.
const (
	MsgCheckInPast   = "Check-in date must be in the future"
	MsgCheckOutOrder = "Check-out date must be after check-in date"
)

type BookingValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build booking validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		now:      time.Now,
	}
}

// WithClock replaces the clock that decides what "today" is.
func (v *BookingValidator) WithClock(now func() time.Time) *BookingValidator {
	v.now = now
	return v
}

// Validate checks a booking request without touching the store and returns
// the requested stay. Check-in may fall anywhere on today's UTC calendar day.
func (v *BookingValidator) Validate(req *model.BookingRequest) (model.Stay, error) {
	if req == nil {
		return model.Stay{}, validation.Fail("body", "request body is required")
	}
	if err := validation.Struct(v.validate, req); err != nil {
		return model.Stay{}, err
	}

	// Both dates passed the isodate tag.
	checkIn, _ := model.ParseDate(req.CheckInDate)
	checkOut, _ := model.ParseDate(req.CheckOutDate)
	stay := model.NewStay(checkIn, checkOut)

	if stay.CheckIn.Before(model.TruncateToDay(v.now())) {
		return model.Stay{}, validation.Fail("checkInDate", MsgCheckInPast)
	}
	if !stay.CheckOut.After(stay.CheckIn) {
		return model.Stay{}, validation.Fail("checkOutDate", MsgCheckOutOrder)
	}

	return stay, nil
}
