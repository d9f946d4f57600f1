package validator

import (
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type RoomValidator struct {
	validate *validator.Validate
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build room validator", "error", err)
	}
	return &RoomValidator{validate: v}
}

func (v *RoomValidator) Validate(room *model.RoomCreate) error {
	return validation.Struct(v.validate, room)
}

func (v *RoomValidator) ValidateUpdate(update *model.RoomUpdate) error {
	if update.IsEmpty() {
		return validation.Fail("body", "at least one of roomType, price or availability must be provided")
	}
	return validation.Struct(v.validate, update)
}
