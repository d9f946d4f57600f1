package validator

import (
	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type HotelValidator struct {
	validate *validator.Validate
}

func NewHotelValidator(log *logger.Logger) *HotelValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to build hotel validator", "error", err)
	}
	return &HotelValidator{validate: v}
}

func (v *HotelValidator) Validate(hotel *model.HotelCreate) error {
	return validation.Struct(v.validate, hotel)
}

func (v *HotelValidator) ValidateUpdate(update *model.HotelUpdate) error {
	if update.IsEmpty() {
		return validation.Fail("body", "at least one of name, location or rooms must be provided")
	}
	return validation.Struct(v.validate, update)
}
