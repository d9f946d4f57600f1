// Package validation builds the request validator shared by the hotel, room
// and booking packages and turns its failures into API errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"

	"github.com/go-playground/validator/v10"
)

const failedMessage = "Validation failed"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, len(v))
	for i, err := range v {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fail reports a single rule that struct tags cannot express.
func Fail(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// New returns a validator that names fields by their json tag and knows the
// isodate and roomtype tags.
func New() (*validator.Validate, error) {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("isodate", isISODate); err != nil {
		return nil, fmt.Errorf("failed to register 'isodate' validator: %w", err)
	}
	if err := v.RegisterValidation("roomtype", isRoomType); err != nil {
		return nil, fmt.Errorf("failed to register 'roomtype' validator: %w", err)
	}
	return v, nil
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

func isRoomType(fl validator.FieldLevel) bool {
	return model.RoomType(fl.Field().String()).Valid()
}

// Struct runs the tag rules on s and translates failures into
// ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters long", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters long", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object id", err.Field())
		case "isodate":
			message = fmt.Sprintf("%s must be a valid ISO 8601 date", err.Field())
		case "roomtype":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), model.RoomTypeNames())
		}

		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return out
}

// ToAppError converts a validator result into a ValidationError response
// whose public reason is the first failing field. Other errors pass through
// AsAppError.
func ToAppError(err error) *apperrors.AppError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		details := make(map[string]any, len(verrs))
		for _, e := range verrs {
			if _, seen := details[e.Field]; !seen {
				details[e.Field] = e.Message
			}
		}
		return apperrors.Validation(failedMessage, details).WithReason(verrs[0].Message)
	}
	return apperrors.AsAppError(err)
}
