package validator

import (
	"errors"
	"io"
	"strings"
	"testing"

	"innkeep/pkg/logger"
	"innkeep/pkg/model"
	"innkeep/pkg/validation"
)

func newValidator() *HotelValidator {
	return NewHotelValidator(logger.New(logger.Config{Level: "error", Output: io.Discard}))
}

func firstError(t *testing.T, err error) validation.ValidationError {
	t.Helper()
	var verrs validation.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	return verrs[0]
}

func TestHotelValidator_Validate(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name      string
		hotel     *model.HotelCreate
		wantField string
	}{
		{"valid", &model.HotelCreate{Name: "Harbour View", Location: "Lisbon"}, ""},
		{"valid with rooms", &model.HotelCreate{Name: "Harbour View", Location: "Lisbon", Rooms: []string{"65a1b2c3d4e5f60718293a4c"}}, ""},
		{"missing name", &model.HotelCreate{Location: "Lisbon"}, "name"},
		{"short name", &model.HotelCreate{Name: "HV", Location: "Lisbon"}, "name"},
		{"long location", &model.HotelCreate{Name: "Harbour View", Location: strings.Repeat("x", 101)}, "location"},
		{"bad room id", &model.HotelCreate{Name: "Harbour View", Location: "Lisbon", Rooms: []string{"room-1"}}, "rooms[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.hotel)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if got := firstError(t, err); got.Field != tt.wantField {
				t.Errorf("field = %q, want %q (%s)", got.Field, tt.wantField, got.Message)
			}
		})
	}
}

func TestHotelValidator_ValidateUpdate(t *testing.T) {
	v := newValidator()
	short := "ab"
	name := "Harbour View"

	if err := v.ValidateUpdate(&model.HotelUpdate{Name: &name}); err != nil {
		t.Errorf("expected valid update, got %v", err)
	}
	if got := firstError(t, v.ValidateUpdate(&model.HotelUpdate{})); got.Field != "body" {
		t.Errorf("empty update field = %q", got.Field)
	}
	if got := firstError(t, v.ValidateUpdate(&model.HotelUpdate{Name: &short})); got.Message != "name must be at least 3 characters long" {
		t.Errorf("message = %q", got.Message)
	}
}
