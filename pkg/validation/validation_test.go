package validation

import (
	"errors"
	"net/http"
	"testing"

	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/model"
)

type sample struct {
	HotelID  string          `json:"hotelId" validate:"required,mongodb"`
	Name     string          `json:"name" validate:"required,min=3,max=10"`
	Date     string          `json:"checkInDate" validate:"omitempty,isodate"`
	RoomType *model.RoomType `json:"roomType,omitempty" validate:"omitempty,roomtype"`
	Price    *float64        `json:"price,omitempty" validate:"omitempty,gte=0"`
}

func newValidator(t *testing.T) func(any) error {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return func(s any) error { return Struct(v, s) }
}

func TestStruct(t *testing.T) {
	validate := newValidator(t)
	suite := model.RoomTypeSuite
	penthouse := model.RoomType("Penthouse")
	negative := -1.0

	tests := []struct {
		name        string
		input       sample
		wantField   string
		wantMessage string
	}{
		{
			name:  "valid",
			input: sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Grand", Date: "2030-01-02", RoomType: &suite},
		},
		{
			name:        "missing hotel",
			input:       sample{Name: "Grand"},
			wantField:   "hotelId",
			wantMessage: "hotelId is required",
		},
		{
			name:        "bad object id",
			input:       sample{HotelID: "nope", Name: "Grand"},
			wantField:   "hotelId",
			wantMessage: "hotelId must be a valid object id",
		},
		{
			name:        "name too short",
			input:       sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Gr"},
			wantField:   "name",
			wantMessage: "name must be at least 3 characters long",
		},
		{
			name:        "bad date",
			input:       sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Grand", Date: "02/01/2030"},
			wantField:   "checkInDate",
			wantMessage: "checkInDate must be a valid ISO 8601 date",
		},
		{
			name:        "timestamp accepted",
			input:       sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Grand", Date: "2030-01-02T15:04:05Z"},
		},
		{
			name:        "unknown room type",
			input:       sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Grand", RoomType: &penthouse},
			wantField:   "roomType",
			wantMessage: "roomType must be one of: Single, Double, Deluxe, Suite",
		},
		{
			name:        "negative price",
			input:       sample{HotelID: "65a1b2c3d4e5f60718293a4b", Name: "Grand", Price: &negative},
			wantField:   "price",
			wantMessage: "price must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.wantField)
			}
			if verrs[0].Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", verrs[0].Message, tt.wantMessage)
			}
		})
	}
}

func TestToAppError(t *testing.T) {
	verrs := ValidationErrors{
		{Field: "checkOutDate", Message: "Check-out date must be after check-in date"},
		{Field: "roomId", Message: "roomId is required"},
	}

	appErr := ToAppError(verrs)
	if appErr.Code != apperrors.CodeValidation || appErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if appErr.Message != "Validation failed" {
		t.Errorf("message = %q", appErr.Message)
	}
	if appErr.PublicReason() != "Check-out date must be after check-in date" {
		t.Errorf("reason = %q", appErr.PublicReason())
	}
	if appErr.Details["roomId"] != "roomId is required" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestToAppError_Passthrough(t *testing.T) {
	notFound := apperrors.NotFound("Room")
	if got := ToAppError(notFound); got != notFound {
		t.Errorf("expected AppError to pass through, got %v", got)
	}

	got := ToAppError(errors.New("boom"))
	if got.Code != apperrors.CodeInternal {
		t.Errorf("plain errors should become internal, got %s", got.Code)
	}
}

func TestFail(t *testing.T) {
	err := Fail("checkOutDate", "Check-out date must be after check-in date")
	if len(err) != 1 || err[0].Field != "checkOutDate" {
		t.Fatalf("unexpected %v", err)
	}
	if err.Error() != "validation failed: 1 error(s): [checkOutDate: Check-out date must be after check-in date]" {
		t.Errorf("Error() = %q", err.Error())
	}
}
