package http

import (
	"encoding/json"
	"net/http"

	apperrors "innkeep/pkg/errors"
)

// Envelope is the body of every response the API writes.
type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Meta    *Meta      `json:"meta,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type Meta struct {
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int64 `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)
	return WriteJSON(w, appErr.StatusCode(), ErrorEnvelope(appErr))
}

func ErrorEnvelope(appErr *apperrors.AppError) Envelope {
	return Envelope{
		Success: false,
		Message: appErr.Message,
		Error: &ErrorBody{
			Name:    appErr.Name,
			Message: appErr.PublicReason(),
		},
	}
}

func WriteSuccess(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func WriteCreated(w http.ResponseWriter, message string, data any) error {
	return WriteJSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

func WritePaginated(w http.ResponseWriter, message string, data any, totalCount int64, limit int, offset int64) error {
	return WriteJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta: &Meta{
			TotalCount: totalCount,
			Limit:      limit,
			Offset:     offset,
		},
	})
}
