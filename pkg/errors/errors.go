package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
)

// Names reported in the error.name field of a response.
const (
	NameValidation  = "ValidationError"
	NameNotFound    = "NotFoundError"
	NameConflict    = "ConflictError"
	NameInternal    = "InternalError"
	NameTimeout     = "TimeoutError"
	NameUnavailable = "UnavailableError"
	NameRateLimited = "RateLimitError"
)

var codeNames = map[string]string{
	CodeNotFound:     NameNotFound,
	CodeValidation:   NameValidation,
	CodeInvalidInput: NameValidation,
	CodeConflict:     NameConflict,
	CodeInternal:     NameInternal,
	CodeTimeout:      NameTimeout,
	CodeUnavailable:  NameUnavailable,
	CodeRateLimited:  NameRateLimited,
}

type AppError struct {
	Code       string         `json:"code"`
	Name       string         `json:"name"`
	Message    string         `json:"message"`
	Reason     string         `json:"reason,omitempty"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

// PublicReason is the text reported as error.message in a response.
func (e *AppError) PublicReason() string {
	if e.Reason != "" {
		return e.Reason
	}
	return e.Message
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Name:       nameFor(code),
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	e := New(code, message, httpStatus)
	e.Err = err
	return e
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithReason(reason string) *AppError {
	e.Reason = reason
	return e
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func Validation(message string, details map[string]any) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// Conflict reports a state clash the caller can resolve by changing the
// request, such as overlapping dates. It is a client error.
func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusBadRequest)
}

func Internal(message string, err error) *AppError {
	e := Wrap(err, CodeInternal, message, http.StatusInternalServerError)
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

func Timeout(message string) *AppError {
	return New(CodeTimeout, message, http.StatusGatewayTimeout)
}

func Unavailable(service string) *AppError {
	return New(CodeUnavailable, fmt.Sprintf("%s is temporarily unavailable", service), http.StatusServiceUnavailable)
}

func RateLimited(message string) *AppError {
	return New(CodeRateLimited, message, http.StatusTooManyRequests)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error", err)
}

func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func nameFor(code string) string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return NameInternal
}
