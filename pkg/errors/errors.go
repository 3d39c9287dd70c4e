package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound             = "NOT_FOUND"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeConflict             = "CONFLICT"
	CodeInvalidTransition    = "INVALID_STATE_TRANSITION"
	CodeReservationsDisabled = "RESERVATIONS_DISABLED"
	CodeInternal             = "INTERNAL_ERROR"
	CodeTimeout              = "TIMEOUT"
	CodeUnavailable          = "SERVICE_UNAVAILABLE"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeRateLimited          = "RATE_LIMITED"
)

// defaultStatus is the HTTP status each code maps to unless the caller
// overrides it through New.
var defaultStatus = map[string]int{
	CodeNotFound:             http.StatusNotFound,
	CodeValidation:           http.StatusUnprocessableEntity,
	CodeUnauthorized:         http.StatusUnauthorized,
	CodeForbidden:            http.StatusForbidden,
	CodeConflict:             http.StatusConflict,
	CodeInvalidTransition:    http.StatusConflict,
	CodeReservationsDisabled: http.StatusUnprocessableEntity,
	CodeInternal:             http.StatusInternalServerError,
	CodeTimeout:              http.StatusGatewayTimeout,
	CodeUnavailable:          http.StatusServiceUnavailable,
	CodeInvalidInput:         http.StatusBadRequest,
	CodeRateLimited:          http.StatusTooManyRequests,
}

// AppError is the error type every layer returns to the HTTP edge. Err is
// logged but never serialized.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
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

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := defaultStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetails merges details into the error and returns it.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func newf(code string, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), HTTPStatus: defaultStatus[code]}
}

func NotFoundWithID(resource, id string) *AppError {
	return newf(CodeNotFound, "%s not found", resource).
		WithDetails(map[string]any{"resource": resource, "id": id})
}

func Validation(message string, details map[string]any) *AppError {
	err := newf(CodeValidation, "%s", message)
	if len(details) > 0 {
		err.WithDetails(details)
	}
	return err
}

func InvalidInput(message string) *AppError { return newf(CodeInvalidInput, "%s", message) }

func Unauthorized(message string) *AppError { return newf(CodeUnauthorized, "%s", message) }

func Forbidden(message string) *AppError { return newf(CodeForbidden, "%s", message) }

func Conflict(message string) *AppError { return newf(CodeConflict, "%s", message) }

// InvalidTransition reports a status change the reservation state machine
// does not allow.
func InvalidTransition(from, to string) *AppError {
	return newf(CodeInvalidTransition, "Cannot change reservation status from %s to %s", from, to).
		WithDetails(map[string]any{"from": from, "to": to})
}

func ReservationsDisabled(restaurantID string) *AppError {
	return newf(CodeReservationsDisabled, "This restaurant does not accept reservations").
		WithDetails(map[string]any{"restaurant_id": restaurantID})
}

func Internal(message string, err error) *AppError {
	appErr := newf(CodeInternal, "%s", message)
	appErr.Err = err
	return appErr
}

func Timeout(message string) *AppError { return newf(CodeTimeout, "%s", message) }

func Unavailable(service string) *AppError {
	return newf(CodeUnavailable, "%s is temporarily unavailable", service)
}

func RateLimited() *AppError { return newf(CodeRateLimited, "Rate limit exceeded") }

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError unwraps err to its AppError, or hides it behind an internal
// error when there is none.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
