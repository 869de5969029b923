package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrValidation       ErrorType = "VALIDATION_ERROR"
	ErrAuthFailed       ErrorType = "AUTH_FAILED"
	ErrForbidden        ErrorType = "FORBIDDEN"
	ErrInvalidKey       ErrorType = "INVALID_KEY"
	ErrInvalidBatchSize ErrorType = "INVALID_BATCH_SIZE"
	ErrVenueRejected    ErrorType = "VENUE_REJECTED"
	ErrUpstream         ErrorType = "UPSTREAM_ERROR"
	ErrReadOnly         ErrorType = "READ_ONLY_MODE"
	ErrDuplicateName    ErrorType = "DUPLICATE_NAME"
	ErrNotFound         ErrorType = "NOT_FOUND"
	ErrInternal         ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

func NewValidation(msg string) *AppError {
	return New(ErrValidation, msg, nil)
}

func NewAuthFailed(msg string) *AppError {
	return New(ErrAuthFailed, msg, nil)
}

// NewVenueRejected carries the venue's own code and message through to the
// caller. A rejected order is a normal outcome, not an internal error.
func NewVenueRejected(code, msg string) *AppError {
	if msg == "" {
		msg = "venue rejected the request"
	}
	return &AppError{
		Type:       ErrVenueRejected,
		Message:    fmt.Sprintf("[%s] %s", code, msg),
		HTTPStatus: http.StatusBadRequest,
	}
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation, ErrInvalidKey, ErrInvalidBatchSize, ErrVenueRejected:
		return http.StatusBadRequest
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrDuplicateName:
		return http.StatusConflict
	case ErrUpstream:
		return http.StatusBadGateway
	case ErrReadOnly:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
