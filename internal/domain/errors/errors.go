package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound          = errors.New("resource not found")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidState      = errors.New("invalid state")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBadSignature      = errors.New("bad signature")
	ErrUpstream          = errors.New("upstream provider error")
	ErrUpstreamTimeout   = errors.New("upstream provider timeout")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func AlreadyExists(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrAlreadyExists)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrInvalidState)
}

func QuotaExceeded(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message, ErrQuotaExceeded)
}

func InsufficientFunds(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message, ErrInsufficientFunds)
}

func BadSignature(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrBadSignature)
}

func Upstream(message string) *AppError {
	return NewAppError(http.StatusBadGateway, message, ErrUpstream)
}

func UpstreamTimeout(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, ErrUpstreamTimeout)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}
