package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error with user-friendly and technical details.
type AppError struct {
	TechnicalMessage string
	UserMessage      string
	Code             string
	HTTPStatus       int
	OriginalError    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.OriginalError == nil {
		return e.UserMessage
	}
	return fmt.Sprintf("%s: %v", e.UserMessage, e.OriginalError)
}

// Unwrap returns the original error for error chaining.
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// NewAppError creates a new AppError instance.
func NewAppError(technicalMessage, userMessage, code string, status int, originalErr error) *AppError {
	return &AppError{
		TechnicalMessage: technicalMessage,
		UserMessage:      userMessage,
		Code:             code,
		HTTPStatus:       status,
		OriginalError:    originalErr,
	}
}

// NewValidationError reports a request rejected before any write.
func NewValidationError(message string) *AppError {
	return NewAppError(message, message, ErrCodeValidation, http.StatusBadRequest, nil)
}

// Common error codes
const (
	ErrCodeValidation   = "VALIDATION_FAILED"
	ErrCodeUserNotFound = "USER_NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// Sentinel errors returned by the repository and service layers.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("user with this identifier already exists")
	ErrInvalidBody   = errors.New("invalid request body")
)
