package services

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	TypeNotFound     = "NOT_FOUND"
	TypeValidation   = "VALIDATION_ERROR"
	TypeAuthRequired = "AUTH_REQUIRED"
	TypeUnauthorized = "UNAUTHORIZED"
	TypeConflict     = "CONFLICT"
	TypeInternal     = "INTERNAL_ERROR"
)

// Sentinels for errors.Is; they match any ServiceError of the same Type.
var (
	ErrNotFound     = &ServiceError{Type: TypeNotFound}
	ErrValidation   = &ServiceError{Type: TypeValidation}
	ErrAuthRequired = &ServiceError{Type: TypeAuthRequired}
	// ErrInvalidCredentials is a login with a known email and a wrong password.
	ErrInvalidCredentials = &ServiceError{Type: TypeUnauthorized}
	ErrConflict           = &ServiceError{Type: TypeConflict}
)

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string            `json:"type"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	StatusCode int               `json:"-"`
	Cause      error             `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// Is matches on Type so callers can compare against the sentinels.
func (e *ServiceError) Is(target error) bool {
	var t *ServiceError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string, fields map[string]string) *ServiceError {
	return &ServiceError{
		Type:       TypeValidation,
		Message:    message,
		Fields:     fields,
		StatusCode: http.StatusBadRequest,
	}
}

// NewAuthRequiredError is returned by write operations on an anonymous session.
func NewAuthRequiredError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeAuthRequired,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Type:       TypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError wraps an unexpected store failure.
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       TypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}
