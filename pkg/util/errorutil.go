package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/campuskit/access-service/internal/auth"
	"github.com/campuskit/access-service/internal/domain"
)

// DomainError standardizes application errors across the service.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest, details)
}

func NewWeakPassword(ruleErrors []string) error {
	return NewDomainError("WEAK_PASSWORD", "Password does not meet strength requirements",
		http.StatusBadRequest, map[string]any{"rules": ruleErrors})
}

func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "Invalid email or password", http.StatusUnauthorized, nil)
}

func NewAuthenticationRequired() error {
	return NewDomainError("AUTHENTICATION_REQUIRED", "Authentication required", http.StatusUnauthorized, nil)
}

func NewInsufficientPermissions(message string) error {
	if message == "" {
		message = "Insufficient permissions"
	}
	return NewDomainError("INSUFFICIENT_PERMISSIONS", message, http.StatusForbidden, nil)
}

func NewSelfActionForbidden() error {
	return NewDomainError("SELF_ACTION_FORBIDDEN", "Cannot perform this action on your own account", http.StatusBadRequest, nil)
}

func NewRateLimitExceeded() error {
	return NewDomainError("RATE_LIMIT_EXCEEDED", "Rate limit exceeded", http.StatusTooManyRequests, nil)
}

func NewDuplicateIdentity() error {
	return NewDomainError("DUPLICATE_IDENTITY", "An account with this email already exists", http.StatusConflict, nil)
}

func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError, mapping the
// authorization taxonomy onto the HTTP contract. Unknown errors become
// a generic 500 with the cause kept for logging only.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, auth.ErrAuthenticationRequired), errors.Is(err, auth.ErrInvalidToken):
		domainErr, _ = NewAuthenticationRequired().(*DomainError)
	case errors.Is(err, auth.ErrInsufficientPermissions):
		domainErr, _ = NewInsufficientPermissions("").(*DomainError)
	case errors.Is(err, auth.ErrSelfActionForbidden):
		domainErr, _ = NewSelfActionForbidden().(*DomainError)
	case errors.Is(err, domain.ErrNotFound):
		domainErr, _ = NewNotFound("resource").(*DomainError)
	default:
		domainErr, _ = NewInternalError(err).(*DomainError)
	}
	return domainErr
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
