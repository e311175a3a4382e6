package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so a wrapped error still compares equal
// to its predefined sentinel
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Account errors
	ErrDoctorNotFound = NewDomainError("DOCTOR_NOT_FOUND", "doctor not found")
	ErrEmailExists    = NewDomainError("EMAIL_EXISTS", "email already exists")
	ErrSameEmail      = NewDomainError("SAME_EMAIL", "new email is identical to the current one")

	// Authentication errors
	ErrInvalidCredentials  = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrAccountNotActivated = NewDomainError("ACCOUNT_NOT_ACTIVATED", "account email not verified yet")
	ErrIncorrectPassword   = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")

	// Token errors
	ErrInvalidToken    = NewDomainError("INVALID_TOKEN", "invalid or expired token")
	ErrAlreadyVerified = NewDomainError("ALREADY_VERIFIED", "email address already verified")

	// Validation errors
	ErrWeakPassword     = NewDomainError("WEAK_PASSWORD", "password does not meet the complexity policy")
	ErrPasswordMismatch = NewDomainError("PASSWORD_MISMATCH", "new password and confirmation do not match")
	ErrEmailMismatch    = NewDomainError("EMAIL_MISMATCH", "new email and confirmation do not match")
	ErrInvalidCSRF      = NewDomainError("INVALID_CSRF", "invalid or expired csrf token")

	// System errors
	ErrInternal   = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrMailFailed = NewDomainError("MAIL_FAILED", "failed to send email")
)

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case "WEAK_PASSWORD", "PASSWORD_MISMATCH", "EMAIL_MISMATCH", "SAME_EMAIL":
		return http.StatusBadRequest

	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"ACCOUNT_NOT_ACTIVATED", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	case "INVALID_CSRF":
		return http.StatusForbidden

	case "DOCTOR_NOT_FOUND":
		return http.StatusNotFound

	case "EMAIL_EXISTS", "ALREADY_VERIFIED":
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
