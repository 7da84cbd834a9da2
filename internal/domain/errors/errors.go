package errors

import (
	"net/http"

	"userstore/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches any BaseError with the same error code, so errors carrying
// details still satisfy errors.Is against the predefined values.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return t.errorCode == e.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error kinds. Every failure returned by the user store carries one of these.
var (
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	ErrDuplicateIdentity = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_IDENTITY",
		"a user with this identifier already exists",
		"",
	)

	ErrDuplicateUserName = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_USER_NAME",
		"user name is already taken",
		"",
	)

	ErrDuplicateLogin = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_LOGIN",
		"external login is already associated with a user",
		"",
	)

	ErrDuplicateRole = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_ROLE",
		"user is already in role",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"resource not found",
		"",
	)

	ErrConcurrencyConflict = NewBaseError(
		http.StatusConflict,
		"CONCURRENCY_CONFLICT",
		"record was modified by another unit of work",
		"",
	)

	ErrStoreUnavailable = NewBaseError(
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
		"document store unavailable",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"user name or password is incorrect",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)
)

// KindOf returns the AppError carried by err, or nil when err carries none.
func KindOf(err error) AppError {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return nil
}

// IsNotFound reports whether err carries the NotFound kind.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError wraps a document store failure while keeping the driver error as its cause.
// It matches ErrStoreUnavailable under errors.Is.
type StoreError struct {
	err     error
	details string
}

// NewStoreError creates a StoreError for err. details names the operation or key involved.
func NewStoreError(err error, details string) *StoreError {
	return &StoreError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreError) Error() string {
	return errors.Wrap(e.err, ErrStoreUnavailable.message+": "+e.details).Error()
}

// Unwrap returns the driver error
func (e *StoreError) Unwrap() error {
	return e.err
}

// Is reports whether target is the StoreUnavailable kind.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*BaseError)

	return ok && t.errorCode == ErrStoreUnavailable.errorCode
}

// HTTPCode returns the HTTP status code
func (e *StoreError) HTTPCode() int {
	return ErrStoreUnavailable.httpCode
}

// ErrorCode returns the business error code
func (e *StoreError) ErrorCode() string {
	return ErrStoreUnavailable.errorCode
}

// Message returns the user-friendly error message
func (e *StoreError) Message() string {
	return ErrStoreUnavailable.message
}

// Details returns detailed error information
func (e *StoreError) Details() string {
	return e.details
}
