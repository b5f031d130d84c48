// Package errors defines the application error taxonomy for the
// notification coordination core.
package errors

import (
	"net/http"

	"beacon/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code for the control surface
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
	return e.message
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

// Predefined error types
var (
	// Registration-related errors

	// ErrPermissionDenied marks an attempt ended by a notification
	// permission refusal. Terminal for the current attempt; the user is
	// pointed at system settings rather than retried interactively.
	ErrPermissionDenied = NewBaseError(
		http.StatusForbidden,
		"PERMISSION_DENIED",
		"notification permission was denied",
		"enable notifications in the system settings to receive alerts",
	)

	// ErrRegistrationFailed marks a transient registration failure that
	// will be retried with backoff.
	ErrRegistrationFailed = NewBaseError(
		http.StatusBadGateway,
		"REGISTRATION_FAILED",
		"device registration failed",
		"",
	)

	// ErrRetryLimitExceeded means the automatic retry budget is spent.
	ErrRetryLimitExceeded = NewBaseError(
		http.StatusTooManyRequests,
		"RETRY_LIMIT_EXCEEDED",
		"registration retry limit reached",
		"registration will be retried automatically later, or use the manual retry action",
	)

	// ErrIdentityUnavailable means the persisted device identity could not
	// be read or created. The coordinator cannot proceed without it.
	ErrIdentityUnavailable = NewBaseError(
		http.StatusInternalServerError,
		"IDENTITY_UNAVAILABLE",
		"device identity storage is unavailable",
		"",
	)

	// ErrPushTokenMissing means no push token has been supplied yet.
	ErrPushTokenMissing = NewBaseError(
		http.StatusFailedDependency,
		"PUSH_TOKEN_MISSING",
		"no push token available for registration",
		"",
	)

	// Feed-related errors

	// ErrFeedEventInvalid marks a single malformed or undeliverable feed
	// event. Logged and skipped, never propagated to the subscription.
	ErrFeedEventInvalid = NewBaseError(
		http.StatusUnprocessableEntity,
		"FEED_EVENT_INVALID",
		"message event could not be processed",
		"",
	)

	// ErrMembershipLookupFailed means the participant set of a
	// conversation could not be verified. Fails closed: the event is not
	// counted and not displayed.
	ErrMembershipLookupFailed = NewBaseError(
		http.StatusBadGateway,
		"MEMBERSHIP_LOOKUP_FAILED",
		"conversation membership could not be verified",
		"",
	)

	// Session-related errors

	ErrSessionNotActive = NewBaseError(
		http.StatusConflict,
		"SESSION_NOT_ACTIVE",
		"no signed-in session is active",
		"",
	)

	ErrToastNotVisible = NewBaseError(
		http.StatusNotFound,
		"TOAST_NOT_VISIBLE",
		"no notification is currently displayed",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"input validation failed",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"internal error",
		"",
	)
)

// StorageExecuteError represents a local storage execution error,
// implementing the AppError interface
type StorageExecuteError struct {
	err     error
	details string
}

// NewStorageExecuteError creates a storage-related error
func NewStorageExecuteError(err error, details string) AppError {
	return &StorageExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StorageExecuteError) Error() string {
	return errors.Wrap(e.err, "storage execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *StorageExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StorageExecuteError) ErrorCode() string {
	return "STORAGE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *StorageExecuteError) Message() string {
	return "local storage execution failed"
}

// Details returns detailed error information
func (e *StorageExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the underlying storage error.
func (e *StorageExecuteError) Unwrap() error {
	return e.err
}
