package errors

import (
	"fmt"
	"time"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	// General errors
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Identity errors
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeNotAuthorized   ErrorCode = "NOT_AUTHORIZED"
	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"

	// Role errors
	ErrCodeRoleAlreadyAssigned ErrorCode = "ROLE_ALREADY_ASSIGNED"

	// Connection request errors
	ErrCodeSelfRequestNotAllowed ErrorCode = "SELF_REQUEST_NOT_ALLOWED"
	ErrCodeRequestAlreadyExists  ErrorCode = "REQUEST_ALREADY_EXISTS"
	ErrCodeRequestNotFound       ErrorCode = "REQUEST_NOT_FOUND"
	ErrCodeInvalidTransition     ErrorCode = "INVALID_TRANSITION"

	// Persistence errors
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// AppError is the typed error returned by services to the delivery layer.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a "not found" class error.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeUserNotFound || e.Code == ErrCodeRequestNotFound
}

// IsConflict reports whether the error is a conflict with existing state.
func (e *AppError) IsConflict() bool {
	return e.Code == ErrCodeRequestAlreadyExists ||
		e.Code == ErrCodeRoleAlreadyAssigned ||
		e.Code == ErrCodeInvalidTransition
}

// IsValidation reports whether the error is a validation error.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation ||
		e.Code == ErrCodeBadRequest ||
		e.Code == ErrCodeSelfRequestNotAllowed
}

// IsUnauthorized reports whether the error is an identity or permission error.
func (e *AppError) IsUnauthorized() bool {
	return e.Code == ErrCodeUnauthenticated || e.Code == ErrCodeNotAuthorized
}

// IsInternal reports whether the error is an internal or infrastructure error.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStoreUnavailable
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRequestID attaches the request id to the error.
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with an application error code.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Constructors for the errors services raise most often.

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewUnauthenticatedError(reason string) *AppError {
	return New(ErrCodeUnauthenticated, fmt.Sprintf("Unauthenticated: %s", reason)).
		WithDetail("reason", reason)
}

func NewNotAuthorizedError(reason string) *AppError {
	return New(ErrCodeNotAuthorized, fmt.Sprintf("Not authorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewUserNotFoundError(id interface{}) *AppError {
	return New(ErrCodeUserNotFound, "User not found").
		WithDetail("user_id", id)
}

func NewRoleAlreadyAssignedError(role string) *AppError {
	return New(ErrCodeRoleAlreadyAssigned, "Role has already been assigned and cannot be changed").
		WithDetail("role", role)
}

func NewSelfRequestError() *AppError {
	return New(ErrCodeSelfRequestNotAllowed, "Cannot send a connection request to yourself")
}

func NewRequestAlreadyExistsError(receiverID int64) *AppError {
	return New(ErrCodeRequestAlreadyExists, "A connection request to this user already exists").
		WithDetail("receiver_id", receiverID)
}

func NewRequestNotFoundError(requestID int64) *AppError {
	return New(ErrCodeRequestNotFound, "Connection request not found").
		WithDetail("request_id", requestID)
}

func NewInvalidTransitionError(from, to string) *AppError {
	return New(ErrCodeInvalidTransition, fmt.Sprintf("Cannot transition request from %s to %s", from, to)).
		WithDetail("from", from).
		WithDetail("to", to)
}

func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStoreUnavailable, fmt.Sprintf("Store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError extracts an AppError from err if it is one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
