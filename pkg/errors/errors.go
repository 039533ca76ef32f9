package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error code to its HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden, ErrPermissionDenied, ErrDiagnosisLocked, ErrInvalidAccessCode:
		return http.StatusForbidden
	case ErrNotificationDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal

	// Diagnosis authorization codes. They stay distinct so clients can
	// tell "re-enter the code" apart from "request a new one".
	ErrPermissionDenied
	ErrDiagnosisLocked
	ErrInvalidAccessCode
	ErrNotificationDelivery
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// Common errors
func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// PermissionDenied covers a role lacking the base capability for an action.
func PermissionDenied(action string) *AppError {
	return &AppError{
		Code:    ErrPermissionDenied,
		Message: fmt.Sprintf("permission denied: %s", action),
	}
}

// DiagnosisLocked covers a diagnosis write attempted without an unlock.
func DiagnosisLocked() *AppError {
	return &AppError{
		Code:    ErrDiagnosisLocked,
		Message: "invalid or missing access code for diagnosis update",
	}
}

// InvalidAccessCode covers a submitted code that does not match, has
// expired, or was already consumed.
func InvalidAccessCode() *AppError {
	return &AppError{
		Code:    ErrInvalidAccessCode,
		Message: "invalid or missing access code for diagnosis update",
	}
}

// NotificationDelivery covers an access code that was issued but whose
// outbound email failed.
func NotificationDelivery(err error) *AppError {
	return &AppError{
		Code:    ErrNotificationDelivery,
		Message: "failed to deliver access code notification",
		Err:     err,
	}
}

// Is reports whether err carries the given application error code.
func Is(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
