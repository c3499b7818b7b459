package errors

import "fmt"

// ErrorCode represents a Reel error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
	ErrCaptureUnavailable ErrorCode = "CAPTURE_UNAVAILABLE" // 503
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// ReelError represents a structured error with code, status, and details.
type ReelError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *ReelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ReelError {
	return &ReelError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session cannot be found.
func NewNotFound(id string) *ReelError {
	return &ReelError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("session not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewStorageUnavailable creates a 503 error for failed storage init or writes.
// Fatal to the recorder's current enable-cycle; recoverable by re-enabling.
func NewStorageUnavailable(err error) *ReelError {
	msg := "storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("storage unavailable: %v", err)
	}
	return &ReelError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewCaptureUnavailable creates a 503 error for a capture source that cannot
// start or stop.
func NewCaptureUnavailable(err error) *ReelError {
	msg := "capture unavailable"
	if err != nil {
		msg = fmt.Sprintf("capture unavailable: %v", err)
	}
	return &ReelError{
		Code:    ErrCaptureUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ReelError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ReelError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a ReelError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*ReelError); ok {
		return rErr.Code == code
	}
	return false
}
