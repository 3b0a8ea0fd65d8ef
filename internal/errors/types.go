package errors

import (
	"fmt"
)

// ErrorType classifies a failure by where it happened. Storage failures come
// from the local cache and are returned to the caller; remote and timeout
// failures come from the remote task service and are only logged by the sync
// engine.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeStorage
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypeRemote
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeStorage:
		return "storage"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// AppError is a classified task store failure. Context carries the failed
// operation and, for remote errors, the HTTP status_code (zero when no
// response arrived).
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type.String(), e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type.String(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code. A target carrying a non-zero status_code
// also requires the same status, so errors.Is(err, NewRemoteError("", 404, nil))
// selects only not-found responses from the remote service.
func (e *AppError) Is(target error) bool {
	appErr, ok := target.(*AppError)
	if !ok || e.Type != appErr.Type || e.Code != appErr.Code {
		return false
	}
	if want := appErr.StatusCode(); want != 0 {
		return e.StatusCode() == want
	}
	return true
}

// IsType checks if this error is of the specified type
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// StatusCode returns the remote HTTP status recorded in Context, or zero
func (e *AppError) StatusCode() int {
	if value, ok := e.GetContext("status_code"); ok {
		if code, ok := value.(int); ok {
			return code
		}
	}
	return 0
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext retrieves context information from the error
func (e *AppError) GetContext(key string) (interface{}, bool) {
	if e.Context == nil {
		return nil, false
	}
	value, exists := e.Context[key]
	return value, exists
}
