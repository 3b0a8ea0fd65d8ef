package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"todo-sync/internal/errors"
)

// ErrorHandler provides centralized error handling for command handlers
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler that logs through the slog
// default installed by logging.Setup
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{}
}

// WithLogger sets the logger failures are recorded on
func (eh *ErrorHandler) WithLogger(logger *slog.Logger) *ErrorHandler {
	eh.logger = logger
	return eh
}

// Handle provides user-friendly error messages for application errors.
// The user message hides the cause, so errors worth logging are recorded
// with their cause first.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if !errors.IsAppError(err) && stderrors.Is(err, context.DeadlineExceeded) {
		err = errors.WrapError(err, errors.ErrorTypeTimeout, "operation timed out: "+operation)
	}

	if appErr, ok := errors.AsAppError(err); ok {
		if errors.ShouldLogError(err) {
			eh.log(operation, appErr)
		}
		userMessage := errors.GetUserMessage(err)
		return fmt.Errorf("failed to %s: %s", operation, userMessage)
	}

	// Fallback for unknown errors
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func (eh *ErrorHandler) log(operation string, appErr *errors.AppError) {
	logger := eh.logger
	if logger == nil {
		logger = slog.Default()
	}

	attrs := []any{"operation", operation, "code", appErr.Code, "error", appErr.Error()}
	if status := appErr.StatusCode(); status != 0 {
		attrs = append(attrs, "status_code", status)
	}
	logger.Error("command failed", attrs...)
}

// HandleSimple provides user-friendly error messages without operation context
func (eh *ErrorHandler) HandleSimple(err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return fmt.Errorf("%s", errors.GetUserMessage(err))
	}
	return err
}

// IsValidationError checks if an error is a validation error
func (eh *ErrorHandler) IsValidationError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeValidation) ||
		errors.IsErrorType(err, errors.ErrorTypeInvalidInput)
}

// IsNotFoundError checks if an error is a not found error
func (eh *ErrorHandler) IsNotFoundError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeNotFound)
}

// IsStorageError checks if an error came from the local cache
func (eh *ErrorHandler) IsStorageError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeStorage)
}

// IsRemoteError checks if an error came from the remote service
func (eh *ErrorHandler) IsRemoteError(err error) bool {
	return errors.IsErrorType(err, errors.ErrorTypeRemote) ||
		errors.IsErrorType(err, errors.ErrorTypeTimeout)
}

// GetErrorCode returns the error code for structured errors
func (eh *ErrorHandler) GetErrorCode(err error) string {
	return errors.GetErrorCode(err)
}
