package fluxo

import (
	"errors"
	"fmt"
	"strings"

	internalTypes "github.com/fluxo-app/fluxo-go/internal/types"
)

var (
	// ErrNotFound is returned when resource not found
	ErrNotFound = internalTypes.ErrNotFound

	// ErrRateLimited is returned when rate limited
	ErrRateLimited = internalTypes.ErrRateLimited

	// ErrTimeout is returned on timeout
	ErrTimeout = internalTypes.ErrTimeout

	// ErrServerError is returned for server errors
	ErrServerError = internalTypes.ErrServerError

	// ErrCircuitOpen is returned while the backend circuit breaker is open
	ErrCircuitOpen = internalTypes.ErrCircuitOpen

	// ErrInvalidRequest is returned for invalid requests
	ErrInvalidRequest = errors.New("invalid request")

	// ErrLoadFailed is returned when transactions could not be loaded
	ErrLoadFailed = errors.New("failed to load transactions")

	// ErrSaveFailed is returned when the backend rejected a create or update
	ErrSaveFailed = errors.New("failed to save transaction")

	// ErrStale is returned when a newer request superseded this one
	ErrStale = errors.New("superseded by a newer request")
)

// Error represents an API error
type Error = internalTypes.Error

// ValidationError represents validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors struct {
	Errors []*ValidationError `json:"errors"`
}

// Error implements the error interface
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d validation errors occurred", len(e.Errors))
}

// Is lets errors.Is(err, ErrInvalidRequest) match validation failures
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrInvalidRequest
}

func (e *ValidationErrors) add(field, message string, value interface{}) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message, Value: value})
}

// orNil returns nil when no validation error was recorded
func (e *ValidationErrors) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewError creates a new API error
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an error with additional context
func WrapError(err error, code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsRetryable checks if error is retryable
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrServerError) {
		return true
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500 || apiErr.StatusCode == 429
	}

	return false
}

// UserMessage returns the message to show for err: the backend-provided
// message when there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var verr *ValidationErrors
	if errors.As(err, &verr) && len(verr.Errors) > 0 {
		msgs := make([]string, 0, len(verr.Errors))
		for _, e := range verr.Errors {
			msgs = append(msgs, e.Field+": "+e.Message)
		}
		return strings.Join(msgs, "; ")
	}

	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.StatusCode < 500 {
		return apiErr.Message
	}

	return fallback
}
