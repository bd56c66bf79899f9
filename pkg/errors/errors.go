package errors

import (
	"errors"
	"fmt"
)

// Generic error types

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists indicates a resource already exists
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Portfolio errors

var (
	// ErrHoldingNotFound indicates the user has no position in the symbol
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrInsufficientQuantity indicates a sell larger than the held quantity
	ErrInsufficientQuantity = errors.New("insufficient quantity")

	// ErrNotWatched indicates the symbol is not on the user's watchlist
	ErrNotWatched = errors.New("symbol not on watchlist")

	// ErrAlreadyWatched indicates the symbol is already on the watchlist
	ErrAlreadyWatched = errors.New("symbol already on watchlist")
)

// Market data errors

var (
	// ErrSymbolNotFound indicates the market data source does not know the symbol
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrGatewayUnavailable indicates the market data source failed or timed out
	ErrGatewayUnavailable = errors.New("market data gateway unavailable")
)

// Conversation errors

var (
	// ErrConversation indicates the language model capability failed for a turn
	ErrConversation = errors.New("conversation processing failed")

	// ErrTurnInProgress indicates another turn for the same user holds the lock
	ErrTurnInProgress = errors.New("turn already in progress for user")
)

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets callers match validation errors with errors.Is(err, ErrInvalidInput)
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
