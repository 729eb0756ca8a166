// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Circuit breaker errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// Reasoning service errors.
var (
	// ErrServiceUnavailable indicates no reasoning service is configured or reachable for the run.
	ErrServiceUnavailable = errors.New("reasoning service unavailable")

	// ErrEmptyResponse indicates the reasoning service returned no content.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedResponse indicates a response that does not follow the duplicates contract.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrBudgetExceeded indicates the daily token budget has been used up.
	ErrBudgetExceeded = errors.New("token budget exceeded")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID indicates an invalid identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrUnknownIndex indicates an ephemeral index with no mapping for the day.
	ErrUnknownIndex = errors.New("unknown ephemeral index")
)

// Storage errors.
var (
	// ErrUnsupportedDriver indicates an unknown storage driver name.
	ErrUnsupportedDriver = errors.New("unsupported store driver")

	// ErrLocked indicates another job holds the catalog apply lock.
	ErrLocked = errors.New("catalog is locked by another run")
)
