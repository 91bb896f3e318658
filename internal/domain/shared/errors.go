// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrValidation     = errors.New("validation error")
	ErrInvalidID      = errors.New("invalid ID")
	ErrInvalidInput   = errors.New("invalid input")

	// Entity errors
	ErrNotFound = errors.New("entity not found")

	// Upstream errors
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progress", "leaderboard", "query"
	Op      string // Operation that failed, e.g., "GetStats"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Learner errors
var (
	ErrMissingLearnerID = NewDomainError("learner", "Validate", ErrInvalidRequest, "learner id is required")
	ErrInvalidLearnerID = NewDomainError("learner", "Validate", ErrInvalidRequest, "malformed learner id")
	ErrLearnerNotFound  = NewDomainError("learner", "Find", ErrNotFound, "learner not found")
)

// Leaderboard errors
var (
	ErrInvalidCohort    = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid cohort")
	ErrInvalidBasis     = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "unknown ranking basis")
	ErrBaselineNotFound = NewDomainError("leaderboard", "FindBaseline", ErrNotFound, "baseline not found")
)

// Upstream errors
var (
	ErrAttemptStoreUnavailable = NewDomainError("attempt", "List", ErrUpstreamFailure, "attempt store is unavailable")
	ErrCohortSourceUnavailable = NewDomainError("cohort", "Members", ErrUpstreamFailure, "cohort source is unavailable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidRequest checks if the error rejects the request itself.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID)
}

// IsUpstreamFailure checks if the error comes from a data source.
func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamFailure) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

// Upstream wraps a data-source error as an upstream failure.
func Upstream(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsUpstreamFailure(err) {
		return err
	}
	return WrapError(domain, op, ErrUpstreamFailure, "data source failed", err)
}
