package errors

import (
	"errors"
	"fmt"
)

// Query error kinds. Callers match them with errors.Is; the original cause
// stays reachable through the same chain.
var (
	// ErrInvalidPageRequest reports a bad page index, size or sort (caller input)
	ErrInvalidPageRequest = errors.New("invalid page request")
	// ErrQueryExecutionFailure reports an unreachable store, an untranslatable predicate or a timeout
	ErrQueryExecutionFailure = errors.New("query execution failure")
	// ErrMappingFailure reports a record that could not be projected to its DTO
	ErrMappingFailure = errors.New("mapping failure")
)

// InvalidPageRequest builds an ErrInvalidPageRequest with a caller-facing reason
func InvalidPageRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPageRequest, fmt.Sprintf(format, args...))
}

// QueryExecutionFailure wraps a store error for the named operation
func QueryExecutionFailure(operation string, cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, ErrQueryExecutionFailure) {
		return cause
	}
	return fmt.Errorf("%w: %s: %w", ErrQueryExecutionFailure, operation, cause)
}

// MappingFailure wraps a projection error for the record at index
func MappingFailure(index int, cause error) error {
	if errors.Is(cause, ErrMappingFailure) {
		return fmt.Errorf("record %d: %w", index, cause)
	}
	return fmt.Errorf("%w: record %d: %w", ErrMappingFailure, index, cause)
}

// IsInvalidPageRequest reports whether err is an ErrInvalidPageRequest
func IsInvalidPageRequest(err error) bool {
	return errors.Is(err, ErrInvalidPageRequest)
}

// IsQueryExecutionFailure reports whether err is an ErrQueryExecutionFailure
func IsQueryExecutionFailure(err error) bool {
	return errors.Is(err, ErrQueryExecutionFailure)
}

// IsMappingFailure reports whether err is an ErrMappingFailure
func IsMappingFailure(err error) bool {
	return errors.Is(err, ErrMappingFailure)
}
