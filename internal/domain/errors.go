// Package domain holds the core types and error taxonomy for the document
// revision engine: blocks, tokens, compare/merge results, and the workflow
// state machine. It has no dependency on persistence or transport.
package domain

import "fmt"

// NotFoundError indicates a lookup of a missing document, block, or workflow.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrNotFound constructs a NotFoundError.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError indicates malformed input: an unknown enum value, an
// illegal workflow or resolution transition, or a delta range out of bounds.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation constructs a ValidationError.
func ErrValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError indicates a request that collides with existing state, such
// as a database constraint violation or a stored workflow state that
// disagrees with the state projected from its event log.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrConflict constructs a ConflictError.
func ErrConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// AccessDeniedError is kept for taxonomy parity with the HTTP error mapper;
// the engine itself never returns it since authorization is out of scope.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ErrAccessDenied constructs an AccessDeniedError.
func ErrAccessDenied(format string, args ...any) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// HashMismatchError indicates a block's stored clause_hash disagrees with
// hash(canonical_text) at load time.
type HashMismatchError struct {
	BlockID  string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("block %s: clause hash mismatch: expected %s, got %s", e.BlockID, e.Expected, e.Actual)
}

// ErrHashMismatch constructs a HashMismatchError.
func ErrHashMismatch(blockID, expected, actual string) *HashMismatchError {
	return &HashMismatchError{BlockID: blockID, Expected: expected, Actual: actual}
}
