package diagnose

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates required visitor input is missing.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a pattern or log does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPattern indicates an admin-supplied pattern breaks an invariant.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrAlreadyMatched indicates a log already points at a curated pattern
	// and cannot be converted into a new one.
	ErrAlreadyMatched = errors.New("diagnostic log already matched a pattern")
)

// MsgDescriptionRequired is the visitor-facing message for an empty description.
const MsgDescriptionRequired = "Description is required"

// ValidationError carries a visitor-facing message. It matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistErr wraps err unless it is nil or a domain sentinel the caller should see as-is.
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
