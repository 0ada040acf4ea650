package tracker

import (
	"errors"
	"fmt"
)

// Sentinel errors for tracker operations. Returned errors wrap one of
// these; classify them with errors.Is or CodeOf.
var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidTaskState  = errors.New("task status does not allow logging time")
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrStoreFailure      = errors.New("store failure")
)

// Code is the machine-readable outcome of an operation.
type Code string

const (
	CodeOK                Code = "ok"
	CodeInvalidTransition Code = "invalid_transition"
	CodeInvalidTaskState  Code = "invalid_task_state"
	CodeValidation        Code = "validation_error"
	CodeNotFound          Code = "not_found"
	CodeStoreFailure      Code = "store_failure"
)

// CodeOf maps err to its Code. Unclassified errors count as store failures.
func CodeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrInvalidTaskState):
		return CodeInvalidTaskState
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeStoreFailure
	}
}

// Result is the success/failure envelope handed to callers that present
// feedback rather than propagate errors.
type Result struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Reason  string `json:"reason,omitempty"`
}

// ResultOf converts the error returned by an operation into a Result.
func ResultOf(err error) Result {
	if err == nil {
		return Result{Success: true, Code: CodeOK}
	}
	return Result{Success: false, Code: CodeOf(err), Reason: err.Error()}
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify leaves domain errors untouched and marks everything else as a
// store failure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrInvalidTransition, ErrInvalidTaskState, ErrValidation, ErrNotFound, ErrStoreFailure} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
