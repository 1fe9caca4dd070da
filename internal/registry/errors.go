package registry

import (
	"errors"
	"fmt"

	"codebeyond/internal/model"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("participant not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// LoadError reports a failed fetch of the full registry. The previous state is kept.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load participants: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError is returned before any backend call when caller input is unusable.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError means the id is not in the loaded set; the caller's view is stale.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("participant %q not found, reload the list", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

type InvalidTransitionError struct {
	ID   string
	From model.Status
	To   model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("participant %q is already %s and cannot become %s", e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// BackendError wraps a collaborator failure that happened after local validation passed.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
