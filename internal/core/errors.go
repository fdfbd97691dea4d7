package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrPersistence     = errors.New("persistence failure")
)

type Resource string

const (
	ResourceWaiting Resource = "waiting"
	ResourceRunning Resource = "running"
	ResourceDone    Resource = "done"
)

// PersistenceError reports a projection write that failed after the
// in-memory state had already changed.
type PersistenceError struct {
	Resource Resource
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s jobs: %v", e.Resource, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
