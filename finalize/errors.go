package finalize

import (
	"errors"
	"fmt"
)

// ErrUnknownTask is returned when cancelling a task a scheduler does not
// hold.
var ErrUnknownTask = errors.New("unknown task")

// ErrNoScheduler is returned by Arm when a finalizer with attempts left has
// no scheduler to register with.
var ErrNoScheduler = errors.New("nil scheduler")

// DeregisterError reports that a finished task could not be removed from
// its scheduler. It is logged, never returned to the host's tick loop.
type DeregisterError struct {
	ID  TaskID
	Err error
}

func (e *DeregisterError) Error() string {
	return fmt.Sprintf("deregistering task %s: %v", e.ID, e.Err)
}

func (e *DeregisterError) Unwrap() error {
	return e.Err
}
