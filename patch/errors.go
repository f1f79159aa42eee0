package patch

import (
	"errors"
	"fmt"
)

// ErrInvocation is matched by every *InvocationError.
var ErrInvocation = errors.New("invocation failed")

// InvocationError reports that computing a value or running a setter failed.
type InvocationError struct {
	Member string
	Err    error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %s: %v", e.Member, e.Err)
}

func (e *InvocationError) Unwrap() []error {
	return []error{ErrInvocation, e.Err}
}
