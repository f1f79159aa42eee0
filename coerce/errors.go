package coerce

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrIncompatible is matched by every *IncompatibleError.
var ErrIncompatible = errors.New("incompatible value")

// IncompatibleError reports that a value has no representation in Target.
type IncompatibleError struct {
	Value   reflect.Type // nil for a nil value
	Target  reflect.Type
	Message string
}

func (e *IncompatibleError) Error() string {
	from := "nil"
	if e.Value != nil {
		from = e.Value.String()
	}
	to := "nil"
	if e.Target != nil {
		to = e.Target.String()
	}
	if e.Message != "" {
		return fmt.Sprintf("cannot coerce %s to %s: %s", from, to, e.Message)
	}
	return fmt.Sprintf("cannot coerce %s to %s", from, to)
}

func (e *IncompatibleError) Unwrap() error {
	return ErrIncompatible
}
