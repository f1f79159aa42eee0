package member

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrNotFound is matched by every *NotFoundError.
var ErrNotFound = errors.New("member not found")

// NotFoundError reports that no alias named a member of Type.
type NotFoundError struct {
	Type    reflect.Type
	Aliases []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no member of %s matches any of [%s]", typeName(e.Type), strings.Join(e.Aliases, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AccessError reports a failure reading or writing a resolved member.
type AccessError struct {
	Member  string
	Op      string // "get" or "set"
	Message string
	Err     error
}

func (e *AccessError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Member, msg)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
