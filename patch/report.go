package patch

import (
	"errors"
	"fmt"
	"reflect"
)

// FailureKind classifies why a rule was skipped.
type FailureKind int

const (
	MemberNotFound FailureKind = iota + 1
	TypeIncompatible
	InvocationFailure
)

func (k FailureKind) String() string {
	switch k {
	case MemberNotFound:
		return "member-not-found"
	case TypeIncompatible:
		return "type-incompatible"
	case InvocationFailure:
		return "invocation-failure"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// Failure records one skipped rule.
type Failure struct {
	Index int
	Rule  string
	Kind  FailureKind
	Err   error
}

func (f Failure) String() string {
	return fmt.Sprintf("#%d %s: %s: %v", f.Index, f.Rule, f.Kind, f.Err)
}

// Report summarizes one Apply call. Applied+Skipped is the batch length.
type Report struct {
	Type     reflect.Type
	Applied  int
	Skipped  int
	Failures []Failure
}

// OK reports whether every rule applied.
func (r Report) OK() bool {
	return r.Skipped == 0
}

// Count returns the number of failures of kind k.
func (r Report) Count(k FailureKind) int {
	n := 0
	for i := range r.Failures {
		if r.Failures[i].Kind == k {
			n++
		}
	}
	return n
}

// Err joins the failure errors, or returns nil.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i := range r.Failures {
		errs[i] = fmt.Errorf("%s: %w", r.Failures[i].Rule, r.Failures[i].Err)
	}
	return errors.Join(errs...)
}

func (r Report) String() string {
	return fmt.Sprintf("%s: applied %d skipped %d", typeName(r.Type), r.Applied, r.Skipped)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
