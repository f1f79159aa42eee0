package patch

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/signadot/driftpatch/member"
)

// Source computes a rule's desired value at apply time. h is the member
// the rule resolved to on target.
type Source func(target any, h member.Handle) (any, error)

// Rule is one best-effort attribute write.
//
// Aliases are tried in order and the first one naming a member of the
// target wins. The desired value is Value unless Source is set. When Hint is
// set the value is first coerced to Hint, then to the member's type; this
// lets configuration hand over plain ordinals for enum members.
type Rule struct {
	Name    string
	Aliases []string
	Value   any
	Source  Source
	Hint    reflect.Type
}

// Set returns a rule writing value to the first of aliases found.
func Set(value any, aliases ...string) Rule {
	return Rule{Aliases: aliases, Value: value}
}

// Compute returns a rule writing the result of src.
func Compute(src Source, aliases ...string) Rule {
	return Rule{Aliases: aliases, Source: src}
}

func (r Rule) Named(name string) Rule {
	r.Name = name
	return r
}

func (r Rule) WithHint(t reflect.Type) Rule {
	r.Hint = t
	return r
}

func (r Rule) String() string {
	if r.Name != "" {
		return r.Name
	}
	return "[" + strings.Join(r.Aliases, "|") + "]"
}

func (r Rule) desired(target any, h member.Handle) (v any, err error) {
	if r.Source == nil {
		return r.Value, nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("value source panicked: %v", p)
		}
	}()
	return r.Source(target, h)
}

// Batch is an ordered set of rules applied to one target.
type Batch []Rule

// Names lists the rule names in order.
func (b Batch) Names() []string {
	res := make([]string, len(b))
	for i := range b {
		res[i] = b[i].String()
	}
	return res
}
