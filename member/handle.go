package member

import (
	"fmt"
	"reflect"
)

// Kind distinguishes the two shapes of member a Handle can address.
type Kind int

const (
	Field Kind = iota
	Property
)

func (k Kind) String() string {
	switch k {
	case Field:
		return "field"
	case Property:
		return "property"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type getFunc func(target reflect.Value) (reflect.Value, error)
type setFunc func(target reflect.Value, v reflect.Value) error

// Handle is a resolved member. The zero Handle addresses nothing.
//
// Handles are immutable and safe to share between targets of the type they
// were resolved on.
type Handle struct {
	kind Kind
	name string
	typ  reflect.Type
	get  getFunc
	set  setFunc
}

func (h Handle) Kind() Kind { return h.kind }

// Name is the member name the handle was resolved under.
func (h Handle) Name() string { return h.name }

// Type is the declared type of the member.
func (h Handle) Type() reflect.Type { return h.typ }

func (h Handle) IsZero() bool { return h.set == nil && h.get == nil }

// CanGet reports whether the member is readable.
func (h Handle) CanGet() bool { return h.get != nil }

func (h Handle) String() string {
	if h.IsZero() {
		return "<no member>"
	}
	return fmt.Sprintf("%s %s %s", h.kind, h.name, typeName(h.typ))
}

// Get reads the member on target.
func (h Handle) Get(target any) (any, error) {
	v, err := h.GetValue(reflect.ValueOf(target))
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// GetValue reads the member on target. The result is always interfaceable,
// even for unexported fields.
func (h Handle) GetValue(target reflect.Value) (res reflect.Value, err error) {
	if h.get == nil {
		return reflect.Value{}, &AccessError{Member: h.name, Op: "get", Message: "member is write-only"}
	}
	defer func() {
		if r := recover(); r != nil {
			res = reflect.Value{}
			err = &AccessError{Member: h.name, Op: "get", Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	res, err = h.get(target)
	return res, wrapAccess(h.name, "get", err)
}

// Set writes v to the member on target.
func (h Handle) Set(target any, v reflect.Value) error {
	return h.SetValue(reflect.ValueOf(target), v)
}

// SetValue writes v to the member on target. v must be assignable to Type;
// panics raised by the host while setting are returned as errors.
func (h Handle) SetValue(target reflect.Value, v reflect.Value) (err error) {
	if h.set == nil {
		return &AccessError{Member: h.name, Op: "set", Message: "member is read-only"}
	}
	if !v.IsValid() {
		return &AccessError{Member: h.name, Op: "set", Message: "invalid value"}
	}
	if !v.Type().AssignableTo(h.typ) {
		return &AccessError{Member: h.name, Op: "set",
			Message: fmt.Sprintf("%s is not assignable to %s", v.Type(), h.typ)}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &AccessError{Member: h.name, Op: "set", Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	return wrapAccess(h.name, "set", h.set(target, v))
}

func wrapAccess(name, op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*AccessError); ok {
		return err
	}
	return &AccessError{Member: name, Op: op, Err: err}
}
