// Package coerce converts a desired value into the exact representation of
// a member resolved on a host object.
//
// The conversion is deliberately narrow. Values already assignable to the
// target pass through; otherwise only integer/enumeration drift is bridged:
//
//	enum  -> enum     by ordinal
//	int   -> enum     by ordinal
//	enum  -> int      by ordinal
//
// Here an enumeration is a defined integer type declared in a package (for
// example `type BuildLocation int32`) and an integer is one of the
// predeclared integer types. Everything else is an *IncompatibleError.
// Value never panics.
package coerce

import (
	"fmt"
	"math"
	"reflect"

	"github.com/signadot/driftpatch/debug"
)

// Value coerces v to target.
func Value(v any, target reflect.Type) (reflect.Value, error) {
	return Reflect(reflect.ValueOf(v), target)
}

// Reflect coerces v to target. An invalid v stands for nil.
func Reflect(v reflect.Value, target reflect.Type) (res reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = reflect.Value{}
			err = &IncompatibleError{Value: typeOf(v), Target: target, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()
	res, err = coerce(v, target)
	if debug.Coerce() {
		if err != nil {
			debug.Logf("coerce %s -> %s: %v\n", typeOf(v), target, err)
		} else {
			debug.Logf("coerce %s -> %s: %v\n", typeOf(v), target, res)
		}
	}
	return res, err
}

func coerce(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	if target == nil {
		return reflect.Value{}, &IncompatibleError{Value: typeOf(v), Message: "no target type"}
	}
	if v.IsValid() && v.Type().AssignableTo(target) {
		return v, nil
	}
	if v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			v = reflect.Value{}
		} else {
			return coerce(v.Elem(), target)
		}
	}
	if !v.IsValid() {
		if nillable(target.Kind()) {
			return reflect.Zero(target), nil
		}
		return reflect.Value{}, &IncompatibleError{Target: target, Message: "nil value"}
	}
	vt := v.Type()
	switch {
	case IsEnum(target) && IsEnum(vt),
		IsEnum(target) && IsInteger(vt),
		IsInteger(target) && IsEnum(vt):
		return convertOrdinal(v, target)
	}
	return reflect.Value{}, &IncompatibleError{Value: vt, Target: target}
}

// IsEnum reports whether t is a defined integer type declared in a package.
func IsEnum(t reflect.Type) bool {
	return t != nil && isIntKind(t.Kind()) && t.PkgPath() != "" && t.Name() != ""
}

// IsInteger reports whether t is a predeclared integer type.
func IsInteger(t reflect.Type) bool {
	return t != nil && isIntKind(t.Kind()) && t.PkgPath() == ""
}

// Ordinal returns the integer value of an enum or integer v.
func Ordinal(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || !isIntKind(rv.Kind()) {
		return 0, false
	}
	if isSigned(rv.Kind()) {
		return rv.Int(), true
	}
	u := rv.Uint()
	if u > math.MaxInt64 {
		return 0, false
	}
	return int64(u), true
}

func convertOrdinal(v reflect.Value, target reflect.Type) (reflect.Value, error) {
	res := reflect.New(target).Elem()
	overflow := func() (reflect.Value, error) {
		return reflect.Value{}, &IncompatibleError{Value: v.Type(), Target: target,
			Message: fmt.Sprintf("ordinal %v overflows %s", v, target)}
	}
	switch {
	case isSigned(v.Kind()) && isSigned(target.Kind()):
		i := v.Int()
		if res.OverflowInt(i) {
			return overflow()
		}
		res.SetInt(i)
	case isSigned(v.Kind()):
		i := v.Int()
		if i < 0 || res.OverflowUint(uint64(i)) {
			return overflow()
		}
		res.SetUint(uint64(i))
	case isSigned(target.Kind()):
		u := v.Uint()
		if u > math.MaxInt64 || res.OverflowInt(int64(u)) {
			return overflow()
		}
		res.SetInt(int64(u))
	default:
		u := v.Uint()
		if res.OverflowUint(u) {
			return overflow()
		}
		res.SetUint(u)
	}
	return res, nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isSigned(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

func typeOf(v reflect.Value) reflect.Type {
	if !v.IsValid() {
		return nil
	}
	return v.Type()
}
