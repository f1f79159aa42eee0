package member

import (
	"fmt"
	"reflect"
)

// Schema answers member lookups by name for one type.
type Schema interface {
	Lookup(name string) (Handle, bool)
}

// Provider is implemented by targets that describe their own members.
type Provider interface {
	Member(name string) (Handle, bool)
}

// Table is an explicit Schema, keyed by member name.
type Table map[string]Handle

func (t Table) Lookup(name string) (Handle, bool) {
	h, ok := t[name]
	if !ok || h.IsZero() {
		return Handle{}, false
	}
	return h, true
}

// FieldOf builds a field handle from an accessor returning the field's
// address on *T.
func FieldOf[T, F any](name string, ptr func(*T) *F) Handle {
	addr := func(target reflect.Value) (*F, error) {
		obj, err := targetOf[T](target)
		if err != nil {
			return nil, err
		}
		return ptr(obj), nil
	}
	return Handle{
		kind: Field,
		name: name,
		typ:  reflect.TypeFor[F](),
		get: func(target reflect.Value) (reflect.Value, error) {
			p, err := addr(target)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(p).Elem(), nil
		},
		set: func(target reflect.Value, v reflect.Value) error {
			p, err := addr(target)
			if err != nil {
				return err
			}
			reflect.ValueOf(p).Elem().Set(v)
			return nil
		},
	}
}

// PropertyOf builds a property handle from accessor functions on *T. get may
// be nil for write-only properties.
func PropertyOf[T, F any](name string, get func(*T) F, set func(*T, F)) Handle {
	h := Handle{
		kind: Property,
		name: name,
		typ:  reflect.TypeFor[F](),
		set: func(target reflect.Value, v reflect.Value) error {
			obj, err := targetOf[T](target)
			if err != nil {
				return err
			}
			set(obj, valueAs[F](v))
			return nil
		},
	}
	if get != nil {
		h.get = func(target reflect.Value) (reflect.Value, error) {
			obj, err := targetOf[T](target)
			if err != nil {
				return reflect.Value{}, err
			}
			val := get(obj)
			return reflect.ValueOf(&val).Elem(), nil
		}
	}
	return h
}

// PropertyOfE is PropertyOf for setters that can refuse a value.
func PropertyOfE[T, F any](name string, get func(*T) F, set func(*T, F) error) Handle {
	h := PropertyOf(name, get, func(*T, F) {})
	h.set = func(target reflect.Value, v reflect.Value) error {
		obj, err := targetOf[T](target)
		if err != nil {
			return err
		}
		if err := set(obj, valueAs[F](v)); err != nil {
			return &AccessError{Member: name, Op: "set", Err: err}
		}
		return nil
	}
	return h
}

func targetOf[T any](target reflect.Value) (*T, error) {
	if !target.IsValid() || !target.CanInterface() {
		return nil, fmt.Errorf("invalid target for %s", reflect.TypeFor[*T]())
	}
	obj, ok := target.Interface().(*T)
	if !ok {
		return nil, fmt.Errorf("target is %s, want %s", target.Type(), reflect.TypeFor[*T]())
	}
	if obj == nil {
		return nil, fmt.Errorf("nil %s", reflect.TypeFor[*T]())
	}
	return obj, nil
}

func valueAs[F any](v reflect.Value) F {
	var f F
	reflect.ValueOf(&f).Elem().Set(v)
	return f
}
