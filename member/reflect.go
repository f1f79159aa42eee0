package member

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
	"unsafe"
)

var errorType = reflect.TypeFor[error]()

// typeSchema looks members up on a concrete type through reflection.
type typeSchema struct {
	t reflect.Type
}

func (s typeSchema) Lookup(name string) (Handle, bool) {
	if h, ok := lookupProperty(s.t, name); ok {
		return h, true
	}
	return lookupField(s.t, name)
}

// lookupProperty finds a SetName setter with an optional Name or GetName
// getter. Only exported names can be properties.
func lookupProperty(t reflect.Type, name string) (Handle, bool) {
	if t == nil || !isExported(name) {
		return Handle{}, false
	}
	setter, ok := t.MethodByName("Set" + name)
	if !ok {
		return Handle{}, false
	}
	// setter.Type includes the receiver.
	st := setter.Type
	if st.NumIn() != 2 {
		return Handle{}, false
	}
	switch st.NumOut() {
	case 0:
	case 1:
		if st.Out(0) != errorType {
			return Handle{}, false
		}
	default:
		return Handle{}, false
	}
	typ := st.In(1)
	h := Handle{kind: Property, name: name, typ: typ}
	idx := setter.Index
	returnsErr := st.NumOut() == 1
	h.set = func(target reflect.Value, v reflect.Value) error {
		if err := checkTarget(target, t); err != nil {
			return err
		}
		out := target.Method(idx).Call([]reflect.Value{v})
		if returnsErr && !out[0].IsNil() {
			return &AccessError{Member: name, Op: "set", Err: out[0].Interface().(error)}
		}
		return nil
	}
	for _, gn := range []string{name, "Get" + name} {
		getter, ok := t.MethodByName(gn)
		if !ok {
			continue
		}
		gt := getter.Type
		if gt.NumIn() != 1 || gt.NumOut() != 1 || gt.Out(0) != typ {
			continue
		}
		gi := getter.Index
		h.get = func(target reflect.Value) (reflect.Value, error) {
			if err := checkTarget(target, t); err != nil {
				return reflect.Value{}, err
			}
			return target.Method(gi).Call(nil)[0], nil
		}
		break
	}
	return h, true
}

// lookupField finds a struct field, exported or not, on a pointer to struct.
func lookupField(t reflect.Type, name string) (Handle, bool) {
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return Handle{}, false
	}
	sf, ok := t.Elem().FieldByName(name)
	if !ok {
		return Handle{}, false
	}
	index := sf.Index
	addr := func(target reflect.Value) (reflect.Value, error) {
		if err := checkTarget(target, t); err != nil {
			return reflect.Value{}, err
		}
		if target.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", t)
		}
		fv, err := target.Elem().FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, err
		}
		if !fv.CanSet() {
			fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
		}
		return fv, nil
	}
	return Handle{
		kind: Field,
		name: name,
		typ:  sf.Type,
		get:  addr,
		set: func(target reflect.Value, v reflect.Value) error {
			fv, err := addr(target)
			if err != nil {
				return err
			}
			fv.Set(v)
			return nil
		},
	}, true
}

func checkTarget(target reflect.Value, t reflect.Type) error {
	if !target.IsValid() {
		return fmt.Errorf("invalid target for %s", t)
	}
	if target.Type() != t {
		return fmt.Errorf("target is %s, member resolved on %s", target.Type(), t)
	}
	return nil
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
