package coerce

import (
	"errors"
	"reflect"
	"testing"
)

type oldLocation int

type newLocation uint8

type priority int64

const (
	anywhere oldLocation = iota
	onFloor
	onWall
)

func TestValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
		want   any
	}{
		{"assignable bool", true, reflect.TypeFor[bool](), true},
		{"assignable enum", onWall, reflect.TypeFor[oldLocation](), onWall},
		{"assignable to interface", 3, reflect.TypeFor[any](), 3},
		{"enum to enum", onWall, reflect.TypeFor[newLocation](), newLocation(2)},
		{"int to enum", 1, reflect.TypeFor[oldLocation](), onFloor},
		{"uint to enum", uint16(2), reflect.TypeFor[priority](), priority(2)},
		{"enum to int", onFloor, reflect.TypeFor[int](), 1},
		{"enum to int32", newLocation(7), reflect.TypeFor[int32](), int32(7)},
		{"nil to pointer", nil, reflect.TypeFor[*int](), (*int)(nil)},
		{"nil to slice", nil, reflect.TypeFor[[]string](), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.value, tt.target)
			if err != nil {
				t.Fatalf("Value() error = %v", err)
			}
			if !got.Type().AssignableTo(tt.target) {
				t.Fatalf("Value() type = %s, not assignable to %s", got.Type(), tt.target)
			}
			if !reflect.DeepEqual(got.Interface(), tt.want) {
				t.Errorf("Value() = %#v, want %#v", got.Interface(), tt.want)
			}
		})
	}
}

func TestValueIncompatible(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		target reflect.Type
	}{
		{"int to int64", 3, reflect.TypeFor[int64]()},
		{"int to bool", 1, reflect.TypeFor[bool]()},
		{"string to enum", "OnWall", reflect.TypeFor[oldLocation]()},
		{"float to enum", 2.0, reflect.TypeFor[oldLocation]()},
		{"enum to string", onWall, reflect.TypeFor[string]()},
		{"negative into unsigned enum", -1, reflect.TypeFor[newLocation]()},
		{"overflow into uint8 enum", 300, reflect.TypeFor[newLocation]()},
		{"huge uint into signed", uint64(1 << 63), reflect.TypeFor[priority]()},
		{"nil to int", nil, reflect.TypeFor[int]()},
		{"nil target", 1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Value(tt.value, tt.target)
			if !errors.Is(err, ErrIncompatible) {
				t.Fatalf("Value() error = %v, want ErrIncompatible", err)
			}
			if got.IsValid() {
				t.Errorf("Value() returned valid %v alongside error", got)
			}
		})
	}
}

// Every pairing of a small value zoo against a type zoo either produces an
// assignable value or ErrIncompatible.
func TestValueTotal(t *testing.T) {
	values := []any{nil, 0, -5, uint(9), int8(-1), true, "x", 1.5, onWall, newLocation(255),
		priority(-3), []int{1}, map[string]int{}, struct{}{}, &struct{ A int }{}}
	targets := []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[uint8](), reflect.TypeFor[oldLocation](),
		reflect.TypeFor[newLocation](), reflect.TypeFor[priority](), reflect.TypeFor[bool](),
		reflect.TypeFor[string](), reflect.TypeFor[any](), reflect.TypeFor[[]int](),
		reflect.TypeFor[error](), reflect.TypeFor[struct{}](),
	}
	for _, v := range values {
		for _, target := range targets {
			got, err := Value(v, target)
			if err != nil {
				if !errors.Is(err, ErrIncompatible) {
					t.Errorf("Value(%#v, %s) error = %v, not ErrIncompatible", v, target, err)
				}
				continue
			}
			if !got.Type().AssignableTo(target) {
				t.Errorf("Value(%#v, %s) = %s, not assignable", v, target, got.Type())
			}
		}
	}
}

func TestReflectInterfaceValue(t *testing.T) {
	holder := struct{ V any }{V: 2}
	v := reflect.ValueOf(holder).Field(0)
	got, err := Reflect(v, reflect.TypeFor[oldLocation]())
	if err != nil {
		t.Fatalf("Reflect() error = %v", err)
	}
	if got.Interface() != onWall {
		t.Errorf("Reflect() = %v, want onWall", got.Interface())
	}
}

func TestKinds(t *testing.T) {
	if !IsEnum(reflect.TypeFor[oldLocation]()) || IsEnum(reflect.TypeFor[int]()) {
		t.Errorf("IsEnum misclassifies")
	}
	if !IsInteger(reflect.TypeFor[uint32]()) || IsInteger(reflect.TypeFor[priority]()) {
		t.Errorf("IsInteger misclassifies")
	}
	if IsEnum(reflect.TypeFor[string]()) || IsInteger(nil) {
		t.Errorf("non-integers classified as integers")
	}
	if n, ok := Ordinal(onWall); !ok || n != 2 {
		t.Errorf("Ordinal(onWall) = %d, %v", n, ok)
	}
	if _, ok := Ordinal("2"); ok {
		t.Errorf("Ordinal(string) ok")
	}
}
