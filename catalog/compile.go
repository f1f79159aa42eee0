package catalog

import (
	"fmt"
	"math"
	"os"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/signadot/driftpatch/cache"
	"github.com/signadot/driftpatch/coerce"
	"github.com/signadot/driftpatch/finalize"
	"github.com/signadot/driftpatch/member"
	"github.com/signadot/driftpatch/patch"
)

// TypeSet names the types a rule's type field may refer to.
type TypeSet map[string]reflect.Type

// DefaultTypes holds the predeclared scalar types.
func DefaultTypes() TypeSet {
	ts := TypeSet{}
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](), reflect.TypeFor[string](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		ts[t.Name()] = t
	}
	return ts
}

// With returns a copy of ts that also names t.
func (ts TypeSet) With(name string, t reflect.Type) TypeSet {
	res := make(TypeSet, len(ts)+1)
	for k, v := range ts {
		res[k] = v
	}
	res[name] = t
	return res
}

// Plan is the compiled form of a Target.
type Plan struct {
	Target string
	// Batch holds every rule, critical ones included.
	Batch patch.Batch
	// Setup holds the rules that are not critical, for hosts that hand the
	// critical ones to a finalizer.
	Setup    patch.Batch
	Critical patch.Batch
	Attempts int
}

// Compile turns every target into a Plan.
func (c *Catalog) Compile(types TypeSet) (map[string]*Plan, error) {
	if types == nil {
		types = DefaultTypes()
	}
	res := make(map[string]*Plan, len(c.Targets))
	for _, name := range c.TargetNames() {
		p, err := c.CompileTarget(name, types)
		if err != nil {
			return nil, err
		}
		res[name] = p
	}
	return res, nil
}

// CompileTarget compiles the single target name.
func (c *Catalog) CompileTarget(name string, types TypeSet) (*Plan, error) {
	t, ok := c.Targets[name]
	if !ok || t == nil {
		return nil, &ValidationError{Target: name, Rule: -1, Message: "no such target"}
	}
	if types == nil {
		types = DefaultTypes()
	}
	p := &Plan{Target: name, Attempts: finalize.DefaultAttempts}
	if t.Attempts != nil {
		p.Attempts = *t.Attempts
	}
	for i := range t.Rules {
		rule, err := compileRule(&t.Rules[i], i, types)
		if err != nil {
			return nil, &ValidationError{Target: name, Rule: i, Message: err.Error()}
		}
		p.Batch = append(p.Batch, rule)
		if t.Rules[i].Critical {
			p.Critical = append(p.Critical, rule)
		} else {
			p.Setup = append(p.Setup, rule)
		}
	}
	return p, nil
}

func compileRule(spec *RuleSpec, i int, types TypeSet) (patch.Rule, error) {
	rule := patch.Rule{Name: spec.label(i), Aliases: append([]string(nil), spec.Aliases...)}
	var typ reflect.Type
	if spec.Type != "" {
		t, ok := types[spec.Type]
		if !ok {
			return rule, fmt.Errorf("unknown type %q", spec.Type)
		}
		typ = t
	}
	// enums go through the engine as a hint, scalars are typed here
	var convert func(any) (any, error)
	switch {
	case typ == nil:
		convert = func(v any) (any, error) { return normalize(v), nil }
	case coerce.IsEnum(typ):
		rule.Hint = typ
		convert = func(v any) (any, error) { return normalize(v), nil }
	default:
		convert = func(v any) (any, error) { return literalAs(v, typ) }
	}
	if spec.Expr == "" {
		v, err := convert(spec.Value)
		if err != nil {
			return rule, err
		}
		rule.Value = v
		return rule, nil
	}
	prg, err := expr.Compile(spec.Expr, exprOpts()...)
	if err != nil {
		return rule, fmt.Errorf("compiling %q: %w", spec.Expr, err)
	}
	rule.Source = exprSource(prg, convert)
	return rule, nil
}

// exprSource evaluates prg once per target; later applications to the same
// target reuse the first result, so reapplying a plan does not compound
// expressions reading current. Only pointer targets are remembered; the
// memo lives as long as the plan.
func exprSource(prg *vm.Program, convert func(any) (any, error)) patch.Source {
	memo := cache.New[any, any]()
	return func(target any, h member.Handle) (any, error) {
		if t := reflect.TypeOf(target); t == nil || t.Kind() != reflect.Pointer {
			return evalExpr(prg, convert, target, h)
		}
		return memo.GetOrCompute(target, func() (any, error) {
			return evalExpr(prg, convert, target, h)
		})
	}
}

func evalExpr(prg *vm.Program, convert func(any) (any, error), target any, h member.Handle) (any, error) {
	var cur any
	if h.CanGet() {
		v, err := h.Get(target)
		if err != nil {
			return nil, err
		}
		cur = v
	}
	env := map[string]any{
		"target":  target,
		"current": cur,
		"member":  h.Name(),
	}
	res, err := expr.Run(prg, env)
	if err != nil {
		return nil, err
	}
	return convert(res)
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Function("ordinal", func(params ...any) (any, error) {
			n, ok := coerce.Ordinal(params[0])
			if !ok {
				return nil, fmt.Errorf("ordinal: %T is not an integer", params[0])
			}
			return int(n), nil
		},
			new(func(any) int)),
		expr.Function("getenv", func(params ...any) (any, error) {
			return os.Getenv(params[0].(string)), nil
		},
			new(func(string) string)),
	}
}

// normalize gives decoded integers the type int when they fit; YAML
// decoding yields int64 or uint64 depending on sign.
func normalize(v any) any {
	switch x := v.(type) {
	case int64:
		if x >= math.MinInt && x <= math.MaxInt {
			return int(x)
		}
	case uint64:
		if x <= math.MaxInt {
			return int(x)
		}
	case int32:
		return int(x)
	case uint32:
		return int(x)
	}
	return v
}

// literalAs converts a decoded scalar to the predeclared type t.
func literalAs(v any, t reflect.Type) (any, error) {
	rv := reflect.ValueOf(normalize(v))
	if !rv.IsValid() {
		return nil, fmt.Errorf("nil value for %s", t)
	}
	if rv.Type() == t {
		return rv.Interface(), nil
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := integral(rv)
		if !ok || out.OverflowInt(i) {
			return nil, fmt.Errorf("%v does not fit %s", v, t)
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		i, ok := integral(rv)
		if !ok || i < 0 || out.OverflowUint(uint64(i)) {
			return nil, fmt.Errorf("%v does not fit %s", v, t)
		}
		out.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		switch {
		case rv.CanFloat():
			out.SetFloat(rv.Float())
		case rv.CanInt():
			out.SetFloat(float64(rv.Int()))
		case rv.CanUint():
			out.SetFloat(float64(rv.Uint()))
		default:
			return nil, fmt.Errorf("%v is not a number", v)
		}
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, t)
	}
	return out.Interface(), nil
}

func integral(rv reflect.Value) (int64, bool) {
	switch {
	case rv.CanInt():
		return rv.Int(), true
	case rv.CanUint():
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}
