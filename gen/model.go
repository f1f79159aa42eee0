package gen

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MemberKind distinguishes generated table entries.
type MemberKind int

const (
	FieldMember MemberKind = iota
	PropertyMember
)

// Member is one generated table entry.
type Member struct {
	Kind MemberKind
	Name string
	// Type is the member type as written in the generated file.
	Type string
	// Path is the selector reaching a field, e.g. "Base.x".
	Path string
	// Getter and Setter are method names of a property; Getter may be
	// empty.
	Getter    string
	Setter    string
	SetterErr bool
}

// TypeModel holds the members generated for one struct type.
type TypeModel struct {
	Name    string
	Members []Member
	// Skipped names members whose types cannot be written in the
	// generated file.
	Skipped []string
}

// IsField reports whether m is a field entry.
func (m Member) IsField() bool { return m.Kind == FieldMember }

// Imports collects the packages referenced by generated member types.
type Imports struct {
	self  *types.Package
	paths map[string]string
}

func NewImports(self *types.Package) *Imports {
	return &Imports{self: self, paths: map[string]string{}}
}

func (im *Imports) qualifier(p *types.Package) string {
	if p == im.self {
		return ""
	}
	im.paths[p.Path()] = p.Name()
	return p.Name()
}

// expressible reports whether t can be written in a file of package self.
func expressible(t types.Type, self *types.Package) bool {
	switch x := t.(type) {
	case *types.Basic:
		return x.Kind() != types.Invalid && x.Info()&types.IsUntyped == 0
	case *types.Named:
		obj := x.Obj()
		if obj.Pkg() != nil && obj.Pkg() != self && !obj.Exported() {
			return false
		}
		if args := x.TypeArgs(); args != nil {
			for i := 0; i < args.Len(); i++ {
				if !expressible(args.At(i), self) {
					return false
				}
			}
		}
		return true
	case *types.Alias:
		return expressible(types.Unalias(x), self)
	case *types.Pointer:
		return expressible(x.Elem(), self)
	case *types.Slice:
		return expressible(x.Elem(), self)
	case *types.Array:
		return expressible(x.Elem(), self)
	case *types.Map:
		return expressible(x.Key(), self) && expressible(x.Elem(), self)
	case *types.Chan:
		return expressible(x.Elem(), self)
	case *types.Interface:
		return x.Empty()
	}
	return false
}

// Model builds the member table model for named in package self. Field
// lookup mirrors reflect's FieldByName: shallower fields shadow deeper ones
// and names ambiguous at one depth are dropped. A property shadows a field
// of the same name.
func Model(named *types.Named, self *types.Package, im *Imports) (*TypeModel, error) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s is not a struct", named.Obj().Name())
	}
	m := &TypeModel{Name: named.Obj().Name()}
	byName := map[string]int{}
	add := func(mem Member) {
		if i, ok := byName[mem.Name]; ok {
			m.Members[i] = mem
			return
		}
		byName[mem.Name] = len(m.Members)
		m.Members = append(m.Members, mem)
	}

	for _, f := range collectFields(st, self) {
		if f.ambiguous {
			continue
		}
		if !f.reach || !accessible(f.v, self) || !expressible(f.v.Type(), self) {
			m.Skipped = append(m.Skipped, f.v.Name())
			continue
		}
		add(Member{
			Kind: FieldMember,
			Name: f.v.Name(),
			Type: types.TypeString(f.v.Type(), im.qualifier),
			Path: f.path,
		})
	}

	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		name, ok := strings.CutPrefix(fn.Name(), "Set")
		if !ok || !isExported(name) {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.Params().Len() != 1 || sig.Variadic() {
			continue
		}
		setErr := false
		switch sig.Results().Len() {
		case 0:
		case 1:
			if !isError(sig.Results().At(0).Type()) {
				continue
			}
			setErr = true
		default:
			continue
		}
		typ := sig.Params().At(0).Type()
		if !expressible(typ, self) {
			m.Skipped = append(m.Skipped, name)
			continue
		}
		add(Member{
			Kind:      PropertyMember,
			Name:      name,
			Type:      types.TypeString(typ, im.qualifier),
			Getter:    getterFor(mset, name, typ),
			Setter:    fn.Name(),
			SetterErr: setErr,
		})
	}
	return m, nil
}

func getterFor(mset *types.MethodSet, name string, typ types.Type) string {
	for _, gn := range []string{name, "Get" + name} {
		sel := mset.Lookup(nil, gn)
		if sel == nil {
			continue
		}
		sig, ok := sel.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
			continue
		}
		if types.Identical(sig.Results().At(0).Type(), typ) {
			return gn
		}
	}
	return ""
}

type fieldAt struct {
	v         *types.Var
	path      string
	depth     int
	ambiguous bool
	// reach is false when the path passes through an embedded field
	// that cannot be selected from the generated file.
	reach bool
}

// collectFields walks st breadth first through embedded non-pointer
// structs, returning fields in declaration order per depth.
func collectFields(st *types.Struct, self *types.Package) []*fieldAt {
	type level struct {
		st    *types.Struct
		path  string
		reach bool
	}
	var res []*fieldAt
	seen := map[string]*fieldAt{}
	cur := []level{{st: st, reach: true}}
	for depth := 0; len(cur) > 0; depth++ {
		var next []level
		for _, l := range cur {
			for i := 0; i < l.st.NumFields(); i++ {
				v := l.st.Field(i)
				if v.Name() == "_" {
					continue
				}
				path := v.Name()
				if l.path != "" {
					path = l.path + "." + v.Name()
				}
				if prev, ok := seen[v.Name()]; ok {
					if prev.depth == depth {
						prev.ambiguous = true
					}
				} else {
					f := &fieldAt{v: v, path: path, depth: depth, reach: l.reach}
					seen[v.Name()] = f
					res = append(res, f)
				}
				// embedded pointers are not followed; they may be nil
				if inner, ok := v.Type().Underlying().(*types.Struct); ok && v.Embedded() {
					next = append(next, level{st: inner, path: path, reach: l.reach && accessible(v, self)})
				}
			}
		}
		cur = next
	}
	return res
}

// accessible reports whether generated code in self may select v.
func accessible(v *types.Var, self *types.Package) bool {
	return v.Exported() || v.Pkg() == self
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func isError(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// Sorted returns the collected imports ordered by path.
func (im *Imports) Sorted() []Import {
	res := make([]Import, 0, len(im.paths))
	for path, name := range im.paths {
		res = append(res, Import{Path: path, Name: name})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Path < res[j].Path })
	return res
}

type Import struct {
	Path, Name string
}
