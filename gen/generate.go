package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/types"
	"sort"
	"strings"
	"text/template"
)

// MemberPkg is the import path of the member package used by generated
// code.
const MemberPkg = "github.com/signadot/driftpatch/member"

// Config says what to generate.
type Config struct {
	// Dir is the package directory.
	Dir string
	// Types names the struct types to generate tables for; empty means
	// every struct type declared in the package.
	Types []string
	// Func is the name of the generated registration function.
	Func string
}

// Result is a generated file and the models behind it.
type Result struct {
	Package string
	Source  []byte
	Models  []*TypeModel
}

// Generate loads the package in cfg.Dir and renders its member tables.
func Generate(cfg *Config) (*Result, error) {
	pkg, err := LoadPackage(cfg.Dir)
	if err != nil {
		return nil, err
	}
	names := cfg.Types
	if len(names) == 0 {
		names = structNames(pkg.Types)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no struct types in %s", pkg.PkgPath)
	}
	im := NewImports(pkg.Types)
	var models []*TypeModel
	for _, name := range names {
		named, _, err := FindStructType(pkg, name)
		if err != nil {
			return nil, err
		}
		m, err := Model(named, pkg.Types, im)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	src, err := Render(pkg.Name, cfg.Func, models, im.Sorted())
	if err != nil {
		return nil, err
	}
	return &Result{Package: pkg.Name, Source: src, Models: models}, nil
}

func structNames(p *types.Package) []string {
	var res []string
	scope := p.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named.TypeParams().Len() > 0 {
			continue
		}
		if _, ok := named.Underlying().(*types.Struct); ok {
			res = append(res, name)
		}
	}
	sort.Strings(res)
	return res
}

var fileTmpl = template.Must(template.New("members").Funcs(template.FuncMap{
	"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	"join":  strings.Join,
}).Parse(`// Code generated by driftpatch-gen. DO NOT EDIT.

package {{.Package}}

import (
	"reflect"

	"{{.MemberPkg}}"
{{- range .Imports}}
	{{.Name}} "{{.Path}}"
{{- end}}
)

// {{.Func}} registers explicit member tables for {{join .TypeNames ", "}}.
func {{.Func}}(r *member.Resolver) {
{{- range .Models}}
	r.Register(reflect.TypeFor[*{{.Name}}](), member.Table{
{{- $t := .Name}}
{{- range .Members}}
{{- if .IsField}}
		{{quote .Name}}: member.FieldOf({{quote .Name}}, func(x *{{$t}}) *{{.Type}} { return &x.{{.Path}} }),
{{- else if .Getter}}
		{{quote .Name}}: member.{{if .SetterErr}}PropertyOfE{{else}}PropertyOf{{end}}({{quote .Name}}, (*{{$t}}).{{.Getter}}, (*{{$t}}).{{.Setter}}),
{{- else}}
		{{quote .Name}}: member.{{if .SetterErr}}PropertyOfE{{else}}PropertyOf{{end}}[{{$t}}, {{.Type}}]({{quote .Name}}, nil, (*{{$t}}).{{.Setter}}),
{{- end}}
{{- end}}
	})
{{- end}}
}
`))

// Render formats the generated file for models.
func Render(pkgName, fn string, models []*TypeModel, imps []Import) ([]byte, error) {
	if fn == "" {
		fn = "RegisterMembers"
	}
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	var buf bytes.Buffer
	err := fileTmpl.Execute(&buf, map[string]any{
		"Package":   pkgName,
		"MemberPkg": MemberPkg,
		"Imports":   imps,
		"Func":      fn,
		"TypeNames": names,
		"Models":    models,
	})
	if err != nil {
		return nil, err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated code: %w\n%s", err, buf.Bytes())
	}
	return src, nil
}
