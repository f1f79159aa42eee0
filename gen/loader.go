package gen

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// LoadPackage loads the package in dir with type information.
func LoadPackage(dir string) (*packages.Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedTypes | packages.NeedTypesInfo,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load package in %q: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package in %q", dir)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("loading %s: %v", pkg.PkgPath, pkg.Errors[0])
	}
	return pkg, nil
}

// FindStructType finds a struct type definition in a loaded package.
func FindStructType(pkg *packages.Package, typeName string) (*types.Named, *types.Struct, error) {
	if pkg.Types == nil {
		return nil, nil, fmt.Errorf("package %q has no type information", pkg.PkgPath)
	}
	obj := pkg.Types.Scope().Lookup(typeName)
	if obj == nil {
		return nil, nil, fmt.Errorf("type %q not found in package %q", typeName, pkg.PkgPath)
	}
	typeNameObj, ok := obj.(*types.TypeName)
	if !ok {
		return nil, nil, fmt.Errorf("%q is not a type name", typeName)
	}
	named, ok := typeNameObj.Type().(*types.Named)
	if !ok {
		return nil, nil, fmt.Errorf("%q is not a named type", typeName)
	}
	if named.TypeParams().Len() > 0 {
		return nil, nil, fmt.Errorf("%q is generic", typeName)
	}
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, nil, fmt.Errorf("%q is not a struct", typeName)
	}
	return named, st, nil
}
