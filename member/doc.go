// Package member locates readable and writable attributes on host objects
// whose exact shape is only known at run time.
//
// # Resolution
//
// A Resolver is asked for a Handle given the concrete type of a target and
// an ordered alias list:
//
//	h, err := r.Resolve(reflect.TypeOf(target), []string{"Power", "power", "RequiresPower"})
//
// Aliases are tried in order and the first one that names a member wins;
// later aliases are never consulted. For each alias the resolver asks, in
// order:
//
//   - the Table registered for the type, if any
//   - the type itself through reflection (unless WithoutReflection is set)
//
// Reflection finds property-like method pairs (Name/GetName plus SetName)
// for exported aliases, then struct fields of any visibility, including
// fields promoted from embedded structs. Names are case-sensitive.
//
// A target implementing Provider answers for itself; see Resolver.ResolveFor.
//
// A miss is reported as a *NotFoundError, which callers normally treat as
// "skip this rule" rather than as a failure.
//
// # Tables
//
// Types that should not be introspected at run time can be described with a
// Table built from FieldOf and PropertyOf, usually by code generated with
// driftpatch-gen:
//
//	r.Register(reflect.TypeFor[*Generator](), member.Table{
//	    "power": member.FieldOf("power", func(g *Generator) *bool { return &g.power }),
//	})
package member
