package member

import (
	"reflect"

	"github.com/signadot/driftpatch/debug"
)

// Resolver maps (type, alias list) pairs to Handles.
//
// A Resolver is not safe for concurrent registration; lookups on a Resolver
// that is no longer being registered to may run from any goroutine.
type Resolver struct {
	tables  map[reflect.Type]Schema
	reflect bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithoutReflection restricts resolution to registered tables and Providers.
func WithoutReflection() Option {
	return func(r *Resolver) { r.reflect = false }
}

// WithTable registers s for t at construction.
func WithTable(t reflect.Type, s Schema) Option {
	return func(r *Resolver) { r.Register(t, s) }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		tables:  map[reflect.Type]Schema{},
		reflect: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register sets the explicit schema for t, replacing any earlier one.
func (r *Resolver) Register(t reflect.Type, s Schema) {
	r.tables[t] = s
}

// Reflects reports whether reflection is used as a fallback.
func (r *Resolver) Reflects() bool {
	return r.reflect
}

// Resolve returns the handle for the first alias naming a member of t.
// When none does, the error is a *NotFoundError.
func (r *Resolver) Resolve(t reflect.Type, aliases []string) (Handle, error) {
	table := r.tables[t]
	for _, alias := range aliases {
		if h, ok := r.lookup(t, table, alias); ok {
			if debug.Resolve() {
				debug.Logf("resolve %s %v -> %s\n", t, aliases, h)
			}
			return h, nil
		}
	}
	if debug.Resolve() {
		debug.Logf("resolve %s %v -> not found\n", t, aliases)
	}
	return Handle{}, &NotFoundError{Type: t, Aliases: aliases}
}

// ResolveFor resolves against the concrete type of target. A target that
// implements Provider is consulted before anything else for each alias.
func (r *Resolver) ResolveFor(target any, aliases []string) (Handle, error) {
	p, ok := target.(Provider)
	if !ok {
		return r.Resolve(reflect.TypeOf(target), aliases)
	}
	t := reflect.TypeOf(target)
	table := r.tables[t]
	for _, alias := range aliases {
		if h, ok := p.Member(alias); ok && !h.IsZero() {
			return h, nil
		}
		if h, ok := r.lookup(t, table, alias); ok {
			return h, nil
		}
	}
	return Handle{}, &NotFoundError{Type: t, Aliases: aliases}
}

func (r *Resolver) lookup(t reflect.Type, table Schema, alias string) (Handle, bool) {
	if table != nil {
		if h, ok := table.Lookup(alias); ok {
			return h, true
		}
	}
	if !r.reflect || t == nil {
		return Handle{}, false
	}
	return typeSchema{t: t}.Lookup(alias)
}
