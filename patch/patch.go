// Package patch applies ordered batches of best-effort attribute writes to
// host objects.
//
// Each rule of a batch is resolved on the target's concrete type, its value
// coerced to the member's representation, and the member set. A rule that
// fails at any of these steps is recorded in the Report and the batch goes
// on with the next rule: the previous value of a skipped member is always a
// valid state.
//
//	o := patch.New(&patch.Spec{Log: log})
//	rep := o.Apply(gen, patch.Batch{
//	    patch.Set(true, "Power", "power", "RequiresPower"),
//	    patch.Set(2, "Location").WithHint(reflect.TypeFor[BuildLocation]()),
//	})
//
// Applying the same batch twice leaves the target as applying it once,
// provided rule values and sources are themselves deterministic.
package patch

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/signadot/driftpatch/cache"
	"github.com/signadot/driftpatch/coerce"
	"github.com/signadot/driftpatch/debug"
	"github.com/signadot/driftpatch/member"
)

// HandleKey identifies a resolved member: the concrete type and the alias
// list joined in order.
type HandleKey struct {
	Type    reflect.Type
	Aliases string
}

func keyOf(t reflect.Type, aliases []string) HandleKey {
	return HandleKey{Type: t, Aliases: strings.Join(aliases, "\x00")}
}

// HandleCache memoizes resolved members across targets of the same type.
type HandleCache = cache.Cache[HandleKey, member.Handle]

// NewHandleCache returns an empty HandleCache.
func NewHandleCache() *HandleCache {
	return cache.New[HandleKey, member.Handle]()
}

// Observer receives the report of every applied batch.
type Observer interface {
	Observe(target any, rep Report)
}

type ObserverFunc func(target any, rep Report)

func (f ObserverFunc) Observe(target any, rep Report) { f(target, rep) }

// Spec configures an Orchestrator. Every field is optional.
type Spec struct {
	Resolver *member.Resolver
	Cache    *HandleCache
	Log      *slog.Logger
	Observer Observer
}

// Orchestrator applies batches. Like the cache it holds, it is meant to be
// used from the host's single update goroutine.
type Orchestrator struct {
	resolver *member.Resolver
	handles  *HandleCache
	log      *slog.Logger
	observer Observer
}

func New(spec *Spec) *Orchestrator {
	if spec == nil {
		spec = &Spec{}
	}
	o := &Orchestrator{
		resolver: spec.Resolver,
		handles:  spec.Cache,
		log:      spec.Log,
		observer: spec.Observer,
	}
	if o.resolver == nil {
		o.resolver = member.NewResolver()
	}
	if o.handles == nil {
		o.handles = NewHandleCache()
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	return o
}

// Resolver returns the resolver used for member lookups.
func (o *Orchestrator) Resolver() *member.Resolver {
	return o.resolver
}

// Apply runs batch against target in order and reports what happened. It
// never fails as a whole.
func (o *Orchestrator) Apply(target any, batch Batch) Report {
	rep := Report{Type: reflect.TypeOf(target)}
	tv := reflect.ValueOf(target)
	for i := range batch {
		rule := &batch[i]
		kind, err := o.applyRule(target, tv, rule)
		if err == nil {
			rep.Applied++
			continue
		}
		rep.Skipped++
		rep.Failures = append(rep.Failures, Failure{Index: i, Rule: rule.String(), Kind: kind, Err: err})
		switch kind {
		case MemberNotFound:
			o.log.Debug("rule skipped", "type", rep.Type, "rule", rule.String(), "kind", kind)
		default:
			o.log.Warn("rule skipped", "type", rep.Type, "rule", rule.String(), "kind", kind, "error", err)
		}
	}
	if debug.Apply() {
		debug.Logf("apply %s: %d applied, %d skipped\n", rep.Type, rep.Applied, rep.Skipped)
	}
	if o.observer != nil {
		o.observer.Observe(target, rep)
	}
	return rep
}

func (o *Orchestrator) applyRule(target any, tv reflect.Value, rule *Rule) (FailureKind, error) {
	h, err := o.Resolve(target, rule.Aliases)
	if err != nil {
		return MemberNotFound, err
	}
	want, err := rule.desired(target, h)
	if err != nil {
		return InvocationFailure, &InvocationError{Member: h.Name(), Err: err}
	}
	v := reflect.ValueOf(want)
	if rule.Hint != nil {
		v, err = coerce.Reflect(v, rule.Hint)
		if err != nil {
			return TypeIncompatible, err
		}
	}
	v, err = coerce.Reflect(v, h.Type())
	if err != nil {
		return TypeIncompatible, err
	}
	if err := h.SetValue(tv, v); err != nil {
		return InvocationFailure, &InvocationError{Member: h.Name(), Err: err}
	}
	if debug.Apply() {
		debug.Logf("apply %s.%s = %v\n", tv.Type(), h.Name(), v)
	}
	return 0, nil
}

// Resolve finds the member for aliases on target, going through the handle
// cache unless target describes its own members. Misses are not cached.
func (o *Orchestrator) Resolve(target any, aliases []string) (member.Handle, error) {
	if _, ok := target.(member.Provider); ok {
		return o.resolver.ResolveFor(target, aliases)
	}
	t := reflect.TypeOf(target)
	if t == nil {
		return member.Handle{}, &member.NotFoundError{Aliases: aliases}
	}
	return o.handles.GetOrCompute(keyOf(t, aliases), func() (member.Handle, error) {
		return o.resolver.Resolve(t, aliases)
	})
}

// IsDrift reports whether err only reflects a member missing on this host
// version.
func IsDrift(err error) bool {
	return errors.Is(err, member.ErrNotFound)
}
