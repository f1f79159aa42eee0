// Package sim simulates a host object system for the patch engine: two
// drifted versions of a generator object and a host whose initialization
// keeps overwriting members for a few ticks after construction.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/signadot/driftpatch/cache"
	"github.com/signadot/driftpatch/catalog"
	"github.com/signadot/driftpatch/finalize"
	"github.com/signadot/driftpatch/member"
	"github.com/signadot/driftpatch/patch"
)

// Overwrite is a host initialization step resetting a member on every tick
// for Ticks ticks after construction.
type Overwrite struct {
	Aliases []string
	Value   any
	Ticks   int
}

// Spec configures a Host.
type Spec struct {
	Catalog *catalog.Catalog
	Version string
	// LateInit runs on the host's own tick task, before any finalizer
	// scheduled for the same object.
	LateInit []Overwrite
	// Generated resolves members through the generated tables only,
	// without reflection. Ignored when Orchestrator is set.
	Generated    bool
	Orchestrator *patch.Orchestrator
	Log          *slog.Logger
}

// Object is a constructed target and its finalizer.
type Object struct {
	Key    string
	Target any
	// Report covers the non-critical rules, Critical the finalizer's
	// immediate application.
	Report    patch.Report
	Critical  patch.Report
	Finalizer *finalize.Finalizer
}

// Host constructs targets and delivers ticks.
type Host struct {
	spec   Spec
	ticker *finalize.Ticker
	orch   *patch.Orchestrator
	plans  *cache.Cache[string, *catalog.Plan]
	log    *slog.Logger

	objects []*Object
}

func NewHost(spec *Spec) (*Host, error) {
	if spec.Catalog == nil {
		return nil, fmt.Errorf("sim: no catalogue")
	}
	if _, ok := Versions[spec.Version]; !ok {
		return nil, fmt.Errorf("sim: unknown host version %q", spec.Version)
	}
	h := &Host{
		spec:  *spec,
		orch:  spec.Orchestrator,
		plans: cache.New[string, *catalog.Plan](),
		log:   spec.Log,
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	if h.orch == nil {
		ps := &patch.Spec{Log: h.log}
		if spec.Generated {
			ps.Resolver = member.NewResolver(member.WithoutReflection())
			RegisterMembers(ps.Resolver)
		}
		h.orch = patch.New(ps)
	}
	h.ticker = finalize.NewTicker(h.log)
	return h, nil
}

// Plan returns the compiled plan for a catalogue target, compiling it on
// first use.
func (h *Host) Plan(target string) (*catalog.Plan, error) {
	return h.plans.GetOrCompute(target, func() (*catalog.Plan, error) {
		return h.spec.Catalog.CompileTarget(target, Types())
	})
}

// Construct builds a generator for catalogue target name, applies the
// non-critical rules, schedules the host's late initialization, and arms a
// finalizer for the critical rules, which applies them once right away.
func (h *Host) Construct(name, key string) (*Object, error) {
	plan, err := h.Plan(name)
	if err != nil {
		return nil, err
	}
	target, err := New(h.spec.Version)
	if err != nil {
		return nil, err
	}
	obj := &Object{Key: key, Target: target}
	obj.Report = h.orch.Apply(target, plan.Setup)
	if len(h.spec.LateInit) > 0 {
		if _, err := h.ticker.Schedule(newLateInit(h.orch, target, h.spec.LateInit)); err != nil {
			return nil, err
		}
	}
	obj.Finalizer, err = finalize.Arm(h.ticker, h.orch, target, plan.Critical, plan.Attempts, finalize.WithLog(h.log))
	if err != nil {
		h.log.Warn("finalizer not armed", "key", key, "error", err)
	}
	obj.Critical = obj.Finalizer.LastReport()
	h.objects = append(h.objects, obj)
	h.log.Debug("constructed", "key", key, "version", h.spec.Version, "report", obj.Report.String())
	return obj, nil
}

func (h *Host) Objects() []*Object { return h.objects }

// Orchestrator returns the orchestrator applying patches for the host.
func (h *Host) Orchestrator() *patch.Orchestrator { return h.orch }

// Tick runs one scheduling round and returns the number of live tasks.
func (h *Host) Tick() int { return h.ticker.Tick() }

// Ticks is the number of rounds run so far.
func (h *Host) Ticks() uint64 { return h.ticker.Ticks() }

// Run ticks every interval until all tasks are done or ctx ends.
func (h *Host) Run(ctx context.Context, interval time.Duration) error {
	return h.ticker.RunUntilIdle(ctx, interval)
}

// lateInit is host code overwriting members after construction.
type lateInit struct {
	orch   *patch.Orchestrator
	target any
	steps  []Overwrite
	tick   int
}

func newLateInit(orch *patch.Orchestrator, target any, steps []Overwrite) *lateInit {
	return &lateInit{orch: orch, target: target, steps: steps}
}

func (l *lateInit) Tick() finalize.State {
	l.tick++
	var batch patch.Batch
	left := 0
	for _, s := range l.steps {
		if l.tick > s.Ticks {
			continue
		}
		batch = append(batch, patch.Set(s.Value, s.Aliases...))
		left = max(left, s.Ticks-l.tick)
	}
	l.orch.Apply(l.target, batch)
	return finalize.Armed(left)
}
