package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/signadot/driftpatch/catalog"
	"github.com/signadot/driftpatch/member"
)

const catalogYAML = `
targets:
  generator:
    attempts: 2
    rules:
      - name: power
        aliases: [Power, power, RequiresPower]
        value: true
        critical: true
      - name: location
        aliases: [Location, Placement]
        value: 2
        type: BuildLocation
      - name: hp
        aliases: [HitPoints, hp]
        expr: "current + 150"
      - name: efficiency
        aliases: [Efficiency]
        value: 0.9
        type: float32
        critical: true
`

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newHost(t *testing.T, version string, attempts int, late []Overwrite) *Host {
	t.Helper()
	return newHostSpec(t, &Spec{Version: version, LateInit: late}, attempts)
}

func newHostSpec(t *testing.T, spec *Spec, attempts int) *Host {
	t.Helper()
	cat, err := catalog.Load([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cat.Targets["generator"].Attempts = &attempts
	spec.Catalog = cat
	spec.Log = quiet
	h, err := NewHost(spec)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	return h
}

var overwritePower = []Overwrite{
	{Aliases: []string{"Power", "power"}, Value: false, Ticks: 2},
	{Aliases: []string{"Efficiency"}, Value: float32(0.1), Ticks: 1},
}

func TestFinalizerSurvivesLateInit(t *testing.T) {
	for _, version := range VersionNames() {
		for _, generated := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/generated=%v", version, generated), func(t *testing.T) {
				h := newHostSpec(t, &Spec{Version: version, LateInit: overwritePower, Generated: generated}, 2)
				obj, err := h.Construct("generator", "gen-1")
				if err != nil {
					t.Fatalf("Construct() error = %v", err)
				}
				if !obj.Report.OK() || !obj.Critical.OK() {
					t.Fatalf("construction reports: %v, %v", obj.Report.Err(), obj.Critical.Err())
				}
				// critical rules are applied once, by the finalizer
				if obj.Report.Applied != 2 || obj.Critical.Applied != 2 {
					t.Errorf("construction applied %d setup and %d critical rules, want 2 and 2",
						obj.Report.Applied, obj.Critical.Applied)
				}
				for h.Tick() > 0 {
					if h.Ticks() > 10 {
						t.Fatalf("tasks never finished")
					}
				}
				if obj.Finalizer.Applications() != 3 {
					t.Errorf("finalizer applied %d times, want 3", obj.Finalizer.Applications())
				}
				power, eff, loc, hp := read(t, obj.Target)
				if !power || eff != float32(0.9) || loc != 2 || hp != 250 {
					t.Errorf("final state power=%v efficiency=%v location=%d hp=%d", power, eff, loc, hp)
				}
			})
		}
	}
}

func TestGeneratedTablesOnly(t *testing.T) {
	h := newHostSpec(t, &Spec{Version: "v2", Generated: true}, 0)
	if h.Orchestrator().Resolver().Reflects() {
		t.Fatalf("generated host resolver falls back to reflection")
	}
	hd, err := h.Orchestrator().Resolve(&GeneratorV2{}, []string{"Placement"})
	if err != nil {
		t.Fatalf("Resolve(Placement) error = %v", err)
	}
	if hd.Kind() != member.Property {
		t.Errorf("Placement resolved to a %s", hd.Kind())
	}
	if _, err := h.Orchestrator().Resolve(&GeneratorV2{}, []string{"Powered"}); err == nil {
		t.Errorf("Resolve(Powered) found a getter-only member")
	}
}

func TestExpressionRuleSurvivesFinalizer(t *testing.T) {
	h := newHost(t, "v1", 2, overwritePower)
	obj, err := h.Construct("generator", "gen-1")
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	plan, err := h.Plan("generator")
	if err != nil {
		t.Fatal(err)
	}
	for h.Tick() > 0 {
	}
	h.Orchestrator().Apply(obj.Target, plan.Batch)
	if _, _, _, hp := read(t, obj.Target); hp != 250 {
		t.Errorf("hp = %d after ticks and a reapplication, want 250", hp)
	}
}

func TestLateInitWinsWithoutFinalizer(t *testing.T) {
	h := newHost(t, "v2", 0, overwritePower)
	obj, err := h.Construct("generator", "gen-1")
	if err != nil {
		t.Fatalf("Construct() error = %v", err)
	}
	for h.Tick() > 0 {
	}
	power, _, _, _ := read(t, obj.Target)
	if power {
		t.Errorf("power survived late init without a finalizer")
	}
}

func TestRunAndPlanCache(t *testing.T) {
	h := newHost(t, "v1", 2, overwritePower)
	for _, key := range []string{"a", "b", "c"} {
		if _, err := h.Construct("generator", key); err != nil {
			t.Fatalf("Construct(%s) error = %v", key, err)
		}
	}
	if _, err := h.Construct("turbine", "t"); err == nil {
		t.Errorf("Construct(turbine) error = nil")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Run(ctx, time.Millisecond); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, obj := range h.Objects() {
		if power, _, _, _ := read(t, obj.Target); !power {
			t.Errorf("%s lost power", obj.Key)
		}
	}
	if len(h.Objects()) != 3 {
		t.Errorf("Objects() = %d, want 3", len(h.Objects()))
	}
}

func TestNewHostRejects(t *testing.T) {
	if _, err := NewHost(&Spec{Version: "v1"}); err == nil {
		t.Errorf("NewHost() without catalogue succeeded")
	}
	cat, _ := catalog.Load([]byte(catalogYAML))
	if _, err := NewHost(&Spec{Catalog: cat, Version: "v9"}); err == nil {
		t.Errorf("NewHost(v9) succeeded")
	}
}

func read(t *testing.T, target any) (power bool, eff float32, loc int, hp int) {
	t.Helper()
	switch g := target.(type) {
	case *GeneratorV1:
		return g.Power, g.Efficiency, int(g.Location), g.HitPoints
	case *GeneratorV2:
		return g.power, g.efficiency, int(g.placement), g.hp
	}
	t.Fatalf("unexpected target %T", target)
	return
}
