package catalog

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/driftpatch/patch"
)

type buildLocation int32

type generator struct {
	power    bool
	Location buildLocation
	hp       int
	Ratio    float32
	Tier     uint8
}

const generatorYAML = `
targets:
  generator:
    attempts: 3
    rules:
      - name: power
        aliases: [Power, power, RequiresPower]
        value: true
        critical: true
      - aliases: [Location, BuildLocation]
        value: 2
        type: buildLocation
      - name: hp
        aliases: [HitPoints, hp]
        expr: "current * 2 + 1"
      - aliases: [Ratio]
        value: 1
        type: float32
      - aliases: [Tier]
        value: 4
        type: uint8
  battery:
    rules:
      - aliases: [Capacity]
        value: 40000
`

func testTypes() TypeSet {
	return DefaultTypes().With("buildLocation", reflect.TypeFor[buildLocation]())
}

func TestLoadAndCompile(t *testing.T) {
	cat, err := Load([]byte(generatorYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"battery", "generator"}, cat.TargetNames()); diff != "" {
		t.Errorf("TargetNames() mismatch (-want +got):\n%s", diff)
	}
	plans, err := cat.Compile(testTypes())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	gp := plans["generator"]
	if gp.Attempts != 3 || len(gp.Batch) != 5 || len(gp.Critical) != 1 || len(gp.Setup) != 4 {
		t.Fatalf("generator plan = attempts %d, %d rules, %d critical, %d setup",
			gp.Attempts, len(gp.Batch), len(gp.Critical), len(gp.Setup))
	}
	if plans["battery"].Attempts != 2 {
		t.Errorf("battery attempts = %d, want default 2", plans["battery"].Attempts)
	}
	if gp.Batch[1].Hint != reflect.TypeFor[buildLocation]() {
		t.Errorf("enum rule hint = %v", gp.Batch[1].Hint)
	}

	o := patch.New(&patch.Spec{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
	g := &generator{hp: 10}
	rep := o.Apply(g, gp.Batch)
	if !rep.OK() {
		t.Fatalf("Apply() failures: %v", rep.Err())
	}
	want := &generator{power: true, Location: 2, hp: 21, Ratio: 1, Tier: 4}
	if diff := cmp.Diff(want, g, cmp.AllowUnexported(generator{})); diff != "" {
		t.Errorf("generator mismatch (-want +got):\n%s", diff)
	}
}

func TestReapplyingPlanIsStable(t *testing.T) {
	cat, err := Load([]byte(generatorYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	gp, err := cat.CompileTarget("generator", testTypes())
	if err != nil {
		t.Fatalf("CompileTarget() error = %v", err)
	}
	o := patch.New(&patch.Spec{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
	once, twice := &generator{hp: 10}, &generator{hp: 10}
	o.Apply(once, gp.Batch)
	o.Apply(twice, gp.Batch)
	o.Apply(twice, gp.Batch)
	if diff := cmp.Diff(once, twice, cmp.AllowUnexported(generator{})); diff != "" {
		t.Errorf("second Apply() changed the target (-once +twice):\n%s", diff)
	}
	// expressions are evaluated per target
	other := &generator{hp: 1}
	o.Apply(other, gp.Batch)
	if other.hp != 3 {
		t.Errorf("hp = %d on a fresh target, want 3", other.hp)
	}
}

func TestOverlays(t *testing.T) {
	yamlOverlay := `
- op: replace
  path: /targets/generator/rules/0/value
  value: false
- op: remove
  path: /targets/battery
`
	jsonOverlay := `[{"op": "add", "path": "/targets/generator/attempts", "value": 5}]`
	cat, err := Load([]byte(generatorYAML), []byte(yamlOverlay), []byte(jsonOverlay))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := cat.Targets["battery"]; ok {
		t.Errorf("battery survived remove overlay")
	}
	gen := cat.Targets["generator"]
	if gen.Rules[0].Value != false {
		t.Errorf("power value = %v, want false", gen.Rules[0].Value)
	}
	if gen.Attempts == nil || *gen.Attempts != 5 {
		t.Errorf("attempts = %v, want 5", gen.Attempts)
	}

	bad := `[{"op": "replace", "path": "/targets/turbine/attempts", "value": 1}]`
	if _, err := Load([]byte(generatorYAML), []byte(bad)); err == nil {
		t.Errorf("Load() with overlay on missing path succeeded")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 1\n        colour: red\n"},
		{"no targets", "targets: {}\n"},
		{"no aliases", "targets:\n  g:\n    rules:\n      - value: 1\n"},
		{"empty alias", "targets:\n  g:\n    rules:\n      - aliases: ['']\n        value: 1\n"},
		{"value and expr", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 1\n        expr: '2'\n"},
		{"neither value nor expr", "targets:\n  g:\n    rules:\n      - aliases: [A]\n"},
		{"negative attempts", "targets:\n  g:\n    attempts: -1\n    rules:\n      - aliases: [A]\n        value: 1\n"},
		{"critical expr", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        expr: 'current + 1'\n        critical: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.doc)); err == nil {
				t.Errorf("Load() error = nil")
			}
		})
	}
}

func TestCompileRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown type", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 1\n        type: Voltage\n"},
		{"bad expr", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        expr: 'current +'\n"},
		{"overflow", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 300\n        type: uint8\n"},
		{"fraction to int", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 1.5\n        type: int\n"},
		{"string to bool", "targets:\n  g:\n    rules:\n      - aliases: [A]\n        value: 'yes'\n        type: bool\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := Load([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			_, err = cat.Compile(nil)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Compile() error = %v, want *ValidationError", err)
			}
			if ve.Target != "g" || ve.Rule != 0 {
				t.Errorf("ValidationError = %+v", ve)
			}
		})
	}
}

func TestExprFailureIsInvocationFailure(t *testing.T) {
	doc := "targets:\n  g:\n    rules:\n      - aliases: [hp]\n        expr: 'current / nothing'\n"
	cat, err := Load([]byte(doc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	plans, err := cat.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	o := patch.New(&patch.Spec{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
	rep := o.Apply(&generator{hp: 3}, plans["g"].Batch)
	if rep.Skipped != 1 || rep.Failures[0].Kind != patch.InvocationFailure {
		t.Errorf("Apply() = %+v, want one invocation failure", rep)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "catalog.yaml")
	ov := filepath.Join(dir, "v2.yaml")
	if err := os.WriteFile(base, []byte(generatorYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ov, []byte("- op: remove\n  path: /targets/generator\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := LoadFile(base, ov)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff([]string{"battery"}, cat.TargetNames()); diff != "" {
		t.Errorf("TargetNames() mismatch (-want +got):\n%s", diff)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("LoadFile(missing) error = nil")
	}
}

func TestNormalizeAndLiterals(t *testing.T) {
	if got := normalize(uint64(7)); got != 7 {
		t.Errorf("normalize(uint64(7)) = %#v", got)
	}
	if got := normalize(int64(-7)); got != -7 {
		t.Errorf("normalize(int64(-7)) = %#v", got)
	}
	if got, err := literalAs(uint64(3), reflect.TypeFor[float64]()); err != nil || got != 3.0 {
		t.Errorf("literalAs(3, float64) = %#v, %v", got, err)
	}
	if got, err := literalAs(2.0, reflect.TypeFor[int16]()); err != nil || got != int16(2) {
		t.Errorf("literalAs(2.0, int16) = %#v, %v", got, err)
	}
}
