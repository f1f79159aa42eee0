package snapdiff

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/driftpatch/patch"
)

type mode int

func (m mode) String() string {
	if m == 1 {
		return "Eco"
	}
	return "Normal"
}

type battery struct {
	capacity int
	Mode     mode
	Label    string
}

func orchestrator() *patch.Orchestrator {
	return patch.New(&patch.Spec{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestTakeDiffRender(t *testing.T) {
	o := orchestrator()
	batch := patch.Batch{
		patch.Set(40000, "Capacity", "capacity").Named("capacity"),
		patch.Set(1, "Mode"),
		patch.Set(true, "Overcharge").Named("overcharge"),
		patch.Set("main", "Label"),
	}
	b := &battery{capacity: 20000, Label: "main"}
	fields := FieldsOf(batch)
	before := Take(o, b, fields)
	o.Apply(b, batch)
	after := Take(o, b, fields)

	want := []Change{
		{Label: "capacity", From: 20000, To: 40000},
		{Label: "[Mode]", From: mode(0), To: mode(1)},
	}
	if diff := cmp.Diff(want, Diff(before, after)); diff != "" {
		t.Errorf("Diff() mismatch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := Render(&buf, before, after, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := buf.String()
	for _, line := range []string{
		"- capacity = 20000",
		"+ capacity = 40000",
		"- [Mode] = Normal(0)",
		"+ [Mode] = Eco(1)",
		"  overcharge (absent)",
		"  [Label] = main",
	} {
		if !strings.Contains(got, line+"\n") {
			t.Errorf("Render() output missing %q:\n%s", line, got)
		}
	}
}

func TestRenderReport(t *testing.T) {
	o := orchestrator()
	rep := o.Apply(&battery{}, patch.Batch{
		patch.Set(1, "capacity"),
		patch.Set(1, "Overcharge").Named("overcharge"),
		patch.Set(1.5, "Label"),
	})
	var buf bytes.Buffer
	if err := RenderReport(&buf, rep, nil); err != nil {
		t.Fatalf("RenderReport() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("RenderReport() = %q, want 3 lines", buf.String())
	}
	if lines[0] != "*snapdiff.battery: applied 1 skipped 2" {
		t.Errorf("summary = %q", lines[0])
	}
	if !strings.Contains(lines[1], "member-not-found") || !strings.Contains(lines[2], "type-incompatible") {
		t.Errorf("failure lines = %q", lines[1:])
	}
}

func TestColorsEscapePercent(t *testing.T) {
	c := NewColors()
	if got := c.Color(LabelColor, "100%"); !strings.Contains(got, "100%") || strings.Contains(got, "%!") {
		t.Errorf("Color() = %q", got)
	}
	var none *Colors
	if got := none.Color(AddedColor, "x"); got != "x" {
		t.Errorf("nil Colors changed text: %q", got)
	}
}
