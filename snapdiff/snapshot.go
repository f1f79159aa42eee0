package snapdiff

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/signadot/driftpatch/coerce"
	"github.com/signadot/driftpatch/member"
	"github.com/signadot/driftpatch/patch"
)

// Resolver finds members on a target; *patch.Orchestrator implements it.
type Resolver interface {
	Resolve(target any, aliases []string) (member.Handle, error)
}

// Field names a value to capture by label and alias list.
type Field struct {
	Label   string
	Aliases []string
}

// FieldsOf lists one field per rule of batch.
func FieldsOf(batch patch.Batch) []Field {
	res := make([]Field, len(batch))
	for i := range batch {
		res[i] = Field{Label: batch[i].String(), Aliases: batch[i].Aliases}
	}
	return res
}

// Entry is one captured value. Found is false when no alias resolved or
// the member is not readable.
type Entry struct {
	Label  string
	Member string
	Value  any
	Found  bool
}

func (e Entry) text() string {
	if !e.Found {
		return e.Label + " (absent)"
	}
	return fmt.Sprintf("%s = %s", e.Label, formatValue(e.Value))
}

// Snapshot is an ordered capture of member values.
type Snapshot []Entry

// Take reads fields from target.
func Take(r Resolver, target any, fields []Field) Snapshot {
	res := make(Snapshot, len(fields))
	for i, f := range fields {
		e := Entry{Label: f.Label}
		if h, err := r.Resolve(target, f.Aliases); err == nil && h.CanGet() {
			e.Member = h.Name()
			if v, err := h.Get(target); err == nil {
				e.Value = v
				e.Found = true
			}
		}
		res[i] = e
	}
	return res
}

// Change is a captured value that differs between two snapshots.
type Change struct {
	Label string
	From  any
	To    any
}

// Diff lists the entries of before and after that differ, matched by label.
func Diff(before, after Snapshot) []Change {
	prev := make(map[string]Entry, len(before))
	for _, e := range before {
		prev[e.Label] = e
	}
	var res []Change
	for _, e := range after {
		p, ok := prev[e.Label]
		if ok && p.Found == e.Found && reflect.DeepEqual(p.Value, e.Value) {
			continue
		}
		res = append(res, Change{Label: e.Label, From: p.Value, To: e.Value})
	}
	return res
}

// Render writes a line diff of the two snapshots.
func Render(w io.Writer, before, after Snapshot, colors *Colors) error {
	lines := map[string]rune{}
	byRune := map[rune]string{}
	from := runesOf(lines, byRune, before)
	to := runesOf(lines, byRune, after)
	diffs := diffpatch.New().DiffMainRunes(from, to, false)
	var buf strings.Builder
	for _, d := range diffs {
		for _, r := range d.Text {
			line := byRune[r]
			switch d.Type {
			case diffpatch.DiffDelete:
				buf.WriteString(colors.Color(RemovedColor, "- "+line))
			case diffpatch.DiffInsert:
				buf.WriteString(colors.Color(AddedColor, "+ "+line))
			default:
				buf.WriteString(colors.Color(SameColor, "  "+line))
			}
			buf.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

// RenderReport writes a one line summary of rep followed by its failures.
func RenderReport(w io.Writer, rep patch.Report, colors *Colors) error {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s: %s %s\n",
		colors.Color(LabelColor, typeName(rep.Type)),
		colors.Color(AppliedColor, fmt.Sprintf("applied %d", rep.Applied)),
		colors.Color(SkippedColor, fmt.Sprintf("skipped %d", rep.Skipped)))
	for _, f := range rep.Failures {
		attr := SkippedColor
		if f.Kind == patch.MemberNotFound {
			attr = MissingColor
		}
		fmt.Fprintf(&buf, "  %s\n", colors.Color(attr, f.String()))
	}
	_, err := io.WriteString(w, buf.String())
	return err
}

func runesOf(m map[string]rune, im map[rune]string, s Snapshot) []rune {
	rs := make([]rune, len(s))
	for i := range s {
		line := s[i].text()
		r, ok := m[line]
		if !ok {
			r = rune(len(m))
			m[line] = r
			im[r] = line
		}
		rs[i] = r
	}
	return rs
}

func formatValue(v any) string {
	if v == nil {
		return "nil"
	}
	t := reflect.TypeOf(v)
	if coerce.IsEnum(t) {
		n, _ := coerce.Ordinal(v)
		if s, ok := v.(fmt.Stringer); ok {
			return fmt.Sprintf("%s(%d)", s.String(), n)
		}
		return fmt.Sprintf("%s(%d)", t.Name(), n)
	}
	return fmt.Sprintf("%v", v)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
