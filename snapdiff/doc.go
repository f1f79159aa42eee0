// Package snapdiff captures member values of a target and shows how a
// patch changed them.
//
// # Usage
//
//	before := snapdiff.Take(o, target, snapdiff.FieldsOf(batch))
//	rep := o.Apply(target, batch)
//	after := snapdiff.Take(o, target, snapdiff.FieldsOf(batch))
//	snapdiff.Render(os.Stdout, before, after, snapdiff.NewColors())
//	snapdiff.RenderReport(os.Stdout, rep, nil)
//
// Passing nil colors renders plain text.
package snapdiff
