// Package debug holds environment switches for tracing the patch engine.
//
// Each switch is read once at start up from a DRIFTPATCH_DEBUG_* variable
// holding any value accepted by strconv.ParseBool.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Resolve  bool
	Coerce   bool
	Apply    bool
	Finalize bool
	Catalog  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Resolve = boolEnv("DRIFTPATCH_DEBUG_RESOLVE")
	d.Coerce = boolEnv("DRIFTPATCH_DEBUG_COERCE")
	d.Apply = boolEnv("DRIFTPATCH_DEBUG_APPLY")
	d.Finalize = boolEnv("DRIFTPATCH_DEBUG_FINALIZE")
	d.Catalog = boolEnv("DRIFTPATCH_DEBUG_CATALOG")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Resolve() bool {
	return d.Resolve
}
func Coerce() bool {
	return d.Coerce
}
func Apply() bool {
	return d.Apply
}
func Finalize() bool {
	return d.Finalize
}
func Catalog() bool {
	return d.Catalog
}
