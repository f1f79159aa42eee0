package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
)

var out io.Writer = os.Stderr

// Logf writes a trace line to stderr. Maps and slices are rendered as
// indented JSON, reflect values by their underlying interface.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch x := a.(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		case reflect.Value:
			if !x.IsValid() {
				args[i] = "<invalid>"
				continue
			}
			if x.CanInterface() {
				args[i] = fmt.Sprintf("%v (%s)", x.Interface(), x.Type())
				continue
			}
			args[i] = x.Type().String()
		}
	}
	fmt.Fprintf(out, msg, args...)
}
