package catalog

import (
	"fmt"
	"os"
	"sort"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-yaml"
	"github.com/signadot/driftpatch/debug"
)

// Catalog is a decoded rule catalogue.
type Catalog struct {
	Targets map[string]*Target `json:"targets" yaml:"targets"`
}

// Target holds the rules for one kind of host object.
type Target struct {
	// Attempts is the number of ticks the critical rules are reapplied for
	// after construction. Nil means finalize.DefaultAttempts.
	Attempts *int       `json:"attempts,omitempty" yaml:"attempts,omitempty"`
	Rules    []RuleSpec `json:"rules" yaml:"rules"`
}

// RuleSpec is the serialized form of a patch rule.
type RuleSpec struct {
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Aliases  []string `json:"aliases" yaml:"aliases"`
	Value    any      `json:"value,omitempty" yaml:"value,omitempty"`
	Expr     string   `json:"expr,omitempty" yaml:"expr,omitempty"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Critical bool     `json:"critical,omitempty" yaml:"critical,omitempty"`
}

func (r *RuleSpec) label(i int) string {
	if r.Name != "" {
		return r.Name
	}
	if len(r.Aliases) > 0 {
		return r.Aliases[0]
	}
	return fmt.Sprintf("rule %d", i)
}

// Load decodes a catalogue after applying overlays in order. Unknown
// fields are rejected and the result is validated.
func Load(data []byte, overlays ...[]byte) (*Catalog, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	for i, ov := range overlays {
		doc, err = applyOverlay(doc, ov)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i, err)
		}
	}
	if debug.Catalog() {
		debug.Logf("catalogue after %d overlays: %s\n", len(overlays), string(doc))
	}
	cat := &Catalog{}
	if err := yaml.UnmarshalWithOptions(doc, cat, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// LoadFile reads a catalogue and its overlays from files.
func LoadFile(path string, overlayPaths ...string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}
	overlays := make([][]byte, 0, len(overlayPaths))
	for _, p := range overlayPaths {
		ov, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read overlay file: %w", err)
		}
		overlays = append(overlays, ov)
	}
	return Load(data, overlays...)
}

func applyOverlay(doc, overlay []byte) ([]byte, error) {
	ops, err := yaml.YAMLToJSON(overlay)
	if err != nil {
		return nil, err
	}
	p, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return nil, err
	}
	return p.Apply(doc)
}

// Validate checks every target and rule.
func (c *Catalog) Validate() error {
	if len(c.Targets) == 0 {
		return &ValidationError{Message: "no targets"}
	}
	for _, name := range c.TargetNames() {
		t := c.Targets[name]
		if t == nil {
			return &ValidationError{Target: name, Rule: -1, Message: "empty target"}
		}
		if t.Attempts != nil && *t.Attempts < 0 {
			return &ValidationError{Target: name, Rule: -1, Message: fmt.Sprintf("negative attempts %d", *t.Attempts)}
		}
		for i := range t.Rules {
			r := &t.Rules[i]
			if len(r.Aliases) == 0 {
				return &ValidationError{Target: name, Rule: i, Message: "no aliases"}
			}
			for _, a := range r.Aliases {
				if a == "" {
					return &ValidationError{Target: name, Rule: i, Message: "empty alias"}
				}
			}
			if (r.Value == nil) == (r.Expr == "") {
				return &ValidationError{Target: name, Rule: i, Message: "need exactly one of value and expr"}
			}
			if r.Critical && r.Expr != "" {
				return &ValidationError{Target: name, Rule: i, Message: "expr rules cannot be critical"}
			}
		}
	}
	return nil
}

// TargetNames returns the target names sorted.
func (c *Catalog) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for n := range c.Targets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidationError locates a problem in a catalogue. Rule is -1 for target
// level problems.
type ValidationError struct {
	Target  string
	Rule    int
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Target == "":
		return fmt.Sprintf("invalid catalogue: %s", e.Message)
	case e.Rule < 0:
		return fmt.Sprintf("invalid target %q: %s", e.Target, e.Message)
	default:
		return fmt.Sprintf("invalid rule %d of target %q: %s", e.Rule, e.Target, e.Message)
	}
}
