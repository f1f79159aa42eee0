package sim

//go:generate go run ../cmd/driftpatch-gen -types GeneratorV1,GeneratorV2 -o members_gen.go

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/signadot/driftpatch/catalog"
)

// BuildLocation is where a v1 building may be placed.
type BuildLocation int32

const (
	Anywhere BuildLocation = iota
	OnFloor
	OnWall
	OnCeiling
)

func (l BuildLocation) String() string {
	switch l {
	case Anywhere:
		return "Anywhere"
	case OnFloor:
		return "OnFloor"
	case OnWall:
		return "OnWall"
	case OnCeiling:
		return "OnCeiling"
	}
	return fmt.Sprintf("BuildLocation(%d)", int32(l))
}

// Placement replaced BuildLocation in v2 with the same ordinals.
type Placement uint8

// GeneratorV1 is the generator as the first host version shipped it.
type GeneratorV1 struct {
	Power      bool
	Location   BuildLocation
	HitPoints  int
	Efficiency float32
}

// GeneratorV2 renamed and hid most members behind lowercase fields and
// accessors.
type GeneratorV2 struct {
	power      bool
	placement  Placement
	hp         int
	efficiency float32
	overheats  bool
}

func (g *GeneratorV2) Placement() Placement { return g.placement }
func (g *GeneratorV2) SetPlacement(p Placement) { g.placement = p }

func (g *GeneratorV2) Efficiency() float32 { return g.efficiency }
func (g *GeneratorV2) SetEfficiency(e float32) error {
	if e < 0 || e > 1 {
		return fmt.Errorf("efficiency %v out of range", e)
	}
	g.efficiency = e
	return nil
}

// Powered reports the v2 power flag.
func (g *GeneratorV2) Powered() bool { return g.power }

func (g *GeneratorV2) HitPoints() int { return g.hp }

// Versions maps host version names to generator constructors.
var Versions = map[string]func() any{
	"v1": func() any { return &GeneratorV1{Location: Anywhere, HitPoints: 100, Efficiency: 0.5} },
	"v2": func() any { return &GeneratorV2{hp: 100, efficiency: 0.5, overheats: true} },
}

// VersionNames lists the known versions sorted.
func VersionNames() []string {
	res := make([]string, 0, len(Versions))
	for v := range Versions {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}

// New constructs a generator for the given host version.
func New(version string) (any, error) {
	mk, ok := Versions[version]
	if !ok {
		return nil, fmt.Errorf("unknown host version %q (have %v)", version, VersionNames())
	}
	return mk(), nil
}

// Types is the catalogue type set for the simulated host.
func Types() catalog.TypeSet {
	return catalog.DefaultTypes().
		With("BuildLocation", reflect.TypeFor[BuildLocation]()).
		With("Placement", reflect.TypeFor[Placement]())
}
