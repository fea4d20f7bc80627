package descriptor

import (
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
)

func count(table string, gen chipset.Generation, rule chipset.CountRule, field int) (int, error) {
	var n int
	switch rule.Kind {
	case chipset.CountPlusOne:
		n = field + 1
	case chipset.CountDirect:
		n = field
	case chipset.CountFixed:
		return rule.Max, nil
	default:
		return 0, &CountError{Table: table, Generation: gen}
	}
	if n > rule.Max {
		return 0, &CountError{Table: table, Generation: gen, Count: n, Max: rule.Max}
	}
	return n, nil
}

// RegionsFor returns the number of region entries the descriptor declares.
// From the 100-series on NR is reserved and the generation's fixed count is
// returned.
func RegionsFor(gen chipset.Generation, c Content) (int, error) {
	return count("region", gen, gen.Layout().Regions, c.NR())
}

// MastersFor returns the number of master entries the descriptor declares.
func MastersFor(gen chipset.Generation, c Content) (int, error) {
	return count("master", gen, gen.Layout().Masters, c.NM())
}

// ComponentDensity returns the size in bytes of flash component idx.
// A second component that the descriptor does not declare has size 0.
func ComponentDensity(gen chipset.Generation, c Content, comp Component, idx int) (uint32, error) {
	if idx < 0 || idx > 1 {
		return 0, fmt.Errorf("component %d: %w", idx, ErrUnsupportedDensity)
	}
	if c.NC() == 0 && idx > 0 {
		return 0, nil
	}

	cl := gen.Layout().Component
	if cl.MaxDensity == 0 {
		return 0, &DensityError{Component: idx}
	}

	f := cl.Density1
	if idx == 1 {
		f = cl.Density2
	}
	enc := f.Get(comp.FLCOMP)
	if enc > cl.MaxDensity {
		return 0, &DensityError{Component: idx, Encoded: enc, Max: cl.MaxDensity}
	}
	return 1 << (19 + enc), nil
}
