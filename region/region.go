package region

import (
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
)

// Flash region register fields. Base and limit are in 4 KiB units.
var (
	fieldBase  = chipset.Field{Shift: 0, Width: 15}
	fieldLimit = chipset.Field{Shift: 16, Width: 15}
)

// Region is one flash region, decoded from a descriptor FLREG entry or a
// controller FREG register (both share the same layout).
type Region struct {
	Index int
	Name  string
	Raw   uint32
	// Base and Limit are byte addresses; Limit is inclusive.
	Base  uint32
	Limit uint32
}

// FromFLREG decodes region i from its 32-bit register value.
func FromFLREG(i int, v uint32) Region {
	return Region{
		Index: i,
		Name:  chipset.RegionName(i),
		Raw:   v,
		Base:  fieldBase.Get(v) << 12,
		Limit: fieldLimit.Get(v)<<12 | 0xfff,
	}
}

// Encode returns the register value describing [base, limit] in 4 KiB units.
func Encode(base, limit uint32) uint32 {
	v := fieldBase.Set(0, base>>12)
	return fieldLimit.Set(v, limit>>12)
}

// Used reports whether the region is in use. A region whose base lies above
// its limit is unused, as is an all-zero entry other than region 0.
func (r Region) Used() bool {
	if r.Base > r.Limit {
		return false
	}
	if r.Raw == 0 && r.Index > 0 {
		return false
	}
	return true
}

// Contains reports whether addr lies inside a used region.
func (r Region) Contains(addr uint32) bool {
	return r.Used() && addr >= r.Base && addr <= r.Limit
}

// Size returns the region size in bytes, or 0 when unused.
func (r Region) Size() uint32 {
	if !r.Used() {
		return 0
	}
	return r.Limit - r.Base + 1
}

func (r Region) String() string {
	if !r.Used() {
		return fmt.Sprintf("FREG%d: %s region is unused", r.Index, r.Name)
	}
	return fmt.Sprintf("FREG%d: %s region 0x%08x-0x%08x", r.Index, r.Name, r.Base, r.Limit)
}

// Decode decodes a table of raw region values.
func Decode(raw []uint32) []Region {
	out := make([]Region, len(raw))
	for i, v := range raw {
		out[i] = FromFLREG(i, v)
	}
	return out
}
