package region

import (
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
)

// Protected range register fields (PRx on ICH9 and later).
var (
	prBase  = chipset.Field{Shift: 0, Width: 15}
	prRPE   = chipset.Field{Shift: 15, Width: 1}
	prLimit = chipset.Field{Shift: 16, Width: 15}
	prWPE   = chipset.Field{Shift: 31, Width: 1}

	// ICH7 PBRx: 13-bit base and limit, write protection only.
	pbrBase  = chipset.Field{Shift: 0, Width: 13}
	pbrLimit = chipset.Field{Shift: 16, Width: 13}
)

// ProtectedRange is an address window whose protection applies regardless of
// region ownership. Protection bits are set when the range is protected.
type ProtectedRange struct {
	Index          int
	Raw            uint32
	Base           uint32
	Limit          uint32
	ReadProtected  bool
	WriteProtected bool
}

// DecodePR decodes protected range register i.
func DecodePR(i int, v uint32) ProtectedRange {
	return ProtectedRange{
		Index:          i,
		Raw:            v,
		Base:           prBase.Get(v) << 12,
		Limit:          prLimit.Get(v)<<12 | 0xfff,
		ReadProtected:  prRPE.Get(v) == 1,
		WriteProtected: prWPE.Get(v) == 1,
	}
}

// DecodePBR decodes an ICH7 protected BIOS range register.
func DecodePBR(i int, v uint32) ProtectedRange {
	return ProtectedRange{
		Index:          i,
		Raw:            v,
		Base:           pbrBase.Get(v) << 12,
		Limit:          pbrLimit.Get(v)<<12 | 0xfff,
		WriteProtected: prWPE.Get(v) == 1,
	}
}

// EncodePR returns the PRx value for a window and its protection bits.
func EncodePR(base, limit uint32, read, write bool) uint32 {
	v := prBase.Set(0, base>>12)
	v = prLimit.Set(v, limit>>12)
	if read {
		v = prRPE.Set(v, 1)
	}
	if write {
		v = prWPE.Set(v, 1)
	}
	return v
}

// Active reports whether the range protects anything.
func (p ProtectedRange) Active() bool {
	return (p.ReadProtected || p.WriteProtected) && p.Base <= p.Limit
}

// Contains reports whether addr lies inside an active range.
func (p ProtectedRange) Contains(addr uint32) bool {
	return p.Active() && addr >= p.Base && addr <= p.Limit
}

// Overlaps reports whether an active range intersects the used region r.
func (p ProtectedRange) Overlaps(r Region) bool {
	return p.Active() && r.Used() && p.Base <= r.Limit && r.Base <= p.Limit
}

// Permission returns the protection the range imposes.
func (p ProtectedRange) Permission() Permission {
	var perm Permission
	if p.ReadProtected {
		perm |= ReadProtected
	}
	if p.WriteProtected {
		perm |= WriteProtected
	}
	return perm
}

func (p ProtectedRange) String() string {
	if !p.Active() {
		return fmt.Sprintf("PR%d: inactive", p.Index)
	}
	return fmt.Sprintf("PR%d: 0x%08x-0x%08x is %s", p.Index, p.Base, p.Limit, p.Permission())
}
