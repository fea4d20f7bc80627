package region

import (
	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/logging"
)

// Permission is the host's access to a region. It is a bit set: more bits
// means more restrictive.
type Permission uint8

const (
	NoProtection   Permission = 0
	ReadProtected  Permission = 1
	WriteProtected Permission = 2
	Locked         Permission = ReadProtected | WriteProtected
)

// CanRead reports whether reads are allowed.
func (p Permission) CanRead() bool { return p&ReadProtected == 0 }

// CanWrite reports whether writes and erases are allowed.
func (p Permission) CanWrite() bool { return p&WriteProtected == 0 }

// Tighten returns the union of both restrictions.
func (p Permission) Tighten(q Permission) Permission { return p | q }

func (p Permission) String() string {
	switch p {
	case NoProtection:
		return "read-write"
	case ReadProtected:
		return "write-only"
	case WriteProtected:
		return "read-only"
	default:
		return "locked"
	}
}

// Intent is the operation a caller is about to perform. It decides the
// default for regions whose permissions cannot be resolved.
type Intent int

const (
	// IntentRead lets unresolvable regions default open.
	IntentRead Intent = iota
	// IntentWrite makes unresolvable regions default write protected.
	IntentWrite
)

// Access is a master's grant bitmap: bit i allows access to region i.
type Access struct {
	Read  uint16
	Write uint16
}

// Permission returns the permission Access grants on region i.
func (a Access) Permission(i int) Permission {
	if i < 0 || i >= chipset.MaxRegions {
		return Locked
	}
	var p Permission
	if a.Read&(1<<uint(i)) == 0 {
		p |= ReadProtected
	}
	if a.Write&(1<<uint(i)) == 0 {
		p |= WriteProtected
	}
	return p
}

// FRAP fields.
var (
	frapBRRA = chipset.Field{Shift: 0, Width: 8}
	frapBRWA = chipset.Field{Shift: 8, Width: 8}
)

// indexed by write<<1 | read grant bits
var frapPermissions = [4]Permission{Locked, WriteProtected, ReadProtected, NoProtection}

// FromFRAP returns the BIOS permission on region i (0..7) encoded in FRAP.
func FromFRAP(frap uint32, i int) Permission {
	if i < 0 || i >= 8 {
		return NoProtection
	}
	rw := 0
	if frapBRWA.Bit(frap, i) {
		rw |= 2
	}
	if frapBRRA.Bit(frap, i) {
		rw |= 1
	}
	return frapPermissions[rw]
}

// EncodeFRAP returns a FRAP value granting read/write access per region bitmap.
func EncodeFRAP(read, write uint8) uint32 {
	return frapBRWA.Set(frapBRRA.Set(0, uint32(read)), uint32(write))
}

// Inputs collects everything permission derivation depends on.
type Inputs struct {
	Generation chipset.Generation
	// FRAP is the access-rights register (legacy BIOS grants for regions 0-7).
	FRAP uint32
	// BIOS is the BIOS master's grant bitmap from the descriptor, if known.
	BIOS    *Access
	Regions []Region
	Ranges  []ProtectedRange
	Logger  logging.Logger
}

// DeriveBase computes per-region permissions without protected ranges.
// The result has one entry per input region. Unused regions get NoProtection.
func DeriveBase(in Inputs, intent Intent) []Permission {
	log := logging.OrNop(in.Logger)
	layout := in.Generation.Layout()
	perms := make([]Permission, len(in.Regions))

	for idx, r := range in.Regions {
		i := r.Index
		if !r.Used() {
			perms[idx] = NoProtection
			continue
		}

		switch {
		case layout.Kind == chipset.KindPCH100 && in.BIOS != nil:
			perms[idx] = in.BIOS.Permission(i)
		case layout.HasFRAP && i < 8:
			perms[idx] = FromFRAP(in.FRAP, i)
		case layout.Kind == chipset.KindPCH100:
			if intent == IntentWrite {
				perms[idx] = WriteProtected
			} else {
				perms[idx] = NoProtection
			}
			log.Debug("region permissions unresolved",
				"region", i, "name", r.Name, "assumed", perms[idx].String())
		case layout.HasFRAP:
			perms[idx] = NoProtection
			log.Debug("region permissions unknown",
				"region", i, "name", r.Name, "base", r.Base, "limit", r.Limit)
		default:
			perms[idx] = NoProtection
		}
	}
	return perms
}

// Derive computes per-region permissions and tightens every region that
// overlaps an active protected range.
func Derive(in Inputs, intent Intent) []Permission {
	perms := DeriveBase(in, intent)
	return ApplyRanges(in.Regions, perms, in.Ranges)
}

// ApplyRanges returns a copy of perms tightened by the overlapping ranges.
func ApplyRanges(regions []Region, perms []Permission, ranges []ProtectedRange) []Permission {
	out := make([]Permission, len(perms))
	copy(out, perms)
	for idx, r := range regions {
		if idx >= len(out) {
			break
		}
		for _, pr := range ranges {
			if pr.Overlaps(r) {
				out[idx] = out[idx].Tighten(pr.Permission())
			}
		}
	}
	return out
}
