package region

// Info describes the address window containing a given address, with uniform
// permissions across the window.
type Info struct {
	Name           string
	Start          uint32
	End            uint32
	ReadProtected  bool
	WriteProtected bool
}

// Permission returns the info's protection as a Permission.
func (i Info) Permission() Permission {
	var p Permission
	if i.ReadProtected {
		p |= ReadProtected
	}
	if i.WriteProtected {
		p |= WriteProtected
	}
	return p
}

// Lookup returns the window around addr. perms are the base permissions from
// DeriveBase; protected ranges are applied here and clip the window so that
// its permissions are uniform. Addresses outside every region yield an
// unnamed, unprotected window spanning the gap between neighbouring regions.
func Lookup(regions []Region, perms []Permission, ranges []ProtectedRange, addr, chipSize uint32) Info {
	info := Info{Start: 0, End: chipSize - 1}

	found := false
	for idx, r := range regions {
		if !r.Contains(addr) {
			continue
		}
		info.Name = r.Name
		info.Start = r.Base
		info.End = r.Limit
		if idx < len(perms) {
			info.ReadProtected = !perms[idx].CanRead()
			info.WriteProtected = !perms[idx].CanWrite()
		}
		found = true
		break
	}

	if !found {
		for _, r := range regions {
			if !r.Used() {
				continue
			}
			if r.Limit < addr && r.Limit+1 > info.Start {
				info.Start = r.Limit + 1
			}
			if r.Base > addr && r.Base-1 < info.End {
				info.End = r.Base - 1
			}
		}
	}

	for _, pr := range ranges {
		if !pr.Active() {
			continue
		}
		switch {
		case pr.Contains(addr):
			info.ReadProtected = info.ReadProtected || pr.ReadProtected
			info.WriteProtected = info.WriteProtected || pr.WriteProtected
			if pr.Base > info.Start {
				info.Start = pr.Base
			}
			if pr.Limit < info.End {
				info.End = pr.Limit
			}
		case pr.Base > addr && pr.Base <= info.End:
			info.End = pr.Base - 1
		case pr.Limit < addr && pr.Limit >= info.Start:
			info.Start = pr.Limit + 1
		}
	}

	return info
}
