package chipset

import "fmt"

// MaxRegions is the largest region table any generation defines.
const MaxRegions = 16

var regionNames = [MaxRegions]string{
	"Descriptor",
	"BIOS",
	"ME",
	"GbE",
	"Platform",
	"DevExp",
	"BIOS2",
	"unknown",
	"EC/BMC",
	"unknown",
	"IE",
	"10GbE0",
	"10GbE1",
	"unknown",
	"unknown",
	"PTT",
}

var regionFileNames = [MaxRegions]string{
	"fd", "bios", "me", "gbe", "pd", "devexp", "bios2", "reg7",
	"ec", "reg9", "ie", "10gbe0", "10gbe1", "reg13", "reg14", "ptt",
}

// RegionName returns the human-readable name of region i.
func RegionName(i int) string {
	if i < 0 || i >= MaxRegions {
		return "unknown"
	}
	return regionNames[i]
}

// RegionFileName returns a short lower-case name for region i, suitable for file names.
func RegionFileName(i int) string {
	if i < 0 || i >= MaxRegions {
		return fmt.Sprintf("reg%d", i)
	}
	return regionFileNames[i]
}

// MasterName returns the name of master i on this layout.
func (l Layout) MasterName(i int) string {
	if i < 0 || i >= len(l.MasterNames) {
		return "unknown"
	}
	return l.MasterNames[i]
}
