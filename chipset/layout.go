package chipset

// ControllerKind is the register-block family of an SPI controller.
type ControllerKind int

const (
	// KindNone means the generation has no SPI controller this module drives.
	KindNone ControllerKind = iota

	// KindICH7 is the ICH7-style block: SPIS/SPIC at 0x00, software sequencing only.
	KindICH7

	// KindICH9 is the ICH9-style block: HSFS/HSFC plus SSFS/SSFC at 0x90.
	KindICH9

	// KindPCH100 is the 100-series block: 4-bit FCYCLE, SSFS/SSFC at 0xA0.
	KindPCH100
)

func (k ControllerKind) String() string {
	switch k {
	case KindICH7:
		return "ich7"
	case KindICH9:
		return "ich9"
	case KindPCH100:
		return "pch100"
	default:
		return "none"
	}
}

// CountKind selects how a descriptor count field is interpreted.
type CountKind int

const (
	// CountUnsupported means the generation defines no such table.
	CountUnsupported CountKind = iota

	// CountPlusOne means the field stores count-1.
	CountPlusOne

	// CountDirect means the field stores the count itself.
	CountDirect

	// CountFixed means the field is reserved and the count is a constant.
	CountFixed
)

// CountRule bounds the number of regions or masters a descriptor may declare.
type CountRule struct {
	Kind CountKind
	Max  int
}

// MasterLayout places the per-master access bitmaps inside an FLMSTR dword.
type MasterLayout struct {
	RequesterID Field
	Read        Field
	Write       Field
	ExtRead     Field
	ExtWrite    Field
	// ExtBase is the first region index covered by the extended fields.
	ExtBase int
}

// ComponentLayout places the FLCOMP fields.
type ComponentLayout struct {
	Density1     Field
	Density2     Field
	MaxDensity   uint32
	ReadFreq     Field
	FastRead     Field
	FastReadFreq Field
	WriteFreq    Field
	ReadIDFreq   Field
	DualOutput   Field
}

// BARSource names where the SPI register window base comes from.
type BARSource int

const (
	BARNone BARSource = iota
	// BARRCBA reads the root complex base from LPC config 0xF0 and adds Offset.
	BARRCBA
	// BARSBASE reads SBASE from LPC config 0x54.
	BARSBASE
	// BARSPIFunction reads BAR0 of the dedicated SPI PCI function.
	BARSPIFunction
	// BARVIA reads the MMIO base from config 0xBC, shifted left by 8.
	BARVIA
)

// Locator describes how to find and size the SPI register window.
type Locator struct {
	Source       BARSource
	ConfigOffset uint8
	Mask         uint32
	Shift        uint
	Offset       uint32
	Size         int
}

// Layout holds every generation-dependent constant the driver needs.
// Adding a generation means adding a Layout, not new code paths.
type Layout struct {
	Kind ControllerKind

	// Descriptor support.
	Descriptor     bool
	Component      ComponentLayout
	Regions        CountRule
	Masters        CountRule
	MasterBits     MasterLayout
	MasterNames    []string
	IllegalOpcodes int
	HasFPB         bool
	RegFDOC        uint32
	RegFDOD        uint32

	// Software sequencing.
	SWSeq     bool
	RegSSFSC  uint32
	RegPREOP  uint32
	RegOPTYPE uint32
	RegOPMENU uint32
	HasBBAR   bool
	RegBBAR   uint32
	MaxData   int
	DBC       Field

	// Hardware sequencing.
	HWSeq        bool
	ForceHWSeq   bool
	AddrMask     uint32
	Only4K       bool
	FCycle       Field
	StatusCycles bool
	IDCycle      bool
	SSEQLock     bool

	// Flash regions and protected ranges.
	HasFRAP  bool
	NumFREG  int
	NumPR    int
	RegPR0   uint32
	PRLegacy bool

	SPIBAR Locator
}

var (
	oldComponent = ComponentLayout{
		Density1:     Field{0, 3},
		Density2:     Field{3, 3},
		MaxDensity:   5,
		ReadFreq:     Field{17, 3},
		FastRead:     Field{20, 1},
		FastReadFreq: Field{21, 3},
		WriteFreq:    Field{24, 3},
		ReadIDFreq:   Field{27, 3},
		DualOutput:   Field{30, 1},
	}
	newComponent = ComponentLayout{
		Density1:     Field{0, 4},
		Density2:     Field{4, 4},
		MaxDensity:   7,
		ReadFreq:     Field{17, 3},
		FastRead:     Field{20, 1},
		FastReadFreq: Field{21, 3},
		WriteFreq:    Field{24, 3},
		ReadIDFreq:   Field{27, 3},
		DualOutput:   Field{30, 1},
	}

	legacyMasters = MasterLayout{
		RequesterID: Field{0, 16},
		Read:        Field{16, 8},
		Write:       Field{24, 8},
	}
	skylakeMasters = MasterLayout{
		ExtRead:  Field{0, 4},
		ExtWrite: Field{4, 4},
		Read:     Field{8, 12},
		Write:    Field{20, 12},
		ExtBase:  12,
	}

	legacyMasterNames    = []string{"BIOS", "ME", "GbE"}
	skylakeMasterNames   = []string{"BIOS", "ME", "GbE", "DevExp", "EC"}
	lewisburgMasterNames = []string{"BIOS", "ME", "GbE", "DevExp", "BMC", "IE"}
	apolloMasterNames    = []string{"BIOS", "TXE", "GbE", "DevExp", "EC", "IE"}
)

func ich7Layout(maxData int, dbc Field, bbar bool) Layout {
	return Layout{
		Kind:      KindICH7,
		SWSeq:     true,
		RegSSFSC:  0x00,
		RegPREOP:  0x54,
		RegOPTYPE: 0x56,
		RegOPMENU: 0x58,
		HasBBAR:   bbar,
		RegBBAR:   0x50,
		MaxData:   maxData,
		DBC:       dbc,
		NumPR:     3,
		RegPR0:    0x60,
		PRLegacy:  true,
		SPIBAR:    Locator{Source: BARRCBA, ConfigOffset: 0xf0, Mask: 0xffffc000, Offset: 0x3020, Size: 0x70},
	}
}

func ich9Layout(component ComponentLayout, regions CountRule, bbar bool) Layout {
	return Layout{
		Kind:           KindICH9,
		Descriptor:     true,
		Component:      component,
		Regions:        regions,
		Masters:        CountRule{Kind: CountPlusOne, Max: 3},
		MasterBits:     legacyMasters,
		MasterNames:    legacyMasterNames,
		IllegalOpcodes: 4,
		HasFPB:         true,
		RegFDOC:        0xb0,
		RegFDOD:        0xb4,
		SWSeq:          true,
		RegSSFSC:       0x90,
		RegPREOP:       0x94,
		RegOPTYPE:      0x96,
		RegOPMENU:      0x98,
		HasBBAR:        bbar,
		RegBBAR:        0xa0,
		MaxData:        64,
		DBC:            Field{16, 6},
		HWSeq:          true,
		AddrMask:       0x01ffffff,
		FCycle:         Field{1, 2},
		HasFRAP:        true,
		NumFREG:        5,
		NumPR:          5,
		RegPR0:         0x74,
		SPIBAR:         Locator{Source: BARRCBA, ConfigOffset: 0xf0, Mask: 0xffffc000, Offset: 0x3800, Size: 0x200},
	}
}

func pch100Layout(regions, masters CountRule, names []string, numFREG int) Layout {
	return Layout{
		Kind:           KindPCH100,
		Descriptor:     true,
		Component:      newComponent,
		Regions:        regions,
		Masters:        masters,
		MasterBits:     skylakeMasters,
		MasterNames:    names,
		IllegalOpcodes: 8,
		RegFDOC:        0xb4,
		RegFDOD:        0xb8,
		SWSeq:          true,
		RegSSFSC:       0xa0,
		RegPREOP:       0xa4,
		RegOPTYPE:      0xa6,
		RegOPMENU:      0xa8,
		MaxData:        64,
		DBC:            Field{16, 6},
		HWSeq:          true,
		AddrMask:       0x07ffffff,
		Only4K:         true,
		FCycle:         Field{1, 4},
		StatusCycles:   true,
		IDCycle:        true,
		SSEQLock:       true,
		HasFRAP:        true,
		NumFREG:        numFREG,
		NumPR:          6,
		RegPR0:         0x84,
		SPIBAR:         Locator{Source: BARSPIFunction, ConfigOffset: 0x10, Mask: 0xfffff000, Size: 0x1000},
	}
}

var layouts = func() map[Generation]Layout {
	fiveRegions := CountRule{Kind: CountPlusOne, Max: 5}
	sevenRegions := CountRule{Kind: CountPlusOne, Max: 7}
	skylakeCount := CountRule{Kind: CountPlusOne, Max: 5}
	lewisburgCount := CountRule{Kind: CountDirect, Max: 6}

	m := map[Generation]Layout{
		Unknown:     {},
		ICH7:        ich7Layout(64, Field{8, 6}, true),
		TunnelCreek: ich7Layout(64, Field{8, 6}, true),
		Centerton:   ich7Layout(64, Field{8, 6}, true),
		VIA:         ich7Layout(16, Field{8, 4}, false),

		ICH8:                  ich9Layout(oldComponent, fiveRegions, false),
		ICH9:                  ich9Layout(oldComponent, fiveRegions, true),
		ICH10:                 ich9Layout(oldComponent, fiveRegions, true),
		Series5IbexPeak:       ich9Layout(oldComponent, fiveRegions, true),
		Series6CougarPoint:    ich9Layout(oldComponent, fiveRegions, true),
		Series7PantherPoint:   ich9Layout(oldComponent, fiveRegions, true),
		Baytrail:              ich9Layout(oldComponent, fiveRegions, false),
		Series8LynxPoint:      ich9Layout(newComponent, sevenRegions, true),
		Series8LynxPointLP:    ich9Layout(newComponent, sevenRegions, true),
		Series8Wellsburg:      ich9Layout(newComponent, sevenRegions, true),
		Series9WildcatPoint:   ich9Layout(newComponent, sevenRegions, true),
		Series9WildcatPointLP: ich9Layout(newComponent, sevenRegions, true),

		Series100SunrisePoint: pch100Layout(CountRule{Kind: CountFixed, Max: 10}, skylakeCount, skylakeMasterNames, 10),
		C620Lewisburg:         pch100Layout(CountRule{Kind: CountFixed, Max: 16}, lewisburgCount, lewisburgMasterNames, 12),
		C740Emmitsburg:        pch100Layout(CountRule{Kind: CountFixed, Max: 16}, lewisburgCount, lewisburgMasterNames, 12),
		Series300CannonPoint:  pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		Series400CometPoint:   pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		Series500TigerPoint:   pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		Series600AlderPoint:   pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		MeteorLake:            pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		ApolloLake:            pch100Layout(CountRule{Kind: CountFixed, Max: 16}, lewisburgCount, apolloMasterNames, 16),
		GeminiLake:            pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		JasperLake:            pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
		ElkhartLake:           pch100Layout(CountRule{Kind: CountFixed, Max: 16}, skylakeCount, skylakeMasterNames, 16),
	}

	// ICH8 and Tunnel Creek sit at the old 0x3020 offset.
	ich8 := m[ICH8]
	ich8.SPIBAR.Offset = 0x3020
	m[ICH8] = ich8

	bt := m[Baytrail]
	bt.SPIBAR = Locator{Source: BARSBASE, ConfigOffset: 0x54, Mask: 0xfffffe00, Size: 0x200}
	m[Baytrail] = bt

	via := m[VIA]
	via.NumPR = 0
	via.SPIBAR = Locator{Source: BARVIA, ConfigOffset: 0xbc, Mask: 0xffffff, Shift: 8, Size: 0x70}
	m[VIA] = via

	for _, g := range []Generation{ApolloLake, GeminiLake, JasperLake, ElkhartLake} {
		l := m[g]
		l.ForceHWSeq = true
		m[g] = l
	}
	return m
}()

// LayoutOf returns the layout for g. Unknown and out-of-range generations
// return a zero Layout with Kind KindNone.
func LayoutOf(g Generation) Layout {
	return layouts[g]
}

// Layout is shorthand for LayoutOf(g).
func (g Generation) Layout() Layout {
	return LayoutOf(g)
}

// HasDescriptor reports whether g understands flash descriptors.
func (g Generation) HasDescriptor() bool {
	return layouts[g].Descriptor
}
