package descriptor

import (
	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/region"
)

// Constants for the flash descriptor binary format.
const (
	// Signature is FLVALSIG, stored little-endian as 5A A5 F0 0F.
	Signature = 0x0FF0A55A

	// Size is the size of the descriptor region.
	Size = 4096

	// BugOffset is where some PCH images carry the signature instead of offset 0.
	BugOffset = 16

	// UpperMapOffset is FLUMAP1, the dword before the 256-byte OEM section.
	UpperMapOffset = Size - 256 - 4

	// MinFullSize is the smallest buffer Parse accepts.
	MinFullSize = UpperMapOffset + 4
)

// Content (FLMAP0-2) fields.
var (
	fieldFCBA  = chipset.Field{Shift: 0, Width: 8}
	fieldNC    = chipset.Field{Shift: 8, Width: 2}
	fieldFRBA  = chipset.Field{Shift: 16, Width: 8}
	fieldNR    = chipset.Field{Shift: 24, Width: 3}
	fieldFMBA  = chipset.Field{Shift: 0, Width: 8}
	fieldNM    = chipset.Field{Shift: 8, Width: 3}
	fieldFISBA = chipset.Field{Shift: 16, Width: 8}
	fieldISL   = chipset.Field{Shift: 24, Width: 8}
	fieldFMSBA = chipset.Field{Shift: 0, Width: 8}
	fieldMSL   = chipset.Field{Shift: 8, Width: 8}
	fieldICCRI = chipset.Field{Shift: 16, Width: 8}
	fieldRIL   = chipset.Field{Shift: 24, Width: 8}
	fieldCSSO  = chipset.Field{Shift: 2, Width: 10}
	fieldCSSL  = chipset.Field{Shift: 16, Width: 8}
)

// base pointers are stored in 16-byte units
func baseOffset(v uint32) int { return int(v) << 4 }

// Content is the descriptor map section.
type Content struct {
	FLVALSIG uint32
	FLMAP0   uint32
	FLMAP1   uint32
	FLMAP2   uint32
}

func (c Content) FCBA() int    { return baseOffset(fieldFCBA.Get(c.FLMAP0)) }
func (c Content) NC() int      { return int(fieldNC.Get(c.FLMAP0)) }
func (c Content) FRBA() int    { return baseOffset(fieldFRBA.Get(c.FLMAP0)) }
func (c Content) NR() int      { return int(fieldNR.Get(c.FLMAP0)) }
func (c Content) FMBA() int    { return baseOffset(fieldFMBA.Get(c.FLMAP1)) }
func (c Content) NM() int      { return int(fieldNM.Get(c.FLMAP1)) }
func (c Content) FISBA() int   { return baseOffset(fieldFISBA.Get(c.FLMAP1)) }
func (c Content) ISL() int     { return int(fieldISL.Get(c.FLMAP1)) }
func (c Content) FMSBA() int   { return baseOffset(fieldFMSBA.Get(c.FLMAP2)) }
func (c Content) MSL() int     { return int(fieldMSL.Get(c.FLMAP2)) }
func (c Content) ICCRIBA() int { return int(fieldICCRI.Get(c.FLMAP2)) }
func (c Content) RIL() int     { return int(fieldRIL.Get(c.FLMAP2)) }

// CSSO is the CPU soft strap offset, overlaying FLMAP2 from Tiger Point on.
func (c Content) CSSO() int { return int(fieldCSSO.Get(c.FLMAP2)) }

// CSSL is the CPU soft strap length, overlaying ICCRIBA.
func (c Content) CSSL() int { return int(fieldCSSL.Get(c.FLMAP2)) }

// Component is the flash component section.
type Component struct {
	FLCOMP uint32
	FLILL  uint32
	// FLPB on older generations, FLILL1 from the 100-series on.
	FLPB uint32
}

// ReadFreq returns the raw read clock selector.
func (c Component) ReadFreq() int {
	return int(chipset.Field{Shift: 17, Width: 3}.Get(c.FLCOMP))
}

// IllegalOpcodes returns the first n forbidden opcodes.
func (c Component) IllegalOpcodes(n int) []byte {
	words := [2]uint32{c.FLILL, c.FLPB}
	out := make([]byte, 0, n)
	for i := 0; i < n && i < 8; i++ {
		out = append(out, byte(words[i/4]>>(8*uint(i%4))))
	}
	return out
}

// Master is one FLMSTR entry.
type Master struct {
	Index int
	Name  string
	Raw   uint32
	// ReqID is only defined on generations before the 100-series.
	ReqID uint16
	Read  uint16
	Write uint16
}

// Access returns the master's grant bitmap.
func (m Master) Access() region.Access {
	return region.Access{Read: m.Read, Write: m.Write}
}

// DecodeMaster decodes FLMSTR entry i for layout l.
func DecodeMaster(l chipset.Layout, i int, v uint32) Master {
	bits := l.MasterBits
	m := Master{
		Index: i,
		Name:  l.MasterName(i),
		Raw:   v,
		ReqID: uint16(bits.RequesterID.Get(v)),
		Read:  uint16(bits.Read.Get(v)),
		Write: uint16(bits.Write.Get(v)),
	}
	if bits.ExtRead.Present() {
		m.Read |= uint16(bits.ExtRead.Get(v)) << uint(bits.ExtBase)
		m.Write |= uint16(bits.ExtWrite.Get(v)) << uint(bits.ExtBase)
	}
	return m
}

// VSCC register fields.
var (
	vsccBES  = chipset.Field{Shift: 0, Width: 2}
	vsccWG   = chipset.Field{Shift: 2, Width: 1}
	vsccWSR  = chipset.Field{Shift: 3, Width: 1}
	vsccWEWS = chipset.Field{Shift: 4, Width: 1}
	vsccEO   = chipset.Field{Shift: 8, Width: 8}
	vsccVCL  = chipset.Field{Shift: 23, Width: 1}
)

// VSCC is a decoded vendor specific component capabilities value.
type VSCC struct {
	Raw  uint32
	BES  uint8
	WG   bool
	WSR  bool
	WEWS bool
	EO   uint8
	VCL  bool
}

// DecodeVSCC decodes one VSCC half (lower or upper) or an LVSCC/UVSCC register.
func DecodeVSCC(v uint32) VSCC {
	return VSCC{
		Raw:  v,
		BES:  uint8(vsccBES.Get(v)),
		WG:   vsccWG.Get(v) == 1,
		WSR:  vsccWSR.Get(v) == 1,
		WEWS: vsccWEWS.Get(v) == 1,
		EO:   uint8(vsccEO.Get(v)),
		VCL:  vsccVCL.Get(v) == 1,
	}
}

// VSCCEntry is one JEDEC ID and its capabilities from the ME VSCC table.
type VSCCEntry struct {
	JID  uint32
	VSCC uint32
}

// Vendor returns the JEDEC manufacturer ID.
func (e VSCCEntry) Vendor() uint8 { return uint8(e.JID) }

// Device returns the JEDEC device ID as printed by vendors.
func (e VSCCEntry) Device() uint16 { return uint16(e.JID>>16)&0xff | uint16(e.JID)&0xff00 }

// Upper returns the capabilities of the upper flash partition.
func (e VSCCEntry) Upper() VSCC { return DecodeVSCC(e.VSCC & 0xffff) }

// Lower returns the capabilities of the lower flash partition.
func (e VSCCEntry) Lower() VSCC { return DecodeVSCC(e.VSCC >> 16) }

// UpperMap is FLUMAP1 with the VSCC table it points at.
type UpperMap struct {
	FLUMAP1 uint32
	VSCC    []VSCCEntry
}

// VTBA returns the byte offset of the VSCC table.
func (u UpperMap) VTBA() int { return int(u.FLUMAP1<<4) & 0xff0 }

// VTL returns the VSCC table length in dwords.
func (u UpperMap) VTL() int { return int(u.FLUMAP1>>8) & 0xff }

// MDTBA returns the MIP descriptor table base (Cannon Point and newer).
func (u UpperMap) MDTBA() int { return int(u.FLUMAP1 >> 24) }

// Descriptor is a decoded flash descriptor. It is immutable after parsing.
type Descriptor struct {
	Generation chipset.Generation
	// Guessed is set when Generation was inferred from the content.
	Guessed bool
	// Offset is the byte offset of FLVALSIG: 0 or BugOffset.
	Offset    int
	Content   Content
	Component Component
	Regions   []region.Region
	Masters   []Master

	// Only present when parsed from a full image.
	Upper       *UpperMap
	NorthStraps []uint32
	SouthStraps []uint32
}

// Layout returns the chipset layout governing the descriptor.
func (d *Descriptor) Layout() chipset.Layout {
	return d.Generation.Layout()
}

// NumComponents returns the number of flash chips described (1 or 2).
func (d *Descriptor) NumComponents() int {
	return d.Content.NC() + 1
}

// ComponentSize returns the size in bytes of component idx (0 or 1).
func (d *Descriptor) ComponentSize(idx int) (uint32, error) {
	return ComponentDensity(d.Generation, d.Content, d.Component, idx)
}

// ChipSize returns the total size of all components.
func (d *Descriptor) ChipSize() (uint32, error) {
	var total uint32
	for i := 0; i < d.NumComponents(); i++ {
		n, err := d.ComponentSize(i)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Master returns the named master, or false.
func (d *Descriptor) Master(name string) (Master, bool) {
	for _, m := range d.Masters {
		if m.Name == name {
			return m, true
		}
	}
	return Master{}, false
}

// BIOSAccess returns the BIOS master's grant bitmap, or nil without a master table.
func (d *Descriptor) BIOSAccess() *region.Access {
	if d == nil {
		return nil
	}
	m, ok := d.Master("BIOS")
	if !ok {
		return nil
	}
	a := m.Access()
	return &a
}

// IllegalOpcodes returns the opcodes the descriptor forbids.
func (d *Descriptor) IllegalOpcodes() []byte {
	return d.Component.IllegalOpcodes(d.Layout().IllegalOpcodes)
}
