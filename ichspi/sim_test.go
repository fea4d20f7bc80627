package ichspi

import (
	"encoding/binary"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/descriptor"
	"github.com/moffa90/go-ichspi/hwaccess"
	"github.com/moffa90/go-ichspi/protocol"
	"github.com/moffa90/go-ichspi/region"
)

// simOp records one cycle the simulated controller executed.
type simOp struct {
	Opcode byte
	Preop  byte
	Cycle  uint32
	Addr   uint32
	Len    int
}

// simController emulates an SPI controller and the flash chip behind it on
// top of an in-memory register window: write-1-to-clear status bits,
// SCGO/FGO triggered cycles, the opcode menu and FDOC/FDOD.
type simController struct {
	*hwaccess.MemRegisters
	layout chipset.Layout

	flash  []byte
	status byte
	id     [3]byte
	wel    bool

	// stall keeps cycles from ever completing; fault makes them fail.
	stall bool
	fault bool

	cycles int
	ops    []simOp

	// fdo is the descriptor image served through FDOC/FDOD.
	fdo []byte
	// berase returns the encoded erase block size at an address.
	berase func(addr uint32) uint32
}

func newSim(gen chipset.Generation, flashSize int) *simController {
	l := gen.Layout()
	s := &simController{
		MemRegisters: hwaccess.NewMemRegisters(l.SPIBAR.Size),
		layout:       l,
		flash:        make([]byte, flashSize),
		id:           [3]byte{0xef, 0x40, 0x17},
	}
	for i := range s.flash {
		s.flash[i] = 0xff
	}
	return s
}

func (s *simController) ich7() bool { return s.layout.Kind == chipset.KindICH7 }

func (s *simController) Write16(off uint32, v uint16) {
	switch {
	case s.ich7() && off == regSPIS:
		cur := s.MemRegisters.Read16(off)
		s.MemRegisters.Write16(off, cur&^(v&(spisCDS|spisFCERR)))
	case s.ich7() && off == regSPIC:
		s.MemRegisters.Write16(off, v&^spicSCGO)
		if v&spicSCGO != 0 {
			s.swCycle(uint32(v))
		}
	case !s.ich7() && off == regHSFS:
		cur := s.MemRegisters.Read16(off)
		s.MemRegisters.Write16(off, cur&^(v&hsfsClear))
	case !s.ich7() && off == regHSFC:
		s.MemRegisters.Write16(off, v&^hsfcFGO)
		if v&hsfcFGO != 0 {
			s.hwCycle(uint32(v))
		}
	default:
		s.MemRegisters.Write16(off, v)
	}
}

func (s *simController) Write32(off uint32, v uint32) {
	switch {
	case !s.ich7() && off == s.layout.RegSSFSC:
		cur := s.MemRegisters.Read32(off)
		st := cur & 0xff &^ (v & (ssfsCDS | ssfsFCERR | ssfsAEL))
		s.MemRegisters.Write32(off, v&^0xff&^ssfcSCGO|st)
		if v&ssfcSCGO != 0 {
			s.swCycle(v)
		}
	case !s.ich7() && off == regFADDR:
		s.MemRegisters.Write32(off, v)
		if s.berase != nil {
			hsfs := uint32(s.MemRegisters.Read16(regHSFS))
			s.MemRegisters.Write16(regHSFS, uint16(hsfsBERASE.Set(hsfs, s.berase(v&s.layout.AddrMask))))
		}
	case s.fdo != nil && off == s.layout.RegFDOC:
		s.MemRegisters.Write32(off, v)
		s.MemRegisters.Write32(s.layout.RegFDOD, s.fdoValue(v))
	default:
		s.MemRegisters.Write32(off, v)
	}
}

func (s *simController) fdoValue(fdoc uint32) uint32 {
	section := int(fdoc>>12) & 3
	index := int(fdoc&0xffc) >> 2
	dw := func(off int) uint32 { return binary.LittleEndian.Uint32(s.fdo[off:]) }

	flmap0, flmap1 := dw(4), dw(8)
	var base int
	switch section {
	case descriptor.SectionComponent:
		base = int(flmap0&0xff) << 4
	case descriptor.SectionRegion:
		base = int(flmap0>>16&0xff) << 4
	case descriptor.SectionMaster:
		base = int(flmap1&0xff) << 4
	}
	return dw(base + index*4)
}

func (s *simController) dataBase() uint32 {
	if s.ich7() {
		return regSPID0
	}
	return regFDATA0
}

func (s *simController) loadData(n int) []byte {
	buf := make([]byte, n)
	for a := 0; a < n; a += 4 {
		v := s.MemRegisters.Read32(s.dataBase() + uint32(a))
		for i := 0; i < 4 && a+i < n; i++ {
			buf[a+i] = byte(v >> (8 * uint(i)))
		}
	}
	return buf
}

func (s *simController) storeData(buf []byte) {
	for a := 0; a < len(buf); a += 4 {
		var v uint32
		for i := 0; i < 4 && a+i < len(buf); i++ {
			v |= uint32(buf[a+i]) << (8 * uint(i))
		}
		s.MemRegisters.Write32(s.dataBase()+uint32(a), v)
	}
}

func (s *simController) setSWStatus(bits uint32) {
	if s.ich7() {
		s.MemRegisters.Write16(regSPIS, s.MemRegisters.Read16(regSPIS)|uint16(bits))
		return
	}
	off := s.layout.RegSSFSC
	s.MemRegisters.Write32(off, s.MemRegisters.Read32(off)|bits)
}

func (s *simController) swCycle(ctrl uint32) {
	s.cycles++

	var slot uint32
	var ds, acs, spop bool
	var dbc, addr uint32
	if s.ich7() {
		slot = spicCOP.Get(ctrl)
		ds, acs, spop = ctrl&spicDS != 0, ctrl&spicACS != 0, ctrl&spicSPOP != 0
		addr = s.MemRegisters.Read32(regSPIA) & addrMask24
	} else {
		slot = ssfcCOP.Get(ctrl)
		ds, acs, spop = ctrl&ssfcDS != 0, ctrl&ssfcACS != 0, ctrl&ssfcSPOP != 0
		addr = s.MemRegisters.Read32(regFADDR) & addrMask24
	}
	dbc = s.layout.DBC.Get(ctrl)

	n := 0
	if ds {
		n = int(dbc) + 1
	}
	opmenu := uint64(s.MemRegisters.Read32(s.layout.RegOPMENU)) |
		uint64(s.MemRegisters.Read32(s.layout.RegOPMENU+4))<<32
	op := byte(opmenu >> (8 * slot))
	var preop byte
	if acs {
		preops := s.MemRegisters.Read16(s.layout.RegPREOP)
		preop = byte(preops)
		if spop {
			preop = byte(preops >> 8)
		}
	}
	s.ops = append(s.ops, simOp{Opcode: op, Preop: preop, Addr: addr, Len: n})

	cds, fcerr := uint32(ssfsCDS), uint32(ssfsFCERR)
	if s.ich7() {
		cds, fcerr = spisCDS, spisFCERR
	}
	if s.stall {
		return
	}
	if s.fault {
		s.setSWStatus(cds | fcerr)
		return
	}

	if preop == protocol.OpWREN || preop == protocol.OpEWSR {
		s.wel = true
	}
	data := s.loadData(n)
	ok := s.exec(op, addr, data)
	s.storeData(data)
	if !ok {
		s.setSWStatus(cds | fcerr)
		return
	}
	s.setSWStatus(cds)
}

// exec performs an SPI command on the flash array.
func (s *simController) exec(op byte, addr uint32, data []byte) bool {
	end := int(addr) + len(data)
	switch op {
	case protocol.OpREAD:
		if end > len(s.flash) {
			return false
		}
		copy(data, s.flash[addr:end])
	case protocol.OpPP:
		if !s.wel || end > len(s.flash) {
			return false
		}
		for i, b := range data {
			s.flash[int(addr)+i] &= b
		}
		s.wel = false
	case protocol.OpSE:
		return s.eraseBlock(addr, 4*1024)
	case protocol.OpBED8:
		return s.eraseBlock(addr, 64*1024)
	case protocol.OpCEC7:
		return s.eraseBlock(0, uint32(len(s.flash)))
	case protocol.OpRDSR:
		if len(data) > 0 {
			data[0] = s.status
		}
	case protocol.OpWRSR:
		if !s.wel || len(data) == 0 {
			return false
		}
		s.status = data[0]
		s.wel = false
	case protocol.OpRDID:
		copy(data, s.id[:])
	case protocol.OpREMS:
		if len(data) >= 2 {
			data[0], data[1] = s.id[0], s.id[2]
		}
	}
	return true
}

func (s *simController) eraseBlock(addr, size uint32) bool {
	if !s.wel {
		return false
	}
	base := addr - addr%size
	if int(base+size) > len(s.flash) {
		return false
	}
	for i := base; i < base+size; i++ {
		s.flash[i] = 0xff
	}
	s.wel = false
	return true
}

func (s *simController) hwCycle(hsfc uint32) {
	s.cycles++
	typ := s.layout.FCycle.Get(hsfc)
	n := int(hsfcFDBC.Get(hsfc)) + 1
	addr := s.MemRegisters.Read32(regFADDR) & s.layout.AddrMask
	s.ops = append(s.ops, simOp{Cycle: typ, Addr: addr, Len: n})

	if s.stall {
		return
	}
	hsfs := s.MemRegisters.Read16(regHSFS)
	if s.fault {
		s.MemRegisters.Write16(regHSFS, hsfs|hsfsFDONE|hsfsFCERR)
		return
	}

	ok := true
	switch typ {
	case cycleRead:
		data := make([]byte, n)
		copy(data, s.flash[addr:])
		s.storeData(data)
	case cycleWrite:
		for i, b := range s.loadData(n) {
			s.flash[int(addr)+i] &= b
		}
	case cycleErase:
		size := uint32(4 * 1024)
		if s.berase != nil {
			size = eraseBlockSizes[s.berase(addr)]
		}
		s.wel = true
		ok = s.eraseBlock(addr, size)
	case cycleReadID:
		s.storeData(s.id[:])
	case cycleReadStatus:
		s.storeData([]byte{s.status})
	case cycleWriteStatus:
		s.status = s.loadData(1)[0]
	}
	if !ok {
		hsfs |= hsfsFCERR
	}
	s.MemRegisters.Write16(regHSFS, hsfs|hsfsFDONE)
}

// lock sets the configuration lock-down bit.
func (s *simController) lock() {
	if s.ich7() {
		s.MemRegisters.Write16(regSPIS, s.MemRegisters.Read16(regSPIS)|spisLock)
		return
	}
	s.MemRegisters.Write16(regHSFS, s.MemRegisters.Read16(regHSFS)|hsfsFLOCKDN)
}

// setTable programs an opcode menu as firmware would before locking.
func (s *simController) setTable(t protocol.Table) {
	preop, optype, opmenu := t.Encode()
	s.MemRegisters.Write16(s.layout.RegPREOP, preop)
	s.MemRegisters.Write16(s.layout.RegOPTYPE, optype)
	s.MemRegisters.Write32(s.layout.RegOPMENU, uint32(opmenu))
	s.MemRegisters.Write32(s.layout.RegOPMENU+4, uint32(opmenu>>32))
}

func (s *simController) setFREG(i int, base, limit uint32) {
	s.MemRegisters.Write32(fregOffset(i), region.Encode(base, limit))
}

// testDescriptor describes nc+1 chips of 1<<(19+density) bytes each.
func testDescriptor(gen chipset.Generation, nc int, density uint32) *descriptor.Descriptor {
	cl := gen.Layout().Component
	flcomp := cl.Density1.Set(0, density)
	flcomp = cl.Density2.Set(flcomp, density)
	return &descriptor.Descriptor{
		Generation: gen,
		Content: descriptor.Content{
			FLVALSIG: descriptor.Signature,
			FLMAP0:   uint32(nc) << 8,
		},
		Component: descriptor.Component{FLCOMP: flcomp},
	}
}

func testOptions(extra ...Option) []Option {
	return append([]Option{WithDelayer(hwaccess.NoDelay)}, extra...)
}
