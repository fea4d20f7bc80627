package ichspi

import (
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/protocol"
)

const engineSW = "swseq"

// BBAR holds bits 8-23 of the lowest address software sequencing may use.
const bbarMask = 0x00ffff00

// swseq is the software sequencing engine. The opcode table mirrors the
// hardware menu; mutable is false when the menu was read back from a locked
// controller.
type swseq struct {
	c       *Controller
	table   protocol.Table
	mutable bool
	bbar    uint32
}

func (s *swseq) name() string { return engineSW }

func (s *swseq) init() {
	c := s.c
	if c.locked {
		s.table = s.readback()
		c.logDebug("read back locked opcode table", "table", s.table.String())
	} else {
		s.mutable = true
		s.program(protocol.DefaultTable())
		c.logDebug("programmed default opcode table", "table", s.table.String())
	}

	if c.layout.HasBBAR {
		if !c.locked {
			c.regs.Write32(c.layout.RegBBAR, 0)
		}
		s.bbar = c.regs.Read32(c.layout.RegBBAR) & bbarMask
		if s.bbar != 0 {
			c.logInfo("BBAR restricts software sequencing", "bbar", fmt.Sprintf("0x%06x", s.bbar))
		}
	}
}

// program writes t to PREOP/OPTYPE/OPMENU and mirrors it. Atomic tags are
// kept in memory only.
func (s *swseq) program(t protocol.Table) {
	l := s.c.layout
	preop, optype, opmenu := t.Encode()
	s.c.regs.Write16(l.RegPREOP, preop)
	s.c.regs.Write16(l.RegOPTYPE, optype)
	s.c.regs.Write32(l.RegOPMENU, uint32(opmenu))
	s.c.regs.Write32(l.RegOPMENU+4, uint32(opmenu>>32))
	s.table = t
}

func (s *swseq) readback() protocol.Table {
	l := s.c.layout
	opmenu := uint64(s.c.regs.Read32(l.RegOPMENU)) | uint64(s.c.regs.Read32(l.RegOPMENU+4))<<32
	return protocol.Decode(s.c.regs.Read16(l.RegPREOP), s.c.regs.Read16(l.RegOPTYPE), opmenu)
}

// ProgramOpcodes replaces the opcode table of an unlocked controller.
//
// Example:
//
//	t := protocol.DefaultTable()
//	t.Ops[7] = protocol.Opcode{Code: protocol.OpBED8, Type: protocol.WriteWithAddr}
//	err := ctrl.ProgramOpcodes(t)
func (c *Controller) ProgramOpcodes(t protocol.Table) error {
	if c.sw == nil || c.mode != ModeSoftware {
		return ErrWrongMode
	}
	if !c.sw.mutable {
		return fmt.Errorf("%w: opcode table is locked", ErrUnsupportedOpcode)
	}
	t.ResetAtomic()
	c.sw.program(t)
	return nil
}

// ReadbackOpcodes reads the opcode table currently programmed in hardware.
func (c *Controller) ReadbackOpcodes() (protocol.Table, error) {
	if c.sw == nil {
		return protocol.Table{}, ErrWrongMode
	}
	return c.sw.readback(), nil
}

// Send issues one SPI command through software sequencing. write holds the
// opcode followed by address and data bytes; read receives the response.
//
// Example:
//
//	status := make([]byte, 1)
//	err := ctrl.Send([]byte{protocol.OpRDSR}, status)
func (c *Controller) Send(write, read []byte) error {
	if c.mode != ModeSoftware {
		return ErrWrongMode
	}
	return c.sw.send(protocol.Command{Write: write, Read: read})
}

// SendMulti issues a sequence of commands. A preopcode (such as WREN)
// followed by another command is executed atomically with it. A preopcode in
// the last position is rejected before any hardware access.
//
// Example:
//
//	erase, _ := protocol.BuildEraseCmd(protocol.OpSE, 0x1000)
//	err := ctrl.SendMulti([]protocol.Command{
//	    protocol.BuildSimpleCmd(protocol.OpWREN),
//	    erase,
//	})
func (c *Controller) SendMulti(cmds []protocol.Command) error {
	if c.mode != ModeSoftware {
		return ErrWrongMode
	}
	return c.sw.sendMulti(cmds)
}

func (s *swseq) sendMulti(cmds []protocol.Command) error {
	for _, cmd := range cmds {
		if len(cmd.Write) == 0 {
			return &LengthError{Op: "command", Length: 0, Want: "at least one opcode byte"}
		}
	}
	if n := len(cmds); n > 0 {
		if op := cmds[n-1].Write[0]; s.table.FindPreop(op) >= 0 && s.table.Find(op) < 0 {
			return &OpcodeError{Opcode: op, Reason: "preopcode must be followed by another command"}
		}
	}

	defer s.table.ResetAtomic()
	for i, cmd := range cmds {
		if i+1 < len(cmds) {
			pre := s.table.FindPreop(cmd.Write[0])
			if pre >= 0 && s.table.Find(cmd.Write[0]) < 0 {
				next := cmds[i+1]
				nextOp := next.Write[0]
				if s.table.FindPreop(nextOp) >= 0 && s.table.Find(nextOp) < 0 {
					s.c.logInfo("two consecutive preopcodes, ignoring the first",
						"first", fmt.Sprintf("0x%02x", cmd.Write[0]),
						"second", fmt.Sprintf("0x%02x", nextOp))
					continue
				}
				slot, err := s.lookup(nextOp, len(next.Write), len(next.Read))
				if err != nil {
					return err
				}
				s.table.Ops[slot].Atomic = uint8(pre + 1)
				continue
			}
		}

		if err := s.send(cmd); err != nil {
			return err
		}
		s.table.ResetAtomic()
	}
	return nil
}

// lookup returns the slot of op, reprogramming slot ReprogramSlot when the
// table is mutable and op is missing.
func (s *swseq) lookup(op byte, writeLen, readLen int) (int, error) {
	if i := s.table.Find(op); i >= 0 {
		return i, nil
	}
	if !s.mutable {
		return -1, &OpcodeError{Opcode: op, Reason: "not in locked opcode table"}
	}

	typ, ok := protocol.TypeFor(op, writeLen, readLen)
	if !ok {
		return -1, &OpcodeError{
			Opcode: op,
			Reason: fmt.Sprintf("cannot infer type for %d write and %d read bytes", writeLen, readLen),
		}
	}

	t := s.table
	old := t.Ops[protocol.ReprogramSlot]
	t.Ops[protocol.ReprogramSlot] = protocol.Opcode{Code: op, Type: typ}
	s.program(t)
	s.c.logDebug("reprogrammed opcode on the fly",
		"slot", protocol.ReprogramSlot,
		"opcode", fmt.Sprintf("0x%02x", op),
		"type", typ.String(),
		"replaced", fmt.Sprintf("0x%02x", old.Code))
	return protocol.ReprogramSlot, nil
}

func (s *swseq) illegal(op byte) bool {
	if s.c.desc == nil || op == 0 {
		return false
	}
	for _, ill := range s.c.desc.IllegalOpcodes() {
		if ill == op {
			return true
		}
	}
	return false
}

func (s *swseq) send(cmd protocol.Command) error {
	w, r := cmd.Write, cmd.Read
	if len(w) == 0 {
		return &LengthError{Op: "command", Length: 0, Want: "at least one opcode byte"}
	}
	op := w[0]
	if s.illegal(op) {
		return &OpcodeError{Opcode: op, Reason: "forbidden by the flash descriptor"}
	}

	slot, err := s.lookup(op, len(w), len(r))
	if err != nil {
		return err
	}
	o := s.table.Ops[slot]

	if err := checkShape(o.Type, len(w), len(r)); err != nil {
		return err
	}

	var addr uint32
	switch {
	case op == protocol.OpREMS || op == protocol.OpRES:
		addr = s.bbar
	case o.Type.HasAddress():
		addr = uint32(w[1])<<16 | uint32(w[2])<<8 | uint32(w[3])
	}

	var data []byte
	switch o.Type {
	case protocol.WriteNoAddr:
		data = w[1:]
	case protocol.WriteWithAddr:
		data = w[4:]
	default:
		data = r
	}
	if len(data) > s.c.layout.MaxData {
		return &LengthError{
			Op:     fmt.Sprintf("opcode 0x%02x", op),
			Length: len(data),
			Want:   fmt.Sprintf("at most %d data bytes", s.c.layout.MaxData),
		}
	}
	if o.Type.HasAddress() && op != protocol.OpREMS && op != protocol.OpRES {
		if err := s.checkAddress(addr, len(data)); err != nil {
			return err
		}
	}

	return s.run(o, slot, addr, data)
}

// checkShape enforces the transaction shape each opcode type allows.
func checkShape(t protocol.SPIType, writeLen, readLen int) error {
	switch t {
	case protocol.ReadWithAddr:
		if writeLen != 4 {
			return &LengthError{Op: t.String(), Length: writeLen, Want: "4 write bytes"}
		}
	case protocol.ReadNoAddr:
		if writeLen != 1 {
			return &LengthError{Op: t.String(), Length: writeLen, Want: "1 write byte"}
		}
	case protocol.WriteWithAddr:
		if writeLen < 4 {
			return &LengthError{Op: t.String(), Length: writeLen, Want: "at least 4 write bytes"}
		}
	}
	if t.IsWrite() && readLen != 0 {
		return &LengthError{Op: t.String(), Length: readLen, Want: "no read bytes"}
	}
	return nil
}

// window returns the address range software sequencing may reach: BBAR is
// the lowest usable address and the controller only drives 24 address bits.
func (s *swseq) window() (base, offset, end uint32) {
	size := s.c.chipSize
	if size == 0 || size > protocol.AddressLimit {
		size = protocol.AddressLimit
	}
	base = s.bbar & (size - 1)
	offset = s.bbar - base
	end = protocol.AddressLimit - offset
	return base, offset, end
}

// checkAddress rejects a transfer of n bytes at addr that leaves the window.
func (s *swseq) checkAddress(addr uint32, n int) error {
	base, _, end := s.window()
	if addr < base || uint64(addr)+uint64(n) > uint64(end) {
		return &AddressError{Addr: addr, Start: base, End: end}
	}
	return nil
}

// run stages and executes one cycle.
func (s *swseq) run(o protocol.Opcode, slot int, addr uint32, data []byte) error {
	c := s.c
	c.metrics.cycle(engineSW, fmt.Sprintf("0x%02x", o.Code))

	var err error
	if c.layout.Kind == chipset.KindICH7 {
		err = s.runICH7(o, slot, addr, data)
	} else {
		err = s.runICH9(o, slot, addr, data)
	}
	if ce, ok := err.(*CycleError); ok {
		return c.cycleFailed(ce)
	}
	return err
}

func (s *swseq) runICH7(o protocol.Opcode, slot int, addr uint32, data []byte) error {
	c, l := s.c, s.c.layout

	c.regs.Write32(regSPIA, addr&addrMask24)
	if o.Type.IsWrite() {
		writeData(c, regSPID0, data)
	}

	c.regs.Write16(regSPIS, c.regs.Read16(regSPIS)|spisCDS|spisFCERR)

	var spic uint32
	if len(data) > 0 {
		spic |= spicDS
		spic = l.DBC.Set(spic, uint32(len(data)-1))
	}
	spic = spicCOP.Set(spic, uint32(slot))
	switch o.Atomic {
	case 2:
		spic |= spicSPOP | spicACS
	case 1:
		spic |= spicACS
	}
	spic |= spicSCGO
	c.regs.Write16(regSPIC, uint16(spic))

	read := func() uint32 { return uint32(c.regs.Read16(regSPIS)) }
	st, n, ok := c.poll(read, spisCDS|spisFCERR, c.config.SWPollIterations, c.config.SWPollDelay)
	if !ok || st&spisFCERR != 0 {
		c.regs.Write16(regSPIS, c.regs.Read16(regSPIS)|spisCDS|spisFCERR)
		return s.cycleError(o, addr, n, ok)
	}

	if !o.Type.IsWrite() {
		readData(c, regSPID0, data)
	}
	return nil
}

func (s *swseq) runICH9(o protocol.Opcode, slot int, addr uint32, data []byte) error {
	c, l := s.c, s.c.layout

	faddr := c.regs.Read32(regFADDR) &^ addrMask24
	c.regs.Write32(regFADDR, faddr|addr&addrMask24)
	if o.Type.IsWrite() {
		writeData(c, regFDATA0, data)
	}

	v := c.regs.Read32(l.RegSSFSC) & ssfsReserved
	v |= ssfsCDS | ssfsFCERR
	v |= ssfcSCF
	if len(data) > 0 {
		v |= ssfcDS
		v = l.DBC.Set(v, uint32(len(data)-1))
	}
	v = ssfcCOP.Set(v, uint32(slot))
	switch o.Atomic {
	case 2:
		v |= ssfcSPOP | ssfcACS
	case 1:
		v |= ssfcACS
	}
	v |= ssfcSCGO
	c.regs.Write32(l.RegSSFSC, v)

	read := func() uint32 { return c.regs.Read32(l.RegSSFSC) }
	st, n, ok := c.poll(read, ssfsCDS|ssfsFCERR, c.config.SWPollIterations, c.config.SWPollDelay)
	if !ok || st&ssfsFCERR != 0 {
		c.regs.Write32(l.RegSSFSC, c.regs.Read32(l.RegSSFSC)&ssfsReserved|ssfsCDS|ssfsFCERR)
		return s.cycleError(o, addr, n, ok)
	}

	if !o.Type.IsWrite() {
		readData(c, regFDATA0, data)
	}
	return nil
}

func (s *swseq) cycleError(o protocol.Opcode, addr uint32, polls int, completed bool) error {
	err := ErrTransaction
	if !completed {
		err = ErrTimeout
	}
	return &CycleError{
		Engine:     engineSW,
		Op:         fmt.Sprintf("opcode 0x%02x", o.Code),
		Addr:       addr,
		Iterations: polls,
		Err:        err,
	}
}

// writeData stages data into the data registers four bytes at a time,
// including a partial tail.
func writeData(c *Controller, base uint32, data []byte) {
	for a := 0; a < len(data); a += 4 {
		var v uint32
		for i := 0; i < 4 && a+i < len(data); i++ {
			v |= uint32(data[a+i]) << (8 * uint(i))
		}
		c.regs.Write32(base+uint32(a), v)
	}
}

// readData copies the data registers into buf.
func readData(c *Controller, base uint32, buf []byte) {
	for a := 0; a < len(buf); a += 4 {
		v := c.regs.Read32(base + uint32(a))
		for i := 0; i < 4 && a+i < len(buf); i++ {
			buf[a+i] = byte(v >> (8 * uint(i)))
		}
	}
}
