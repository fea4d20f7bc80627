package protocol

import (
	"fmt"
	"strings"
)

// Opcode is one slot of the opcode table.
type Opcode struct {
	Code byte
	Type SPIType
	// Atomic is 0 for a standalone opcode, or 1/2 when it must be preceded
	// by preopcode slot 0/1 in the same hardware cycle.
	Atomic uint8
}

// Table is the controller's opcode menu: 8 opcodes plus 2 preopcodes.
type Table struct {
	Preops [NumPreops]byte
	Ops    [NumOpcodes]Opcode
}

// DefaultTable returns the table programmed into unlocked controllers.
func DefaultTable() Table {
	return Table{
		Preops: [NumPreops]byte{OpWREN, OpEWSR},
		Ops: [NumOpcodes]Opcode{
			{Code: OpPP, Type: WriteWithAddr},
			{Code: OpREAD, Type: ReadWithAddr},
			{Code: OpSE, Type: WriteWithAddr},
			{Code: OpRDSR, Type: ReadNoAddr},
			{Code: OpREMS, Type: ReadWithAddr},
			{Code: OpWRSR, Type: WriteNoAddr},
			{Code: OpRDID, Type: ReadNoAddr},
			{Code: OpCEC7, Type: WriteNoAddr},
		},
	}
}

// knownTypes lists opcodes whose type never needs to be guessed.
var knownTypes = map[byte]SPIType{
	OpPP:   WriteWithAddr,
	OpREAD: ReadWithAddr,
	OpBED8: WriteWithAddr,
	OpRDSR: ReadNoAddr,
	OpREMS: ReadWithAddr,
	OpWRSR: WriteNoAddr,
	OpRDID: ReadNoAddr,
	OpCEC7: WriteNoAddr,
	OpSE:   WriteWithAddr,
	OpBE52: WriteWithAddr,
	OpAAI:  WriteNoAddr,
}

// KnownType returns the fixed type of a well-known opcode.
func KnownType(op byte) (SPIType, bool) {
	t, ok := knownTypes[op]
	return t, ok
}

// InferType guesses an opcode type from the transaction shape.
//
// The rules are, in order: no read bytes is a write without address, a single
// written byte is a read without address, and exactly four written bytes is a
// read with address. Anything else cannot be represented and returns false.
// A write with address can never be inferred; it is only reachable through
// KnownType.
func InferType(writeLen, readLen int) (SPIType, bool) {
	switch {
	case readLen == 0:
		return WriteNoAddr, true
	case writeLen == 1:
		return ReadNoAddr, true
	case writeLen == 4:
		return ReadWithAddr, true
	default:
		return 0, false
	}
}

// TypeFor returns the known type of op, falling back to InferType.
func TypeFor(op byte, writeLen, readLen int) (SPIType, bool) {
	if t, ok := KnownType(op); ok {
		return t, true
	}
	return InferType(writeLen, readLen)
}

// Find returns the slot holding op, or -1.
func (t *Table) Find(op byte) int {
	for i, o := range t.Ops {
		if o.Code == op {
			return i
		}
	}
	return -1
}

// FindPreop returns the preopcode slot holding op, or -1.
func (t *Table) FindPreop(op byte) int {
	for i, p := range t.Preops {
		if p == op {
			return i
		}
	}
	return -1
}

// ResetAtomic marks every opcode standalone.
func (t *Table) ResetAtomic() {
	for i := range t.Ops {
		t.Ops[i].Atomic = 0
	}
}

// MissingCritical reports whether READ or RDSR is absent.
// Without them the chip cannot be read through software sequencing.
func (t *Table) MissingCritical() bool {
	return t.Find(OpREAD) < 0 || t.Find(OpRDSR) < 0
}

// Encode returns the PREOP, OPTYPE and OPMENU register values.
// Atomic tags are not part of the hardware table.
func (t Table) Encode() (preop uint16, optype uint16, opmenu uint64) {
	preop = uint16(t.Preops[0]) | uint16(t.Preops[1])<<8
	for i := NumOpcodes - 1; i >= 0; i-- {
		optype <<= 2
		optype |= uint16(t.Ops[i].Type & 3)
		opmenu <<= 8
		opmenu |= uint64(t.Ops[i].Code)
	}
	return preop, optype, opmenu
}

// Decode builds a table from register values read back from hardware.
func Decode(preop, optype uint16, opmenu uint64) Table {
	var t Table
	t.Preops[0] = byte(preop)
	t.Preops[1] = byte(preop >> 8)
	for i := 0; i < NumOpcodes; i++ {
		t.Ops[i] = Opcode{
			Code: byte(opmenu >> (8 * uint(i))),
			Type: SPIType((optype >> (2 * uint(i))) & 3),
		}
	}
	return t
}

func (t Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "preop0=0x%02x preop1=0x%02x", t.Preops[0], t.Preops[1])
	for i, o := range t.Ops {
		fmt.Fprintf(&b, " op%d=0x%02x/%s", i, o.Code, o.Type)
		if o.Atomic != 0 {
			fmt.Fprintf(&b, "/atomic%d", o.Atomic)
		}
	}
	return b.String()
}
