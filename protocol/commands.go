package protocol

import "fmt"

// Command is one SPI transaction: bytes sent to the chip and the number of
// bytes to read back afterwards.
type Command struct {
	Write []byte
	Read  []byte
}

// putAddr appends a 24-bit big-endian address.
func putAddr(b []byte, addr uint32) []byte {
	return append(b, byte(addr>>16), byte(addr>>8), byte(addr))
}

// BuildReadCmd builds a READ of len(buf) bytes at addr.
//
// Example:
//
//	buf := make([]byte, 64)
//	cmd, err := protocol.BuildReadCmd(0x1000, buf)
func BuildReadCmd(addr uint32, buf []byte) (Command, error) {
	if addr >= AddressLimit {
		return Command{}, addressError("read", OpREAD, addr)
	}
	return Command{Write: putAddr([]byte{OpREAD}, addr), Read: buf}, nil
}

// BuildProgramCmd builds a page program of data at addr.
// The data must not cross a 256-byte page boundary.
func BuildProgramCmd(addr uint32, data []byte) (Command, error) {
	if addr >= AddressLimit {
		return Command{}, addressError("page program", OpPP, addr)
	}
	if len(data) == 0 {
		return Command{}, &CommandError{Operation: "page program", Opcode: OpPP, Reason: "program data cannot be empty"}
	}
	if int(addr%PageSize)+len(data) > PageSize {
		return Command{}, &CommandError{
			Operation: "page program",
			Opcode:    OpPP,
			Reason:    fmt.Sprintf("%d bytes at 0x%06x crosses a page boundary", len(data), addr),
		}
	}
	w := make([]byte, 0, 4+len(data))
	w = putAddr(append(w, OpPP), addr)
	return Command{Write: append(w, data...)}, nil
}

// BuildEraseCmd builds a sector/block erase using op at addr.
func BuildEraseCmd(op byte, addr uint32) (Command, error) {
	if t, ok := KnownType(op); !ok || t != WriteWithAddr {
		return Command{}, &CommandError{Operation: "erase", Opcode: op, Reason: "not an addressed erase"}
	}
	if addr >= AddressLimit {
		return Command{}, addressError("erase", op, addr)
	}
	return Command{Write: putAddr([]byte{op}, addr)}, nil
}

// BuildSimpleCmd builds a command made of a single opcode byte.
func BuildSimpleCmd(op byte) Command {
	return Command{Write: []byte{op}}
}

// BuildReadStatusCmd reads the first status register into a 1-byte buffer.
func BuildReadStatusCmd(buf []byte) Command {
	return Command{Write: []byte{OpRDSR}, Read: buf[:1]}
}

// BuildWriteStatusCmd writes v to the first status register.
func BuildWriteStatusCmd(v byte) Command {
	return Command{Write: []byte{OpWRSR, v}}
}

// BuildReadIDCmd reads the 3-byte JEDEC ID into buf.
func BuildReadIDCmd(buf []byte) Command {
	return Command{Write: []byte{OpRDID}, Read: buf[:3]}
}

// EraseOpcodeFor returns the erase opcode for a block size.
func EraseOpcodeFor(size uint32) (byte, bool) {
	switch size {
	case 4 * 1024:
		return OpSE, true
	case 32 * 1024:
		return OpBE52, true
	case 64 * 1024:
		return OpBED8, true
	default:
		return 0, false
	}
}
