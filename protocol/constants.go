package protocol

import "fmt"

// SPIType is the 2-bit opcode type programmed into OPTYPE.
type SPIType uint8

// Opcode types as encoded by the controller.
const (
	// ReadNoAddr reads data without sending an address (RDSR, RDID)
	ReadNoAddr SPIType = 0

	// WriteNoAddr sends data without an address (WRSR, chip erase)
	WriteNoAddr SPIType = 1

	// ReadWithAddr sends a 24-bit address then reads (READ, REMS)
	ReadWithAddr SPIType = 2

	// WriteWithAddr sends a 24-bit address then data (page program, sector erase)
	WriteWithAddr SPIType = 3
)

// HasAddress reports whether the type carries a 24-bit address.
func (t SPIType) HasAddress() bool { return t&2 != 0 }

// IsWrite reports whether data flows towards the flash chip.
func (t SPIType) IsWrite() bool { return t&1 != 0 }

func (t SPIType) String() string {
	switch t {
	case ReadNoAddr:
		return "read"
	case WriteNoAddr:
		return "write"
	case ReadWithAddr:
		return "read-addr"
	case WriteWithAddr:
		return "write-addr"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// JEDEC opcodes used by the driver.
const (
	// OpWRSR writes the status register
	OpWRSR = 0x01

	// OpPP programs up to one page (byte program)
	OpPP = 0x02

	// OpREAD reads data at a 24-bit address
	OpREAD = 0x03

	// OpWRDI disables writes
	OpWRDI = 0x04

	// OpRDSR reads the status register
	OpRDSR = 0x05

	// OpWREN enables writes for the next command
	OpWREN = 0x06

	// OpFastRead reads with one dummy byte
	OpFastRead = 0x0b

	// OpSE erases a 4 KiB sector
	OpSE = 0x20

	// OpEWSR enables writing the status register
	OpEWSR = 0x50

	// OpBE52 erases a 32 KiB block
	OpBE52 = 0x52

	// OpRDSFDP reads the SFDP tables
	OpRDSFDP = 0x5a

	// OpCE60 erases the whole chip
	OpCE60 = 0x60

	// OpREMS reads manufacturer and device ID
	OpREMS = 0x90

	// OpRDID reads the 3-byte JEDEC ID
	OpRDID = 0x9f

	// OpRES reads the electronic signature
	OpRES = 0xab

	// OpAAI is the auto-address-increment word program
	OpAAI = 0xad

	// OpCEC7 erases the whole chip
	OpCEC7 = 0xc7

	// OpBED8 erases a 64 KiB block
	OpBED8 = 0xd8
)

// Status register bits.
const (
	// StatusWIP is set while a program or erase is in progress
	StatusWIP = 0x01

	// StatusWEL is set after WREN
	StatusWEL = 0x02
)

// Table geometry.
const (
	// NumOpcodes is the number of general opcode slots
	NumOpcodes = 8

	// NumPreops is the number of preopcode slots
	NumPreops = 2

	// ReprogramSlot is the slot replaced by on-the-fly reprogramming
	ReprogramSlot = 2

	// PageSize is the program page size no cycle may cross
	PageSize = 256

	// AddressLimit is the size of the 24-bit address space
	AddressLimit = 1 << 24
)
