package protocol

import "fmt"

// JEDECID is the identification returned by RDID.
type JEDECID struct {
	// Manufacturer is the JEDEC manufacturer code
	Manufacturer byte

	// Device is the memory type in the high byte and capacity in the low byte
	Device uint16
}

func (id JEDECID) String() string {
	return fmt.Sprintf("%02x:%04x", id.Manufacturer, id.Device)
}

// Capacity returns the chip size encoded in the capacity byte, or 0 when the
// byte is outside the usual 2^n encoding.
func (id JEDECID) Capacity() uint32 {
	c := uint(id.Device & 0xff)
	if c < 0x10 || c > 0x1f {
		return 0
	}
	return 1 << c
}

// Status is a decoded first status register.
type Status struct {
	// Busy is WIP: a program, erase or status write is running
	Busy bool

	// WriteEnabled is WEL, set by WREN and cleared when an operation finishes
	WriteEnabled bool

	// BlockProtect holds the BP0-BP3 bits
	BlockProtect uint8

	// RegisterProtect is SRWD, which locks the status register under /WP
	RegisterProtect bool

	// Raw is the register value
	Raw byte
}
