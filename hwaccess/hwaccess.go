// Package hwaccess provides the hardware capabilities the SPI driver consumes:
// a memory-mapped register window, PCI configuration access and a short
// busy delay.
//
// The Linux implementations map /dev/mem and use sysfs PCI config files.
// MemRegisters is a plain in-memory window for simulation and tests.
package hwaccess

import "time"

// Registers is a memory-mapped register window. Offsets are relative to the
// window base. Implementations must issue exactly one bus access per call and
// never merge or reorder accesses.
type Registers interface {
	Read8(off uint32) uint8
	Read16(off uint32) uint16
	Read32(off uint32) uint32
	Write8(off uint32, v uint8)
	Write16(off uint32, v uint16)
	Write32(off uint32, v uint32)
}

// PCIConfig reads and writes one device's PCI configuration space.
type PCIConfig interface {
	ReadConfig8(off uint16) (uint8, error)
	ReadConfig16(off uint16) (uint16, error)
	ReadConfig32(off uint16) (uint32, error)
	WriteConfig8(off uint16, v uint8) error
	WriteConfig16(off uint16, v uint16) error
	WriteConfig32(off uint16, v uint32) error
}

// Delayer waits for roughly us microseconds.
type Delayer interface {
	Delay(us int)
}

// DelayFunc adapts a function to Delayer.
type DelayFunc func(us int)

// Delay calls f(us).
func (f DelayFunc) Delay(us int) { f(us) }

// BusyDelay spins for short delays and sleeps for delays of a millisecond or more.
type BusyDelay struct{}

// Delay waits for us microseconds.
func (BusyDelay) Delay(us int) {
	if us <= 0 {
		return
	}
	d := time.Duration(us) * time.Microsecond
	if d >= time.Millisecond {
		time.Sleep(d)
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}

// NoDelay returns immediately. Useful with simulated registers.
var NoDelay Delayer = DelayFunc(func(int) {})
