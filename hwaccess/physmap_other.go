//go:build !linux

package hwaccess

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned by the physical access helpers outside Linux.
var ErrUnsupportedPlatform = errors.New("hwaccess: physical memory and PCI access require linux")

// Mapping is unavailable outside Linux.
type Mapping struct{ MemRegisters }

// Map always fails outside Linux.
func Map(phys uint64, size int) (*Mapping, error) { return nil, ErrUnsupportedPlatform }

// Unmap is a no-op.
func (m *Mapping) Unmap() error { return nil }

// Close is a no-op.
func (m *Mapping) Close() error { return nil }

// PCIDevice is unavailable outside Linux.
type PCIDevice struct {
	Address string
	Vendor  uint16
	Device  uint16
}

// ListPCIDevices always fails outside Linux.
func ListPCIDevices() ([]*PCIDevice, error) { return nil, ErrUnsupportedPlatform }

// FindPCIDevices always fails outside Linux.
func FindPCIDevices(vendor, device uint16) ([]*PCIDevice, error) {
	return nil, ErrUnsupportedPlatform
}

func (d *PCIDevice) String() string {
	return fmt.Sprintf("%s [%04x:%04x]", d.Address, d.Vendor, d.Device)
}

func (d *PCIDevice) ReadConfig8(off uint16) (uint8, error)    { return 0, ErrUnsupportedPlatform }
func (d *PCIDevice) ReadConfig16(off uint16) (uint16, error)  { return 0, ErrUnsupportedPlatform }
func (d *PCIDevice) ReadConfig32(off uint16) (uint32, error)  { return 0, ErrUnsupportedPlatform }
func (d *PCIDevice) WriteConfig8(off uint16, v uint8) error   { return ErrUnsupportedPlatform }
func (d *PCIDevice) WriteConfig16(off uint16, v uint16) error { return ErrUnsupportedPlatform }
func (d *PCIDevice) WriteConfig32(off uint16, v uint32) error { return ErrUnsupportedPlatform }
