//go:build linux

package hwaccess

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"
)

var sysBusPCIPath = "/sys/bus/pci/devices"

// PCIDevice is a PCI function exposed through sysfs.
type PCIDevice struct {
	// Address is the sysfs name, e.g. "0000:00:1f.0".
	Address string
	Vendor  uint16
	Device  uint16

	config string
}

// ListPCIDevices returns every PCI function found in sysfs, sorted by address.
func ListPCIDevices() ([]*PCIDevice, error) {
	entries, err := os.ReadDir(sysBusPCIPath)
	if err != nil {
		return nil, fmt.Errorf("list PCI devices: %w", err)
	}

	devs := make([]*PCIDevice, 0, len(entries))
	for _, e := range entries {
		d := &PCIDevice{
			Address: e.Name(),
			config:  filepath.Join(sysBusPCIPath, e.Name(), "config"),
		}
		id, err := d.ReadConfig32(0)
		if err != nil {
			continue
		}
		d.Vendor = uint16(id)
		d.Device = uint16(id >> 16)
		devs = append(devs, d)
	}

	sort.Slice(devs, func(i, j int) bool { return devs[i].Address < devs[j].Address })
	return devs, nil
}

// FindPCIDevices returns the functions matching vendor:device.
func FindPCIDevices(vendor, device uint16) ([]*PCIDevice, error) {
	all, err := ListPCIDevices()
	if err != nil {
		return nil, err
	}
	var out []*PCIDevice
	for _, d := range all {
		if d.Vendor == vendor && d.Device == device {
			out = append(out, d)
		}
	}
	return out, nil
}

func (d *PCIDevice) String() string {
	return fmt.Sprintf("%s [%04x:%04x]", d.Address, d.Vendor, d.Device)
}

func (d *PCIDevice) readConfig(off uint16, b []byte) error {
	fd, err := unix.Open(d.config, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.config, err)
	}
	defer unix.Close(fd)

	n, err := unix.Pread(fd, b, int64(off))
	if err != nil {
		return fmt.Errorf("read %s config 0x%02x: %w", d.Address, off, err)
	}
	if n != len(b) {
		return fmt.Errorf("read %s config 0x%02x: short read (%d of %d bytes)", d.Address, off, n, len(b))
	}
	return nil
}

func (d *PCIDevice) writeConfig(off uint16, b []byte) error {
	fd, err := unix.Open(d.config, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", d.config, err)
	}
	defer unix.Close(fd)

	n, err := unix.Pwrite(fd, b, int64(off))
	if err != nil {
		return fmt.Errorf("write %s config 0x%02x: %w", d.Address, off, err)
	}
	if n != len(b) {
		return fmt.Errorf("write %s config 0x%02x: short write (%d of %d bytes)", d.Address, off, n, len(b))
	}
	return nil
}

func (d *PCIDevice) ReadConfig8(off uint16) (uint8, error) {
	var b [1]byte
	err := d.readConfig(off, b[:])
	return b[0], err
}

func (d *PCIDevice) ReadConfig16(off uint16) (uint16, error) {
	var b [2]byte
	err := d.readConfig(off, b[:])
	return binary.LittleEndian.Uint16(b[:]), err
}

func (d *PCIDevice) ReadConfig32(off uint16) (uint32, error) {
	var b [4]byte
	err := d.readConfig(off, b[:])
	return binary.LittleEndian.Uint32(b[:]), err
}

func (d *PCIDevice) WriteConfig8(off uint16, v uint8) error {
	return d.writeConfig(off, []byte{v})
}

func (d *PCIDevice) WriteConfig16(off uint16, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return d.writeConfig(off, b[:])
}

func (d *PCIDevice) WriteConfig32(off uint16, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return d.writeConfig(off, b[:])
}
