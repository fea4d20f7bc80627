//go:build linux

package hwaccess

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devMemPath = "/dev/mem"

// Mapping is a physical memory window mapped through /dev/mem.
type Mapping struct {
	phys uint64
	mem  []byte
	regs []byte
}

// Map maps size bytes of physical memory starting at phys.
// The mapping is page aligned internally; offsets stay relative to phys.
func Map(phys uint64, size int) (*Mapping, error) {
	if size <= 0 {
		return nil, fmt.Errorf("map 0x%x: invalid size %d", phys, size)
	}

	fd, err := unix.Open(devMemPath, unix.O_RDWR|unix.O_SYNC|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", devMemPath, err)
	}
	defer unix.Close(fd)

	base, delta, length := pageSpan(phys, size, unix.Getpagesize())
	mem, err := unix.Mmap(fd, int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap 0x%x+0x%x: %w", phys, size, err)
	}

	return &Mapping{
		phys: phys,
		mem:  mem,
		regs: mem[delta : delta+size],
	}, nil
}

// Unmap releases the mapping. The Mapping must not be used afterwards.
func (m *Mapping) Unmap() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem, m.regs = nil, nil
	return err
}

// Close implements io.Closer.
func (m *Mapping) Close() error { return m.Unmap() }

// Phys returns the physical base address of the window.
func (m *Mapping) Phys() uint64 { return m.phys }

// Size returns the window size in bytes.
func (m *Mapping) Size() int { return len(m.regs) }

func (m *Mapping) ptr(off uint32, width uint32) unsafe.Pointer {
	_ = m.regs[off+width-1]
	return unsafe.Pointer(&m.regs[off])
}

func (m *Mapping) Read8(off uint32) uint8 {
	return *(*uint8)(m.ptr(off, 1))
}

func (m *Mapping) Read16(off uint32) uint16 {
	return *(*uint16)(m.ptr(off, 2))
}

func (m *Mapping) Read32(off uint32) uint32 {
	return atomic.LoadUint32((*uint32)(m.ptr(off, 4)))
}

func (m *Mapping) Write8(off uint32, v uint8) {
	*(*uint8)(m.ptr(off, 1)) = v
}

func (m *Mapping) Write16(off uint32, v uint16) {
	*(*uint16)(m.ptr(off, 2)) = v
}

func (m *Mapping) Write32(off uint32, v uint32) {
	atomic.StoreUint32((*uint32)(m.ptr(off, 4)), v)
}
