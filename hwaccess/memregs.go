package hwaccess

import "encoding/binary"

// MemRegisters is a little-endian register window backed by a byte slice.
// Out-of-range accesses panic like any slice access.
type MemRegisters struct {
	buf []byte
}

// NewMemRegisters returns a zeroed window of size bytes.
func NewMemRegisters(size int) *MemRegisters {
	return &MemRegisters{buf: make([]byte, size)}
}

// Bytes returns the backing storage.
func (m *MemRegisters) Bytes() []byte { return m.buf }

// Size returns the window size in bytes.
func (m *MemRegisters) Size() int { return len(m.buf) }

func (m *MemRegisters) Read8(off uint32) uint8 { return m.buf[off] }

func (m *MemRegisters) Read16(off uint32) uint16 {
	return binary.LittleEndian.Uint16(m.buf[off : off+2])
}

func (m *MemRegisters) Read32(off uint32) uint32 {
	return binary.LittleEndian.Uint32(m.buf[off : off+4])
}

func (m *MemRegisters) Write8(off uint32, v uint8) { m.buf[off] = v }

func (m *MemRegisters) Write16(off uint32, v uint16) {
	binary.LittleEndian.PutUint16(m.buf[off:off+2], v)
}

func (m *MemRegisters) Write32(off uint32, v uint32) {
	binary.LittleEndian.PutUint32(m.buf[off:off+4], v)
}

// Snapshot returns a copy of the window contents.
func (m *MemRegisters) Snapshot() []byte {
	out := make([]byte, len(m.buf))
	copy(out, m.buf)
	return out
}
