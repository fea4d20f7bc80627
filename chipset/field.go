package chipset

// Field describes a bit field inside a 32-bit register or descriptor dword.
// A zero Width means the field does not exist on that generation.
type Field struct {
	Shift uint
	Width uint
}

// Mask returns the in-place mask of the field.
func (f Field) Mask() uint32 {
	if f.Width == 0 {
		return 0
	}
	if f.Width >= 32 {
		return ^uint32(0) << f.Shift
	}
	return ((uint32(1) << f.Width) - 1) << f.Shift
}

// Get extracts the field value from v.
func (f Field) Get(v uint32) uint32 {
	return (v & f.Mask()) >> f.Shift
}

// Set returns v with the field replaced by x. Bits of x wider than the field are dropped.
func (f Field) Set(v, x uint32) uint32 {
	return (v &^ f.Mask()) | ((x << f.Shift) & f.Mask())
}

// Bit reports whether bit i of the field is set.
func (f Field) Bit(v uint32, i int) bool {
	if i < 0 || uint(i) >= f.Width {
		return false
	}
	return (f.Get(v)>>uint(i))&1 == 1
}

// Present reports whether the field exists.
func (f Field) Present() bool {
	return f.Width > 0
}
