package descriptor

import (
	"errors"
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
)

var (
	// ErrParse is the root of every structural parse failure.
	ErrParse = errors.New("invalid flash descriptor")

	// ErrNoSignature means neither dword 0 nor dword 4 holds the descriptor signature.
	ErrNoSignature = fmt.Errorf("%w: signature 0x%08X not found", ErrParse, Signature)

	// ErrOutOfBounds means a section lies (partly) outside the buffer.
	ErrOutOfBounds = errors.New("descriptor section out of bounds")

	// ErrUnsupportedCount means a region or master count exceeds what the generation defines.
	ErrUnsupportedCount = errors.New("unsupported descriptor count")

	// ErrUnsupportedDensity means a component density cannot be decoded.
	ErrUnsupportedDensity = errors.New("unsupported component density")
)

// BoundsError reports a section whose offset and length exceed the buffer.
type BoundsError struct {
	Section string
	Offset  int
	Length  int
	Size    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s section 0x%X+0x%X exceeds buffer of 0x%X bytes",
		e.Section, e.Offset, e.Length, e.Size)
}

func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

// CountError reports a region or master count the generation cannot hold.
type CountError struct {
	Table      string
	Generation chipset.Generation
	Count      int
	Max        int
}

func (e *CountError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("%s table is not defined on %s", e.Table, e.Generation)
	}
	return fmt.Sprintf("%s count %d exceeds maximum %d on %s", e.Table, e.Count, e.Max, e.Generation)
}

func (e *CountError) Unwrap() error { return ErrUnsupportedCount }

// DensityError reports an invalid component density encoding.
type DensityError struct {
	Component int
	Encoded   uint32
	Max       uint32
}

func (e *DensityError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("component %d: density encoding is unknown on this generation", e.Component)
	}
	return fmt.Sprintf("component %d: encoded density 0x%x exceeds maximum 0x%x",
		e.Component, e.Encoded, e.Max)
}

func (e *DensityError) Unwrap() error { return ErrUnsupportedDensity }
