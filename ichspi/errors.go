package ichspi

import (
	"errors"
	"fmt"
)

// Sentinel errors. Structured errors below unwrap to one of these, so callers
// can test with errors.Is.
var (
	// ErrUnsupportedOpcode means the opcode has no table slot and cannot be added.
	ErrUnsupportedOpcode = errors.New("unsupported opcode")

	// ErrUnsupportedRegister means the status register cannot be accessed.
	ErrUnsupportedRegister = errors.New("unsupported status register")

	// ErrInvalidAddress means the address is outside the accessible window.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidLength means the request violates a fixed size constraint.
	ErrInvalidLength = errors.New("invalid length")

	// ErrTimeout means the poll budget ran out before the cycle finished.
	ErrTimeout = errors.New("cycle timed out")

	// ErrTransaction means the controller reported a cycle error.
	ErrTransaction = errors.New("transaction error")

	// ErrFatal means the controller could not be initialized.
	ErrFatal = errors.New("controller initialization failed")

	// ErrWrongMode means the call needs the other sequencing engine.
	ErrWrongMode = errors.New("operation not available in this sequencing mode")
)

// OpcodeError reports an opcode the engine cannot issue.
type OpcodeError struct {
	Opcode byte
	Reason string
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("opcode 0x%02X: %s", e.Opcode, e.Reason)
}

func (e *OpcodeError) Unwrap() error { return ErrUnsupportedOpcode }

// AddressError reports an address outside [Start, End).
type AddressError struct {
	Addr  uint32
	Start uint32
	End   uint32
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("address 0x%06X outside allowed range 0x%06X-0x%06X", e.Addr, e.Start, e.End)
}

func (e *AddressError) Unwrap() error { return ErrInvalidAddress }

// LengthError reports a request whose length does not satisfy Want.
type LengthError struct {
	Op     string
	Length int
	Want   string
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("%s: length %d invalid, want %s", e.Op, e.Length, e.Want)
}

func (e *LengthError) Unwrap() error { return ErrInvalidLength }

// CycleError reports a failed or timed out hardware cycle. Err is ErrTimeout
// or ErrTransaction.
type CycleError struct {
	Engine     string
	Op         string
	Addr       uint32
	Iterations int
	Err        error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s %s at 0x%08X: %v after %d polls", e.Engine, e.Op, e.Addr, e.Err, e.Iterations)
}

func (e *CycleError) Unwrap() error { return e.Err }

func fatalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrFatal, fmt.Sprintf(format, args...))
}
