package protocol

import "fmt"

// CommandError reports a command that cannot be built.
type CommandError struct {
	// Operation is the command being built
	Operation string

	// Opcode is the SPI opcode
	Opcode byte

	// Reason describes what is wrong
	Reason string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s (0x%02x) failed: %s", e.Operation, e.Opcode, e.Reason)
}

// IsCommandError returns true if the error is a CommandError.
func IsCommandError(err error) bool {
	_, ok := err.(*CommandError)
	return ok
}

func addressError(op string, opcode byte, addr uint32) error {
	return &CommandError{Operation: op, Opcode: opcode, Reason: fmt.Sprintf("address 0x%x exceeds 24-bit range", addr)}
}
