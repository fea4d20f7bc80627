// Package protocol holds the SPI-level definitions shared by the controller
// engines: JEDEC opcodes, the 2-bit opcode types, the opcode table and its
// register encoding, and builders for the generic commands.
//
// # Opcode Table
//
// Software sequencing can only issue opcodes present in the controller's
// menu of 8 opcodes and 2 preopcodes. The table is encoded into three
// registers:
//
//	PREOP  (16 bits)  preop0 | preop1<<8
//	OPTYPE (16 bits)  2 bits per slot, slot 0 in bits 1:0
//	OPMENU (64 bits)  8 bits per slot, slot 0 in bits 7:0
//
// Example:
//
//	t := protocol.DefaultTable()
//	preop, optype, opmenu := t.Encode()
//	same := protocol.Decode(preop, optype, opmenu)
//
// # Type Inference
//
// Opcodes missing from the table can be installed on the fly. Their type is
// looked up in a fixed list of well-known opcodes first and otherwise
// inferred from the transaction lengths with InferType.
package protocol
