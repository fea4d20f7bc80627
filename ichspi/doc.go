// Package ichspi drives the SPI flash controller found in Intel ICH and PCH
// chipsets, and the compatible VIA controller.
//
// A Controller owns one memory-mapped register window and picks one of two
// engines when it is created:
//
//   - Software sequencing stages opcode, address and data for every SPI
//     command. Opcodes come from an 8-entry table programmed into the
//     controller; Send and SendMulti expose it directly.
//   - Hardware sequencing lets the controller generate the SPI commands from
//     an address, a length and a cycle type. It is used when the flash
//     descriptor declares two chips, when a locked opcode table lacks READ or
//     RDSR, or on parts that only support it.
//
// Both engines implement FlashController.
//
// # Basic Usage
//
//	ctrl, err := ichspi.Probe(ichspi.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Close()
//
//	buf := make([]byte, ctrl.ChipSize())
//	if err := ctrl.Read(ctx, 0, buf); err != nil {
//	    log.Fatal(err)
//	}
//
// # Polling
//
// Every wait is a bounded number of status reads separated by a short busy
// delay. The bound is an iteration count, not a wall-clock timeout; see
// WithPollBudget. A cycle that has been started always runs to completion or
// timeout, so a context is only checked between cycles.
//
// # Errors
//
// Timeouts and transaction errors are returned as *CycleError and leave the
// controller's error flags cleared. Nothing is retried here.
package ichspi
