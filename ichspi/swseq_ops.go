package ichspi

import (
	"context"
	"fmt"

	"github.com/moffa90/go-ichspi/protocol"
)

const (
	sectorSize = 4 * 1024
	blockSize  = 64 * 1024
)

func (s *swseq) read(ctx context.Context, addr uint32, buf []byte) error {
	if err := s.checkSpan(addr, len(buf)); err != nil {
		return err
	}
	t := s.c.track(PhaseReading, addr, len(buf))
	for done := 0; done < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := minInt(s.c.layout.MaxData, len(buf)-done)
		cmd, err := protocol.BuildReadCmd(addr+uint32(done), buf[done:done+n])
		if err != nil {
			return err
		}
		if err := s.send(cmd); err != nil {
			return err
		}
		done += n
		t.advance(done)
	}
	t.complete()
	return nil
}

func (s *swseq) write(ctx context.Context, addr uint32, data []byte) error {
	if err := s.checkSpan(addr, len(data)); err != nil {
		return err
	}
	t := s.c.track(PhaseWriting, addr, len(data))
	for done := 0; done < len(data); {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := addr + uint32(done)
		n := minInt(s.c.layout.MaxData, len(data)-done)
		n = minInt(n, protocol.PageSize-int(a%protocol.PageSize))

		cmd, err := protocol.BuildProgramCmd(a, data[done:done+n])
		if err != nil {
			return err
		}
		if err := s.sendMulti([]protocol.Command{protocol.BuildSimpleCmd(protocol.OpWREN), cmd}); err != nil {
			return err
		}
		if err := s.waitReady(a, s.c.config.SWPollIterations); err != nil {
			return err
		}
		done += n
		t.advance(done)
	}
	t.complete()
	return nil
}

// erase uses 64 KiB block erases where the table has one and the range
// allows it, 4 KiB sector erases otherwise.
func (s *swseq) erase(ctx context.Context, addr, length uint32) error {
	if length == 0 || length%sectorSize != 0 {
		return &LengthError{Op: "erase", Length: int(length), Want: "a non-zero multiple of 4096"}
	}
	if addr%sectorSize != 0 {
		return &AddressError{Addr: addr, Start: addr &^ (sectorSize - 1), End: addr&^(sectorSize-1) + sectorSize}
	}
	if err := s.c.checkRange(addr, int(length)); err != nil {
		return err
	}
	if err := s.checkSpan(addr, int(length)); err != nil {
		return err
	}

	t := s.c.track(PhaseErasing, addr, int(length))
	for done := uint32(0); done < length; {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := addr + done
		op, size := byte(protocol.OpSE), uint32(sectorSize)
		if a%blockSize == 0 && length-done >= blockSize && s.table.Find(protocol.OpBED8) >= 0 {
			op, size = protocol.OpBED8, blockSize
		}

		cmd, err := protocol.BuildEraseCmd(op, a)
		if err != nil {
			return err
		}
		if err := s.sendMulti([]protocol.Command{protocol.BuildSimpleCmd(protocol.OpWREN), cmd}); err != nil {
			return err
		}
		if err := s.waitReady(a, s.c.config.ErasePollIterations); err != nil {
			return err
		}
		done += size
		t.advance(int(done))
	}
	t.complete()
	return nil
}

func (s *swseq) readStatus(reg int) (byte, error) {
	if reg != 1 {
		return 0, fmt.Errorf("%w: register %d", ErrUnsupportedRegister, reg)
	}
	var buf [1]byte
	if err := s.send(protocol.BuildReadStatusCmd(buf[:])); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (s *swseq) writeStatus(reg int, v byte) error {
	if reg != 1 {
		return fmt.Errorf("%w: register %d", ErrUnsupportedRegister, reg)
	}
	pre := byte(protocol.OpWREN)
	if s.table.FindPreop(pre) < 0 {
		pre = protocol.OpEWSR
	}
	cmds := []protocol.Command{protocol.BuildSimpleCmd(pre), protocol.BuildWriteStatusCmd(v)}
	if err := s.sendMulti(cmds); err != nil {
		return err
	}
	return s.waitReady(0, s.c.config.SWPollIterations)
}

func (s *swseq) readID() ([3]byte, bool, error) {
	var id [3]byte
	if err := s.send(protocol.BuildReadIDCmd(id[:])); err != nil {
		return id, false, err
	}
	return id, true, nil
}

// waitReady polls RDSR until the chip clears WIP.
func (s *swseq) waitReady(addr uint32, budget int) error {
	for i := 1; i <= budget; i++ {
		st, err := s.readStatus(1)
		if err != nil {
			return err
		}
		if !protocol.ParseStatus(st).Busy {
			return nil
		}
		s.c.config.Delayer.Delay(s.c.config.SWPollDelay)
	}
	return s.c.cycleFailed(&CycleError{
		Engine:     engineSW,
		Op:         "wait for write completion",
		Addr:       addr,
		Iterations: budget,
		Err:        ErrTimeout,
	})
}

// checkSpan rejects ranges software sequencing cannot address.
func (s *swseq) checkSpan(addr uint32, n int) error {
	if n == 0 {
		return nil
	}
	return s.checkAddress(addr, n)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
