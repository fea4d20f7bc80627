package ichspi

import (
	"context"
	"fmt"

	"github.com/moffa90/go-ichspi/protocol"
)

const (
	engineHW = "hwseq"

	// hwMaxData is the FDATA size; every hardware cycle moves at most this much.
	hwMaxData = 64
)

// encoded HSFS.BERASE to bytes
var eraseBlockSizes = [4]uint32{256, 4 * 1024, 8 * 1024, 64 * 1024}

// EraseLayout is a uniform run of erase blocks.
type EraseLayout struct {
	Start     uint32
	BlockSize uint32
	Count     uint32
}

// HardwareSequence is the flash geometry probed for hardware sequencing.
type HardwareSequence struct {
	// Components holds the size of each flash chip; the second is 0 when absent.
	Components [2]uint32
	Size       uint32
	AddrMask   uint32
	// Boundary is where the upper erase partition starts; 0 means one partition.
	Boundary uint32
	Only4K   bool
	Erase    []EraseLayout
}

type hwseq struct {
	c     *Controller
	state HardwareSequence
}

func (h *hwseq) name() string { return engineHW }

func (h *hwseq) probe() error {
	c := h.c
	if c.desc == nil {
		return fatalf("hardware sequencing requires a flash descriptor")
	}

	st := HardwareSequence{
		AddrMask: c.layout.AddrMask,
		Only4K:   c.layout.Only4K,
	}
	for i := 0; i < c.desc.NumComponents() && i < 2; i++ {
		n, err := c.desc.ComponentSize(i)
		if err != nil {
			return fatalf("component %d: %v", i, err)
		}
		st.Components[i] = n
		st.Size += n
	}
	if st.Size == 0 {
		return fatalf("flash descriptor reports no flash")
	}
	h.state = st

	if !st.Only4K && c.layout.HasFPB {
		h.state.Boundary = fpbFPBA.Get(c.regs.Read32(regFPB)) << 12
	}

	if b := h.state.Boundary; b == 0 || b >= st.Size {
		h.state.Boundary = 0
		bs := h.blockSize(0)
		h.state.Erase = []EraseLayout{{Start: 0, BlockSize: bs, Count: st.Size / bs}}
	} else {
		lo, hi := h.blockSize(0), h.blockSize(b)
		h.state.Erase = []EraseLayout{
			{Start: 0, BlockSize: lo, Count: b / lo},
			{Start: b, BlockSize: hi, Count: (st.Size - b) / hi},
		}
	}

	c.chipSize = st.Size
	c.logDebug("probed hardware sequencing",
		"comp0", st.Components[0],
		"comp1", st.Components[1],
		"boundary", fmt.Sprintf("0x%08x", h.state.Boundary),
		"erase_layouts", len(h.state.Erase))
	return nil
}

// blockSize returns the erase block size at addr. Older controllers report
// it in HSFS.BERASE for the address in FADDR.
func (h *hwseq) blockSize(addr uint32) uint32 {
	if h.state.Only4K {
		return 4 * 1024
	}
	h.setAddr(addr)
	return eraseBlockSizes[hsfsBERASE.Get(uint32(h.c.regs.Read16(regHSFS)))]
}

func (h *hwseq) setAddr(addr uint32) {
	regs, mask := h.c.regs, h.state.AddrMask
	old := regs.Read32(regFADDR) &^ mask
	regs.Write32(regFADDR, addr&mask|old)
}

// cycle runs one hardware cycle of type typ moving n data bytes (0 leaves
// FDBC untouched).
func (h *hwseq) cycle(op string, typ uint32, addr uint32, n, budget int) error {
	c := h.c
	c.metrics.cycle(engineHW, op)

	h.setAddr(addr)
	c.regs.Write16(regHSFS, c.regs.Read16(regHSFS)&hsfsClear)

	hsfc := uint32(c.regs.Read16(regHSFC))
	hsfc = c.layout.FCycle.Set(hsfc, typ)
	if n > 0 {
		hsfc = hsfcFDBC.Set(hsfc, uint32(n-1))
	}
	hsfc |= hsfcFGO
	c.regs.Write16(regHSFC, uint16(hsfc))

	read := func() uint32 { return uint32(c.regs.Read16(regHSFS)) }
	st, polls, ok := c.poll(read, hsfsFDONE|hsfsFCERR, budget, c.config.HWPollDelay)
	c.regs.Write16(regHSFS, c.regs.Read16(regHSFS)&hsfsClear)

	switch {
	case !ok:
		return c.cycleFailed(&CycleError{Engine: engineHW, Op: op, Addr: addr, Iterations: polls, Err: ErrTimeout})
	case st&hsfsFCERR != 0:
		return c.cycleFailed(&CycleError{Engine: engineHW, Op: op, Addr: addr, Iterations: polls, Err: ErrTransaction})
	}
	return nil
}

// chunk returns the size of the next cycle at addr: bounded by FDATA and
// never crossing a 256-byte page.
func chunk(addr uint32, remaining int) int {
	n := minInt(hwMaxData, remaining)
	return minInt(n, protocol.PageSize-int(addr%protocol.PageSize))
}

func (h *hwseq) read(ctx context.Context, addr uint32, buf []byte) error {
	t := h.c.track(PhaseReading, addr, len(buf))
	for done := 0; done < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := addr + uint32(done)
		n := chunk(a, len(buf)-done)
		if err := h.cycle("read", cycleRead, a, n, h.c.config.HWPollIterations); err != nil {
			return err
		}
		readData(h.c, regFDATA0, buf[done:done+n])
		done += n
		t.advance(done)
	}
	t.complete()
	return nil
}

func (h *hwseq) write(ctx context.Context, addr uint32, data []byte) error {
	t := h.c.track(PhaseWriting, addr, len(data))
	for done := 0; done < len(data); {
		if err := ctx.Err(); err != nil {
			return err
		}
		a := addr + uint32(done)
		n := chunk(a, len(data)-done)
		writeData(h.c, regFDATA0, data[done:done+n])
		if err := h.cycle("write", cycleWrite, a, n, h.c.config.HWPollIterations); err != nil {
			return err
		}
		done += n
		t.advance(done)
	}
	t.complete()
	return nil
}

// erase erases exactly one block. Nothing is issued unless length is the
// block size at addr, addr is aligned to it and the block lies on the chip.
func (h *hwseq) erase(ctx context.Context, addr, length uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bs := h.blockSize(addr)
	if length != bs {
		return &LengthError{Op: "erase", Length: int(length), Want: fmt.Sprintf("erase block size %d at 0x%06x", bs, addr)}
	}
	if addr%bs != 0 {
		return &AddressError{Addr: addr, Start: addr - addr%bs, End: addr - addr%bs + bs}
	}
	if uint64(addr)+uint64(length) > uint64(h.state.Size) {
		return &AddressError{Addr: addr, Start: 0, End: h.state.Size}
	}

	t := h.c.track(PhaseErasing, addr, int(length))
	if err := h.cycle("erase", cycleErase, addr, 0, h.c.config.ErasePollIterations); err != nil {
		return err
	}
	t.complete()
	return nil
}

func (h *hwseq) checkStatusReg(reg int) error {
	if reg != 1 {
		return fmt.Errorf("%w: register %d", ErrUnsupportedRegister, reg)
	}
	if !h.c.layout.StatusCycles {
		return fmt.Errorf("%w: %s has no status cycles", ErrUnsupportedRegister, h.c.gen)
	}
	return nil
}

func (h *hwseq) readStatus(reg int) (byte, error) {
	if err := h.checkStatusReg(reg); err != nil {
		return 0, err
	}
	if err := h.cycle("read status", cycleReadStatus, 0, 1, h.c.config.HWPollIterations); err != nil {
		return 0, err
	}
	return byte(h.c.regs.Read32(regFDATA0)), nil
}

func (h *hwseq) writeStatus(reg int, v byte) error {
	if err := h.checkStatusReg(reg); err != nil {
		return err
	}
	h.c.regs.Write32(regFDATA0, uint32(v))
	return h.cycle("write status", cycleWriteStatus, 0, 1, h.c.config.HWPollIterations)
}

func (h *hwseq) readID() ([3]byte, bool, error) {
	var id [3]byte
	if !h.c.layout.IDCycle {
		return id, false, nil
	}
	if err := h.cycle("read id", cycleReadID, 0, 3, h.c.config.HWPollIterations); err != nil {
		return id, false, err
	}
	v := h.c.regs.Read32(regFDATA0)
	id[0], id[1], id[2] = byte(v), byte(v>>8), byte(v>>16)
	return id, true, nil
}
