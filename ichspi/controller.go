package ichspi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/descriptor"
	"github.com/moffa90/go-ichspi/hwaccess"
	"github.com/moffa90/go-ichspi/protocol"
	"github.com/moffa90/go-ichspi/region"
)

// FlashController is the flash access surface both sequencing engines provide.
type FlashController interface {
	// Read fills buf from flash starting at addr.
	Read(ctx context.Context, addr uint32, buf []byte) error

	// Write programs data at addr. The range must have been erased.
	Write(ctx context.Context, addr uint32, data []byte) error

	// Erase erases length bytes at addr.
	Erase(ctx context.Context, addr, length uint32) error

	// ReadStatus reads status register reg (1-based).
	ReadStatus(reg int) (byte, error)

	// WriteStatus writes status register reg (1-based).
	WriteStatus(reg int, v byte) error

	// ReadID returns the JEDEC manufacturer and device ID. ok is false when
	// the controller cannot issue an identification cycle.
	ReadID() (id [3]byte, ok bool, err error)

	// Region describes the address window containing addr.
	Region(addr uint32) region.Info
}

// engine is implemented by swseq and hwseq.
type engine interface {
	name() string
	read(ctx context.Context, addr uint32, buf []byte) error
	write(ctx context.Context, addr uint32, data []byte) error
	erase(ctx context.Context, addr, length uint32) error
	readStatus(reg int) (byte, error)
	writeStatus(reg int, v byte) error
	readID() ([3]byte, bool, error)
}

// Controller drives one ICH/PCH SPI controller. The sequencing engine is
// chosen once in New and never changes.
//
// Controller is not safe for concurrent use.
type Controller struct {
	regs    hwaccess.Registers
	gen     chipset.Generation
	layout  chipset.Layout
	config  Config
	metrics *metrics
	closer  io.Closer

	mode       Mode
	locked     bool
	sseqLocked bool
	desc       *descriptor.Descriptor
	chipSize   uint32

	regions []region.Region
	perms   []region.Permission
	ranges  []region.ProtectedRange

	sw     *swseq
	hw     *hwseq
	engine engine
}

var _ FlashController = (*Controller)(nil)

// New initializes the controller behind regs. gen must be known; use Probe
// to detect it from the running system.
//
// Initialization reads the lock state, the flash descriptor (when the
// controller exposes one), the region and protected range registers, then
// sets up the opcode table and picks the sequencing engine. Any failure
// returns an error wrapping ErrFatal and no controller.
//
// Example:
//
//	ctrl, err := ichspi.New(mapping, chipset.Series6CougarPoint,
//	    ichspi.WithLogger(logger),
//	)
func New(regs hwaccess.Registers, gen chipset.Generation, opts ...Option) (*Controller, error) {
	if regs == nil {
		return nil, fatalf("register window cannot be nil")
	}

	layout := gen.Layout()
	if layout.Kind == chipset.KindNone {
		return nil, fatalf("generation %s has no supported SPI controller", gen)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fatalf("register metrics: %v", err)
	}

	c := &Controller{
		regs:    regs,
		gen:     gen,
		layout:  layout,
		config:  cfg,
		metrics: m,
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) init() error {
	c.readLockState()
	c.readDescriptor()
	c.chipSize = c.initialChipSize()
	c.readRegions()

	if c.layout.SWSeq {
		c.sw = &swseq{c: c}
		c.sw.init()
	}

	mode, err := c.chooseMode()
	if err != nil {
		return err
	}
	c.mode = mode

	if mode == ModeHardware {
		c.hw = &hwseq{c: c}
		if err := c.hw.probe(); err != nil {
			return err
		}
		c.engine = c.hw
	} else {
		c.engine = c.sw
	}

	c.dumpRegisters()
	c.logInfo("SPI controller initialized",
		"generation", c.gen.String(),
		"controller", c.layout.Kind.String(),
		"mode", c.mode.String(),
		"locked", c.locked,
		"chip_size", c.chipSize,
	)
	return nil
}

func (c *Controller) readLockState() {
	switch c.layout.Kind {
	case chipset.KindICH7:
		c.locked = c.regs.Read16(regSPIS)&spisLock != 0
	default:
		c.locked = c.regs.Read16(regHSFS)&hsfsFLOCKDN != 0
		if c.layout.SSEQLock {
			c.sseqLocked = c.regs.Read32(regDLOCK)&dlockSSEQLockdown != 0
		}
	}
	if c.locked {
		c.logInfo("SPI configuration is locked down")
	}
}

// fdoWindow reads descriptor sections through FDOC/FDOD.
type fdoWindow struct {
	regs hwaccess.Registers
	fdoc uint32
	fdod uint32
}

func (w fdoWindow) ReadFDO(section, index int) uint32 {
	w.regs.Write32(w.fdoc, uint32(section)<<12&0x3000|uint32(index)<<2&0xffc)
	return w.regs.Read32(w.fdod)
}

func (c *Controller) readDescriptor() {
	if c.config.Descriptor != nil {
		c.desc = c.config.Descriptor
		return
	}
	if !c.layout.Descriptor {
		return
	}
	if c.regs.Read16(regHSFS)&hsfsFDV == 0 {
		c.logDebug("flash descriptor not valid, continuing without")
		return
	}

	w := fdoWindow{regs: c.regs, fdoc: c.layout.RegFDOC, fdod: c.layout.RegFDOD}
	d, err := descriptor.ReadViaFDO(w, c.gen, descriptor.WithLogger(c.config.Logger))
	if err != nil {
		c.logInfo("flash descriptor unreadable, proceeding without descriptor-derived information",
			"error", err)
		return
	}
	c.desc = d
}

func (c *Controller) initialChipSize() uint32 {
	if c.config.ChipSize != 0 {
		return c.config.ChipSize
	}
	if c.desc != nil {
		if n, err := c.desc.ChipSize(); err == nil && n != 0 {
			return n
		}
	}
	return protocol.AddressLimit
}

func (c *Controller) readRegions() {
	raw := make([]uint32, c.layout.NumFREG)
	for i := range raw {
		raw[i] = c.regs.Read32(fregOffset(i))
	}
	c.regions = region.Decode(raw)

	c.ranges = make([]region.ProtectedRange, c.layout.NumPR)
	for i := range c.ranges {
		v := c.regs.Read32(c.layout.RegPR0 + uint32(i)*4)
		if c.layout.PRLegacy {
			c.ranges[i] = region.DecodePBR(i, v)
		} else {
			c.ranges[i] = region.DecodePR(i, v)
		}
	}

	var frap uint32
	if c.layout.HasFRAP {
		frap = c.regs.Read32(regFRAP)
	}
	c.perms = region.DeriveBase(region.Inputs{
		Generation: c.gen,
		FRAP:       frap,
		BIOS:       c.desc.BIOSAccess(),
		Regions:    c.regions,
		Ranges:     c.ranges,
		Logger:     c.config.Logger,
	}, region.IntentWrite)
}

func (c *Controller) chooseMode() (Mode, error) {
	switch c.config.Mode {
	case ModeHardware:
		if !c.layout.HWSeq {
			return 0, fatalf("%s does not support hardware sequencing", c.gen)
		}
		return ModeHardware, nil
	case ModeSoftware:
		if c.sw == nil {
			return 0, fatalf("%s does not support software sequencing", c.gen)
		}
		if c.sseqLocked {
			return 0, fatalf("software sequencing is locked down")
		}
		return ModeSoftware, nil
	}

	if !c.layout.HWSeq {
		return ModeSoftware, nil
	}
	switch {
	case c.layout.ForceHWSeq || c.sw == nil:
		c.logDebug("generation requires hardware sequencing")
	case c.sseqLocked:
		c.logInfo("software sequencing is locked down, using hardware sequencing")
	case c.desc != nil && c.desc.NumComponents() > 1:
		c.logInfo("multiple flash components detected, using hardware sequencing",
			"components", c.desc.NumComponents())
	case c.locked && c.sw.table.MissingCritical():
		c.logInfo("locked opcode table lacks READ or RDSR, using hardware sequencing",
			"table", c.sw.table.String())
	default:
		return ModeSoftware, nil
	}
	return ModeHardware, nil
}

// Close releases the register mapping when the controller owns one.
func (c *Controller) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Generation returns the chipset generation.
func (c *Controller) Generation() chipset.Generation { return c.gen }

// Mode returns the engine in use: ModeSoftware or ModeHardware.
func (c *Controller) Mode() Mode { return c.mode }

// Locked reports whether the controller configuration is locked down.
func (c *Controller) Locked() bool { return c.locked }

// Descriptor returns the flash descriptor, or nil when none was available.
func (c *Controller) Descriptor() *descriptor.Descriptor { return c.desc }

// ChipSize returns the flash size in bytes.
func (c *Controller) ChipSize() uint32 { return c.chipSize }

// Regions returns the flash regions reported by the controller.
func (c *Controller) Regions() []region.Region {
	out := make([]region.Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// ProtectedRanges returns the protected range registers.
func (c *Controller) ProtectedRanges() []region.ProtectedRange {
	out := make([]region.ProtectedRange, len(c.ranges))
	copy(out, c.ranges)
	return out
}

// OpcodeTable returns the in-memory opcode table. ok is false when the
// generation has no software sequencing.
func (c *Controller) OpcodeTable() (t protocol.Table, ok bool) {
	if c.sw == nil {
		return protocol.Table{}, false
	}
	return c.sw.table, true
}

// HardwareSequence returns the probed hardware sequencing geometry. ok is
// false in software sequencing mode.
func (c *Controller) HardwareSequence() (hs HardwareSequence, ok bool) {
	if c.hw == nil {
		return HardwareSequence{}, false
	}
	return c.hw.state, true
}

// Region returns the window containing addr with its effective protection.
// Regions the controller cannot resolve are reported write protected.
func (c *Controller) Region(addr uint32) region.Info {
	return region.Lookup(c.regions, c.perms, c.ranges, addr, c.chipSize)
}

// Read fills buf from flash starting at addr. The context is checked between cycles.
func (c *Controller) Read(ctx context.Context, addr uint32, buf []byte) error {
	if err := c.checkRange(addr, len(buf)); err != nil {
		return err
	}
	if err := c.engine.read(ctx, addr, buf); err != nil {
		return fmt.Errorf("read 0x%06x+%d: %w", addr, len(buf), err)
	}
	return nil
}

// Write programs data at addr. Cycles never cross a 256-byte page.
func (c *Controller) Write(ctx context.Context, addr uint32, data []byte) error {
	if err := c.checkRange(addr, len(data)); err != nil {
		return err
	}
	if err := c.engine.write(ctx, addr, data); err != nil {
		return fmt.Errorf("write 0x%06x+%d: %w", addr, len(data), err)
	}
	return nil
}

// Erase erases length bytes at addr. With hardware sequencing length must be
// exactly the erase block size at addr; with software sequencing it may be
// any multiple of 4 KiB.
func (c *Controller) Erase(ctx context.Context, addr, length uint32) error {
	if err := c.engine.erase(ctx, addr, length); err != nil {
		return fmt.Errorf("erase 0x%06x+%d: %w", addr, length, err)
	}
	return nil
}

// ReadStatus reads status register reg. Only register 1 is supported.
func (c *Controller) ReadStatus(reg int) (byte, error) {
	return c.engine.readStatus(reg)
}

// WriteStatus writes status register reg. Only register 1 is supported.
func (c *Controller) WriteStatus(reg int, v byte) error {
	return c.engine.writeStatus(reg, v)
}

// ReadID reads the 3-byte JEDEC ID.
func (c *Controller) ReadID() ([3]byte, bool, error) {
	return c.engine.readID()
}

// ReadRegion reads the whole named region.
func (c *Controller) ReadRegion(ctx context.Context, name string) ([]byte, error) {
	for _, r := range c.regions {
		if r.Used() && r.Name == name {
			buf := make([]byte, r.Size())
			if err := c.Read(ctx, r.Base, buf); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}
	return nil, fmt.Errorf("region %q not present", name)
}

func (c *Controller) checkRange(addr uint32, n int) error {
	end := uint64(addr) + uint64(n)
	if end > uint64(c.chipSize) {
		return &AddressError{Addr: addr, Start: 0, End: c.chipSize}
	}
	return nil
}

// poll reads status until one of the done bits is set or the budget runs
// out. It returns the last status value and the number of reads.
func (c *Controller) poll(read func() uint32, done uint32, budget, delay int) (uint32, int, bool) {
	var v uint32
	for i := 1; i <= budget; i++ {
		v = read()
		if v&done != 0 {
			c.metrics.polled(i)
			return v, i, true
		}
		c.config.Delayer.Delay(delay)
	}
	c.metrics.polled(budget)
	return v, budget, false
}

// cycleFailed records and logs a failed cycle.
func (c *Controller) cycleFailed(err *CycleError) error {
	c.metrics.cycleError(err.Engine, err.Err)
	c.logError("SPI cycle failed",
		"engine", err.Engine,
		"op", err.Op,
		"addr", fmt.Sprintf("0x%08x", err.Addr),
		"polls", err.Iterations,
		"error", err.Err.Error(),
	)
	return err
}

// IsTimeout reports whether err is a poll budget exhaustion.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// logDebug logs a debug message if a logger is configured.
func (c *Controller) logDebug(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Debug(msg, keysAndValues...)
	}
}

// logInfo logs an info message if a logger is configured.
func (c *Controller) logInfo(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if a logger is configured.
func (c *Controller) logError(msg string, keysAndValues ...interface{}) {
	if c.config.Logger != nil {
		c.config.Logger.Error(msg, keysAndValues...)
	}
}
