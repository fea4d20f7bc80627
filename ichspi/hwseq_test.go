package ichspi

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/protocol"
)

// splitErase reports 4 KiB blocks below 1 MiB and 64 KiB blocks above.
func splitErase(addr uint32) uint32 {
	if addr < 0x100000 {
		return 1
	}
	return 3
}

func newHWSim(t *testing.T, berase func(uint32) uint32) (*simController, *Controller) {
	t.Helper()
	gen := chipset.Series6CougarPoint
	s := newSim(gen, simFlashSize)
	s.berase = berase
	s.MemRegisters.Write32(regFPB, 0x100)

	c, err := New(s, gen, testOptions(WithDescriptor(testDescriptor(gen, 1, 1)))...)
	NewWithT(t).Expect(err).NotTo(HaveOccurred())
	return s, c
}

func TestHardwareProbe(t *testing.T) {
	g := NewWithT(t)
	_, c := newHWSim(t, splitErase)

	g.Expect(c.Mode()).To(Equal(ModeHardware))
	g.Expect(c.ChipSize()).To(Equal(uint32(2 << 20)))

	hs, ok := c.HardwareSequence()
	g.Expect(ok).To(BeTrue())
	g.Expect(hs).To(Equal(HardwareSequence{
		Components: [2]uint32{1 << 20, 1 << 20},
		Size:       2 << 20,
		AddrMask:   0x01ffffff,
		Boundary:   0x100000,
		Erase: []EraseLayout{
			{Start: 0, BlockSize: 4 * 1024, Count: 256},
			{Start: 0x100000, BlockSize: 64 * 1024, Count: 16},
		},
	}))
}

func TestHardwareProbeWithoutDescriptor(t *testing.T) {
	g := NewWithT(t)
	gen := chipset.ApolloLake
	s := newSim(gen, simFlashSize)

	_, err := New(s, gen, testOptions()...)
	g.Expect(err).To(MatchError(ErrFatal))
}

func TestHardwareErase(t *testing.T) {
	tests := []struct {
		name    string
		berase  func(uint32) uint32
		addr    uint32
		length  uint32
		wantErr error
	}{
		{
			name:    "length differs from block size",
			berase:  func(uint32) uint32 { return 3 },
			addr:    0x1000,
			length:  4096,
			wantErr: ErrInvalidLength,
		},
		{
			name:    "upper partition uses 64 KiB blocks",
			berase:  splitErase,
			addr:    0x100000,
			length:  4096,
			wantErr: ErrInvalidLength,
		},
		{
			name:    "misaligned address",
			berase:  splitErase,
			addr:    0x1800,
			length:  4096,
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "block beyond the chip",
			berase:  splitErase,
			addr:    0x200000,
			length:  65536,
			wantErr: ErrInvalidAddress,
		},
		{
			name:   "lower partition block",
			berase: splitErase,
			addr:   0x2000,
			length: 4096,
		},
		{
			name:   "upper partition block",
			berase: splitErase,
			addr:   0x110000,
			length: 65536,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			s, c := newHWSim(t, tt.berase)
			for i := tt.addr; i < tt.addr+tt.length && int(i) < len(s.flash); i++ {
				s.flash[i] = 0
			}

			err := c.Erase(context.Background(), tt.addr, tt.length)
			if tt.wantErr != nil {
				g.Expect(err).To(MatchError(tt.wantErr))
				g.Expect(s.cycles).To(BeZero())
				return
			}
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(s.cycles).To(Equal(1))
			g.Expect(s.ops[0].Cycle).To(Equal(uint32(cycleErase)))
			for i := tt.addr; i < tt.addr+tt.length; i++ {
				g.Expect(s.flash[i]).To(Equal(byte(0xff)))
			}
		})
	}
}

func TestHardwareReadWrite(t *testing.T) {
	g := NewWithT(t)
	ctx := context.Background()
	gen := chipset.Series100SunrisePoint
	s := newSim(gen, simFlashSize)

	var last Progress
	c, err := New(s, gen, testOptions(
		WithMode(ModeHardware),
		WithDescriptor(testDescriptor(gen, 0, 3)),
		WithProgressCallback(func(p Progress) { last = p }),
	)...)
	g.Expect(err).NotTo(HaveOccurred())

	hs, _ := c.HardwareSequence()
	g.Expect(hs.Only4K).To(BeTrue())
	g.Expect(hs.Erase).To(Equal([]EraseLayout{{Start: 0, BlockSize: 4 * 1024, Count: 1024}}))

	data := make([]byte, 200)
	for i := range data {
		data[i] = byte(0xa0 ^ i)
	}
	g.Expect(c.Write(ctx, 0x80, data)).To(Succeed())
	g.Expect(last.Phase).To(Equal(PhaseComplete))

	var lens []int
	for _, op := range s.ops {
		g.Expect(op.Cycle).To(Equal(uint32(cycleWrite)))
		g.Expect(int(op.Addr%protocol.PageSize) + op.Len).To(BeNumerically("<=", protocol.PageSize))
		lens = append(lens, op.Len)
	}
	g.Expect(lens).To(Equal([]int{64, 64, 64, 8}))

	got := make([]byte, len(data))
	g.Expect(c.Read(ctx, 0x80, got)).To(Succeed())
	g.Expect(got).To(Equal(data))

	g.Expect(c.Read(ctx, 4<<20-16, make([]byte, 32))).To(MatchError(ErrInvalidAddress))
}

func TestHardwareStatusAndID(t *testing.T) {
	t.Run("PCH100 status and ID cycles", func(t *testing.T) {
		g := NewWithT(t)
		gen := chipset.Series100SunrisePoint
		s := newSim(gen, simFlashSize)
		c, err := New(s, gen, testOptions(WithMode(ModeHardware), WithDescriptor(testDescriptor(gen, 0, 3)))...)
		g.Expect(err).NotTo(HaveOccurred())

		g.Expect(c.WriteStatus(1, 0x3c)).To(Succeed())
		g.Expect(s.status).To(Equal(byte(0x3c)))
		st, err := c.ReadStatus(1)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(st).To(Equal(byte(0x3c)))

		_, err = c.ReadStatus(2)
		g.Expect(err).To(MatchError(ErrUnsupportedRegister))

		id, ok, err := c.ReadID()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(ok).To(BeTrue())
		g.Expect(id).To(Equal(s.id))
	})

	t.Run("ICH9 has no status or ID cycles", func(t *testing.T) {
		g := NewWithT(t)
		s, c := newHWSim(t, splitErase)

		_, err := c.ReadStatus(1)
		g.Expect(err).To(MatchError(ErrUnsupportedRegister))
		g.Expect(c.WriteStatus(1, 0)).To(MatchError(ErrUnsupportedRegister))

		_, ok, err := c.ReadID()
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(ok).To(BeFalse())
		g.Expect(s.cycles).To(BeZero())
	})
}
