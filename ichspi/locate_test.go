package ichspi

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/moffa90/go-ichspi/chipset"
)

// fakeConfig is a PCI configuration space holding a few dwords.
type fakeConfig map[uint16]uint32

func (f fakeConfig) ReadConfig8(off uint16) (uint8, error) {
	v, err := f.ReadConfig32(off &^ 3)
	return uint8(v >> (8 * (off & 3))), err
}

func (f fakeConfig) ReadConfig16(off uint16) (uint16, error) {
	v, err := f.ReadConfig32(off &^ 3)
	return uint16(v >> (8 * (off & 2))), err
}

func (f fakeConfig) ReadConfig32(off uint16) (uint32, error) {
	v, ok := f[off]
	if !ok {
		return 0, errors.New("config read out of range")
	}
	return v, nil
}

func (f fakeConfig) WriteConfig8(off uint16, v uint8) error   { return nil }
func (f fakeConfig) WriteConfig16(off uint16, v uint16) error { return nil }
func (f fakeConfig) WriteConfig32(off uint16, v uint32) error { f[off] = v; return nil }

func TestLocateSPIBAR(t *testing.T) {
	tests := []struct {
		name    string
		gen     chipset.Generation
		config  fakeConfig
		want    uint64
		wantErr bool
	}{
		{
			name:   "ICH7 root complex",
			gen:    chipset.ICH7,
			config: fakeConfig{0xf0: 0xfed1c001},
			want:   0xfed1c000 + 0x3020,
		},
		{
			name:   "ICH9 root complex",
			gen:    chipset.ICH9,
			config: fakeConfig{0xf0: 0xfed1c001},
			want:   0xfed1c000 + 0x3800,
		},
		{
			name:    "root complex disabled",
			gen:     chipset.ICH9,
			config:  fakeConfig{0xf0: 0xfed1c000},
			wantErr: true,
		},
		{
			name:   "SPI function BAR0",
			gen:    chipset.Series100SunrisePoint,
			config: fakeConfig{0x10: 0xfe010004},
			want:   0xfe010000,
		},
		{
			name:    "BAR0 unassigned",
			gen:     chipset.Series100SunrisePoint,
			config:  fakeConfig{0x10: 0x00000004},
			wantErr: true,
		},
		{
			name:   "VIA shifted base",
			gen:    chipset.VIA,
			config: fakeConfig{0xbc: 0x00fed000},
			want:   0xfed00000,
		},
		{
			name:    "config read fails",
			gen:     chipset.ICH9,
			config:  fakeConfig{},
			wantErr: true,
		},
		{
			name:    "no SPI controller",
			gen:     chipset.Unknown,
			config:  fakeConfig{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			got, err := LocateSPIBAR(tt.config, tt.gen.Layout().SPIBAR)
			if tt.wantErr {
				g.Expect(err).To(HaveOccurred())
				return
			}
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(got).To(Equal(tt.want))
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"auto", ModeAuto, true},
		{"swseq", ModeSoftware, true},
		{"hwseq", ModeHardware, true},
		{"fast", ModeAuto, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			g := NewWithT(t)
			got, ok := ParseMode(tt.in)
			g.Expect(ok).To(Equal(tt.wantOK))
			g.Expect(got).To(Equal(tt.want))
		})
	}
}
