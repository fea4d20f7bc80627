package chipset

import (
	"testing"
)

func TestFieldGetSet(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		in    uint32
		want  uint32
	}{
		{"low byte", Field{0, 8}, 0x12345678, 0x78},
		{"nr bits", Field{24, 3}, 0x03040003, 0x3},
		{"top bit", Field{31, 1}, 0x80000000, 1},
		{"absent", Field{4, 0}, 0xffffffff, 0},
		{"full word", Field{0, 32}, 0xdeadbeef, 0xdeadbeef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Get(tt.in); got != tt.want {
				t.Errorf("Get(0x%08X) = 0x%X, want 0x%X", tt.in, got, tt.want)
			}
		})
	}

	f := Field{8, 6}
	v := f.Set(0xffffffff, 0x15)
	if got := f.Get(v); got != 0x15 {
		t.Errorf("Set/Get = 0x%X, want 0x15", got)
	}
	if v&^f.Mask() != 0xffffffff&^f.Mask() {
		t.Errorf("Set modified bits outside the field: 0x%08X", v)
	}
	if f.Set(0, 0xff) != 0x3f<<8 {
		t.Errorf("Set did not truncate oversized value")
	}
	if !f.Bit(0x0100, 0) || f.Bit(0x0100, 1) || f.Bit(0xffff, 6) {
		t.Errorf("Bit returned unexpected values")
	}
}

func TestParseGeneration(t *testing.T) {
	for _, g := range Generations() {
		got, err := ParseGeneration(g.String())
		if err != nil {
			t.Fatalf("ParseGeneration(%q) error: %v", g.String(), err)
		}
		if got != g {
			t.Errorf("ParseGeneration(%q) = %v, want %v", g.String(), got, g)
		}
	}

	if g, err := ParseGeneration(" ICH9 "); err != nil || g != ICH9 {
		t.Errorf("ParseGeneration(ICH9) = %v, %v", g, err)
	}
	if g, err := ParseGeneration("100_series_sunrise_point"); err != nil || g != Series100SunrisePoint {
		t.Errorf("underscore form = %v, %v", g, err)
	}
	if _, err := ParseGeneration("ich42"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestGenerationText(t *testing.T) {
	var g Generation
	if err := g.UnmarshalText([]byte("gemini-lake")); err != nil {
		t.Fatalf("UnmarshalText error: %v", err)
	}
	if g != GeminiLake {
		t.Errorf("got %v, want %v", g, GeminiLake)
	}
	b, _ := g.MarshalText()
	if string(b) != "gemini-lake" {
		t.Errorf("MarshalText = %q", b)
	}
	if Generation(99).String() != "generation(99)" {
		t.Errorf("out of range String = %q", Generation(99).String())
	}
}

func TestLayouts(t *testing.T) {
	if LayoutOf(Unknown).Kind != KindNone {
		t.Error("Unknown must have no controller")
	}

	for _, g := range Generations() {
		l := g.Layout()
		if l.Kind == KindNone {
			t.Errorf("%v: no controller kind", g)
			continue
		}
		if l.SPIBAR.Source == BARNone || l.SPIBAR.Size == 0 {
			t.Errorf("%v: missing SPIBAR locator", g)
		}
		if l.SWSeq && (l.MaxData == 0 || !l.DBC.Present()) {
			t.Errorf("%v: software sequencing without data size", g)
		}
		if l.HWSeq && (l.AddrMask == 0 || !l.FCycle.Present()) {
			t.Errorf("%v: hardware sequencing without address mask or FCYCLE", g)
		}
		if l.Descriptor {
			if l.Regions.Kind == CountUnsupported || l.Masters.Kind == CountUnsupported {
				t.Errorf("%v: descriptor without count rules", g)
			}
			if l.Component.MaxDensity == 0 {
				t.Errorf("%v: descriptor without density layout", g)
			}
		}
		if l.Kind == KindPCH100 && (!l.Only4K || !l.StatusCycles) {
			t.Errorf("%v: 100-series layout must use fixed 4K erase and status cycles", g)
		}
	}

	if LayoutOf(VIA).MaxData != 16 {
		t.Error("VIA controllers move 16 bytes per cycle")
	}
	if LayoutOf(ICH8).SPIBAR.Offset != 0x3020 || LayoutOf(ICH9).SPIBAR.Offset != 0x3800 {
		t.Error("unexpected SPIBAR offsets")
	}
	if !LayoutOf(ApolloLake).ForceHWSeq || LayoutOf(Series300CannonPoint).ForceHWSeq {
		t.Error("unexpected ForceHWSeq")
	}
}

func TestLookupPCI(t *testing.T) {
	tests := []struct {
		vendor, device uint16
		want           Generation
		ok             bool
	}{
		{VendorIntel, 0x27b8, ICH7, true},
		{VendorIntel, 0x2918, ICH9, true},
		{VendorIntel, 0xa324, Series300CannonPoint, true},
		{VendorIntel, 0x5a96, ApolloLake, true},
		{VendorVIA, 0x3372, VIA, true},
		{VendorIntel, 0xffff, Unknown, false},
	}

	for _, tt := range tests {
		d, ok := LookupPCI(tt.vendor, tt.device)
		if ok != tt.ok || d.Generation != tt.want {
			t.Errorf("LookupPCI(%04x:%04x) = %v, %v; want %v, %v",
				tt.vendor, tt.device, d.Generation, ok, tt.want, tt.ok)
		}
	}

	seen := make(map[[2]uint16]bool)
	for _, d := range PCIDevices() {
		key := [2]uint16{d.Vendor, d.Device}
		if seen[key] {
			t.Errorf("duplicate PCI entry %04x:%04x", d.Vendor, d.Device)
		}
		seen[key] = true
	}
}

func TestNames(t *testing.T) {
	if RegionName(1) != "BIOS" || RegionName(20) != "unknown" {
		t.Error("unexpected region names")
	}
	if RegionFileName(0) != "fd" || RegionFileName(17) != "reg17" {
		t.Error("unexpected region file names")
	}
	l := C620Lewisburg.Layout()
	if l.MasterName(5) != "IE" || l.MasterName(9) != "unknown" {
		t.Error("unexpected master names")
	}
}
