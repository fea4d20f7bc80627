package descriptor

import (
	"fmt"
)

var (
	readFreqNames = [8]string{"20 MHz", "33 MHz", "48 MHz", "50 MHz", "30 MHz", "reserved", "17 MHz", "reserved"}
	besNames      = [4]string{"256 B", "4 KB", "8 KB", "64 KB"}
)

// Summary returns human-readable lines describing the descriptor.
func (d *Descriptor) Summary() []string {
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	guessed := ""
	if d.Guessed {
		guessed = " (guessed)"
	}
	add("Generation: %s%s", d.Generation, guessed)
	if d.Offset != 0 {
		add("Signature at offset 0x%x", d.Offset)
	}

	c := d.Content
	add("FLMAP0 0x%08x: FCBA=0x%03x NC=%d FRBA=0x%03x NR=%d", c.FLMAP0, c.FCBA(), c.NC(), c.FRBA(), c.NR())
	add("FLMAP1 0x%08x: FMBA=0x%03x NM=%d FISBA=0x%03x ISL=%d", c.FLMAP1, c.FMBA(), c.NM(), c.FISBA(), c.ISL())
	add("FLMAP2 0x%08x: FMSBA=0x%03x MSL=%d ICCRIBA=0x%02x RIL=%d", c.FLMAP2, c.FMSBA(), c.MSL(), c.ICCRIBA(), c.RIL())

	add("FLCOMP 0x%08x: read clock %s", d.Component.FLCOMP, readFreqNames[d.Component.ReadFreq()])
	for i := 0; i < d.NumComponents(); i++ {
		if n, err := d.ComponentSize(i); err != nil {
			add("  component %d: %v", i, err)
		} else {
			add("  component %d: %d KiB", i, n>>10)
		}
	}
	if ill := d.IllegalOpcodes(); len(ill) > 0 {
		add("Illegal opcodes: % x", ill)
	}

	for _, r := range d.Regions {
		add("%s", r)
	}
	for _, m := range d.Masters {
		add("FLMSTR%d %-6s 0x%08x: read 0x%04x write 0x%04x", m.Index+1, m.Name, m.Raw, m.Read, m.Write)
	}

	if d.Upper != nil {
		add("FLUMAP1 0x%08x: VTBA=0x%03x VTL=%d", d.Upper.FLUMAP1, d.Upper.VTBA(), d.Upper.VTL())
		for i, e := range d.Upper.VSCC {
			lo, up := e.Lower(), e.Upper()
			add("  JID%d 0x%08x: manufacturer 0x%02x device 0x%04x", i, e.JID, e.Vendor(), e.Device())
			add("  VSCC%d lower: BES=%s WG=%t WSR=%t WEWS=%t EO=0x%02x", i, besNames[lo.BES], lo.WG, lo.WSR, lo.WEWS, lo.EO)
			add("  VSCC%d upper: BES=%s WG=%t WSR=%t WEWS=%t EO=0x%02x", i, besNames[up.BES], up.WG, up.WSR, up.WEWS, up.EO)
		}
	}
	for i, v := range d.NorthStraps {
		add("PROCSTRP%-2d 0x%08x", i, v)
	}
	for i, v := range d.SouthStraps {
		add("PCHSTRP%-2d 0x%08x", i, v)
	}
	return lines
}
