package ichspi

import (
	"fmt"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/hwaccess"
)

// rcbaEnable is bit 0 of the root complex base address register.
const rcbaEnable = 1

// LocateSPIBAR returns the physical address of the SPI register window from
// the PCI configuration of the controller's function.
func LocateSPIBAR(cfg hwaccess.PCIConfig, loc chipset.Locator) (uint64, error) {
	if loc.Source == chipset.BARNone {
		return 0, fmt.Errorf("no SPI BAR source defined")
	}

	v, err := cfg.ReadConfig32(uint16(loc.ConfigOffset))
	if err != nil {
		return 0, fmt.Errorf("read config 0x%02x: %w", loc.ConfigOffset, err)
	}
	if loc.Source == chipset.BARRCBA && v&rcbaEnable == 0 {
		return 0, fmt.Errorf("root complex register block disabled (RCBA 0x%08x)", v)
	}

	base := uint64(v&loc.Mask) << loc.Shift
	if base == 0 {
		return 0, fmt.Errorf("SPI BAR not assigned (config 0x%02x = 0x%08x)", loc.ConfigOffset, v)
	}
	return base + uint64(loc.Offset), nil
}
