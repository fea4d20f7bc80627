//go:build linux

package ichspi

import (
	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/hwaccess"
	"github.com/moffa90/go-ichspi/logging"
)

// Probe finds the SPI controller of the running system, maps its register
// window through /dev/mem and initializes a Controller. The controller owns
// the mapping; release it with Close. Every failure wraps ErrFatal.
//
// Example:
//
//	ctrl, err := ichspi.Probe(ichspi.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Close()
func Probe(opts ...Option) (*Controller, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := logging.OrNop(cfg.Logger)

	devs, err := hwaccess.ListPCIDevices()
	if err != nil {
		return nil, fatalf("enumerate PCI devices: %v", err)
	}

	for _, d := range devs {
		info, ok := chipset.LookupPCI(d.Vendor, d.Device)
		if !ok {
			continue
		}
		gen := info.Generation
		if cfg.Generation != chipset.Unknown {
			gen = cfg.Generation
		}
		log.Info("found SPI controller", "device", d.String(), "chipset", info.Name,
			"generation", gen.String())

		loc := gen.Layout().SPIBAR
		phys, err := LocateSPIBAR(d, loc)
		if err != nil {
			return nil, fatalf("%s: %v", d.Address, err)
		}
		log.Debug("SPI BAR located", "phys", phys, "size", loc.Size)

		m, err := hwaccess.Map(phys, loc.Size)
		if err != nil {
			return nil, fatalf("%v", err)
		}
		c, err := New(m, gen, opts...)
		if err != nil {
			_ = m.Unmap()
			return nil, err
		}
		c.closer = m
		return c, nil
	}
	return nil, fatalf("no supported SPI controller found")
}
