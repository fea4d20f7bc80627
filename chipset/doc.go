// Package chipset models the Intel ICH/PCH (and VIA) chipset generations
// supported by the SPI driver.
//
// # Generations
//
// A Generation is chosen once, either from the probed PCI device ID or by
// guessing from a flash descriptor, and never changes for a controller.
//
//	gen, ok := chipset.LookupPCI(0x8086, 0xa324)
//	// gen.Generation == chipset.Series300CannonPoint
//
// # Layouts
//
// Every generation-dependent constant lives in a Layout: register offsets,
// descriptor field positions, region/master count rules and how to find the
// SPI register window. Code that needs a generation-specific value asks the
// Layout instead of switching on the Generation.
//
//	l := chipset.ICH9.Layout()
//	density := l.Component.Density1.Get(flcomp)
package chipset
