// Package descriptor parses the Intel flash descriptor, the 4 KiB structure at
// the start of an SPI flash image that describes the flash components, the
// region layout and which bus masters may access which region.
//
// # Basic Usage
//
//	desc, err := descriptor.ParseFile("image.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, line := range desc.Summary() {
//	    fmt.Println(line)
//	}
//
// When the chipset is known, pass it so field widths are not guessed:
//
//	desc, err := descriptor.Parse(buf, descriptor.WithGeneration(chipset.Series6CougarPoint))
//
// A running controller exposes the same structure through its observability
// window; see ReadViaFDO.
//
// Parsing is all-or-nothing. Every section is bounds-checked and a failure
// returns a *BoundsError or *CountError and no descriptor.
package descriptor
