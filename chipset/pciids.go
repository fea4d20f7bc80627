package chipset

// PCI vendor IDs of supported controllers.
const (
	VendorIntel uint16 = 0x8086
	VendorVIA   uint16 = 0x1106
)

// PCIDevice maps a PCI vendor/device pair to a generation.
// Before the 100-series the device is the LPC bridge at 00:1f.0,
// afterwards it is the dedicated SPI function at 00:1f.5.
type PCIDevice struct {
	Vendor     uint16
	Device     uint16
	Generation Generation
	Name       string
}

func intel(gen Generation, name string, ids ...uint16) []PCIDevice {
	out := make([]PCIDevice, 0, len(ids))
	for _, id := range ids {
		out = append(out, PCIDevice{Vendor: VendorIntel, Device: id, Generation: gen, Name: name})
	}
	return out
}

var pciDevices = func() []PCIDevice {
	var t []PCIDevice
	add := func(d []PCIDevice) { t = append(t, d...) }

	add(intel(ICH7, "ICH7", 0x27b8, 0x27b9, 0x27bc, 0x27bd))
	add(intel(TunnelCreek, "Tunnel Creek", 0x8186))
	add(intel(Centerton, "Centerton", 0x0c60))
	add(intel(ICH8, "ICH8", 0x2810, 0x2811, 0x2812, 0x2814, 0x2815))
	add(intel(ICH9, "ICH9", 0x2912, 0x2914, 0x2916, 0x2917, 0x2918, 0x2919))
	add(intel(ICH10, "ICH10", 0x3a14, 0x3a16, 0x3a18, 0x3a1a))
	add(intel(Series5IbexPeak, "5 Series/3400", 0x3b02, 0x3b03, 0x3b06, 0x3b07, 0x3b08, 0x3b09, 0x3b0a, 0x3b0b, 0x3b0d, 0x3b0f))
	add(intel(Series6CougarPoint, "6 Series/C200", 0x1c44, 0x1c46, 0x1c47, 0x1c49, 0x1c4a, 0x1c4b, 0x1c4c, 0x1c4d, 0x1c4e, 0x1c4f, 0x1c50, 0x1c52, 0x1c54, 0x1c56, 0x1c5c))
	add(intel(Series7PantherPoint, "7 Series/C216", 0x1e44, 0x1e46, 0x1e47, 0x1e48, 0x1e49, 0x1e4a, 0x1e53, 0x1e55, 0x1e56, 0x1e57, 0x1e58, 0x1e59, 0x1e5d, 0x1e5e, 0x1e5f))
	add(intel(Series8LynxPoint, "8 Series/C220", 0x8c44, 0x8c46, 0x8c49, 0x8c4a, 0x8c4b, 0x8c4c, 0x8c4e, 0x8c4f, 0x8c50, 0x8c52, 0x8c54, 0x8c56, 0x8c5c))
	add(intel(Series8LynxPointLP, "8 Series LP", 0x9c41, 0x9c43, 0x9c45))
	add(intel(Series8Wellsburg, "C610/X99 Wellsburg", 0x8d40, 0x8d41, 0x8d42, 0x8d43, 0x8d44, 0x8d45, 0x8d46, 0x8d47))
	add(intel(Baytrail, "Bay Trail", 0x0f1c))
	add(intel(Series9WildcatPoint, "9 Series", 0x8cc1, 0x8cc2, 0x8cc3, 0x8cc4, 0x8cc6))
	add(intel(Series9WildcatPointLP, "9 Series LP", 0x9cc1, 0x9cc2, 0x9cc3, 0x9cc5, 0x9cc6, 0x9cc7, 0x9cc9))
	add(intel(Series100SunrisePoint, "100 Series", 0x9d24, 0xa124))
	add(intel(C620Lewisburg, "C620 Lewisburg", 0xa1a4))
	add(intel(Series300CannonPoint, "300 Series", 0x9da4, 0xa324))
	add(intel(Series400CometPoint, "400 Series", 0x02a4, 0x06a4))
	add(intel(Series500TigerPoint, "500 Series", 0xa0a4, 0x43a4))
	add(intel(Series600AlderPoint, "600 Series", 0x51a4, 0x54a4, 0x7aa4))
	add(intel(MeteorLake, "Meteor Lake", 0x7e23))
	add(intel(ApolloLake, "Apollo Lake", 0x5a96))
	add(intel(GeminiLake, "Gemini Lake", 0x31c4))
	add(intel(JasperLake, "Jasper Lake", 0x4da4))
	add(intel(ElkhartLake, "Elkhart Lake", 0x4b24))
	add(intel(C740Emmitsburg, "C740 Emmitsburg", 0x1bca))

	for _, id := range []uint16{0x3372, 0x8353, 0x8409, 0x8410} {
		t = append(t, PCIDevice{Vendor: VendorVIA, Device: id, Generation: VIA, Name: "VIA SPI"})
	}
	return t
}()

// PCIDevices returns a copy of the device table.
func PCIDevices() []PCIDevice {
	out := make([]PCIDevice, len(pciDevices))
	copy(out, pciDevices)
	return out
}

// LookupPCI returns the table entry for vendor:device.
func LookupPCI(vendor, device uint16) (PCIDevice, bool) {
	for _, d := range pciDevices {
		if d.Vendor == vendor && d.Device == device {
			return d, true
		}
	}
	return PCIDevice{}, false
}
