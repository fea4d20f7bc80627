package protocol

import "fmt"

const (
	statusBP   = 0x3c
	statusSRWD = 0x80

	// JEDECIDSize is the number of bytes RDID returns
	JEDECIDSize = 3
)

// ParseJEDECID decodes an RDID response.
//
// Data format (3 bytes):
//
//	[MANUFACTURER][MEMORY TYPE][CAPACITY]
func ParseJEDECID(data []byte) (JEDECID, error) {
	if len(data) != JEDECIDSize {
		return JEDECID{}, fmt.Errorf("invalid data length for RDID response: got %d bytes, expected %d", len(data), JEDECIDSize)
	}
	id := JEDECID{
		Manufacturer: data[0],
		Device:       uint16(data[1])<<8 | uint16(data[2]),
	}
	// all ones or all zeros means nothing answered
	if (id.Manufacturer == 0xff && id.Device == 0xffff) || (id.Manufacturer == 0 && id.Device == 0) {
		return id, fmt.Errorf("no flash chip responded to RDID (%s)", id)
	}
	return id, nil
}

// ParseStatus decodes the first status register.
func ParseStatus(v byte) Status {
	return Status{
		Busy:            v&StatusWIP != 0,
		WriteEnabled:    v&StatusWEL != 0,
		BlockProtect:    (v & statusBP) >> 2,
		RegisterProtect: v&statusSRWD != 0,
		Raw:             v,
	}
}
