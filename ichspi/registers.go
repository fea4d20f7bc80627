package ichspi

import "github.com/moffa90/go-ichspi/chipset"

// Hardware sequencing registers, ICH9 and later.
const (
	regHSFS   = 0x04
	regHSFC   = 0x06
	regFADDR  = 0x08
	regDLOCK  = 0x0c
	regFDATA0 = 0x10
	regFRAP   = 0x50
	regFREG0  = 0x54
	regFREG12 = 0xe0
	regFPB    = 0xd0

	// ICH7 software sequencing block.
	regSPIS  = 0x00
	regSPIC  = 0x02
	regSPIA  = 0x04
	regSPID0 = 0x08
)

// HSFS bits.
const (
	hsfsFDONE   = 1 << 0
	hsfsFCERR   = 1 << 1
	hsfsAEL     = 1 << 2
	hsfsSCIP    = 1 << 5
	hsfsFDOPSS  = 1 << 13
	hsfsFDV     = 1 << 14
	hsfsFLOCKDN = 1 << 15

	hsfsClear = hsfsFDONE | hsfsFCERR | hsfsAEL
)

var hsfsBERASE = chipset.Field{Shift: 3, Width: 2}

// HSFC bits. FCYCLE width depends on the generation.
const hsfcFGO = 1 << 0

var hsfcFDBC = chipset.Field{Shift: 8, Width: 6}

// Hardware cycle types.
const (
	cycleRead        = 0
	cycleWrite       = 2
	cycleErase       = 3
	cycleReadID      = 6
	cycleWriteStatus = 7
	cycleReadStatus  = 8
)

const dlockSSEQLockdown = 1 << 16

var fpbFPBA = chipset.Field{Shift: 0, Width: 13}

// SSFS/SSFC, accessed as one dword on ICH9 and later.
const (
	ssfsSCIP  = 1 << 0
	ssfsCDS   = 1 << 2
	ssfsFCERR = 1 << 3
	ssfsAEL   = 1 << 4

	ssfcSCGO = 1 << 9
	ssfcACS  = 1 << 10
	ssfcSPOP = 1 << 11
	ssfcDS   = 1 << 22
	ssfcSCF  = 0 << 24 // 20 MHz

	// bits that must be preserved on write
	ssfsReserved = 0xf8008100
)

var ssfcCOP = chipset.Field{Shift: 12, Width: 3}

// SPIS/SPIC on ICH7.
const (
	spisSCIP  = 1 << 0
	spisCDS   = 1 << 2
	spisFCERR = 1 << 3
	spisLock  = 1 << 15

	spicSCGO = 1 << 1
	spicACS  = 1 << 2
	spicSPOP = 1 << 3
	spicDS   = 1 << 14
)

var spicCOP = chipset.Field{Shift: 4, Width: 3}

// swseq address register width.
const addrMask24 = 0x00ffffff

// fregOffset returns the offset of FREGi.
func fregOffset(i int) uint32 {
	if i < 12 {
		return regFREG0 + uint32(i)*4
	}
	return regFREG12 + uint32(i-12)*4
}
