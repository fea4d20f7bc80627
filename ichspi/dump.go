package ichspi

import (
	"fmt"
	"strings"

	"github.com/moffa90/go-ichspi/chipset"
)

type flagName struct {
	bit  uint32
	name string
}

var hsfsFlags = []flagName{
	{hsfsFDONE, "FDONE"},
	{hsfsFCERR, "FCERR"},
	{hsfsAEL, "AEL"},
	{hsfsSCIP, "SCIP"},
	{hsfsFDOPSS, "FDOPSS"},
	{hsfsFDV, "FDV"},
	{hsfsFLOCKDN, "FLOCKDN"},
}

var ssfsFlags = []flagName{
	{ssfsSCIP, "SCIP"},
	{ssfsCDS, "CDS"},
	{ssfsFCERR, "FCERR"},
	{ssfsAEL, "AEL"},
}

var spisFlags = []flagName{
	{spisSCIP, "SCIP"},
	{spisCDS, "CDS"},
	{spisFCERR, "FCERR"},
	{spisLock, "LOCK"},
}

func flags(v uint32, names []flagName) string {
	var set []string
	for _, f := range names {
		if v&f.bit != 0 {
			set = append(set, f.name)
		}
	}
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set, "|")
}

func hex(v uint32) string { return fmt.Sprintf("0x%08x", v) }

// dumpRegisters logs the controller registers at debug level.
func (c *Controller) dumpRegisters() {
	if c.config.Logger == nil {
		return
	}
	l := c.layout
	r := c.regs

	if l.Kind == chipset.KindICH7 {
		spis := uint32(r.Read16(regSPIS))
		c.logDebug("SPIS", "value", hex(spis), "flags", flags(spis, spisFlags))
		c.logDebug("SPIC", "value", hex(uint32(r.Read16(regSPIC))))
		c.logDebug("SPIA", "value", hex(r.Read32(regSPIA)))
	} else {
		hsfs := uint32(r.Read16(regHSFS))
		c.logDebug("HSFS", "value", hex(hsfs), "flags", flags(hsfs, hsfsFlags),
			"berase", eraseBlockSizes[hsfsBERASE.Get(hsfs)])
		c.logDebug("HSFC", "value", hex(uint32(r.Read16(regHSFC))))
		c.logDebug("FADDR", "value", hex(r.Read32(regFADDR)))
		if l.HasFRAP {
			c.logDebug("FRAP", "value", hex(r.Read32(regFRAP)))
		}
		for _, reg := range c.regions {
			c.logDebug(reg.String(), "raw", hex(reg.Raw))
		}
		if l.SSEQLock {
			c.logDebug("DLOCK", "value", hex(r.Read32(regDLOCK)))
		}
		if l.HasFPB {
			c.logDebug("FPB", "value", hex(r.Read32(regFPB)))
		}
		if l.SWSeq {
			ssfs := r.Read32(l.RegSSFSC)
			c.logDebug("SSFS", "value", hex(ssfs&0xff), "flags", flags(ssfs, ssfsFlags))
			c.logDebug("SSFC", "value", hex(ssfs>>8))
		}
	}

	for _, pr := range c.ranges {
		c.logDebug(pr.String(), "raw", hex(pr.Raw))
	}
	if l.SWSeq {
		c.logDebug("PREOP", "value", hex(uint32(r.Read16(l.RegPREOP))))
		c.logDebug("OPTYPE", "value", hex(uint32(r.Read16(l.RegOPTYPE))))
		c.logDebug("OPMENU", "low", hex(r.Read32(l.RegOPMENU)), "high", hex(r.Read32(l.RegOPMENU+4)))
	}
	if l.HasBBAR {
		c.logDebug("BBAR", "value", hex(r.Read32(l.RegBBAR)))
	}
}
