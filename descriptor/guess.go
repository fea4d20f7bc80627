package descriptor

import (
	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/logging"
)

// read clock selector 6 (17 MHz on 100-series) does not exist on older parts
const freqRead100Series = 6

// Guess infers the chipset generation from descriptor structure. upper may be
// nil when the upper map is unavailable. The result is never Unknown: when
// the structure is ambiguous the most recent matching family is returned and
// a diagnostic is logged.
func Guess(c Content, comp Component, upper *UpperMap, logger logging.Logger) chipset.Generation {
	log := logging.OrNop(logger)
	g := guessFromContent(c, upper, log)

	switch g {
	case chipset.Series300CannonPoint, chipset.Series400CometPoint,
		chipset.Series500TigerPoint, chipset.Series600AlderPoint, chipset.MeteorLake,
		chipset.GeminiLake, chipset.JasperLake, chipset.ElkhartLake, chipset.C740Emmitsburg:
		// the read frequency field was repurposed
	case chipset.Series100SunrisePoint, chipset.C620Lewisburg, chipset.ApolloLake:
		if comp.ReadFreq() != freqRead100Series {
			log.Debug("read frequency implausible for guessed generation",
				"guess", g.String(), "freq_read", comp.ReadFreq())
			return chipset.Series9WildcatPoint
		}
	default:
		if comp.ReadFreq() == freqRead100Series {
			log.Debug("read frequency implies 100-series", "guess", g.String())
			return chipset.Series100SunrisePoint
		}
	}
	return g
}

func guessFromContent(c Content, upper *UpperMap, log logging.Logger) chipset.Generation {
	iccriba := c.ICCRIBA()
	msl := c.MSL()
	isl := c.ISL()

	switch {
	case iccriba == 0x00:
		switch {
		case msl == 0 && isl <= 2:
			return chipset.ICH8
		case isl <= 2:
			return chipset.ICH9
		case isl <= 10:
			return chipset.ICH10
		case isl <= 16:
			return chipset.Series5IbexPeak
		case c.FLMAP2 == 0 && isl == 19:
			return chipset.ApolloLake
		case c.FLMAP2 == 0 && isl == 23:
			return chipset.GeminiLake
		case isl == 0x50:
			return chipset.C740Emmitsburg
		}
		log.Info("peculiar flash descriptor, assuming Ibex Peak compatibility", "isl", isl)
		return chipset.Series5IbexPeak

	case iccriba < 0x31 && c.FMSBA() < 0x300:
		switch {
		case msl == 0 && isl <= 17:
			return chipset.Baytrail
		case msl <= 1 && isl <= 18:
			return chipset.Series6CougarPoint
		case msl <= 1 && isl <= 21:
			return chipset.Series8LynxPoint
		}
		log.Info("peculiar flash descriptor, assuming Wildcat Point compatibility", "msl", msl, "isl", isl)
		return chipset.Series9WildcatPoint
	}

	// CSSO/CSSL overlay FLMAP2 from Tiger Point on; CSSL shares bits with ICCRIBA
	if g, ok := guessFromSoftStraps(c); ok {
		return g
	}

	switch {
	case iccriba < 0x34:
		if c.NM() == 6 {
			return chipset.C620Lewisburg
		}
		// a MIP descriptor table only exists from Cannon Point on
		if upper != nil && upper.MDTBA() != 0 {
			return chipset.Series300CannonPoint
		}
		return chipset.Series100SunrisePoint

	case iccriba == 0x34:
		if c.NM() == 6 {
			return chipset.C620Lewisburg
		}
		return chipset.Series300CannonPoint
	}

	log.Info("unknown flash descriptor, assuming 500-series compatibility",
		"cssl", c.CSSL(), "csso", c.CSSO())
	return chipset.Series500TigerPoint
}

func guessFromSoftStraps(c Content) (chipset.Generation, bool) {
	cssl, csso := c.CSSL(), c.CSSO()
	switch {
	case cssl == 0x11 && csso == 0x68:
		return chipset.Series500TigerPoint, true
	case cssl == 0x11 && csso == 0x5c:
		return chipset.Series600AlderPoint, true
	case cssl == 0x14:
		return chipset.MeteorLake, true
	case cssl == 0x03 && csso == 0x58:
		return chipset.ElkhartLake, true
	case cssl == 0x03 && csso == 0x6c:
		return chipset.JasperLake, true
	}
	return chipset.Unknown, false
}
