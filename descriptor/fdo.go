package descriptor

import (
	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/region"
)

// Flash descriptor observability sections.
const (
	SectionContent   = 0
	SectionComponent = 1
	SectionRegion    = 2
	SectionMaster    = 3
)

// FDOReader reads dword index of a descriptor section through the controller's
// FDOC/FDOD observability window.
type FDOReader interface {
	ReadFDO(section, index int) uint32
}

// ReadViaFDO reads the descriptor the chipset has mapped, without touching
// flash. The strap sections and the upper map cannot be observed this way,
// so Upper and the straps stay empty.
func ReadViaFDO(r FDOReader, gen chipset.Generation, opts ...Option) (*Descriptor, error) {
	p := newParser(opts)
	if gen != chipset.Unknown {
		p.gen = gen
	}

	d := &Descriptor{}
	d.Content = Content{
		FLVALSIG: r.ReadFDO(SectionContent, 0),
		FLMAP0:   r.ReadFDO(SectionContent, 1),
		FLMAP1:   r.ReadFDO(SectionContent, 2),
		FLMAP2:   r.ReadFDO(SectionContent, 3),
	}
	if d.Content.FLVALSIG != Signature {
		return nil, ErrNoSignature
	}

	d.Component = Component{
		FLCOMP: r.ReadFDO(SectionComponent, 0),
		FLILL:  r.ReadFDO(SectionComponent, 1),
		FLPB:   r.ReadFDO(SectionComponent, 2),
	}

	d.Generation = p.gen
	if d.Generation == chipset.Unknown {
		d.Generation = Guess(d.Content, d.Component, nil, p.logger)
		d.Guessed = true
	}

	nr, err := RegionsFor(d.Generation, d.Content)
	if err != nil {
		return nil, err
	}
	raw := make([]uint32, nr)
	for i := range raw {
		raw[i] = r.ReadFDO(SectionRegion, i)
	}
	d.Regions = region.Decode(raw)

	nm, err := MastersFor(d.Generation, d.Content)
	if err != nil {
		return nil, err
	}
	layout := d.Generation.Layout()
	d.Masters = make([]Master, nm)
	for i := range d.Masters {
		d.Masters[i] = DecodeMaster(layout, i, r.ReadFDO(SectionMaster, i))
	}

	p.logDebug("read flash descriptor via FDOC/FDOD",
		"generation", d.Generation.String(), "regions", nr, "masters", nm)
	return d, nil
}
