package descriptor

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/moffa90/go-ichspi/chipset"
	"github.com/moffa90/go-ichspi/logging"
	"github.com/moffa90/go-ichspi/region"
)

// Option configures the parser.
type Option func(*parser)

// WithGeneration sets the chipset generation. A known generation is never guessed.
func WithGeneration(g chipset.Generation) Option {
	return func(p *parser) {
		p.gen = g
	}
}

// WithLogger sets a logger for diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(p *parser) {
		p.logger = l
	}
}

type parser struct {
	buf    []byte
	gen    chipset.Generation
	logger logging.Logger
}

func newParser(opts []Option) *parser {
	p := &parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse decodes the flash descriptor at the start of buf. buf holds at least
// the first MinFullSize bytes of an image; a full image is fine.
//
// Example:
//
//	img, _ := os.ReadFile("bios.bin")
//	desc, err := descriptor.Parse(img)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(desc.Generation)
func Parse(buf []byte, opts ...Option) (*Descriptor, error) {
	p := newParser(opts)
	p.buf = buf
	return p.parse()
}

// ParseReader reads the descriptor region from r and parses it.
func ParseReader(r io.Reader, opts ...Option) (*Descriptor, error) {
	buf := make([]byte, Size)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}
	return Parse(buf[:n], opts...)
}

// ParseFile parses the descriptor at the start of the image file at path.
func ParseFile(path string, opts ...Option) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, opts...)
}

// dword returns the little-endian dword at byte offset off. Callers check bounds.
func (p *parser) dword(off int) uint32 {
	return binary.LittleEndian.Uint32(p.buf[off:])
}

func (p *parser) check(section string, off, length int) error {
	if off < 0 || length < 0 || off+length > len(p.buf) {
		return &BoundsError{Section: section, Offset: off, Length: length, Size: len(p.buf)}
	}
	return nil
}

func (p *parser) dwords(section string, off, n int) ([]uint32, error) {
	if err := p.check(section, off, n*4); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = p.dword(off + i*4)
	}
	return out, nil
}

func (p *parser) signatureOffset() (int, error) {
	if len(p.buf) >= 4 && p.dword(0) == Signature {
		return 0, nil
	}
	if len(p.buf) >= BugOffset+4 && p.dword(BugOffset) == Signature {
		p.logDebug("descriptor signature found at PCH bug offset", "offset", BugOffset)
		return BugOffset, nil
	}
	return 0, ErrNoSignature
}

func (p *parser) parse() (*Descriptor, error) {
	off, err := p.signatureOffset()
	if err != nil {
		return nil, err
	}

	d := &Descriptor{Offset: off}

	raw, err := p.dwords("content", off, 4)
	if err != nil {
		return nil, err
	}
	d.Content = Content{FLVALSIG: raw[0], FLMAP0: raw[1], FLMAP1: raw[2], FLMAP2: raw[3]}

	raw, err = p.dwords("component", d.Content.FCBA(), 3)
	if err != nil {
		return nil, err
	}
	d.Component = Component{FLCOMP: raw[0], FLILL: raw[1], FLPB: raw[2]}

	raw, err = p.dwords("upper map", UpperMapOffset, 1)
	if err != nil {
		return nil, err
	}
	upper := &UpperMap{FLUMAP1: raw[0]}

	d.Generation = p.gen
	if d.Generation == chipset.Unknown {
		d.Generation = Guess(d.Content, d.Component, upper, p.logger)
		d.Guessed = true
		p.logInfo("guessed chipset generation from descriptor", "generation", d.Generation.String())
	}

	if err := p.tables(d); err != nil {
		return nil, err
	}

	upper.VSCC, err = p.vscc(upper)
	if err != nil {
		return nil, err
	}
	d.Upper = upper

	if d.NorthStraps, err = p.dwords("north straps", d.Content.FMSBA(), d.Content.MSL()); err != nil {
		return nil, err
	}
	if d.SouthStraps, err = p.dwords("south straps", d.Content.FISBA(), d.Content.ISL()); err != nil {
		return nil, err
	}

	p.logDebug("parsed flash descriptor",
		"generation", d.Generation.String(),
		"components", d.NumComponents(),
		"regions", len(d.Regions),
		"masters", len(d.Masters))
	return d, nil
}

// tables decodes the region and master sections.
func (p *parser) tables(d *Descriptor) error {
	nr, err := RegionsFor(d.Generation, d.Content)
	if err != nil {
		return err
	}
	raw, err := p.dwords("region", d.Content.FRBA(), nr)
	if err != nil {
		return err
	}
	d.Regions = region.Decode(raw)

	nm, err := MastersFor(d.Generation, d.Content)
	if err != nil {
		return err
	}
	raw, err = p.dwords("master", d.Content.FMBA(), nm)
	if err != nil {
		return err
	}
	layout := d.Generation.Layout()
	d.Masters = make([]Master, nm)
	for i, v := range raw {
		d.Masters[i] = DecodeMaster(layout, i, v)
	}
	return nil
}

func (p *parser) vscc(u *UpperMap) ([]VSCCEntry, error) {
	n := u.VTL() / 2
	raw, err := p.dwords("vscc table", u.VTBA(), n*2)
	if err != nil {
		return nil, err
	}
	out := make([]VSCCEntry, n)
	for i := range out {
		out[i] = VSCCEntry{JID: raw[2*i], VSCC: raw[2*i+1]}
	}
	return out, nil
}

func (p *parser) logDebug(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Debug(msg, keysAndValues...)
	}
}

func (p *parser) logInfo(msg string, keysAndValues ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, keysAndValues...)
	}
}
