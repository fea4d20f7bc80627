package descriptor

import (
	"github.com/moffa90/go-ichspi/chipset"
)

// RegionImage is the content of one used region.
type RegionImage struct {
	Index    int
	Name     string
	FileName string
	Base     uint32
	Data     []byte
}

// ExtractRegions slices every used region out of image. Regions that extend
// past the end of the image are truncated; regions starting beyond it are
// skipped. The returned slices alias image.
func ExtractRegions(image []byte, d *Descriptor) []RegionImage {
	var out []RegionImage
	size := uint64(len(image))
	for _, r := range d.Regions {
		if !r.Used() || uint64(r.Base) >= size {
			continue
		}
		end := uint64(r.Limit) + 1
		if end > size {
			end = size
		}
		out = append(out, RegionImage{
			Index:    r.Index,
			Name:     r.Name,
			FileName: chipset.RegionFileName(r.Index),
			Base:     r.Base,
			Data:     image[r.Base:end],
		})
	}
	return out
}
